package generator

import "strings"

// Language tags accepted by BuildPrompt.
const (
	LanguageIndonesian = "id"
	LanguageEnglish    = "en"
)

// Instruction suffixes selecting the tone and language of the reply.
const (
	EnglishInstruction    = "Respond with only one sentence in casual urban English, like a natural conversation, and do not use symbols."
	IndonesianInstruction = "Give 1 sentence in Jakarta slang like a casual chat and don't use any symbols."
)

// BuildPrompt appends the instruction for language to text. Any language other
// than English gets the Jakarta slang instruction.
func BuildPrompt(text, language string) string {
	instruction := IndonesianInstruction
	if strings.EqualFold(strings.TrimSpace(language), LanguageEnglish) {
		instruction = EnglishInstruction
	}
	return text + "\n\n" + instruction
}

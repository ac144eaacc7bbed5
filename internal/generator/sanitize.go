package generator

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// controlCharsRegex matches ASCII control characters (including DEL 0x7F).
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// invisibleReplacer drops invisible format characters and maps exotic spaces
	// and separators to plain whitespace.
	invisibleReplacer = strings.NewReplacer(
		"\u2060", "",
		"\uFEFF", "",
		"\u00AD", "",
		"\u200E", "",
		"\u200F", "",
		"\u2028", " ",
		"\u2029", " ",
		"\u200B", " ",
		"\u200C", " ",
		"\u2009", " ",
		"\u200A", " ",
		"\u202F", " ",
		"\u3000", " ",
	)

	// wrappingQuotes are stripped when they enclose the whole reply.
	wrappingQuotes = [][2]string{{`"`, `"`}, {"\u201C", "\u201D"}, {"`", "`"}}
)

// Sanitize turns a model completion into a single chat line: invisible and
// control characters are removed, all whitespace runs (newlines included)
// collapse to one space, and quotes wrapping the entire text are stripped.
func Sanitize(s string) string {
	s = invisibleReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, " ")

	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\u00A0' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	s = strings.TrimSpace(b.String())

	for _, q := range wrappingQuotes {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
			break
		}
	}
	return s
}

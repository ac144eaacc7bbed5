package config

import "time"

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultDiscordTokenType = TokenTypeUser
	DefaultDiscordTimeout   = 30 * time.Second

	DefaultReadDelay  = 10 * time.Second
	DefaultReplyDelay = 5 * time.Second
	DefaultLanguage   = "id"

	DefaultSource            = SourceAPI
	DefaultProvider          = ProviderOpenRouter
	DefaultTimeout           = 2 * time.Minute
	DefaultMaxAttempts       = 3
	DefaultApology           = "Sorry, cannot reply to the message."
	DefaultCannedFile        = "messages.txt"
	DefaultCannedPlaceholder = "..."
	DefaultTitle             = "Discord Bot"

	DefaultDBPath      = "storage.db"
	DefaultDBRetention = 7 * 24 * time.Hour
)

// Provider endpoint and model defaults, applied when the config leaves them empty.
var (
	providerBaseURLs = map[string]string{
		ProviderOpenRouter: "https://openrouter.ai/api/v1",
		ProviderOpenAI:     "https://api.openai.com/v1",
	}
	// providerKeyEnv names the environment variable holding each provider's API
	// key, used when generation.api_key is set nowhere else.
	providerKeyEnv = map[string]string{
		ProviderOpenRouter: "OPENROUTER_API_KEY",
		ProviderOpenAI:     "OPENAI_API_KEY",
		ProviderGemini:     "GEMINI_API_KEY",
	}
	providerModels = map[string]string{
		ProviderOpenRouter: "google/gemini-3-flash-preview",
		ProviderOpenAI:     "gpt-4o-mini",
		ProviderGemini:     "gemini-2.0-flash",
	}
)

var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"discord.token":      "",
	"discord.token_type": DefaultDiscordTokenType,
	"discord.channel_id": "",
	"discord.timeout":    DefaultDiscordTimeout,

	"loop.read_delay":           DefaultReadDelay,
	"loop.reply_delay":          DefaultReplyDelay,
	"loop.language":             DefaultLanguage,
	"loop.reply_mode":           true,
	"loop.skip_system_messages": true,

	"generation.source":             DefaultSource,
	"generation.provider":           DefaultProvider,
	"generation.api_key":            "",
	"generation.base_url":           "",
	"generation.model":              "",
	"generation.timeout":            DefaultTimeout,
	"generation.max_attempts":       DefaultMaxAttempts,
	"generation.abort_on_error":     false,
	"generation.apology":            DefaultApology,
	"generation.referer":            "",
	"generation.title":              DefaultTitle,
	"generation.canned_file":        DefaultCannedFile,
	"generation.canned_placeholder": DefaultCannedPlaceholder,

	"database.enabled":   true,
	"database.path":      DefaultDBPath,
	"database.retention": DefaultDBRetention,

	"scheduler.tasks.journal_prune.enabled":    true,
	"scheduler.tasks.journal_prune.schedule":   "0 0 4 * * *",
	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 30 4 * * 0",
}

// applyProviderDefaults fills the provider base URL and model when unset.
func applyProviderDefaults(g *GenerationConfig) {
	if g.BaseURL == "" {
		g.BaseURL = providerBaseURLs[g.Provider]
	}
	if g.Model == "" {
		g.Model = providerModels[g.Provider]
	}
}

// Package config provides configuration loading, validation, and management
// for the auto-reply bot. Values come from defaults, an optional YAML file,
// environment variables (including .env files) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned (wrapped) when the loaded configuration is invalid.
var ErrValidation = errors.New("invalid configuration")

// Generation sources.
const (
	SourceAPI    = "api"
	SourceCanned = "canned"
)

// Generation providers for the api source.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// Discord token types.
const (
	TokenTypeUser = "user"
	TokenTypeBot  = "bot"
)

// Config is the root configuration structure.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"log"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	Loop       LoopConfig       `mapstructure:"loop"`
	Generation GenerationConfig `mapstructure:"generation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DiscordConfig holds the messaging platform credentials and REST settings.
type DiscordConfig struct {
	Token     string        `mapstructure:"token"      validate:"required"`
	TokenType string        `mapstructure:"token_type" validate:"oneof=user bot"`
	ChannelID string        `mapstructure:"channel_id" validate:"required,number"`
	Timeout   time.Duration `mapstructure:"timeout"    validate:"min=1s,max=5m"`
}

// LoopConfig holds the poll loop parameters that used to be asked interactively.
type LoopConfig struct {
	ReadDelay          time.Duration `mapstructure:"read_delay"           validate:"min=0"`
	ReplyDelay         time.Duration `mapstructure:"reply_delay"          validate:"min=0"`
	Language           string        `mapstructure:"language"             validate:"oneof=id en"`
	ReplyMode          bool          `mapstructure:"reply_mode"`
	SkipSystemMessages bool          `mapstructure:"skip_system_messages"`
}

// GenerationConfig selects and configures the reply text source.
type GenerationConfig struct {
	Source       string        `mapstructure:"source"        validate:"oneof=api canned"`
	Provider     string        `mapstructure:"provider"      validate:"oneof=openrouter openai gemini"`
	APIKey       string        `mapstructure:"api_key"       validate:"required_if=Source api"`
	BaseURL      string        `mapstructure:"base_url"      validate:"omitempty,url"`
	Model        string        `mapstructure:"model"`
	Temperature  *float32      `mapstructure:"temperature"   validate:"omitempty,min=0,max=2"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"min=1s,max=10m"`
	MaxAttempts  int           `mapstructure:"max_attempts"  validate:"min=1,max=10"`
	AbortOnError bool          `mapstructure:"abort_on_error"`
	Apology      string        `mapstructure:"apology"       validate:"required"`
	Referer      string        `mapstructure:"referer"`
	Title        string        `mapstructure:"title"`

	CannedFile        string `mapstructure:"canned_file"        validate:"required_if=Source canned"`
	CannedPlaceholder string `mapstructure:"canned_placeholder" validate:"required"`
}

// DatabaseConfig configures the reply journal.
type DatabaseConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Path      string        `mapstructure:"path"      validate:"required_if=Enabled true"`
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// SchedulerConfig holds configuration for scheduled maintenance tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig defines a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Validate checks struct tags and the rules that span several sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

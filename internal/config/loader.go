package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable bound through AutomaticEnv
// (e.g. BOT_LOOP_READ_DELAY).
const EnvPrefix = "BOT"

// credentialEnv lists the plain environment variable names accepted for the
// credential keys, in lookup order, next to their prefixed form. The provider
// API key variables are resolved after unmarshalling, see providerKeyEnv.
var credentialEnv = map[string][]string{
	"discord.token":      {"BOT_DISCORD_TOKEN", "DISCORD_TOKEN"},
	"generation.api_key": {"BOT_GENERATION_API_KEY"},
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"channel":     "discord.channel_id",
	"token-type":  "discord.token_type",
	"language":    "loop.language",
	"read-delay":  "loop.read_delay",
	"reply-delay": "loop.reply_delay",
	"reply-mode":  "loop.reply_mode",
	"source":      "generation.source",
	"provider":    "generation.provider",
	"model":       "generation.model",
	"canned-file": "generation.canned_file",
	"db-path":     "database.path",
	"log-level":   "log.level",
	"log-json":    "log.json",
}

// LoadConfig builds the configuration from, lowest precedence first: defaults,
// the YAML file at path (a missing file is not an error), environment
// variables, and the changed flags in flags (which may be nil).
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper(path, flags)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.Discord.ChannelID = strings.TrimSpace(cfg.Discord.ChannelID)
	cfg.Loop.Language = strings.ToLower(strings.TrimSpace(cfg.Loop.Language))
	applyProviderDefaults(&cfg.Generation)

	// Only the configured provider's own key variable is consulted, so a second
	// provider's key in the environment never leaks into this client.
	if cfg.Generation.APIKey == "" {
		if env, ok := providerKeyEnv[cfg.Generation.Provider]; ok {
			cfg.Generation.APIKey = strings.TrimSpace(os.Getenv(env))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabaseConfig resolves only the database section from the same sources
// as LoadConfig. Nothing else is validated, so it works without credentials.
func LoadDatabaseConfig(path string, flags *pflag.FlagSet) (*DatabaseConfig, error) {
	v, err := newViper(path, flags)
	if err != nil {
		return nil, err
	}

	// Keys are read one by one: a parent-level UnmarshalKey would miss values
	// coming from env and bound flags.
	db := DatabaseConfig{
		Enabled:   v.GetBool("database.enabled"),
		Path:      strings.TrimSpace(v.GetString("database.path")),
		Retention: v.GetDuration("database.retention"),
	}
	if db.Path == "" {
		return nil, fmt.Errorf("%w: database.path is empty", ErrValidation)
	}
	return &db, nil
}

// newViper layers defaults, the optional YAML file, the environment and the
// bound flags into a fresh viper instance.
func newViper(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range credentialEnv {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// A missing file is fine: defaults, env and flags still apply.
		slog.Debug("Config file not found, using defaults and environment", "path", path)
	} else {
		slog.Debug("Config file loaded", "path", v.ConfigFileUsed())
	}
	return v, nil
}

package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/generator/gemini"
	"github.com/edgard/autoreply/internal/generator/openrouter"
)

// New returns the Generator selected by cfg.Source. For the api source the
// completer for cfg.Provider is created as well.
func New(ctx context.Context, cfg config.GenerationConfig, log *slog.Logger) (Generator, error) {
	switch cfg.Source {
	case config.SourceCanned:
		return NewCannedGenerator(cfg.CannedFile, cfg.CannedPlaceholder, log), nil
	case config.SourceAPI:
		completer, err := NewCompleter(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewAPIGenerator(completer, cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown generation source %q", cfg.Source)
	}
}

// NewCompleter creates the text-generation client for cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.GenerationConfig, log *slog.Logger) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, config.ProviderOpenAI:
		return openrouter.NewClient(openrouter.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			Referer:     cfg.Referer,
			Title:       cfg.Title,
		}, log)
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, log)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

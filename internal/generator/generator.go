// Package generator produces reply text for incoming channel messages, either
// through a remote text-generation endpoint or from a file of canned lines.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/logger"
	"github.com/edgard/autoreply/internal/session"
)

// ErrNoReply is returned when generation was aborted and nothing should be sent.
var ErrNoReply = errors.New("no reply generated")

// Generator turns the triggering text into a single reply string.
type Generator interface {
	Generate(ctx context.Context, state *session.State, text, language string) (string, error)
}

// Completer sends one prompt to a text-generation endpoint and returns its answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// APIGenerator wraps a Completer with the duplicate-suppression policy: a reply
// identical to the last accepted one is discarded and requested again, up to
// maxAttempts calls in total.
type APIGenerator struct {
	completer    Completer
	log          *slog.Logger
	maxAttempts  int
	abortOnError bool
	apology      string
}

// NewAPIGenerator creates an APIGenerator from the generation config.
func NewAPIGenerator(completer Completer, cfg config.GenerationConfig, log *slog.Logger) *APIGenerator {
	if log == nil {
		log = slog.Default()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = config.DefaultMaxAttempts
	}
	apology := cfg.Apology
	if apology == "" {
		apology = config.DefaultApology
	}
	return &APIGenerator{
		completer:    completer,
		log:          log.With("component", "api_generator"),
		maxAttempts:  attempts,
		abortOnError: cfg.AbortOnError,
		apology:      apology,
	}
}

// Generate builds the prompt for text and language and asks the completer for a
// reply. Every call, failed or duplicate, consumes one attempt; with abortOnError
// set the first failed call returns ErrNoReply instead. When attempts run out the
// previous accepted reply is returned, or the apology when there is none.
func (g *APIGenerator) Generate(ctx context.Context, state *session.State, text, language string) (string, error) {
	prompt := BuildPrompt(text, language)

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		reply, err := g.completer.Complete(ctx, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			g.log.WarnContext(ctx, "Request failed", "attempt", attempt, "max_attempts", g.maxAttempts, "error", err)
			if g.abortOnError {
				return "", fmt.Errorf("%w: %w", ErrNoReply, err)
			}
			continue
		}

		reply = Sanitize(reply)
		if reply == "" {
			g.log.WarnContext(ctx, "Generation returned empty text, trying again", "attempt", attempt)
			continue
		}

		if state.IsDuplicate(reply) {
			g.log.WarnContext(ctx, "Generation gave the same reply, trying again", "attempt", attempt)
			continue
		}

		state.AcceptReply(reply)
		g.log.DebugContext(ctx, "Generated reply", "attempt", attempt, "reply_preview", logger.Preview(reply, 80))
		return reply, nil
	}

	if last, ok := state.LastReply(); ok {
		g.log.InfoContext(ctx, "Attempts exhausted, reusing last reply", "max_attempts", g.maxAttempts)
		return last, nil
	}
	g.log.InfoContext(ctx, "Attempts exhausted, using apology", "max_attempts", g.maxAttempts)
	return g.apology, nil
}

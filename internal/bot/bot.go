// Package bot runs the auto-reply loop and its scheduled maintenance tasks.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/autoreply/internal/logger"
)

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	loop      *Loop
	scheduler *Scheduler
}

// NewBot creates the orchestrator. scheduler may be nil when no tasks are needed.
func NewBot(log *slog.Logger, loop *Loop, scheduler *Scheduler) *Bot {
	if log == nil {
		log = logger.Discard()
	}
	return &Bot{
		logger:    log.With("component", "bot_orchestrator"),
		loop:      loop,
		scheduler: scheduler,
	}
}

// Run starts the loop and the scheduler and blocks until ctx is cancelled or the
// loop fails. Cancellation is a clean shutdown and returns nil.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting reply loop...")
		err := b.loop.Run(gCtx)
		b.logger.Info("Reply loop stopped.")

		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reply loop failed: %w", err)
		}
		return err
	})

	if b.scheduler != nil {
		g.Go(func() error {
			b.logger.Info("Starting scheduler...")
			if err := b.scheduler.Start(); err != nil {
				b.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")

			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

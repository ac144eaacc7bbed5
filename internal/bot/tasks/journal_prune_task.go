package tasks

import (
	"context"
	"fmt"
	"time"
)

// newJournalPruneTask removes journal entries older than database.retention.
// A zero retention keeps everything.
func newJournalPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "journal_prune")
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return func(ctx context.Context) error {
		retention := deps.Config.Database.Retention
		if retention <= 0 {
			log.DebugContext(ctx, "Journal retention disabled, nothing to prune")
			return nil
		}

		cutoff := now().Add(-retention)
		removed, err := deps.Store.PruneExchanges(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Journal prune failed", "error", err)
			return fmt.Errorf("journal prune failed: %w", err)
		}

		log.InfoContext(ctx, "Pruned journal", "removed", removed, "cutoff", cutoff)
		return nil
	}
}

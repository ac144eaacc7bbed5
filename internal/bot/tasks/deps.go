// Package tasks implements the scheduled maintenance tasks for the reply journal.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

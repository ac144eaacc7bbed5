package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/autoreply/internal/logger"
)

// Store defines the reply journal operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveExchange appends a journal entry. CreatedAt is set when zero.
	SaveExchange(ctx context.Context, exchange *Exchange) error

	// CountExchanges returns the number of journal entries.
	CountExchanges(ctx context.Context) (int, error)

	// RecentExchanges returns up to limit entries, newest first.
	RecentExchanges(ctx context.Context, limit int) ([]Exchange, error)

	// PruneExchanges deletes entries created before the cutoff and returns how many were removed.
	PruneExchanges(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by sqlx.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveExchange(ctx context.Context, exchange *Exchange) error {
	if exchange == nil {
		return fmt.Errorf("cannot save nil exchange")
	}
	if exchange.ChannelID == "" || exchange.MessageID == "" {
		return fmt.Errorf("exchange must have a channel_id and message_id")
	}
	if exchange.Source == "" {
		return fmt.Errorf("exchange must have a source")
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	} else {
		exchange.CreatedAt = exchange.CreatedAt.UTC()
	}

	query := `
        INSERT INTO exchanges (created_at, channel_id, message_id, author_id, content, reply, source, reply_mode, sent, error)
        VALUES (:created_at, :channel_id, :message_id, :author_id, :content, :reply, :source, :reply_mode, :sent, :error);
    `

	result, err := s.db.NamedExecContext(ctx, query, exchange)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving exchange", "message_id", exchange.MessageID, "error", err)
		return fmt.Errorf("failed to save exchange for message %s: %w", exchange.MessageID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		exchange.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Exchange saved", "id", exchange.ID, "message_id", exchange.MessageID, "sent", exchange.Sent)
	return nil
}

func (s *sqlxStore) CountExchanges(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM exchanges`); err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) RecentExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var exchanges []Exchange
	query := `
        SELECT id, created_at, channel_id, message_id, author_id, content, reply, source, reply_mode, sent, error
        FROM exchanges
        ORDER BY id DESC
        LIMIT ?
    `

	err := s.db.SelectContext(ctx, &exchanges, query, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching exchanges", "error", err)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recent exchanges: %w", err)
	}
	return exchanges, nil
}

func (s *sqlxStore) PruneExchanges(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune exchanges: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	s.logger.DebugContext(ctx, "Pruned exchanges", "removed", removed, "before", before)
	return removed, nil
}

// RunSQLMaintenance executes VACUUM, which SQLite requires outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM cannot run inside a transaction, so it goes straight to the pool
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/eduagents/tutord/internal/domain"
)

// Repository defines the interface for persisting learner and history data.
type Repository interface {
	// GetLearner retrieves a learner by identity, or nil when unknown.
	GetLearner(ctx context.Context, identity string) (*domain.Learner, error)

	// UpsertLearner creates or updates a learner record.
	UpsertLearner(ctx context.Context, learner *domain.Learner) error

	// UpdateLastSeen updates the last_seen_at timestamp for a learner.
	UpdateLastSeen(ctx context.Context, identity string, lastSeen time.Time) error

	// AppendHistory durably records one graded answer.
	AppendHistory(ctx context.Context, identity string, entry domain.HistoryEntry) error

	// GetHistory returns up to limit most recent history entries for a
	// learner, oldest first.
	GetHistory(ctx context.Context, identity string, limit int) ([]domain.HistoryEntry, error)

	// PruneHistory removes history entries older than the retention window
	// and returns the number deleted.
	PruneHistory(ctx context.Context, retention time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

package store

import (
	"context"
	"log/slog"
	"time"
)

const pruneWorkerInterval = 1 * time.Hour

// StartPruneWorker runs a background goroutine that periodically deletes
// history rows older than the retention window. A retention of zero or less
// disables pruning.
func StartPruneWorker(ctx context.Context, repo Repository, retention time.Duration) {
	if retention <= 0 {
		slog.Info("History prune worker disabled")
		return
	}

	ticker := time.NewTicker(pruneWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("History prune worker started", "interval", pruneWorkerInterval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				pruneHistory(ctx, repo, retention)
			case <-ctx.Done():
				slog.Info("History prune worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func pruneHistory(ctx context.Context, repo Repository, retention time.Duration) {
	deleted, err := repo.PruneHistory(ctx, retention)
	if err != nil {
		slog.Error("History prune failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Pruned old history entries", "count", deleted)
	}
}

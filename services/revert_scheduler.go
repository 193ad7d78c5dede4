package services

import (
	"context"
	"log/slog"
	"time"
)

// StaleReverter batch-reverts idle human-mode sessions; implemented by
// ChatStateStore.
type StaleReverter interface {
	RevertStale(ctx context.Context, cutoff time.Time) ([]string, int64, error)
}

// StartRevertScheduler starts a background goroutine that periodically reverts
// human-mode sessions idle past the timeout window back to automated mode.
func StartRevertScheduler(ctx context.Context, store StaleReverter, interval, timeout time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Mode revert scheduler stopped")
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				userIDs, count, err := store.RevertStale(sweepCtx, time.Now().Add(-timeout))
				if err != nil {
					slog.Error("Failed to revert stale sessions", "error", err)
				} else if count > 0 {
					slog.Info("Stale human sessions reverted", "count", count, "userIDs", userIDs)
				}
				cancel()
			}
		}
	}()

	slog.Info("Mode revert scheduler started", "interval", interval, "timeout", timeout)
}

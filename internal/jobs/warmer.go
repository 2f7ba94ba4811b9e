package jobs

import (
	"context"
	"log/slog"
	"time"

	"studiolinks/internal/directory"
)

// Refresher rebuilds the link directory snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*directory.Snapshot, error)
}

// Warmer refreshes the link directory in the background so request paths
// rarely find an expired snapshot.
type Warmer struct {
	dir      Refresher
	interval time.Duration
}

// NewWarmer creates a new directory warmer.
func NewWarmer(dir Refresher, interval time.Duration) *Warmer {
	return &Warmer{dir: dir, interval: interval}
}

// Start begins the background refresh loop and blocks until ctx is done.
func (w *Warmer) Start(ctx context.Context) {
	slog.Info("directory warmer started", "interval", w.interval)

	// Run immediately on start
	w.warm(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("directory warmer stopped")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

// warm refreshes once. Failures leave the current snapshot in place; the
// directory logs the fetch error itself.
func (w *Warmer) warm(ctx context.Context) {
	snap, err := w.dir.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("directory warm failed", "error", err)
		}
		return
	}
	slog.Debug("directory warmed", "links", len(snap.Links), "expires_at", snap.ExpiresAt)
}

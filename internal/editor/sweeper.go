package editor

import (
	"context"
	"log/slog"
	"time"
)

// Sweep discards drafts untouched since before now minus the idle TTL and
// returns how many were dropped.
func (e *Editor) Sweep(now time.Time) int {
	cutoff := now.Add(-e.idleTTL)

	e.mu.Lock()
	var stale []string
	for handle, ent := range e.drafts {
		// In use, so not idle.
		if !ent.mu.TryLock() {
			continue
		}
		if ent.touched.Before(cutoff) {
			ent.closed = true
			delete(e.drafts, handle)
			stale = append(stale, handle)
		}
		ent.mu.Unlock()
	}
	e.mu.Unlock()

	if len(stale) > 0 {
		e.logger.Info("idle drafts discarded", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (e *Editor) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(e.now())
		}
	}
}

package editor

import (
	"log/slog"
	"time"
)

// Option configures an Editor.
type Option func(*Editor)

// WithNotifier sets the callback invoked after a post is saved.
func WithNotifier(fn NotifyFunc) Option {
	return func(e *Editor) {
		if fn != nil {
			e.notify = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithIdleTTL sets how long an untouched draft survives the sweeper.
func WithIdleTTL(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.idleTTL = d
		}
	}
}

// WithMaxAssetBytes caps the size of an uploaded asset.
func WithMaxAssetBytes(n int64) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithIDGenerator replaces the generator of new post ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// Package auth provides password accounts and the signed session tokens that
// gate every write to the post collection.
package auth

import "context"

// Session identifies the signed-in author.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

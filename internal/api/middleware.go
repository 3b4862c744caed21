// Package api implements the canvas REST API using chi.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/canvas/internal/auth"
)

// queryTokenParam carries the session token for EventSource clients, which
// cannot set headers.
const queryTokenParam = "access_token"

type queryTokenKey struct{}

// HideQueryToken moves the access_token query parameter out of the request
// URL into the context, so request logging never sees it. Mount it before
// the request logger.
func HideQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(queryTokenParam) {
			next.ServeHTTP(w, r)
			return
		}
		raw := q.Get(queryTokenParam)
		q.Del(queryTokenParam)

		r2 := r.WithContext(context.WithValue(r.Context(), queryTokenKey{}, raw))
		u := *r.URL
		u.RawQuery = q.Encode()
		r2.URL = &u
		r2.RequestURI = u.RequestURI()
		next.ServeHTTP(w, r2)
	})
}

// Authenticate attaches the session carried by a Bearer token to the request
// context. Requests without a valid token pass through anonymously; routes
// that need a session sit behind RequireSession.
func Authenticate(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withTokenSession(tokens, r, bearerToken(r)))
		})
	}
}

// AuthenticateQuery is Authenticate for the event stream: it also accepts the
// token from the access_token query parameter.
func AuthenticateQuery(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.FromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := r.Context().Value(queryTokenKey{}).(string)
			if !ok {
				raw = r.URL.Query().Get(queryTokenParam)
			}
			next.ServeHTTP(w, withTokenSession(tokens, r, raw))
		})
	}
}

func withTokenSession(tokens *auth.TokenIssuer, r *http.Request, raw string) *http.Request {
	if raw == "" {
		return r
	}
	sess, err := tokens.Parse(raw)
	if err != nil {
		slog.Debug("ignoring invalid session token", slog.String("error", err.Error()))
		return r
	}
	return r.WithContext(auth.WithSession(r.Context(), sess))
}

// RequireSession rejects requests that carry no session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/postservice"
)

// Deps are the services the API routes call into.
type Deps struct {
	Auth   *auth.Service
	Editor *editor.Editor
	Posts  *postservice.Service
	// Events, if non-nil, is mounted at GET /events behind the session check.
	// Only this route accepts the token as a query parameter.
	Events http.Handler
	// MaxUploadBytes caps multipart uploads; zero means 10 MB.
	MaxUploadBytes int64
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	ah := NewAuthHandler(d.Auth)
	ph := NewPostHandler(d.Posts)
	dh := NewDraftHandler(d.Editor, d.Posts, d.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(Authenticate(d.Auth.Tokens()))

	// Account.
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	// Public viewer.
	r.Get("/posts/{id}", ph.GetPost)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession)

		r.Get("/auth/me", ah.Me)

		// Dashboard.
		r.Get("/posts", ph.ListPosts)
		r.Delete("/posts/{id}", ph.DeletePost)

		// Editor.
		r.Post("/drafts", dh.CreateDraft)
		r.Get("/drafts/{id}", dh.GetDraft)
		r.Patch("/drafts/{id}", dh.UpdateDraft)
		r.Delete("/drafts/{id}", dh.DiscardDraft)
		r.Post("/drafts/{id}/tags", dh.CommitTag)
		r.Delete("/drafts/{id}/tags/{index}", dh.RemoveTag)
		r.Post("/drafts/{id}/assets", dh.UploadAsset)
		r.Post("/drafts/{id}/preview", dh.Preview)
		r.Post("/drafts/{id}/save", dh.SaveDraft)
	})

	if d.Events != nil {
		r.With(AuthenticateQuery(d.Auth.Tokens()), RequireSession).Get("/events", d.Events.ServeHTTP)
	}

	return r
}

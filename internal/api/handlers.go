package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/postservice"
)

// PostHandler serves the dashboard and the public viewer JSON.
type PostHandler struct {
	svc *postservice.Service
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *postservice.Service) *PostHandler {
	return &PostHandler{svc: svc}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, most recently updated first
//	@Tags			posts
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive title or tag filter"
//	@Success		200	{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: len(items)})
}

// GetPost handles GET /api/posts/{id}. The response carries an ETag and
// honours If-None-Match.
//
//	@Summary		Get a post with rendered HTML
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	PostDetail
//	@Success		304	"Not modified"
//	@Failure		404	{object}	errResponse
//	@Router			/posts/{id} [get]
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get post", err)
		return
	}

	etag := `"` + post.Checksum + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == post.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{id}.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Param			id	path	string	true	"Post id"
//	@Success		204	"Post deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [delete]
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete post", err)
		return
	}
	if sess := auth.FromContext(r.Context()); sess != nil {
		slog.Info("post deleted", slog.String("post_id", id), slog.String("user_id", sess.UserID))
	}
	w.WriteHeader(http.StatusNoContent)
}

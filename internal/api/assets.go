package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/storage"
)

// AssetHandler serves uploaded images from the blob store. It is mounted
// outside /api for the fs backend; S3 assets are served by the bucket.
type AssetHandler struct {
	store storage.Provider
}

// NewAssetHandler creates a handler reading from store.
func NewAssetHandler(store storage.Provider) *AssetHandler {
	return &AssetHandler{store: store}
}

// ServeFile handles GET /assets/*.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "invalid asset path", http.StatusBadRequest)
		return
	}

	rc, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("open asset failed", slog.String("key", key), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", editor.ImageContentType(key))
	w.Header().Set("Content-Security-Policy", "sandbox")
	// Keys carry an upload timestamp and are never overwritten.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("serve asset interrupted", slog.String("key", key), slog.String("error", err.Error()))
	}
}

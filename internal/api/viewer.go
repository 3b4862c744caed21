package api

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/postservice"
)

var pageTmpl = template.Must(template.New("post").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{max-width:46rem;margin:2rem auto;padding:0 1rem;font-family:system-ui,sans-serif;line-height:1.6;color:#1f2328}
img{max-width:100%}
pre{padding:1rem;overflow-x:auto;border-radius:6px}
.tags span{display:inline-block;margin-right:.4rem;padding:.1rem .6rem;border-radius:1rem;background:#eef1f5;font-size:.85rem}
time{color:#656d76;font-size:.9rem}
{{.CSS}}
</style>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
<time datetime="{{.Updated}}">{{.UpdatedHuman}}</time>
{{if .Tags}}<p class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</p>{{end}}
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title        string
	Tags         []string
	Updated      string
	UpdatedHuman string
	Body         template.HTML
	CSS          template.CSS
}

// ViewerHandler renders a post as a standalone HTML page at /p/{id}.
type ViewerHandler struct {
	posts *postservice.Service
	css   template.CSS
}

// NewViewerHandler creates a viewer; css is inlined into every page.
func NewViewerHandler(posts *postservice.Service, css string) *ViewerHandler {
	return &ViewerHandler{posts: posts, css: template.CSS(css)} //nolint:gosec // generated by chroma
}

// ServePost handles GET /p/{id}.
func (h *ViewerHandler) ServePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("view post failed", slog.String("id", id), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := `"` + post.Checksum + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTmpl.Execute(w, pageData{
		Title:        post.Title,
		Tags:         post.Tags,
		Updated:      post.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedHuman: post.UpdatedAt.UTC().Format("January 2, 2006"),
		Body:         template.HTML(post.HTML), //nolint:gosec // goldmark output with raw HTML disabled
		CSS:          h.css,
	})
	if err != nil {
		slog.Error("render page failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}

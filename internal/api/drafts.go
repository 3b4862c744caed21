package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/postservice"
)

const defaultMaxUpload = 10 << 20 // 10 MB

// DraftHandler exposes the editor over HTTP. Each route addresses an open
// draft by its handle.
type DraftHandler struct {
	editor    *editor.Editor
	posts     *postservice.Service
	maxUpload int64
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(ed *editor.Editor, posts *postservice.Service, maxUpload int64) *DraftHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &DraftHandler{editor: ed, posts: posts, maxUpload: maxUpload}
}

// CreateDraft handles POST /api/drafts.
//
//	@Summary		Open a draft for a new post, or for an existing one when post_id is set
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDraftRequest	false	"Post to edit"
//	@Success		201		{object}	DraftView
//	@Security		BearerAuth
//	@Router			/drafts [post]
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	v, err := h.editor.Open(r.Context(), req.PostID)
	if err != nil {
		writeError(w, "open draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetDraft handles GET /api/drafts/{id}.
//
//	@Summary		Current draft state
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft handle"
//	@Success		200	{object}	DraftView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [get]
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.editor.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get draft", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateDraft handles PATCH /api/drafts/{id}.
//
//	@Summary		Edit title, body or the pending tag text
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Draft handle"
//	@Param			body	body		UpdateDraftRequest	true	"Fields to replace"
//	@Success		200		{object}	DraftView
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [patch]
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateDraftRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	v, err := h.editor.Update(chi.URLParam(r, "id"), func(d *draft.Draft) error {
		if req.Title != nil {
			d.SetTitle(*req.Title)
		}
		if req.Body != nil {
			d.SetBody(*req.Body)
		}
		if req.PendingTag != nil {
			d.SetPendingTag(*req.PendingTag)
		}
		return nil
	})
	if err != nil {
		writeError(w, "update draft", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CommitTag handles POST /api/drafts/{id}/tags. Rejected tags are not an
// error; the returned view is unchanged.
//
//	@Summary		Commit a tag, or the pending tag text when no tag is given
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Draft handle"
//	@Param			body	body		CommitTagRequest	false	"Tag"
//	@Success		200		{object}	DraftView
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/tags [post]
func (h *DraftHandler) CommitTag(w http.ResponseWriter, r *http.Request) {
	var req CommitTagRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	v, err := h.editor.AddTag(chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		writeError(w, "commit tag", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RemoveTag handles DELETE /api/drafts/{id}/tags/{index}.
//
//	@Summary		Remove the tag at index
//	@Tags			drafts
//	@Produce		json
//	@Param			id		path		string	true	"Draft handle"
//	@Param			index	path		int		true	"Zero-based tag index"
//	@Success		200		{object}	DraftView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/tags/{index} [delete]
func (h *DraftHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	v, err := h.editor.RemoveTag(chi.URLParam(r, "id"), index)
	if err != nil {
		writeError(w, "remove tag", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UploadAsset handles POST /api/drafts/{id}/assets (multipart/form-data,
// field "file").
//
//	@Summary		Upload an image and append it to the draft body
//	@Tags			drafts
//	@Accept			mpfd
//	@Produce		json
//	@Param			id		path		string	true	"Draft handle"
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	AssetUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/assets [post]
func (h *DraftHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	// The stored type is detected from the bytes; the part's declared type is ignored.
	asset, v, err := h.editor.UploadAsset(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeError(w, "upload asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, AssetUploadResponse{
		URL:      asset.URL,
		Markdown: draft.AssetEmbed(asset.URL),
		Size:     asset.Size,
		Draft:    v,
	})
}

// Preview handles POST /api/drafts/{id}/preview.
//
//	@Summary		Render the draft body as HTML
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft handle"
//	@Success		200	{object}	PreviewResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/preview [post]
func (h *DraftHandler) Preview(w http.ResponseWriter, r *http.Request) {
	v, err := h.editor.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "preview draft", err)
		return
	}
	html, err := h.posts.Preview(v.Body)
	if err != nil {
		writeError(w, "preview draft", err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{HTML: html})
}

// SaveDraft handles POST /api/drafts/{id}/save. On success the draft is
// closed and the stored post is returned.
//
//	@Summary		Save the draft as a post
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft handle"
//	@Success		200	{object}	models.Post
//	@Failure		401	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/save [post]
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	post, err := h.editor.Save(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "save draft", err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DiscardDraft handles DELETE /api/drafts/{id}.
//
//	@Summary		Close a draft without saving
//	@Tags			drafts
//	@Param			id	path	string	true	"Draft handle"
//	@Success		204	"Draft discarded"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [delete]
func (h *DraftHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.Discard(chi.URLParam(r, "id")); err != nil {
		writeError(w, "discard draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

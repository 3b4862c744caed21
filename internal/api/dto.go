package api

import (
	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/models"
	"github.com/starford/canvas/internal/postservice"
)

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Email    string `json:"email" example:"me@example.com" validate:"required"`
	Password string `json:"password" example:"secret123" validate:"required"`
}

// UserResponse describes an account.
type UserResponse struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email" example:"me@example.com" validate:"required"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token  string `json:"token" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required"`
}

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PostListResponse wraps the dashboard listing.
type PostListResponse struct {
	Posts []models.PostSummary `json:"posts" validate:"required"`
	Total int                  `json:"total" example:"42" validate:"required"`
}

// DraftView is the editor state returned by every draft route.
type DraftView = draft.View

// CreateDraftRequest opens a draft; an empty PostID starts a new post.
type CreateDraftRequest struct {
	PostID string `json:"post_id,omitempty"`
}

// UpdateDraftRequest replaces the fields that are present.
type UpdateDraftRequest struct {
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	PendingTag *string `json:"pending_tag,omitempty"`
}

// CommitTagRequest commits Tag, or the pending buffer when Tag is empty.
type CommitTagRequest struct {
	Tag string `json:"tag,omitempty" example:"travel"`
}

// AssetUploadResponse is returned after an image upload.
type AssetUploadResponse struct {
	URL      string    `json:"url" example:"/assets/images/1718000000000-photo.png" validate:"required"`
	Markdown string    `json:"markdown" example:"![alt text](/assets/images/1718000000000-photo.png)" validate:"required"`
	Size     int64     `json:"size" example:"12345"`
	Draft    DraftView `json:"draft" validate:"required"`
}

// PreviewResponse carries the rendered draft body.
type PreviewResponse struct {
	HTML string `json:"html" validate:"required"`
}

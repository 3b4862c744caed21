// Package postservice serves the dashboard listing and the public viewer.
package postservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/canvas/internal/checksum"
	"github.com/starford/canvas/internal/models"
)

// Event kinds passed to the notifier.
const EventDeleted = "deleted"

// Store is the subset of the document store the service reads and deletes through.
type Store interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Renderer turns markdown into HTML.
type Renderer interface {
	HTML(markdown string) (string, error)
}

// PostDetail is a post with its rendered body.
type PostDetail struct {
	models.Post
	HTML     string `json:"html"`
	Checksum string `json:"checksum"`
}

// Service coordinates the post store and the renderer.
type Service struct {
	store  Store
	render Renderer
	notify func(kind, postID string)
}

// NewService creates a new post service. notify may be nil.
func NewService(store Store, render Renderer, notify func(kind, postID string)) *Service {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Service{store: store, render: render, notify: notify}
}

// List returns every post, most recently updated first. A non-empty query
// keeps posts whose title or any tag contains it, case-insensitively.
func (s *Service) List(ctx context.Context, query string) ([]models.PostSummary, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	items := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		if q != "" && !matches(p, q) {
			continue
		}
		items = append(items, p.Summary())
	}
	return items, nil
}

func matches(p *models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Get returns a post with its rendered HTML. A missing post yields
// apperr.ErrNotFound from the store.
func (s *Service) Get(ctx context.Context, id string) (*PostDetail, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := s.render.HTML(p.Content)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &PostDetail{
		Post:     *p,
		HTML:     html,
		Checksum: etag(p),
	}, nil
}

// Delete removes a post unconditionally.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.notify(EventDeleted, id)
	return nil
}

// Preview renders a draft body for the editor's preview tab.
func (s *Service) Preview(markdown string) (string, error) {
	return s.render.HTML(markdown)
}

func etag(p *models.Post) string {
	fields := []string{p.UpdatedAt.UTC().Format(time.RFC3339Nano), p.Title, p.Content}
	return checksum.Fields(append(fields, p.Tags...)...)
}

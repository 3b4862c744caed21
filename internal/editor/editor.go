// Package editor keeps the drafts that are open for editing, serializes the
// operations applied to each one and moves them to and from storage.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/models"
)

// Event kinds passed to the notifier.
const (
	EventSaved = "saved"
)

// PostStore loads and stores whole post records.
type PostStore interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	PutPost(ctx context.Context, p *models.Post) error
}

// AssetStore keeps uploaded binaries and resolves their public locator.
type AssetStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NotifyFunc is called after a post changed, with the event kind and post id.
type NotifyFunc func(kind, postID string)

type entry struct {
	mu      sync.Mutex
	d       *draft.Draft
	touched time.Time
	closed  bool
}

// Editor is the registry of open drafts. Each draft is addressed by an opaque
// handle and mutated by one operation at a time.
type Editor struct {
	posts  PostStore
	assets AssetStore
	notify NotifyFunc
	logger *slog.Logger

	now      func() time.Time
	newID    func() string
	idleTTL  time.Duration
	maxBytes int64

	mu     sync.Mutex
	drafts map[string]*entry
}

// New creates an editor backed by posts and assets.
func New(posts PostStore, assets AssetStore, opts ...Option) *Editor {
	e := &Editor{
		posts:    posts,
		assets:   assets,
		notify:   func(string, string) {},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
		idleTTL:  24 * time.Hour,
		maxBytes: 10 << 20,
		drafts:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts an editing session. An empty postID opens a blank draft in
// create mode; otherwise the post is loaded and the draft is in edit mode.
// A post that does not exist yields an empty edit draft under that id.
func (e *Editor) Open(ctx context.Context, postID string) (draft.View, error) {
	var d *draft.Draft
	if postID == "" {
		d = draft.New()
	} else {
		rec, err := e.posts.GetPost(ctx, postID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return draft.View{}, fmt.Errorf("load post %s: %w", postID, err)
		}
		d = draft.Open(postID, rec)
	}

	handle := uuid.NewString()
	e.mu.Lock()
	e.drafts[handle] = &entry{d: d, touched: e.now()}
	e.mu.Unlock()

	e.logger.Debug("draft opened",
		slog.String("handle", handle),
		slog.String("mode", string(d.Mode())),
		slog.String("post_id", postID))
	return d.View(handle), nil
}

// Get returns the current state of a draft.
func (e *Editor) Get(handle string) (draft.View, error) {
	var v draft.View
	err := e.with(handle, func(d *draft.Draft) error {
		v = d.View(handle)
		return nil
	})
	return v, err
}

// Update applies fn to the draft under its lock and returns the new state.
func (e *Editor) Update(handle string, fn func(d *draft.Draft) error) (draft.View, error) {
	var v draft.View
	err := e.with(handle, func(d *draft.Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		v = d.View(handle)
		return nil
	})
	return v, err
}

// AddTag commits tag, or the pending buffer when tag is empty. Rejected tags
// leave the draft unchanged and are not an error.
func (e *Editor) AddTag(handle, tag string) (draft.View, error) {
	return e.Update(handle, func(d *draft.Draft) error {
		if tag == "" {
			d.CommitPendingTag()
		} else {
			d.AddTag(tag)
		}
		return nil
	})
}

// RemoveTag removes the tag at index.
func (e *Editor) RemoveTag(handle string, index int) (draft.View, error) {
	return e.Update(handle, func(d *draft.Draft) error {
		return d.RemoveTag(index)
	})
}

// Save persists the draft as the author in sess. Without a session nothing
// is written and apperr.ErrNoSession is returned. A new post gets a fresh id;
// an edited one keeps its id and creation time. On success the draft is
// closed; on failure it stays open and unchanged.
func (e *Editor) Save(ctx context.Context, sess *auth.Session, handle string) (*models.Post, error) {
	if sess == nil || sess.UserID == "" {
		return nil, apperr.ErrNoSession
	}

	var saved *models.Post
	err := e.withEntry(handle, func(ent *entry) error {
		d := ent.d
		id := d.ID()
		if id == "" {
			id = e.newID()
		}
		rec := d.Record(id, sess.UserID, e.now().UTC())
		if err := e.posts.PutPost(ctx, rec); err != nil {
			return fmt.Errorf("store post %s: %w", id, err)
		}
		d.MarkSaved(rec.ID, rec.CreatedAt)
		saved = rec

		// Closed before the lock is released: an operation queued behind the
		// save must fail rather than edit a draft that is already stored.
		ent.closed = true
		e.mu.Lock()
		delete(e.drafts, handle)
		e.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("post saved",
		slog.String("post_id", saved.ID),
		slog.String("author_id", saved.AuthorID),
		slog.Int("tags", len(saved.Tags)))
	e.notify(EventSaved, saved.ID)
	return saved, nil
}

// Discard closes the draft without saving.
func (e *Editor) Discard(handle string) error {
	if !e.close(handle) {
		return apperr.ErrNotFound
	}
	return nil
}

// Len returns the number of open drafts.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.drafts)
}

// with runs fn on the draft behind handle while holding its lock.
func (e *Editor) with(handle string, fn func(d *draft.Draft) error) error {
	return e.withEntry(handle, func(ent *entry) error {
		return fn(ent.d)
	})
}

// withEntry runs fn on the entry behind handle while holding its lock. A
// closed entry reports apperr.ErrNotFound.
func (e *Editor) withEntry(handle string, fn func(ent *entry) error) error {
	e.mu.Lock()
	ent, ok := e.drafts[handle]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("draft %s: %w", handle, apperr.ErrNotFound)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.closed {
		return fmt.Errorf("draft %s: %w", handle, apperr.ErrNotFound)
	}
	ent.touched = e.now()
	return fn(ent)
}

func (e *Editor) close(handle string) bool {
	e.mu.Lock()
	ent, ok := e.drafts[handle]
	delete(e.drafts, handle)
	e.mu.Unlock()
	if !ok {
		return false
	}
	ent.mu.Lock()
	ent.closed = true
	ent.mu.Unlock()
	return true
}

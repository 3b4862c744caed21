// Package draft holds the in-memory state of a post being composed and owns
// every rule for mutating it: tag chips, title/body edits and uploaded-image
// embeds. A Draft never talks to storage; the editor package loads and saves it.
package draft

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/starford/canvas/internal/models"
)

// MaxTags is the tag cap per post.
const MaxTags = 5

// AssetAltText is the alt text written for every uploaded image.
const AssetAltText = "alt text"

// ErrTagIndex is returned by RemoveTag for an index outside the tag list.
var ErrTagIndex = errors.New("draft: tag index out of range")

// Mode tells whether a draft edits an existing post or composes a new one.
// It is fixed when the draft is created.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft is a single post being composed.
type Draft struct {
	id         string
	mode       Mode
	title      string
	body       string
	tags       []string
	pendingTag string

	// createdAt is the creation time of the loaded record, zero when the
	// draft has never been persisted.
	createdAt time.Time
}

// New returns an empty draft in create mode.
func New() *Draft {
	return &Draft{mode: ModeCreate, tags: []string{}}
}

// Open returns a draft in edit mode for the post identified by id. If rec is
// nil (the post does not exist) the draft keeps the id and starts empty.
func Open(id string, rec *models.Post) *Draft {
	d := &Draft{id: id, mode: ModeEdit, tags: []string{}}
	if rec == nil {
		return d
	}
	d.title = rec.Title
	d.body = rec.Content
	if rec.Tags != nil {
		d.tags = slices.Clone(rec.Tags)
	}
	d.createdAt = rec.CreatedAt
	return d
}

// ID returns the post identifier, empty for a never-saved draft.
func (d *Draft) ID() string { return d.id }

// Mode returns the draft's mode.
func (d *Draft) Mode() Mode { return d.mode }

// Title returns the current title.
func (d *Draft) Title() string { return d.title }

// SetTitle replaces the title. No constraints apply.
func (d *Draft) SetTitle(title string) { d.title = title }

// Body returns the current markdown body.
func (d *Draft) Body() string { return d.body }

// SetBody replaces the markdown body.
func (d *Draft) SetBody(body string) { d.body = body }

// Tags returns a copy of the tag list in insertion order.
func (d *Draft) Tags() []string { return slices.Clone(d.tags) }

// PendingTag returns the tag input buffer.
func (d *Draft) PendingTag() string { return d.pendingTag }

// SetPendingTag replaces the tag input buffer without committing it.
func (d *Draft) SetPendingTag(text string) { d.pendingTag = text }

// CreatedAt returns the creation time of the loaded record, zero if none.
func (d *Draft) CreatedAt() time.Time { return d.createdAt }

// TagLimitReached reports whether no further tag can be added.
func (d *Draft) TagLimitReached() bool { return len(d.tags) >= MaxTags }

// AddTag appends the trimmed candidate and clears the pending buffer. Empty,
// duplicate (exact, case-sensitive) and over-cap candidates are ignored and
// leave the draft untouched. It reports whether the tag was added.
func (d *Draft) AddTag(candidate string) bool {
	tag := strings.TrimSpace(candidate)
	if tag == "" || slices.Contains(d.tags, tag) || len(d.tags) >= MaxTags {
		return false
	}
	d.tags = append(d.tags, tag)
	d.pendingTag = ""
	return true
}

// CommitPendingTag runs AddTag on the pending buffer.
func (d *Draft) CommitPendingTag() bool {
	return d.AddTag(d.pendingTag)
}

// ReplaceTags drops every tag and adds candidates in order under the AddTag
// rules. It reports how many were kept.
func (d *Draft) ReplaceTags(candidates []string) int {
	d.tags = d.tags[:0]
	n := 0
	for _, c := range candidates {
		if d.AddTag(c) {
			n++
		}
	}
	return n
}

// RemoveTag deletes the tag at index, shifting later tags down by one.
func (d *Draft) RemoveTag(index int) error {
	if index < 0 || index >= len(d.tags) {
		return fmt.Errorf("%w: %d (have %d)", ErrTagIndex, index, len(d.tags))
	}
	d.tags = slices.Delete(d.tags, index, index+1)
	return nil
}

// AppendAsset adds an image embed for ref at the end of the body, after a
// blank line. It never inserts at a cursor position.
func (d *Draft) AppendAsset(ref string) {
	d.body += "\n\n" + AssetEmbed(ref)
}

// AssetEmbed returns the markdown image fragment written for ref.
func AssetEmbed(ref string) string {
	return "![" + AssetAltText + "](" + ref + ")"
}

// Record builds the persisted form of the draft under id, authored by
// authorID. createdAt is kept from the loaded record and set to now for a
// post that was never saved; updatedAt is always now.
func (d *Draft) Record(id, authorID string, now time.Time) *models.Post {
	created := d.createdAt
	if created.IsZero() {
		created = now
	}
	return &models.Post{
		ID:        id,
		Title:     d.title,
		Content:   d.body,
		Tags:      d.Tags(),
		AuthorID:  authorID,
		CreatedAt: created,
		UpdatedAt: now,
	}
}

// MarkSaved records that the draft now exists under id with the given
// creation time. Later saves keep both.
func (d *Draft) MarkSaved(id string, createdAt time.Time) {
	d.id = id
	d.createdAt = createdAt
}

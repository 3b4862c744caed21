// Package models defines the domain types for canvas.
package models

import "time"

// Post is a persisted blog post as stored in the document database.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostSummary is the lightweight shape returned by dashboard listings.
type PostSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"author_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary projects a post onto its listing shape.
func (p *Post) Summary() PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Tags:      tags,
		AuthorID:  p.AuthorID,
		UpdatedAt: p.UpdatedAt,
	}
}

// Asset is an uploaded binary object and the locator it resolves at.
type Asset struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/models"
)

const postColumns = `id, title, content, tags, author_id, created_at, updated_at`

// GetPost returns the post with id, or apperr.ErrNotFound.
func (db *DB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := db.scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get post %s: %w", id, err)
	}
	return p, nil
}

// PutPost writes the whole record under p.ID, replacing any existing one.
func (db *DB) PutPost(ctx context.Context, p *models.Post) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("database: encode tags: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, tags, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			tags       = excluded.tags,
			author_id  = excluded.author_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, db.zstd.Compress([]byte(p.Content)), string(tagsJSON), p.AuthorID, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("database: put post %s: %w", p.ID, err)
	}
	return nil
}

// ListPosts returns every post, most recently updated first.
func (db *DB) ListPosts(ctx context.Context) ([]*models.Post, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("database: list posts: %w", err)
	}
	defer rows.Close()

	var out []*models.Post
	for rows.Next() {
		p, err := db.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("database: list posts: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePost removes the post with id. Deleting a missing post is not an error.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("database: delete post %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanPost(s scanner) (*models.Post, error) {
	var (
		p        models.Post
		content  []byte
		tagsJSON string
	)
	if err := s.Scan(&p.ID, &p.Title, &content, &tagsJSON, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	body, err := db.zstd.Decompress(content)
	if err != nil {
		return nil, fmt.Errorf("post %s content: %w", p.ID, err)
	}
	p.Content = string(body)
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("post %s tags: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

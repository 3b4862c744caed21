package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ImportSource links a markdown file on disk to the post it was imported as.
type ImportSource struct {
	Path     string
	PostID   string
	Checksum string
}

// GetImportSource returns the bookkeeping row for path, or nil if the file
// was never imported.
func (db *DB) GetImportSource(ctx context.Context, path string) (*ImportSource, error) {
	src := ImportSource{Path: path}
	err := db.conn.QueryRowContext(ctx,
		`SELECT post_id, checksum FROM import_sources WHERE path = ?`, path).Scan(&src.PostID, &src.Checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database: get import source %s: %w", path, err)
	}
	return &src, nil
}

// PutImportSource records that path was imported as postID at checksum.
func (db *DB) PutImportSource(ctx context.Context, src ImportSource) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO import_sources (path, post_id, checksum)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			post_id  = excluded.post_id,
			checksum = excluded.checksum
	`, src.Path, src.PostID, src.Checksum)
	if err != nil {
		return fmt.Errorf("database: put import source %s: %w", src.Path, err)
	}
	return nil
}

// DeleteImportSource forgets path.
func (db *DB) DeleteImportSource(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM import_sources WHERE path = ?`, path); err != nil {
		return fmt.Errorf("database: delete import source %s: %w", path, err)
	}
	return nil
}

// AllImportChecksums returns path -> checksum for every imported file.
func (db *DB) AllImportChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM import_sources`)
	if err != nil {
		return nil, fmt.Errorf("database: all import checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Package database is the SQLite document store for posts, accounts and
// importer bookkeeping. Schema changes are goose migrations embedded in the
// binary.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/starford/canvas/internal/compression"
	"github.com/starford/canvas/internal/database/migrations"
)

// DB wraps a sql.DB with post and user operations.
type DB struct {
	conn *sql.DB
	zstd *compression.Zstd
}

// Open opens (or creates) the SQLite database and applies pending migrations.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("database: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	z, err := compression.NewZstd()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	return &DB{conn: conn, zstd: z}, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("database: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	db.zstd.Close()
	return db.conn.Close()
}

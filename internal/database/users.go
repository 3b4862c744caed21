package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/models"
)

// CreateUser inserts u. A taken email yields apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC())
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("database: create user: %w", err)
	}
	return nil
}

// UserByEmail returns the account registered under email, or apperr.ErrNotFound.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// UserByID returns the account with id, or apperr.ErrNotFound.
func (db *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (db *DB) queryUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get user: %w", err)
	}
	return &u, nil
}

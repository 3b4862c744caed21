package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "canvas-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"posts", "users", "import_sources"} {
		var count int
		err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count)
		require.NoError(t, err, "%s table missing", table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "p1", Title: "kept"}))
	db.Close()

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	p, err := db.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "kept", p.Title)
}

func TestPutAndGetPost(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	want := &models.Post{
		ID:        "p1",
		Title:     "Hello",
		Content:   "# Hello\n\n" + strings.Repeat("body ", 200),
		Tags:      []string{"go", "Go"},
		AuthorID:  "u1",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
	require.NoError(t, db.PutPost(ctx, want))

	got, err := db.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Content, got.Content)
	assert.Equal(t, want.AuthorID, got.AuthorID)
	assert.Equal(t, []string{"go", "Go"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt), "created = %v", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt), "updated = %v", got.UpdatedAt)
}

func TestContentStoredCompressed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	body := strings.Repeat("compress me ", 1000)
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "z", Content: body}))

	var raw []byte
	require.NoError(t, db.conn.QueryRow(`SELECT content FROM posts WHERE id = 'z'`).Scan(&raw))
	assert.Less(t, len(raw), len(body))
}

func TestGetPost_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPutPost_ReplacesWholesale(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "p", Title: "Old", Content: "old", Tags: []string{"a", "b"}}))
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "p", Title: "New", Content: "new", Tags: nil}))

	got, err := db.GetPost(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "new", got.Content)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func TestListPosts_NewestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "old", UpdatedAt: base}))
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "new", UpdatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "mid", UpdatedAt: base.Add(time.Hour)}))

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, db.PutPost(ctx, &models.Post{ID: "del"}))

	require.NoError(t, db.DeletePost(ctx, "del"))
	_, err := db.GetPost(ctx, "del")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, db.DeletePost(ctx, "del"), "second delete")
}

func TestUsers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := &models.User{ID: "u1", Email: "a@example.com", PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	require.NoError(t, db.CreateUser(ctx, u))

	dup := &models.User{ID: "u2", Email: "a@example.com", PasswordHash: []byte("x"), CreatedAt: time.Now()}
	require.ErrorIs(t, db.CreateUser(ctx, dup), apperr.ErrAlreadyExists)

	got, err := db.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", string(got.PasswordHash))

	_, err = db.UserByID(ctx, "u1")
	assert.NoError(t, err)
	_, err = db.UserByID(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestImportSources(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	src, err := db.GetImportSource(ctx, "a.md")
	require.NoError(t, err)
	assert.Nil(t, src)

	require.NoError(t, db.PutImportSource(ctx, ImportSource{Path: "a.md", PostID: "p1", Checksum: "1"}))
	require.NoError(t, db.PutImportSource(ctx, ImportSource{Path: "a.md", PostID: "p1", Checksum: "2"}))

	src, err = db.GetImportSource(ctx, "a.md")
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "p1", src.PostID)
	assert.Equal(t, "2", src.Checksum)

	all, err := db.AllImportChecksums(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.md": "2"}, all)

	require.NoError(t, db.DeleteImportSource(ctx, "a.md"))
	src, err = db.GetImportSource(ctx, "a.md")
	require.NoError(t, err)
	assert.Nil(t, src)
}

func TestPing(t *testing.T) {
	assert.NoError(t, testDB(t).Ping(context.Background()))
}

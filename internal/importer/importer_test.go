package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/database"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/storage"
	"github.com/starford/canvas/internal/testutil"
)

type env struct {
	dir string
	db  *database.DB
	im  *Importer
}

func newEnv(t *testing.T, author *auth.Session) *env {
	t.Helper()
	db := testutil.TestDB(t)
	_, blobs := testutil.TestBlobs(t)
	dir := t.TempDir()
	files, err := storage.NewFS(dir, "")
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ed := editor.New(db, blobs, editor.WithLogger(logger))
	return &env{dir: dir, db: db, im: New(ed, db, files, author, logger)}
}

func (e *env) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(e.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (e *env) postFor(t *testing.T, rel string) string {
	t.Helper()
	src, err := e.db.GetImportSource(context.Background(), rel)
	require.NoError(t, err)
	if src == nil {
		return ""
	}
	return src.PostID
}

func author() *auth.Session {
	return &auth.Session{UserID: "u1", Email: "author@example.com"}
}

func TestSync_ImportsAndSkipsUnchanged(t *testing.T) {
	e := newEnv(t, author())
	ctx := context.Background()
	e.write(t, "a.md", "---\ntitle: First\ntags: [go, Go, go, x]\n---\nhello")
	e.write(t, "nested/b.md", "# Heading title\n\nbody")
	e.write(t, "notes.txt", "ignored")

	res, err := e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2}, res)

	p, err := e.db.GetPost(ctx, e.postFor(t, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "First", p.Title)
	assert.Equal(t, "hello", p.Content)
	assert.Equal(t, []string{"go", "Go", "x"}, p.Tags)
	assert.Equal(t, "u1", p.AuthorID)

	b, err := e.db.GetPost(ctx, e.postFor(t, "nested/b.md"))
	require.NoError(t, err)
	assert.Equal(t, "Heading title", b.Title)

	res, err = e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
}

func TestSync_ChangedFileEditsSamePost(t *testing.T) {
	e := newEnv(t, author())
	ctx := context.Background()
	e.write(t, "a.md", "---\ntitle: v1\n---\none")
	_, err := e.im.Sync(ctx)
	require.NoError(t, err)
	id := e.postFor(t, "a.md")
	first, err := e.db.GetPost(ctx, id)
	require.NoError(t, err)

	e.write(t, "a.md", "---\ntitle: v2\n---\ntwo")
	res, err := e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	assert.Equal(t, id, e.postFor(t, "a.md"))
	p, err := e.db.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", p.Title)
	assert.Equal(t, "two", p.Content)
	assert.True(t, p.CreatedAt.Equal(first.CreatedAt))

	all, err := e.db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSync_FrontmatterIDUsed(t *testing.T) {
	e := newEnv(t, author())
	ctx := context.Background()
	e.write(t, "fixed.md", "---\nid: my-post\ntitle: Fixed\n---\nbody")

	_, err := e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my-post", e.postFor(t, "fixed.md"))

	p, err := e.db.GetPost(ctx, "my-post")
	require.NoError(t, err)
	assert.Equal(t, "Fixed", p.Title)
}

func TestSync_NoAuthorWritesNothing(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.write(t, "a.md", "# A")

	res, err := e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 1}, res)

	all, err := e.db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, e.postFor(t, "a.md"))
	assert.Equal(t, 0, e.im.editor.Len(), "failed import must not leak drafts")
}

func TestSync_HiddenDirsSkipped(t *testing.T) {
	e := newEnv(t, author())
	e.write(t, ".git/x.md", "# hidden")
	e.write(t, "visible.md", "# visible")

	res, err := e.im.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

func TestSync_RemovedFileForgottenPostKept(t *testing.T) {
	e := newEnv(t, author())
	ctx := context.Background()
	e.write(t, "gone.md", "# Gone")
	_, err := e.im.Sync(ctx)
	require.NoError(t, err)
	id := e.postFor(t, "gone.md")
	require.NotEmpty(t, id)

	require.NoError(t, os.Remove(filepath.Join(e.dir, "gone.md")))
	res, err := e.im.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, e.postFor(t, "gone.md"))

	_, err = e.db.GetPost(ctx, id)
	assert.NoError(t, err)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ImportsNewAndChangedFiles(t *testing.T) {
	e := newEnv(t, author())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		events []string
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.im.Watch(ctx, func(path, _ string) {
			mu.Lock()
			events = append(events, path)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	e.write(t, "new.md", "# New")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return e.postFor(t, "new.md") != ""
	}, "new file not imported by watcher")
	id := e.postFor(t, "new.md")

	e.write(t, "new.md", "# Renamed title")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p, err := e.db.GetPost(context.Background(), id)
		return err == nil && p.Title == "Renamed title"
	}, "changed file not re-imported")

	require.NoError(t, os.MkdirAll(filepath.Join(e.dir, "sub"), 0o755))
	time.Sleep(100 * time.Millisecond)
	e.write(t, "sub/deep.md", "# Deep")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return e.postFor(t, "sub/deep.md") != ""
	}, "file in new subdir not imported")

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, events, "new.md")
}

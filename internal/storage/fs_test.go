package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir(), "/assets")
	require.NoError(t, err)
	return fs
}

func readAll(t *testing.T, s *FS, key string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), key)
	require.NoError(t, err, "Open(%s)", key)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestPutAndOpen(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Put(context.Background(), "images/1-a.png", []byte("png bytes"), "image/png"))
	assert.Equal(t, "png bytes", readAll(t, s, "images/1-a.png"))
}

func TestPutCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Put(context.Background(), "a/b/c.bin", []byte("deep"), ""))
	assert.Equal(t, "deep", readAll(t, s, "a/b/c.bin"))
}

func TestOpen_Missing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Open(context.Background(), "nope.png")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(s.root, "dir"), 0o755))
	_, err = s.Open(context.Background(), "dir")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "del.png", []byte("bye"), ""))

	require.NoError(t, s.Delete(ctx, "del.png"))
	_, err := s.Open(ctx, "del.png")
	assert.Error(t, err)
	assert.ErrorIs(t, s.Delete(ctx, "del.png"), ErrNotFound)
}

func TestURL(t *testing.T) {
	s, err := NewFS(t.TempDir(), "http://localhost:8080/assets/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/assets/images/1-a.png", s.URL("images/1-a.png"))
}

func TestList(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	for key, data := range map[string]string{
		"a.md":       "a",
		"sub/b.md":   "b",
		"readme.txt": "not md",
		".git/c.md":  "hidden",
	} {
		require.NoError(t, s.Put(ctx, key, []byte(data), ""))
	}

	items, err := s.List("")
	require.NoError(t, err)
	var paths []string
	for _, it := range items {
		paths = append(paths, it.Path)
		assert.NotEmpty(t, it.Checksum, it.Path)
	}
	assert.ElementsMatch(t, []string{"a.md", "sub/b.md"}, paths)
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		_, err := s.Read(p)
		assert.Error(t, err, "read %q", p)
		assert.Error(t, s.Put(ctx, p, []byte("x"), ""), "put %q", p)
	}
	assert.Error(t, s.Put(ctx, "", []byte("x"), ""), "empty key")
}

func TestAtomicPutNoLeftovers(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "atomic.png", []byte("original"), ""))
	require.NoError(t, s.Put(ctx, "atomic.png", []byte("updated"), ""))
	assert.Equal(t, "updated", readAll(t, s, "atomic.png"))

	matches, err := filepath.Glob(filepath.Join(s.root, ".canvas-tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "leftover temp files")
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"), "")
	assert.Error(t, err)
}

func TestNewFS_FileNotDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := NewFS(path, "")
	assert.Error(t, err)
}

func TestS3BaseURL(t *testing.T) {
	cases := []struct {
		opts S3Options
		want string
	}{
		{S3Options{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{S3Options{Bucket: "b", Endpoint: "http://localhost:9000"}, "http://localhost:9000/b"},
		{S3Options{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com"},
		{S3Options{Bucket: "b"}, "https://b.s3.us-east-1.amazonaws.com"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, s3BaseURL(c.opts), "%+v", c.opts)
	}
}

func TestS3_URL(t *testing.T) {
	s, err := NewS3(context.Background(), S3Options{
		Bucket:          "media",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicBaseURL:   "https://media.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/images/1-a.png", s.URL("images/1-a.png"))
}

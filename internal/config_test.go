package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/starford/canvas/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Auth.Secret = "0123456789abcdef"
	return cfg
}

func TestDefaultConfig_NeedsSecret(t *testing.T) {
	assert.Error(t, NewDefaultConfig().Validate(), "default config without secret")
	assert.NoError(t, validConfig().Validate())
}

func TestAuthConfig_ShortSecret(t *testing.T) {
	cfg := AuthConfig{Secret: "short", TokenTTL: time.Hour}
	assert.Error(t, cfg.Validate())
}

func TestAuthConfig_TinyTTL(t *testing.T) {
	cfg := AuthConfig{Secret: "0123456789abcdef", TokenTTL: time.Second}
	assert.Error(t, cfg.Validate(), "ttl under a minute")
}

func TestBlobConfig_EmptyBackendDefaultsFS(t *testing.T) {
	cfg := BlobConfig{FS: FSBlobConfig{Dir: "x", BaseURL: "/assets"}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BlobBackendFS, cfg.Backend)
}

func TestBlobConfig_InvalidBackend(t *testing.T) {
	cfg := BlobConfig{Backend: "ftp"}
	assert.Error(t, cfg.Validate())
}

func TestBlobConfig_S3(t *testing.T) {
	cfg := BlobConfig{Backend: BlobBackendS3}
	assert.Error(t, cfg.Validate(), "s3 without bucket")

	cfg.S3 = S3BlobConfig{Bucket: "b", Region: "auto", Endpoint: "https://acct.r2.cloudflarestorage.com"}
	assert.NoError(t, cfg.Validate())

	cfg.S3.AccessKeyID = "key"
	assert.Error(t, cfg.Validate(), "access key without secret")
}

func TestEditorConfig_AuthorEmail(t *testing.T) {
	cfg := validConfig()
	cfg.Editor.AuthorEmail = "not-an-email"
	assert.Error(t, cfg.Validate())

	cfg.Editor.AuthorEmail = "me@example.com"
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("CANVAS_TEST_SECRET", "a-very-long-secret-value")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
sqlite:
  path: /tmp/canvas.db
blob:
  backend: fs
  fs:
    dir: /tmp/assets
    base_url: /assets
auth:
  secret: ${CANVAS_TEST_SECRET}
  token_ttl: 12h
editor:
  idle_ttl: 2h
  sweep_interval: 1m
  max_upload_bytes: 1048576
  author_email: me@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))
	assert.Equal(t, ":9090", cfg.App.HTTP.Address())
	assert.Equal(t, "a-very-long-secret-value", cfg.Auth.Secret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.Editor.IdleTTL)
	assert.Equal(t, "github", cfg.Editor.CodeStyle, "unset field lost its default")
}

func TestLoadYAML_ValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  http:\n    port: 0\n"), 0o644))

	err := pkgconfig.Load(path, validConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/models"
)

// ErrNotImage is returned for uploads whose bytes are not a PNG, JPEG, GIF
// or WebP image.
var ErrNotImage = errors.New("editor: only image uploads are accepted")

// ErrTooLarge is returned for uploads over the configured size cap.
var ErrTooLarge = errors.New("editor: upload too large")

// MaxAssetBytes returns the upload size cap.
func (e *Editor) MaxAssetBytes() int64 { return e.maxBytes }

// StoreAsset checks data against the size cap and the accepted image
// formats and writes it to the asset store. name only contributes the base
// of the key; the extension comes from the detected format.
func (e *Editor) StoreAsset(ctx context.Context, name string, data []byte) (models.Asset, error) {
	if int64(len(data)) > e.maxBytes {
		return models.Asset{}, ErrTooLarge
	}
	contentType, ext, err := DetectImage(data)
	if err != nil {
		return models.Asset{}, err
	}

	key := AssetKey(e.now().UnixMilli(), name, ext)
	if err := e.assets.Put(ctx, key, data, contentType); err != nil {
		return models.Asset{}, fmt.Errorf("upload asset %s: %w", key, err)
	}
	return models.Asset{Key: key, URL: e.assets.URL(key), Size: int64(len(data))}, nil
}

// UploadAsset stores an image and appends its embed to the draft body. The
// upload runs outside the draft lock; the embed is appended once it is
// stored, so concurrent uploads land in completion order. If the draft is
// closed before the embed is appended, the stored object is removed again.
func (e *Editor) UploadAsset(ctx context.Context, handle, name string, r io.Reader) (models.Asset, draft.View, error) {
	if _, err := e.Get(handle); err != nil {
		return models.Asset{}, draft.View{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return models.Asset{}, draft.View{}, fmt.Errorf("read upload: %w", err)
	}
	asset, err := e.StoreAsset(ctx, name, data)
	if err != nil {
		return models.Asset{}, draft.View{}, err
	}

	v, err := e.Update(handle, func(d *draft.Draft) error {
		d.AppendAsset(asset.URL)
		return nil
	})
	if err != nil {
		// The draft was closed while uploading.
		if delErr := e.assets.Delete(ctx, asset.Key); delErr != nil {
			e.logger.Warn("orphaned asset not removed",
				slog.String("handle", handle),
				slog.String("key", asset.Key),
				slog.String("error", delErr.Error()))
		}
		return models.Asset{}, draft.View{}, err
	}
	return asset, v, nil
}

// AssetKey names an uploaded image: images/<unix-millis>-<base name><ext>.
// Any extension on name is dropped in favour of ext.
func AssetKey(millis int64, name, ext string) string {
	base := sanitizeFilename(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("images/%d-%s%s", millis, base, ext)
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '-'.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}

package editor

import (
	"fmt"
	"net/http"
	"strings"
)

// imageExt maps the raster formats accepted for upload to the extension
// their keys get. SVG is not accepted: it can carry script.
var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage identifies an upload from its leading bytes and returns the
// content type and the extension its key is stored under. The type declared
// by the client is never consulted.
func DetectImage(data []byte) (contentType, ext string, err error) {
	detected := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := imageExt[detected]
	if !ok {
		return "", "", fmt.Errorf("%w: content detected as %s", ErrNotImage, detected)
	}
	return detected, ext, nil
}

// ImageContentType returns the content type served for an asset key, judged
// by its extension. Keys outside the accepted formats get
// application/octet-stream.
func ImageContentType(key string) string {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return "application/octet-stream"
	}
	ext := strings.ToLower(key[i:])
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for ct, e := range imageExt {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

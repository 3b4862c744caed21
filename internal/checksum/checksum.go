// Package checksum computes the content digests used to detect changed import
// files and to build HTTP ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fields returns the hex-encoded SHA-256 digest of an ordered list of
// fields. Each field is length-prefixed, so ("ab", "c") and ("a", "bc")
// digest differently.
func Fields(fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		_, _ = io.WriteString(h, strconv.Itoa(len(f)))
		_, _ = io.WriteString(h, ":")
		_, _ = io.WriteString(h, f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

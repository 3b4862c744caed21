// Package compression wraps zstd for post bodies at rest.
package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd holds one encoder and one decoder; both are safe for concurrent
// EncodeAll/DecodeAll calls.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates a compressor at the default level.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// Compress returns data compressed as a single zstd frame.
func (z *Zstd) Compress(data []byte) []byte {
	return z.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress reverses Compress.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (z *Zstd) Close() {
	_ = z.enc.Close()
	z.dec.Close()
}

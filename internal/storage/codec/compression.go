package codec

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// Compression names accepted by NewCompressor.
const (
	CompressionNone = "none"
	CompressionLZ4  = "lz4"
)

// Compressor compresses encoded records before they reach the database.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, size int) ([]byte, error)
}

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns the data unchanged.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the data unchanged.
func (c *NoCompressor) Decompress(data []byte, size int) ([]byte, error) {
	return data, nil
}

// LZ4Compressor implements LZ4 block compression.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4. It returns nil when the data does
// not compress.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, nil
	}
	return compressed[:n], nil
}

// Decompress decompresses LZ4 data whose original length is size.
func (c *LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompression: got %d bytes, want %d", n, size)
	}
	return out, nil
}

// NewCompressor returns the compressor registered under name.
func NewCompressor(name string) (Compressor, error) {
	switch name {
	case "", CompressionNone:
		return &NoCompressor{}, nil
	case CompressionLZ4:
		return &LZ4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression: %s", name)
	}
}

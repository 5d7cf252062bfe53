// Package codec serializes state records with MessagePack and optionally
// compresses them.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	ugorji "github.com/ugorji/go/codec"
)

// Record header flags.
const (
	flagRaw byte = 0x00
	flagLZ4 byte = 0x01
)

// minCompressionSize skips compression for small records.
const minCompressionSize = 128

// ErrCorrupt is returned for records that cannot be decoded.
var ErrCorrupt = errors.New("corrupt record")

// Codec encodes and decodes records. It is safe for concurrent use.
type Codec struct {
	handle     *ugorji.MsgpackHandle
	compressor Compressor
}

// New returns a Codec using the named compression ("none" or "lz4").
func New(compression string) (*Codec, error) {
	c, err := NewCompressor(compression)
	if err != nil {
		return nil, err
	}
	h := &ugorji.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return &Codec{handle: h, compressor: c}, nil
}

// MustNew is New for compile-time known compression names.
func MustNew(compression string) *Codec {
	c, err := New(compression)
	if err != nil {
		panic(err)
	}
	return c
}

// Marshal encodes v. The output is a one byte header followed either by the
// raw MessagePack bytes or by the uncompressed length and the compressed bytes.
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	var raw []byte
	if err := ugorji.NewEncoderBytes(&raw, c.handle).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	if len(raw) >= minCompressionSize {
		compressed, err := c.compressor.Compress(raw)
		if err != nil {
			return nil, err
		}
		if compressed != nil && c.compressor.Name() == "lz4" {
			out := make([]byte, 1+binary.MaxVarintLen64+len(compressed))
			out[0] = flagLZ4
			n := binary.PutUvarint(out[1:], uint64(len(raw)))
			copy(out[1+n:], compressed)
			return out[:1+n+len(compressed)], nil
		}
	}

	out := make([]byte, 1+len(raw))
	out[0] = flagRaw
	copy(out[1:], raw)
	return out, nil
}

// Unmarshal decodes data produced by Marshal into v. Records written with
// either compression setting can be read regardless of the current one.
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrCorrupt)
	}

	var raw []byte
	switch data[0] {
	case flagRaw:
		raw = data[1:]
	case flagLZ4:
		size, n := binary.Uvarint(data[1:])
		if n <= 0 {
			return fmt.Errorf("%w: bad length prefix", ErrCorrupt)
		}
		var err error
		raw, err = (&LZ4Compressor{}).Decompress(data[1+n:], int(size))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	default:
		return fmt.Errorf("%w: unknown header 0x%02x", ErrCorrupt, data[0])
	}

	if err := ugorji.NewDecoderBytes(raw, c.handle).Decode(v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

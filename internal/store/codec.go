// Blob content encoding.
//
// New blobs are written with the store's configured codec, except that a
// blob which zstd fails to shrink is kept raw. The codec is recorded per
// row, so a store may mix both and either always decodes.
package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec names a blob content encoding.
type Codec string

const (
	CodecRaw  Codec = "raw"
	CodecZstd Codec = "zstd"
)

// ParseCodec maps a configuration value to a Codec. "none" is an alias for raw.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", string(CodecZstd):
		return CodecZstd, nil
	case string(CodecRaw), "none":
		return CodecRaw, nil
	}
	return "", fmt.Errorf("unknown compression %q: must be zstd or none", s)
}

func (c Codec) valid() bool {
	return c == CodecRaw || c == CodecZstd
}

// Shared encoder/decoder; both are safe for concurrent use and expensive
// to construct.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// encodeBlob returns the bytes to store and the codec actually used.
func encodeBlob(c Codec, data []byte) ([]byte, Codec) {
	if c == CodecZstd && len(data) > 0 {
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) < len(data) {
			return compressed, CodecZstd
		}
	}
	if data == nil {
		data = []byte{}
	}
	return data, CodecRaw
}

// decodeBlob reverses encodeBlob.
func decodeBlob(c Codec, stored []byte) ([]byte, error) {
	switch c {
	case CodecRaw:
		if stored == nil {
			return []byte{}, nil
		}
		return stored, nil
	case CodecZstd:
		out, err := zstdDecoder.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if out == nil {
			out = []byte{}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown codec %q", c)
}

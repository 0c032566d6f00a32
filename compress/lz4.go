package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// Every LZ4 payload starts with one of these tags. CompressBlock reports
// incompressible input by returning zero bytes, in which case the raw input
// is stored behind lz4Raw.
const (
	lz4Raw   byte = 0x00
	lz4Block byte = 0x01
)

// maxLZ4Size bounds decompression buffers; a full signal row is 40000 bytes.
const maxLZ4Size = 128 * 1024 * 1024

// LZ4Compressor provides LZ4 block compression of signal rows.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 compression.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	if n == 0 || n >= len(data) {
		dst = append(dst[:0], lz4Raw)
		return append(dst, data...), nil
	}

	dst[0] = lz4Block

	return dst[:1+n], nil
}

// Decompress decompresses the input data using LZ4 decompression.
//
// The decompressed size is not stored, so the buffer starts at four times
// the input and doubles on ErrInvalidSourceShortBuffer up to 128MB.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	tag, body := data[0], data[1:]
	switch tag {
	case lz4Raw:
		return append([]byte(nil), body...), nil
	case lz4Block:
	default:
		return nil, fmt.Errorf("lz4 decompression failed: unknown block tag 0x%02x", tag)
	}

	for bufSize := max(len(body)*4, 64); bufSize <= maxLZ4Size; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(body, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}

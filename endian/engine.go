// Package endian provides the byte order used by every integer in a POD5 file.
//
// POD5 is little-endian throughout: the trailer's footer length, the footer
// FlatBuffer and the raw signal samples handed to compression codecs. The
// package exposes a single EndianEngine plus helpers for int16 sample slices
// and signed 64-bit fields, which encoding/binary only offers as unsigned.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The engine is stateless.
package endian

import (
	"encoding/binary"
	"fmt"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the engine used for POD5 files.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// PutInt64 writes v into b[:8].
func PutInt64(engine EndianEngine, b []byte, v int64) {
	engine.PutUint64(b, uint64(v)) //nolint: gosec
}

// Int64 reads a signed 64-bit value from b[:8].
func Int64(engine EndianEngine, b []byte) int64 {
	return int64(engine.Uint64(b)) //nolint: gosec
}

// AppendInt16s appends every sample to dst, two bytes each.
func AppendInt16s(engine EndianEngine, dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = engine.AppendUint16(dst, uint16(s)) //nolint: gosec
	}

	return dst
}

// Int16s decodes a byte slice written by AppendInt16s.
func Int16s(engine EndianEngine, data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("sample payload has odd length %d", len(data))
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(engine.Uint16(data[i*2:])) //nolint: gosec
	}

	return samples, nil
}

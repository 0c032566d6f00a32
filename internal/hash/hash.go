// Package hash computes xxHash64 digests of embedded table bytes.
package hash

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Reader returns the xxHash64 of everything read from r.
func Reader(r io.Reader) (uint64, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return 0, fmt.Errorf("hash: %w", err)
	}

	return d.Sum64(), nil
}

package compress

// ZstdCompressor provides Zstandard compression of signal rows.
//
// The implementation is chosen at build time: klauspost/compress/zstd by
// default, valyala/gozstd when built with cgo and the gozstd tag. Both
// produce standard Zstandard frames, so files written by one build are
// readable by the other.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Package compress provides the codecs podders can apply to signal samples.
//
// Signal rows are stored as large_list<int16> by default. A writer configured
// with another format.CompressionType stores each row as one opaque
// large_binary value instead: the samples are serialized little-endian and
// passed through the selected Codec. Readers find the codec in the signal
// field metadata and call GetCodec to reverse it.
//
// # Algorithms
//
//   - None: samples are stored uncompressed (the NoOpCompressor is only used
//     by callers that want a uniform Codec value).
//   - Zstd: best ratio on slowly varying nanopore traces. The default build
//     uses github.com/klauspost/compress/zstd; building with cgo and the
//     gozstd tag switches to github.com/valyala/gozstd.
//   - S2: fast Snappy-compatible compression from klauspost/compress.
//   - LZ4: block compression from github.com/pierrec/lz4/v4.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(raw)
//	...
//	raw, err = codec.Decompress(packed)
//
// All codecs are stateless values and safe for concurrent use.
package compress

// Package podders writes and reads POD5 files: nanopore read metadata,
// per-read signal and run metadata stored as Arrow tables inside one
// seekable file, located through a FlatBuffers footer.
//
// # Basic Usage
//
// Writing a file:
//
//	w, err := podders.Create("out.pod5")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	_ = w.PushRunInfo(table.RunInfo{AcquisitionID: "acq-1", SampleRate: 5000})
//	_ = w.PushRead(table.Read{
//	    ReadID:    uuid.New(),
//	    Signal:    samples,
//	    PoreType:  table.PoreTypeR1041,
//	    EndReason: table.EndReasonSignalPositive,
//	    RunInfo:   "acq-1",
//	})
//	return w.Close()
//
// Reading it back:
//
//	r, err := podders.Open("out.pod5")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	contents, err := r.ReadAll(ctx)
//	for _, read := range contents.Reads {
//	    samples, err := r.ReadSignal(read, contents.Signal)
//	    ...
//	}
//
// Locating a single table without decoding it:
//
//	ef, err := podders.LocateTable("out.pod5", format.ContentSignalTable)
//	raw, err := podders.ReadBytes("out.pod5", ef.Offset, ef.Length)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the pod5
// package. For the file layout primitives see package section, for the footer
// see package footer and for the Arrow table codec see package table.
package podders

import (
	"github.com/Adoni5/podders/footer"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/pod5"
)

// Create creates a POD5 file at path and starts a write session on it.
//
// The header is written immediately. The session is finished by
// Writer.Close, which writes any pending tables and the footer.
//
// Parameters:
//   - path: File to create or truncate
//   - opts: Optional configuration (see pod5.WriterOption)
//
// Returns:
//   - *pod5.Writer: The write session
//   - error: Invalid options or an I/O failure
func Create(path string, opts ...pod5.WriterOption) (*pod5.Writer, error) {
	return pod5.Create(path, opts...)
}

// Open opens a finished POD5 file for reading.
//
// The header, trailer and footer are validated before Open returns.
//
// Parameters:
//   - path: File to open
//   - opts: Optional configuration (see pod5.ReaderOption)
//
// Returns:
//   - *pod5.Reader: Reader safe for concurrent use
//   - error: errs.ErrInvalidSignature, errs.ErrInvalidTrailer,
//     errs.ErrInvalidFooter or an I/O failure
func Open(path string, opts ...pod5.ReaderOption) (*pod5.Reader, error) {
	return pod5.Open(path, opts...)
}

// LocateTable returns the offset and length of the first table of the given
// kind in the POD5 file at path.
//
// Returns errs.ErrContentNotFound when the footer lists no such table.
func LocateTable(path string, kind format.ContentType) (footer.EmbeddedFile, error) {
	return pod5.LocateTable(path, kind)
}

// ReadBytes returns exactly length bytes at offset of the file at path.
func ReadBytes(path string, offset, length int64) ([]byte, error) {
	return pod5.ReadBytes(path, offset, length)
}

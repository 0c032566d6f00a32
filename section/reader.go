package section

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Adoni5/podders/endian"
	"github.com/Adoni5/podders/errs"
)

// Trailer describes the footer location recovered from the end of a file.
type Trailer struct {
	// FooterOffset is the absolute offset of the first footer body byte.
	FooterOffset int64
	// FooterLength is the stored footer length: body, padding and marker.
	FooterLength int64
	// Marker is the section marker found in the trailer.
	Marker Marker
}

// ReadHeader validates the leading signature and returns the session marker.
func ReadHeader(r io.ReaderAt) (Marker, error) {
	var header [HeaderSize]byte
	if err := readAt(r, header[:], 0); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Marker{}, fmt.Errorf("%w: file shorter than header", errs.ErrInvalidSignature)
		}

		return Marker{}, fmt.Errorf("read header: %w", err)
	}

	if !bytes.Equal(header[:SignatureSize], Signature[:]) {
		return Marker{}, errs.ErrInvalidSignature
	}

	var m Marker
	copy(m[:], header[SignatureSize:])

	return m, nil
}

// ReadTrailer recovers the footer position from the last TrailerSize bytes of
// a file of the given size.
//
// The trailer geometry is fixed: footer length (8), marker (16), signature (8).
// The footer body starts FooterLength bytes before the length field and must
// be preceded by FooterMagic.
func ReadTrailer(r io.ReaderAt, size int64) (Trailer, error) {
	if size < MinFileSize {
		return Trailer{}, fmt.Errorf("%w: file size %d below minimum %d", errs.ErrInvalidTrailer, size, MinFileSize)
	}

	var raw [TrailerSize]byte
	if err := readAt(r, raw[:], size-TrailerSize); err != nil {
		return Trailer{}, fmt.Errorf("read trailer: %w", err)
	}

	if !bytes.Equal(raw[LengthFieldSize+MarkerSize:], Signature[:]) {
		return Trailer{}, fmt.Errorf("%w: missing trailing signature", errs.ErrInvalidSignature)
	}

	t := Trailer{FooterLength: endian.Int64(endian.GetLittleEndianEngine(), raw[:LengthFieldSize])}
	copy(t.Marker[:], raw[LengthFieldSize:LengthFieldSize+MarkerSize])

	t.FooterOffset = size - TrailerSize - t.FooterLength
	if t.FooterLength <= 0 || t.FooterOffset < HeaderSize+FooterMagicSize {
		return Trailer{}, fmt.Errorf("%w: footer length %d out of range", errs.ErrInvalidTrailer, t.FooterLength)
	}

	var magic [FooterMagicSize]byte
	if err := readAt(r, magic[:], t.FooterOffset-FooterMagicSize); err != nil {
		return Trailer{}, fmt.Errorf("read footer magic: %w", err)
	}

	if magic != FooterMagic {
		return Trailer{}, fmt.Errorf("%w: footer magic not found at offset %d", errs.ErrInvalidTrailer, t.FooterOffset-FooterMagicSize)
	}

	return t, nil
}

// ReadFooter returns the FooterLength bytes starting at the footer body.
// The slice includes the body's padding and marker; FlatBuffer parsing
// ignores trailing bytes.
func ReadFooter(r io.ReaderAt, size int64) ([]byte, Trailer, error) {
	t, err := ReadTrailer(r, size)
	if err != nil {
		return nil, Trailer{}, err
	}

	body := make([]byte, t.FooterLength)
	if err := readAt(r, body, t.FooterOffset); err != nil {
		return nil, Trailer{}, fmt.Errorf("read footer: %w", err)
	}

	return body, t, nil
}

// ReadSpan returns the payload bytes described by s. The span must lie after
// the header and inside a file of the given size.
func ReadSpan(r io.ReaderAt, size int64, s Span) ([]byte, error) {
	if s.Offset < HeaderSize || s.Offset > size || s.Length < 0 || s.Length > size-s.Offset {
		return nil, fmt.Errorf("%w: span offset %d length %d in %d bytes", errs.ErrInvalidFooter, s.Offset, s.Length, size)
	}

	buf := make([]byte, s.Length)
	if err := readAt(r, buf, s.Offset); err != nil {
		return nil, fmt.Errorf("read span at %d: %w", s.Offset, err)
	}

	return buf, nil
}

// readAt fills p from off, treating a short read as io.ErrUnexpectedEOF.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

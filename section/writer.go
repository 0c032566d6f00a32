package section

import (
	"fmt"
	"io"

	"github.com/Adoni5/podders/endian"
)

// Span locates an un-padded payload inside the file.
type Span struct {
	// Offset is the absolute byte offset of the first payload byte.
	Offset int64
	// Length is the payload length, excluding padding and marker.
	Length int64
}

// End returns the offset just past the payload.
func (s Span) End() int64 {
	return s.Offset + s.Length
}

type flusher interface {
	Flush() error
}

// Writer appends sections to a seekable file.
//
// Every section is written as payload, zero padding up to the next 8-byte
// boundary, then the session marker. The cursor position is taken from the
// underlying io.WriteSeeker, so the file may already contain data when the
// Writer is created.
//
// Note: Writer is NOT thread-safe.
type Writer struct {
	w      io.WriteSeeker
	marker Marker
	engine endian.EndianEngine
	zeros  [Alignment]byte
}

// NewWriter creates a Writer that delimits sections with marker.
func NewWriter(w io.WriteSeeker, marker Marker) *Writer {
	return &Writer{
		w:      w,
		marker: marker,
		engine: endian.GetLittleEndianEngine(),
	}
}

// Marker returns the session marker.
func (w *Writer) Marker() Marker {
	return w.marker
}

// Position returns the current cursor position.
func (w *Writer) Position() (int64, error) {
	pos, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("query cursor position: %w", err)
	}

	return pos, nil
}

// WriteHeader writes the file signature followed by the session marker.
func (w *Writer) WriteHeader() error {
	if err := w.write(Signature[:]); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	if err := w.write(w.marker[:]); err != nil {
		return fmt.Errorf("write section marker: %w", err)
	}

	return w.flush()
}

// WriteSection writes payload verbatim, pads the file to the next 8-byte
// boundary and appends the section marker.
//
// The returned Span describes the payload only: reading Length bytes at
// Offset yields exactly payload. After return the cursor is aligned and
// positioned at the start of the next section.
func (w *Writer) WriteSection(payload []byte) (Span, error) {
	offset, err := w.Position()
	if err != nil {
		return Span{}, err
	}

	if err := w.write(payload); err != nil {
		return Span{}, fmt.Errorf("write section payload: %w", err)
	}

	end, err := w.Position()
	if err != nil {
		return Span{}, err
	}

	if err := w.write(w.zeros[:Padding(end)]); err != nil {
		return Span{}, fmt.Errorf("write section padding: %w", err)
	}

	if err := w.write(w.marker[:]); err != nil {
		return Span{}, fmt.Errorf("write section marker: %w", err)
	}

	if err := w.flush(); err != nil {
		return Span{}, err
	}

	return Span{Offset: offset, Length: end - offset}, nil
}

// WriteFooter seals the file.
//
// It writes the footer magic, the footer body as a regular section, the
// footer length, the marker and the closing signature. The footer length
// counts from the first body byte up to and including the body's section
// marker, which is exactly what ReadTrailer expects.
func (w *Writer) WriteFooter(body []byte) (Span, error) {
	if err := w.write(FooterMagic[:]); err != nil {
		return Span{}, fmt.Errorf("write footer magic: %w", err)
	}

	span, err := w.WriteSection(body)
	if err != nil {
		return Span{}, err
	}

	pos, err := w.Position()
	if err != nil {
		return Span{}, err
	}

	var trailer [TrailerSize]byte
	endian.PutInt64(w.engine, trailer[:LengthFieldSize], pos-span.Offset)
	copy(trailer[LengthFieldSize:], w.marker[:])
	copy(trailer[LengthFieldSize+MarkerSize:], Signature[:])

	if err := w.write(trailer[:]); err != nil {
		return Span{}, fmt.Errorf("write trailer: %w", err)
	}

	if err := w.flush(); err != nil {
		return Span{}, err
	}

	return span, nil
}

func (w *Writer) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	_, err := w.w.Write(b)

	return err
}

func (w *Writer) flush() error {
	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}

	return nil
}

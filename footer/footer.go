// Package footer builds and parses the POD5 footer: the FlatBuffer that names
// the file, the producing software and format version, and lists where every
// embedded table lives.
//
// The footer is the only part of a POD5 file not stored as an Arrow table, so
// a reader can parse it before it has located any table.
package footer

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/footer/fbs"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/section"
)

// EmbeddedFile locates one embedded table.
type EmbeddedFile struct {
	// Offset is the absolute offset of the table payload.
	Offset int64
	// Length is the un-padded payload length.
	Length int64
	// Format is the table encoding; FormatFeatherV2 is the only legal value.
	Format format.TableFormat
	// ContentType says which logical table this is.
	ContentType format.ContentType
}

// NewEmbeddedFile describes an Arrow table written at span.
func NewEmbeddedFile(kind format.ContentType, span section.Span) EmbeddedFile {
	return EmbeddedFile{
		Offset:      span.Offset,
		Length:      span.Length,
		Format:      format.FormatFeatherV2,
		ContentType: kind,
	}
}

// Span returns the payload span of the table.
func (e EmbeddedFile) Span() section.Span {
	return section.Span{Offset: e.Offset, Length: e.Length}
}

// Footer is the decoded form of the footer FlatBuffer.
type Footer struct {
	FileIdentifier uuid.UUID
	Software       string
	Pod5Version    string
	// Contents is in write order: reads, run info, signal.
	Contents []EmbeddedFile
}

// New creates a footer.
func New(fileIdentifier uuid.UUID, software, pod5Version string, contents ...EmbeddedFile) *Footer {
	return &Footer{
		FileIdentifier: fileIdentifier,
		Software:       software,
		Pod5Version:    pod5Version,
		Contents:       contents,
	}
}

// Parse decodes a footer from data. Trailing bytes after the FlatBuffer, such
// as section padding and the section marker, are ignored.
func Parse(data []byte) (*Footer, error) {
	f := &Footer{}
	if err := f.Parse(data); err != nil {
		return nil, err
	}

	return f, nil
}

// Bytes serializes the footer into a finished FlatBuffer.
func (f *Footer) Bytes() []byte {
	builder := flatbuffers.NewBuilder(256)

	fileIdentifier := builder.CreateString(f.FileIdentifier.String())
	software := builder.CreateString(f.Software)
	pod5Version := builder.CreateString(f.Pod5Version)

	files := make([]flatbuffers.UOffsetT, len(f.Contents))
	for i, c := range f.Contents {
		fbs.EmbeddedFileStart(builder)
		fbs.EmbeddedFileAddOffset(builder, c.Offset)
		fbs.EmbeddedFileAddLength(builder, c.Length)
		fbs.EmbeddedFileAddFormat(builder, fbs.Format(c.Format))
		fbs.EmbeddedFileAddContentType(builder, fbs.ContentType(c.ContentType))
		files[i] = fbs.EmbeddedFileEnd(builder)
	}

	fbs.FooterStartContentsVector(builder, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(files[i])
	}
	contents := builder.EndVector(len(files))

	fbs.FooterStart(builder)
	fbs.FooterAddFileIdentifier(builder, fileIdentifier)
	fbs.FooterAddSoftware(builder, software)
	fbs.FooterAddPod5Version(builder, pod5Version)
	fbs.FooterAddContents(builder, contents)
	fbs.FinishFooterBuffer(builder, fbs.FooterEnd(builder))

	return builder.FinishedBytes()
}

// Parse decodes data into f.
//
// The FlatBuffers runtime indexes the buffer without bounds checks of its own,
// so a corrupt footer surfaces as a panic; Parse converts it to ErrInvalidFooter.
func (f *Footer) Parse(data []byte) (err error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidFooter, len(data))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errs.ErrInvalidFooter, r)
		}
	}()

	if root := flatbuffers.GetUOffsetT(data); int(root) >= len(data) {
		return fmt.Errorf("%w: root offset %d beyond %d bytes", errs.ErrInvalidFooter, root, len(data))
	}

	root := fbs.GetRootAsFooter(data, 0)

	id, err := uuid.ParseBytes(root.FileIdentifier())
	if err != nil {
		return fmt.Errorf("%w: file identifier: %v", errs.ErrInvalidFooter, err)
	}

	contents := make([]EmbeddedFile, root.ContentsLength())
	var entry fbs.EmbeddedFile
	for i := range contents {
		root.Contents(&entry, i)
		contents[i] = EmbeddedFile{
			Offset:      entry.Offset(),
			Length:      entry.Length(),
			Format:      format.TableFormat(entry.Format()),
			ContentType: format.ContentType(entry.ContentType()),
		}

		if contents[i].Offset < 0 || contents[i].Length < 0 {
			return fmt.Errorf("%w: entry %d has offset %d length %d",
				errs.ErrInvalidFooter, i, contents[i].Offset, contents[i].Length)
		}

		if !contents[i].ContentType.IsValid() {
			return fmt.Errorf("%w: entry %d has content type %d",
				errs.ErrInvalidFooter, i, contents[i].ContentType)
		}
	}

	f.FileIdentifier = id
	f.Software = string(root.Software())
	f.Pod5Version = string(root.Pod5Version())
	f.Contents = contents

	return nil
}

// Find returns the first entry of the given content type.
func (f *Footer) Find(kind format.ContentType) (EmbeddedFile, error) {
	for _, c := range f.Contents {
		if c.ContentType == kind {
			return c, nil
		}
	}

	return EmbeddedFile{}, fmt.Errorf("%w: %s", errs.ErrContentNotFound, kind)
}

package pod5

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/footer"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/internal/hash"
	"github.com/Adoni5/podders/internal/options"
	"github.com/Adoni5/podders/section"
	"github.com/Adoni5/podders/signal"
	"github.com/Adoni5/podders/table"
)

// Reader reads a finished POD5 file.
type Reader struct {
	r       io.ReaderAt
	size    int64
	closer  io.Closer
	cfg     *readerConfig
	logger  *zap.Logger
	marker  section.Marker
	trailer section.Trailer
	footer  *footer.Footer
}

// Contents holds every table of a file.
type Contents struct {
	Reads    []table.Read
	RunInfos []table.RunInfo
	Signal   []table.SignalRow
}

// Open opens the POD5 file at path. The file is closed by Reader.Close.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pod5 file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat pod5 file: %w", err)
	}

	rd, err := newReader(f, info.Size(), f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return rd, nil
}

// NewReader reads a POD5 file of the given size from r. Close does not close r.
func NewReader(r io.ReaderAt, size int64, opts ...ReaderOption) (*Reader, error) {
	return newReader(r, size, nil, opts...)
}

func newReader(r io.ReaderAt, size int64, closer io.Closer, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	marker, err := section.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	body, trailer, err := section.ReadFooter(r, size)
	if err != nil {
		return nil, err
	}

	if trailer.Marker != marker {
		return nil, fmt.Errorf("%w: trailer marker %s does not match header marker %s",
			errs.ErrInvalidTrailer, trailer.Marker, marker)
	}

	ft, err := footer.Parse(body)
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		r:       r,
		size:    size,
		closer:  closer,
		cfg:     cfg,
		logger:  cfg.logger.With(zap.Stringer("file_identifier", ft.FileIdentifier)),
		marker:  marker,
		trailer: trailer,
		footer:  ft,
	}

	rd.logger.Debug("pod5 footer parsed",
		zap.String("software", ft.Software),
		zap.String("pod5_version", ft.Pod5Version),
		zap.Int("contents", len(ft.Contents)),
		zap.Int64("footer_offset", trailer.FooterOffset),
	)

	return rd, nil
}

// Footer returns the parsed footer. It must not be modified.
func (rd *Reader) Footer() *footer.Footer {
	return rd.footer
}

// Locate returns the footer entry of the first table of the given kind.
func (rd *Reader) Locate(kind format.ContentType) (footer.EmbeddedFile, error) {
	ef, err := rd.footer.Find(kind)
	if err != nil {
		return footer.EmbeddedFile{}, err
	}

	if ef.Format != format.FormatFeatherV2 {
		return footer.EmbeddedFile{}, fmt.Errorf("%w: %s stored as %s", errs.ErrUnsupportedFormat, kind, ef.Format)
	}

	limit := rd.trailer.FooterOffset - section.FooterMagicSize
	if ef.Offset < section.HeaderSize || ef.Offset > limit || ef.Length < 0 || ef.Length > limit-ef.Offset {
		return footer.EmbeddedFile{}, fmt.Errorf("%w: %s at offset %d length %d outside table area",
			errs.ErrInvalidFooter, kind, ef.Offset, ef.Length)
	}

	return ef, nil
}

func (rd *Reader) tableReader(kind format.ContentType) (*io.SectionReader, error) {
	ef, err := rd.Locate(kind)
	if err != nil {
		return nil, err
	}

	return io.NewSectionReader(rd.r, ef.Offset, ef.Length), nil
}

// TableBytes returns the raw Arrow IPC bytes of the table of the given kind.
func (rd *Reader) TableBytes(kind format.ContentType) ([]byte, error) {
	ef, err := rd.Locate(kind)
	if err != nil {
		return nil, err
	}

	return section.ReadSpan(rd.r, rd.size, ef.Span())
}

// Checksum returns the xxHash64 of the table of the given kind.
func (rd *Reader) Checksum(kind format.ContentType) (uint64, error) {
	sr, err := rd.tableReader(kind)
	if err != nil {
		return 0, err
	}

	return hash.Reader(sr)
}

// Reads decodes the reads table.
func (rd *Reader) Reads() ([]table.Read, error) {
	sr, err := rd.tableReader(format.ContentReadsTable)
	if err != nil {
		return nil, err
	}

	reads, stamp, err := table.DecodeReads(sr, rd.cfg.mem)
	if err != nil {
		return nil, fmt.Errorf("decode reads table: %w", err)
	}

	if err := rd.checkStamp(format.ContentReadsTable, stamp); err != nil {
		return nil, err
	}

	return reads, nil
}

// RunInfos decodes the run info table.
func (rd *Reader) RunInfos() ([]table.RunInfo, error) {
	sr, err := rd.tableReader(format.ContentRunInfoTable)
	if err != nil {
		return nil, err
	}

	infos, stamp, err := table.DecodeRunInfos(sr, rd.cfg.mem)
	if err != nil {
		return nil, fmt.Errorf("decode run info table: %w", err)
	}

	if err := rd.checkStamp(format.ContentRunInfoTable, stamp); err != nil {
		return nil, err
	}

	return infos, nil
}

// SignalRows decodes the signal table in row order.
func (rd *Reader) SignalRows() ([]table.SignalRow, error) {
	sr, err := rd.tableReader(format.ContentSignalTable)
	if err != nil {
		return nil, err
	}

	rows, stamp, err := table.DecodeSignal(sr, rd.cfg.mem)
	if err != nil {
		return nil, fmt.Errorf("decode signal table: %w", err)
	}

	if err := rd.checkStamp(format.ContentSignalTable, stamp); err != nil {
		return nil, err
	}

	return rows, nil
}

// ReadSignal joins the samples of read from the decoded signal table rows.
func (rd *Reader) ReadSignal(read table.Read, rows []table.SignalRow) ([]int16, error) {
	return signal.Join(read.ReadID, rows, read.SignalIndex)
}

// ReadAll decodes the three tables concurrently.
func (rd *Reader) ReadAll(ctx context.Context) (*Contents, error) {
	var c Contents

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		c.Reads, err = rd.Reads()

		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		c.RunInfos, err = rd.RunInfos()

		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		c.Signal, err = rd.SignalRows()

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Close releases the file if Open opened it.
func (rd *Reader) Close() error {
	if rd.closer == nil {
		return nil
	}

	if err := rd.closer.Close(); err != nil {
		return fmt.Errorf("close pod5 file: %w", err)
	}

	return nil
}

// checkStamp verifies a table was written by the same session as the footer.
func (rd *Reader) checkStamp(kind format.ContentType, stamp table.Stamp) error {
	if stamp.FileIdentifier != rd.footer.FileIdentifier {
		return fmt.Errorf("%w: %s stamped with file identifier %s, footer has %s",
			errs.ErrInvalidTable, kind, stamp.FileIdentifier, rd.footer.FileIdentifier)
	}

	return nil
}

// LocateTable opens the file at path and returns the footer entry of the
// first table of the given kind.
func LocateTable(path string, kind format.ContentType) (footer.EmbeddedFile, error) {
	rd, err := Open(path)
	if err != nil {
		return footer.EmbeddedFile{}, err
	}
	defer rd.Close()

	return rd.Locate(kind)
}

// ReadBytes returns length bytes at offset of the file at path.
func ReadBytes(path string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("read bytes: invalid range offset %d length %d", offset, length)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pod5 file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pod5 file: %w", err)
	}

	if offset > info.Size() || length > info.Size()-offset {
		return nil, fmt.Errorf("read bytes: range offset %d length %d exceeds file size %d: %w",
			offset, length, info.Size(), io.ErrUnexpectedEOF)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(f, offset, length), buf); err != nil {
		return nil, fmt.Errorf("read %d bytes at %d: %w", length, offset, err)
	}

	return buf, nil
}

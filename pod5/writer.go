package pod5

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/footer"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/internal/options"
	"github.com/Adoni5/podders/internal/pool"
	"github.com/Adoni5/podders/section"
	"github.com/Adoni5/podders/signal"
	"github.com/Adoni5/podders/table"
)

// footerOrder is the order of the footer contents.
var footerOrder = []format.ContentType{
	format.ContentReadsTable,
	format.ContentRunInfoTable,
	format.ContentSignalTable,
}

// Writer is a single POD5 write session.
//
// Note: Writer is NOT thread-safe. Confine a session to one goroutine or
// guard it externally.
type Writer struct {
	sw     *section.Writer
	closer io.Closer
	cfg    *writerConfig
	logger *zap.Logger

	fileID        uuid.UUID
	readsSchema   *arrow.Schema
	runInfoSchema *arrow.Schema
	signalSchema  *arrow.Schema

	chunker    *signal.Chunker
	reads      []table.Read
	runInfos   []table.RunInfo
	signalRows []table.SignalRow

	tables map[format.ContentType]footer.EmbeddedFile
	sealed bool
	closed bool
	failed error
}

// Create creates or truncates the file at path and starts a write session on it.
// The file is closed by Writer.Close.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create pod5 file: %w", err)
	}

	w, err := newWriter(f, f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w.logger.Debug("pod5 file created", zap.String("path", path))

	return w, nil
}

// NewWriter starts a write session on ws at its current position. Close
// finishes the session but does not close ws.
func NewWriter(ws io.WriteSeeker, opts ...WriterOption) (*Writer, error) {
	return newWriter(ws, nil, opts...)
}

func newWriter(ws io.WriteSeeker, closer io.Closer, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fileID := cfg.fileIdentifier
	if fileID == uuid.Nil {
		var err error
		if fileID, err = uuid.NewRandom(); err != nil {
			return nil, fmt.Errorf("generate file identifier: %w", err)
		}
	}

	marker, err := section.NewMarker()
	if err != nil {
		return nil, err
	}

	stamp := table.Stamp{FileIdentifier: fileID, Software: cfg.software, Pod5Version: Pod5Version}
	signalSchema, err := table.SignalSchema(stamp, cfg.compression)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		sw:            section.NewWriter(ws, marker),
		closer:        closer,
		cfg:           cfg,
		logger:        cfg.logger.With(zap.Stringer("file_identifier", fileID)),
		fileID:        fileID,
		readsSchema:   table.ReadsSchema(stamp),
		runInfoSchema: table.RunInfoSchema(stamp),
		signalSchema:  signalSchema,
		chunker:       signal.NewChunker(),
		tables:        make(map[format.ContentType]footer.EmbeddedFile, len(footerOrder)),
	}

	if err := w.sw.WriteHeader(); err != nil {
		return nil, err
	}

	w.logger.Debug("header written", zap.Stringer("marker", marker))

	return w, nil
}

// FileIdentifier returns the identifier stamped into the footer and schemas.
func (w *Writer) FileIdentifier() uuid.UUID {
	return w.fileID
}

// PushRunInfo buffers a run info row for the run info table.
func (w *Writer) PushRunInfo(info table.RunInfo) error {
	if err := w.checkTable(format.ContentRunInfoTable); err != nil {
		return err
	}

	info.ContextTags = maps.Clone(info.ContextTags)
	info.TrackingID = maps.Clone(info.TrackingID)
	w.runInfos = append(w.runInfos, info)

	return nil
}

// PushRead buffers a read and chunks its signal into signal rows.
//
// Unknown end reasons are rejected. A zero NumSamples is set to
// len(read.Signal); any other mismatch is rejected. The samples are copied, and read.SignalIndex is replaced by the
// rows assigned here.
func (w *Writer) PushRead(read table.Read) error {
	if err := w.checkTable(format.ContentReadsTable); err != nil {
		return err
	}

	if !read.EndReason.IsValid() {
		return fmt.Errorf("%w: read %s has end reason %d", errs.ErrInvalidEndReason, read.ReadID, uint8(read.EndReason))
	}

	if read.NumSamples == 0 {
		read.NumSamples = uint64(len(read.Signal))
	} else if read.NumSamples != uint64(len(read.Signal)) {
		return fmt.Errorf("%w: read %s has %d samples, num_samples %d",
			errs.ErrSampleCountMismatch, read.ReadID, len(read.Signal), read.NumSamples)
	}

	rows, index := w.chunker.Chunk(read.ReadID, slices.Clone(read.Signal))
	read.Signal = nil
	read.SignalIndex = index

	w.reads = append(w.reads, read)
	w.signalRows = append(w.signalRows, rows...)

	return nil
}

// WriteRunInfoTable writes the buffered run info rows as the run info table.
func (w *Writer) WriteRunInfoTable() error {
	if err := w.checkTable(format.ContentRunInfoTable); err != nil {
		return err
	}

	err := w.writeTable(format.ContentRunInfoTable, len(w.runInfos), func(dst io.Writer) error {
		return table.EncodeRunInfos(dst, w.runInfoSchema, w.runInfos, w.cfg.mem)
	})
	if err != nil {
		return err
	}

	w.runInfos = nil

	return nil
}

// WriteReadsTable writes the buffered reads as the reads table.
func (w *Writer) WriteReadsTable() error {
	if err := w.checkTable(format.ContentReadsTable); err != nil {
		return err
	}

	err := w.writeTable(format.ContentReadsTable, len(w.reads), func(dst io.Writer) error {
		return table.EncodeReads(dst, w.readsSchema, w.reads, w.cfg.mem)
	})
	if err != nil {
		return err
	}

	w.reads = nil

	return nil
}

// WriteSignalTable writes the signal rows of every pushed read. The reads
// table must be written first so no read can be pushed after its signal.
func (w *Writer) WriteSignalTable() error {
	if err := w.checkTable(format.ContentSignalTable); err != nil {
		return err
	}

	if _, ok := w.tables[format.ContentReadsTable]; !ok {
		return errs.ErrReadsNotWritten
	}

	err := w.writeTable(format.ContentSignalTable, len(w.signalRows), func(dst io.Writer) error {
		return table.EncodeSignal(dst, w.signalSchema, w.signalRows, w.cfg.signalBatchRows, w.cfg.mem)
	})
	if err != nil {
		return err
	}

	w.signalRows = nil

	return nil
}

// WriteFooter writes the footer and trailer, sealing the session. All three
// tables must have been written.
func (w *Writer) WriteFooter() error {
	if err := w.checkWritable(); err != nil {
		return err
	}

	contents := make([]footer.EmbeddedFile, 0, len(footerOrder))
	for _, kind := range footerOrder {
		ef, ok := w.tables[kind]
		if !ok {
			return fmt.Errorf("%w: %s missing", errs.ErrTablesPending, kind)
		}
		contents = append(contents, ef)
	}

	body := footer.New(w.fileID, w.cfg.software, Pod5Version, contents...).Bytes()
	span, err := w.sw.WriteFooter(body)
	if err != nil {
		return w.fail(err)
	}

	w.sealed = true
	w.logger.Debug("footer written",
		zap.Int64("offset", span.Offset),
		zap.Int64("length", span.Length),
		zap.Uint64("signal_rows", w.chunker.Rows()),
	)

	return nil
}

// Close finishes the session and releases the file if Create opened it.
//
// Tables not yet written are written in run info, reads, signal order and the
// footer follows. Close on a sealed session only closes the file. Calling
// Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	err := w.finish()
	w.closed = true
	if err != nil {
		w.logger.Warn("pod5 session closed unfinished", zap.Error(err))
	}

	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close pod5 file: %w", cerr))
		}
	}

	return err
}

func (w *Writer) finish() error {
	if w.sealed {
		return nil
	}

	if w.failed != nil {
		return fmt.Errorf("%w: %w", errs.ErrSessionFailed, w.failed)
	}

	steps := []struct {
		kind  format.ContentType
		write func() error
	}{
		{format.ContentRunInfoTable, w.WriteRunInfoTable},
		{format.ContentReadsTable, w.WriteReadsTable},
		{format.ContentSignalTable, w.WriteSignalTable},
	}
	for _, step := range steps {
		if _, ok := w.tables[step.kind]; ok {
			continue
		}

		if err := step.write(); err != nil {
			return err
		}
	}

	return w.WriteFooter()
}

// writeTable encodes a table into a pooled buffer and appends it as one
// section. Encoding failures leave the file untouched; write failures fail
// the session.
func (w *Writer) writeTable(kind format.ContentType, rows int, encode func(io.Writer) error) error {
	buf := pool.GetTableBuffer()
	defer pool.PutTableBuffer(buf)

	if err := encode(buf); err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	span, err := w.sw.WriteSection(buf.Bytes())
	if err != nil {
		return w.fail(err)
	}

	w.tables[kind] = footer.NewEmbeddedFile(kind, span)
	w.logger.Debug("table written",
		zap.Stringer("content_type", kind),
		zap.Int("rows", rows),
		zap.Int64("offset", span.Offset),
		zap.Int64("length", span.Length),
	)

	return nil
}

func (w *Writer) checkWritable() error {
	switch {
	case w.failed != nil:
		return fmt.Errorf("%w: %w", errs.ErrSessionFailed, w.failed)
	case w.sealed:
		return errs.ErrSessionSealed
	case w.closed:
		return errs.ErrSessionSealed
	default:
		return nil
	}
}

// checkTable rejects any change to a table that was already written.
func (w *Writer) checkTable(kind format.ContentType) error {
	if err := w.checkWritable(); err != nil {
		return err
	}

	if _, ok := w.tables[kind]; ok {
		return fmt.Errorf("%w: %s", errs.ErrTableAlreadyWritten, kind)
	}

	return nil
}

func (w *Writer) fail(err error) error {
	w.failed = err
	w.logger.Error("pod5 write failed", zap.Error(err))

	return err
}

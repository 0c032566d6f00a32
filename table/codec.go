package table

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/Adoni5/podders/errs"
)

// writeIPC writes records as one Arrow IPC file. With no records the file
// carries only the schema.
func writeIPC(w io.Writer, schema *arrow.Schema, mem memory.Allocator, records ...arrow.Record) error {
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("create ipc writer: %w", err)
	}

	for _, rec := range records {
		if err := fw.Write(rec); err != nil {
			_ = fw.Close()
			return fmt.Errorf("write record batch: %w", err)
		}
	}

	if err := fw.Close(); err != nil {
		return fmt.Errorf("close ipc writer: %w", err)
	}

	return nil
}

// readIPC calls fn for every record batch of the IPC file in r. Records are
// released after fn returns, so fn must copy anything it keeps.
func readIPC(r ipc.ReadAtSeeker, mem memory.Allocator, fn func(arrow.Record) error) (*arrow.Schema, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidTable, err)
	}
	defer fr.Close()

	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("%w: record batch %d: %v", errs.ErrInvalidTable, i, err)
		}

		err = fn(rec)
		rec.Release()
		if err != nil {
			return nil, err
		}
	}

	return fr.Schema(), nil
}

// columns looks up typed columns of one record by name and keeps the first
// failure, so decoders can fetch every column before checking once.
type columns struct {
	rec arrow.Record
	err error
}

func column[T arrow.Array](c *columns, name string) T {
	var zero T
	if c.err != nil {
		return zero
	}

	idx := c.rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		c.err = fmt.Errorf("%w: missing column %q", errs.ErrInvalidTable, name)
		return zero
	}

	col, ok := c.rec.Column(idx[0]).(T)
	if !ok {
		c.err = fmt.Errorf("%w: column %q has type %s", errs.ErrInvalidTable, name, c.rec.Column(idx[0]).DataType())
		return zero
	}

	return col
}

type valuesBuilder[T any] interface {
	array.Builder
	AppendValues(v []T, valid []bool)
}

// buildArray appends vals to b, releases b and returns the finished array.
func buildArray[T any, B valuesBuilder[T]](b B, vals []T) arrow.Array {
	defer b.Release()
	b.AppendValues(vals, nil)

	return b.NewArray()
}

func buildUUIDs(mem memory.Allocator, ids []uuid.UUID) arrow.Array {
	b := array.NewFixedSizeBinaryBuilder(mem, uuidType)
	defer b.Release()

	b.Reserve(len(ids))
	for _, id := range ids {
		b.Append(id[:])
	}

	return b.NewArray()
}

func buildTimestamps(mem memory.Allocator, ts []time.Time) arrow.Array {
	b := array.NewTimestampBuilder(mem, timestampType)
	defer b.Release()

	b.Reserve(len(ts))
	for _, t := range ts {
		b.Append(arrow.Timestamp(t.UnixMilli()))
	}

	return b.NewArray()
}

func uuidAt(col *array.FixedSizeBinary, i int) (uuid.UUID, error) {
	id, err := uuid.FromBytes(col.Value(i))
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: row %d read_id: %v", errs.ErrInvalidTable, i, err)
	}

	return id, nil
}

func timeAt(col *array.Timestamp, i int) time.Time {
	return time.UnixMilli(int64(col.Value(i))).UTC()
}

// categoricalAt resolves row i of a dictionary column to its string value.
func categoricalAt(col *array.Dictionary, i int) (string, error) {
	values, ok := col.Dictionary().(*array.String)
	if !ok {
		return "", fmt.Errorf("%w: dictionary values have type %s", errs.ErrInvalidTable, col.Dictionary().DataType())
	}

	idx := col.GetValueIndex(i)
	if idx < 0 || idx >= values.Len() {
		return "", fmt.Errorf("%w: dictionary index %d out of range", errs.ErrInvalidTable, idx)
	}

	return values.Value(idx), nil
}

type releaser interface{ Release() }

func releaseAll[T releaser](items []T) {
	for _, item := range items {
		item.Release()
	}
}

package table

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/Adoni5/podders/compress"
	"github.com/Adoni5/podders/endian"
	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/format"
)

// DefaultSignalBatchRows is the number of signal rows per record batch.
const DefaultSignalBatchRows = 1000

// SignalRow is one chunk of a read's samples.
type SignalRow struct {
	ReadID     uuid.UUID
	Samples    []int16
	NumSamples uint32
}

// EncodeSignal writes rows to w as an Arrow IPC file with schema, which must
// come from SignalSchema. Rows are split into record batches of at most
// batchRows rows; a non-positive batchRows selects DefaultSignalBatchRows.
// Row order is preserved, so row i of rows is signal table row i.
func EncodeSignal(w io.Writer, schema *arrow.Schema, rows []SignalRow, batchRows int, mem memory.Allocator) error {
	compression, err := signalCompression(schema)
	if err != nil {
		return err
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return err
	}

	if batchRows <= 0 {
		batchRows = DefaultSignalBatchRows
	}

	records := make([]arrow.Record, 0, (len(rows)+batchRows-1)/batchRows)
	defer func() { releaseAll(records) }()

	for start := 0; start < len(rows); start += batchRows {
		end := min(start+batchRows, len(rows))

		rec, err := newSignalRecord(schema, rows[start:end], compression, codec, mem)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	return writeIPC(w, schema, mem, records...)
}

func newSignalRecord(
	schema *arrow.Schema,
	rows []SignalRow,
	compression format.CompressionType,
	codec compress.Codec,
	mem memory.Allocator,
) (arrow.Record, error) {
	ids := make([]uuid.UUID, len(rows))
	counts := make([]uint32, len(rows))
	for i := range rows {
		if int(rows[i].NumSamples) != len(rows[i].Samples) {
			return nil, fmt.Errorf("%w: signal row for read %s has %d samples, num_samples %d",
				errs.ErrSampleCountMismatch, rows[i].ReadID, len(rows[i].Samples), rows[i].NumSamples)
		}
		ids[i] = rows[i].ReadID
		counts[i] = rows[i].NumSamples
	}

	var samples arrow.Array
	if compression == format.CompressionNone {
		samples = buildSampleLists(mem, rows)
	} else {
		var err error
		if samples, err = buildCompressedSamples(mem, rows, codec); err != nil {
			return nil, err
		}
	}

	cols := []arrow.Array{
		buildUUIDs(mem, ids),
		samples,
		buildArray(array.NewUint32Builder(mem), counts),
	}
	defer releaseAll(cols)

	return array.NewRecord(schema, cols, int64(len(rows))), nil
}

func buildSampleLists(mem memory.Allocator, rows []SignalRow) arrow.Array {
	b := array.NewLargeListBuilder(mem, arrow.PrimitiveTypes.Int16)
	defer b.Release()

	values := b.ValueBuilder().(*array.Int16Builder)
	for i := range rows {
		b.Append(true)
		values.AppendValues(rows[i].Samples, nil)
	}

	return b.NewArray()
}

func buildCompressedSamples(mem memory.Allocator, rows []SignalRow, codec compress.Codec) (arrow.Array, error) {
	b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.LargeBinary)
	defer b.Release()

	engine := endian.GetLittleEndianEngine()
	var raw []byte
	for i := range rows {
		raw = endian.AppendInt16s(engine, raw[:0], rows[i].Samples)

		packed, err := codec.Compress(raw)
		if err != nil {
			return nil, fmt.Errorf("compress signal row for read %s: %w", rows[i].ReadID, err)
		}
		b.Append(packed)
	}

	return b.NewArray(), nil
}

// DecodeSignal reads every row of a signal table IPC file, in table order.
func DecodeSignal(r ipc.ReadAtSeeker, mem memory.Allocator) ([]SignalRow, Stamp, error) {
	var (
		rows  []SignalRow
		codec compress.Codec
	)

	schema, err := readIPC(r, mem, func(rec arrow.Record) error {
		if codec == nil {
			compression, err := signalCompression(rec.Schema())
			if err != nil {
				return err
			}

			if codec, err = compress.GetCodec(compression); err != nil {
				return err
			}
		}

		batch, err := decodeSignalRecord(rec, codec)
		if err != nil {
			return err
		}

		rows = append(rows, batch...)

		return nil
	})
	if err != nil {
		return nil, Stamp{}, err
	}

	stamp, err := StampOf(schema)
	if err != nil {
		return nil, Stamp{}, err
	}

	return rows, stamp, nil
}

func decodeSignalRecord(rec arrow.Record, codec compress.Codec) ([]SignalRow, error) {
	c := &columns{rec: rec}
	ids := column[*array.FixedSizeBinary](c, colReadID)
	counts := column[*array.Uint32](c, colSamples)
	if c.err != nil {
		return nil, c.err
	}

	samplesAt, err := sampleAccessor(rec, codec)
	if err != nil {
		return nil, err
	}

	n := int(rec.NumRows())
	rows := make([]SignalRow, n)
	for i := 0; i < n; i++ {
		id, err := uuidAt(ids, i)
		if err != nil {
			return nil, err
		}

		samples, err := samplesAt(i)
		if err != nil {
			return nil, fmt.Errorf("signal row %d for read %s: %w", i, id, err)
		}

		if len(samples) != int(counts.Value(i)) {
			return nil, fmt.Errorf("%w: signal row %d holds %d samples, samples column says %d",
				errs.ErrInvalidTable, i, len(samples), counts.Value(i))
		}

		rows[i] = SignalRow{ReadID: id, Samples: samples, NumSamples: counts.Value(i)}
	}

	return rows, nil
}

// sampleAccessor returns a function copying row i's samples out of either
// signal column layout.
func sampleAccessor(rec arrow.Record, codec compress.Codec) (func(i int) ([]int16, error), error) {
	idx := rec.Schema().FieldIndices(colSignal)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: missing column %q", errs.ErrInvalidTable, colSignal)
	}

	switch col := rec.Column(idx[0]).(type) {
	case *array.LargeList:
		values, ok := col.ListValues().(*array.Int16)
		if !ok {
			return nil, fmt.Errorf("%w: signal values have type %s", errs.ErrInvalidTable, col.ListValues().DataType())
		}
		all := values.Int16Values()

		return func(i int) ([]int16, error) {
			start, end := col.ValueOffsets(i)
			return append(make([]int16, 0, end-start), all[start:end]...), nil
		}, nil
	case *array.LargeBinary:
		engine := endian.GetLittleEndianEngine()

		return func(i int) ([]int16, error) {
			raw, err := codec.Decompress(col.Value(i))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrInvalidTable, err)
			}

			samples, err := endian.Int16s(engine, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrInvalidTable, err)
			}

			return samples, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: signal column has type %s", errs.ErrInvalidTable, col.DataType())
	}
}

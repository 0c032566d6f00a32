package table

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/Adoni5/podders/dictionary"
	"github.com/Adoni5/podders/errs"
)

// PoreType names the flow cell pore chemistry of a read.
type PoreType string

const (
	PoreTypeR941   PoreType = "R9.4.1"
	PoreTypeR1041  PoreType = "R10.4.1"
	PoreTypeNotSet PoreType = "not-set"
)

// EndReason records why acquisition of a read stopped.
type EndReason uint8

const (
	EndReasonUnknown EndReason = iota
	EndReasonMuxChange
	EndReasonUnblockMuxChange
	EndReasonDataServiceUnblockMuxChange
	EndReasonSignalPositive
	EndReasonSignalNegative
)

var endReasonNames = [...]string{
	EndReasonUnknown:                     "unknown",
	EndReasonMuxChange:                   "mux_change",
	EndReasonUnblockMuxChange:            "unblock_mux_change",
	EndReasonDataServiceUnblockMuxChange: "data_service_unblock_mux_change",
	EndReasonSignalPositive:              "signal_positive",
	EndReasonSignalNegative:              "signal_negative",
}

func (e EndReason) String() string {
	if int(e) < len(endReasonNames) {
		return endReasonNames[e]
	}

	return fmt.Sprintf("EndReason(%d)", uint8(e))
}

// IsValid reports whether e is one of the named end reasons.
func (e EndReason) IsValid() bool {
	return int(e) < len(endReasonNames)
}

// ParseEndReason maps a stored end reason string back to its value.
func ParseEndReason(s string) (EndReason, error) {
	for i, name := range endReasonNames {
		if name == s {
			return EndReason(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrInvalidEndReason, s)
}

// Read is one row of per-read metadata.
//
// Signal holds the raw samples handed to a writer; it is not a reads table
// column. SignalIndex lists the signal table rows holding the samples in
// playback order. Writers fill it in during chunking and decoders return it.
// RunInfo links the read to a run info row by acquisition id.
type Read struct {
	ReadID                 uuid.UUID
	Signal                 []int16
	SignalIndex            []uint64
	Channel                uint16
	Well                   uint8
	PoreType               PoreType
	CalibrationOffset      float32
	CalibrationScale       float32
	ReadNumber             uint32
	Start                  uint64
	MedianBefore           float32
	TrackedScalingScale    float32
	TrackedScalingShift    float32
	PredictedScalingScale  float32
	PredictedScalingShift  float32
	NumReadsSinceMuxChange uint32
	TimeSinceMuxChange     float32
	NumMinknowEvents       uint64
	EndReason              EndReason
	EndReasonForced        bool
	RunInfo                string
	NumSamples             uint64
}

// EncodeReads writes reads to w as an Arrow IPC file with schema, which must
// come from ReadsSchema. All rows go into a single record batch so the shared
// dictionary is written exactly once.
func EncodeReads(w io.Writer, schema *arrow.Schema, reads []Read, mem memory.Allocator) error {
	if len(reads) == 0 {
		return writeIPC(w, schema, mem)
	}

	rec, err := newReadsRecord(schema, reads, mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	return writeIPC(w, schema, mem, rec)
}

func newReadsRecord(schema *arrow.Schema, reads []Read, mem memory.Allocator) (arrow.Record, error) {
	n := len(reads)
	var (
		ids         = make([]uuid.UUID, n)
		channels    = make([]uint16, n)
		wells       = make([]uint8, n)
		poreTypes   = make([]string, n)
		calOffsets  = make([]float32, n)
		calScales   = make([]float32, n)
		readNumbers = make([]uint32, n)
		starts      = make([]uint64, n)
		medians     = make([]float32, n)
		tScales     = make([]float32, n)
		tShifts     = make([]float32, n)
		pScales     = make([]float32, n)
		pShifts     = make([]float32, n)
		sinceMuxN   = make([]uint32, n)
		sinceMuxT   = make([]float32, n)
		events      = make([]uint64, n)
		endReasons  = make([]string, n)
		forced      = make([]bool, n)
		runInfos    = make([]string, n)
		numSamples  = make([]uint64, n)
	)

	for i := range reads {
		r := &reads[i]
		if !r.EndReason.IsValid() {
			return nil, fmt.Errorf("%w: read %s has end reason %d", errs.ErrInvalidEndReason, r.ReadID, uint8(r.EndReason))
		}

		ids[i] = r.ReadID
		channels[i] = r.Channel
		wells[i] = r.Well
		poreTypes[i] = string(r.PoreType)
		calOffsets[i] = r.CalibrationOffset
		calScales[i] = r.CalibrationScale
		readNumbers[i] = r.ReadNumber
		starts[i] = r.Start
		medians[i] = r.MedianBefore
		tScales[i] = r.TrackedScalingScale
		tShifts[i] = r.TrackedScalingShift
		pScales[i] = r.PredictedScalingScale
		pShifts[i] = r.PredictedScalingShift
		sinceMuxN[i] = r.NumReadsSinceMuxChange
		sinceMuxT[i] = r.TimeSinceMuxChange
		events[i] = r.NumMinknowEvents
		endReasons[i] = r.EndReason.String()
		forced[i] = r.EndReasonForced
		runInfos[i] = r.RunInfo
		numSamples[i] = r.NumSamples
	}

	dict, indices, err := dictionary.Encode(poreTypes, endReasons, runInfos)
	if err != nil {
		return nil, err
	}

	dictValues := buildArray(array.NewStringBuilder(mem), dict.Values())
	defer dictValues.Release()

	categorical := func(idx []int16) arrow.Array {
		codes := buildArray(array.NewInt16Builder(mem), idx)
		defer codes.Release()

		return array.NewDictionaryArray(categoricalType, codes, dictValues)
	}

	cols := make([]arrow.Array, 0, schema.NumFields())
	defer func() { releaseAll(cols) }()

	cols = append(cols,
		buildUUIDs(mem, ids),
		buildSignalIndex(mem, reads),
		buildArray(array.NewUint16Builder(mem), channels),
		buildArray(array.NewUint8Builder(mem), wells),
		categorical(indices[0]),
		buildArray(array.NewFloat32Builder(mem), calOffsets),
		buildArray(array.NewFloat32Builder(mem), calScales),
		buildArray(array.NewUint32Builder(mem), readNumbers),
		buildArray(array.NewUint64Builder(mem), starts),
		buildArray(array.NewFloat32Builder(mem), medians),
		buildArray(array.NewFloat32Builder(mem), tScales),
		buildArray(array.NewFloat32Builder(mem), tShifts),
		buildArray(array.NewFloat32Builder(mem), pScales),
		buildArray(array.NewFloat32Builder(mem), pShifts),
		buildArray(array.NewUint32Builder(mem), sinceMuxN),
		buildArray(array.NewFloat32Builder(mem), sinceMuxT),
		buildArray(array.NewUint64Builder(mem), events),
		categorical(indices[1]),
		buildArray(array.NewBooleanBuilder(mem), forced),
		categorical(indices[2]),
		buildArray(array.NewUint64Builder(mem), numSamples),
	)

	if len(cols) != schema.NumFields() {
		return nil, fmt.Errorf("%w: reads schema has %d fields, built %d columns", errs.ErrInvalidTable, schema.NumFields(), len(cols))
	}

	return array.NewRecord(schema, cols, int64(n)), nil
}

func buildSignalIndex(mem memory.Allocator, reads []Read) arrow.Array {
	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Uint64)
	defer b.Release()

	values := b.ValueBuilder().(*array.Uint64Builder)
	for i := range reads {
		b.Append(true)
		values.AppendValues(reads[i].SignalIndex, nil)
	}

	return b.NewArray()
}

// DecodeReads reads every row of a reads table IPC file.
func DecodeReads(r ipc.ReadAtSeeker, mem memory.Allocator) ([]Read, Stamp, error) {
	var reads []Read

	schema, err := readIPC(r, mem, func(rec arrow.Record) error {
		rows, err := decodeReadsRecord(rec)
		if err != nil {
			return err
		}

		reads = append(reads, rows...)

		return nil
	})
	if err != nil {
		return nil, Stamp{}, err
	}

	stamp, err := StampOf(schema)
	if err != nil {
		return nil, Stamp{}, err
	}

	return reads, stamp, nil
}

func decodeReadsRecord(rec arrow.Record) ([]Read, error) {
	c := &columns{rec: rec}
	var (
		ids         = column[*array.FixedSizeBinary](c, colReadID)
		signal      = column[*array.List](c, colSignal)
		channels    = column[*array.Uint16](c, colChannel)
		wells       = column[*array.Uint8](c, colWell)
		poreTypes   = column[*array.Dictionary](c, colPoreType)
		calOffsets  = column[*array.Float32](c, colCalibrationOffset)
		calScales   = column[*array.Float32](c, colCalibrationScale)
		readNumbers = column[*array.Uint32](c, colReadNumber)
		starts      = column[*array.Uint64](c, colStart)
		medians     = column[*array.Float32](c, colMedianBefore)
		tScales     = column[*array.Float32](c, colTrackedScalingScale)
		tShifts     = column[*array.Float32](c, colTrackedScalingShift)
		pScales     = column[*array.Float32](c, colPredictedScalingScale)
		pShifts     = column[*array.Float32](c, colPredictedScalingShift)
		sinceMuxN   = column[*array.Uint32](c, colNumReadsSinceMuxChange)
		sinceMuxT   = column[*array.Float32](c, colTimeSinceMuxChange)
		events      = column[*array.Uint64](c, colNumMinknowEvents)
		endReasons  = column[*array.Dictionary](c, colEndReason)
		forced      = column[*array.Boolean](c, colEndReasonForced)
		runInfos    = column[*array.Dictionary](c, colRunInfo)
		numSamples  = column[*array.Uint64](c, colNumSamples)
	)
	if c.err != nil {
		return nil, c.err
	}

	index, ok := signal.ListValues().(*array.Uint64)
	if !ok {
		return nil, fmt.Errorf("%w: signal index values have type %s", errs.ErrInvalidTable, signal.ListValues().DataType())
	}
	indexValues := index.Uint64Values()

	n := int(rec.NumRows())
	reads := make([]Read, n)
	for i := 0; i < n; i++ {
		id, err := uuidAt(ids, i)
		if err != nil {
			return nil, err
		}

		poreType, err := categoricalAt(poreTypes, i)
		if err != nil {
			return nil, err
		}

		endReasonName, err := categoricalAt(endReasons, i)
		if err != nil {
			return nil, err
		}

		endReason, err := ParseEndReason(endReasonName)
		if err != nil {
			return nil, err
		}

		runInfo, err := categoricalAt(runInfos, i)
		if err != nil {
			return nil, err
		}

		start, end := signal.ValueOffsets(i)
		reads[i] = Read{
			ReadID:                 id,
			SignalIndex:            append([]uint64(nil), indexValues[start:end]...),
			Channel:                channels.Value(i),
			Well:                   wells.Value(i),
			PoreType:               PoreType(poreType),
			CalibrationOffset:      calOffsets.Value(i),
			CalibrationScale:       calScales.Value(i),
			ReadNumber:             readNumbers.Value(i),
			Start:                  starts.Value(i),
			MedianBefore:           medians.Value(i),
			TrackedScalingScale:    tScales.Value(i),
			TrackedScalingShift:    tShifts.Value(i),
			PredictedScalingScale:  pScales.Value(i),
			PredictedScalingShift:  pShifts.Value(i),
			NumReadsSinceMuxChange: sinceMuxN.Value(i),
			TimeSinceMuxChange:     sinceMuxT.Value(i),
			NumMinknowEvents:       events.Value(i),
			EndReason:              endReason,
			EndReasonForced:        forced.Value(i),
			RunInfo:                runInfo,
			NumSamples:             numSamples.Value(i),
		}
	}

	return reads, nil
}

package table

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Adoni5/podders/errs"
)

// RunInfo is one row of acquisition metadata. Reads reference it through
// AcquisitionID.
type RunInfo struct {
	AcquisitionID         string
	AcquisitionStartTime  time.Time
	AdcMax                int16
	AdcMin                int16
	ContextTags           map[string]string
	ExperimentName        string
	FlowCellID            string
	FlowCellProductCode   string
	ProtocolName          string
	ProtocolRunID         string
	ProtocolStartTime     time.Time
	SampleID              string
	SampleRate            uint16
	SequencingKit         string
	SequencerPosition     string
	SequencerPositionType string
	Software              string
	SystemName            string
	SystemType            string
	TrackingID            map[string]string
}

// EncodeRunInfos writes run info rows to w as an Arrow IPC file with schema,
// which must come from RunInfoSchema. Timestamps are truncated to
// milliseconds.
func EncodeRunInfos(w io.Writer, schema *arrow.Schema, infos []RunInfo, mem memory.Allocator) error {
	if len(infos) == 0 {
		return writeIPC(w, schema, mem)
	}

	rec := newRunInfoRecord(schema, infos, mem)
	defer rec.Release()

	return writeIPC(w, schema, mem, rec)
}

func newRunInfoRecord(schema *arrow.Schema, infos []RunInfo, mem memory.Allocator) arrow.Record {
	n := len(infos)
	strs := func(get func(*RunInfo) string) arrow.Array {
		vals := make([]string, n)
		for i := range infos {
			vals[i] = get(&infos[i])
		}

		return buildArray(array.NewStringBuilder(mem), vals)
	}

	times := func(get func(*RunInfo) time.Time) arrow.Array {
		vals := make([]time.Time, n)
		for i := range infos {
			vals[i] = get(&infos[i])
		}

		return buildTimestamps(mem, vals)
	}

	tags := func(get func(*RunInfo) map[string]string) arrow.Array {
		b := array.NewMapBuilderWithType(mem, tagsType)
		defer b.Release()

		keys := b.KeyBuilder().(*array.StringBuilder)
		items := b.ItemBuilder().(*array.StringBuilder)
		for i := range infos {
			m := get(&infos[i])
			b.Append(true)
			for _, k := range slices.Sorted(maps.Keys(m)) {
				keys.Append(k)
				items.Append(m[k])
			}
		}

		return b.NewArray()
	}

	adcMax := make([]int16, n)
	adcMin := make([]int16, n)
	rates := make([]uint16, n)
	for i := range infos {
		adcMax[i] = infos[i].AdcMax
		adcMin[i] = infos[i].AdcMin
		rates[i] = infos[i].SampleRate
	}

	cols := []arrow.Array{
		strs(func(ri *RunInfo) string { return ri.AcquisitionID }),
		times(func(ri *RunInfo) time.Time { return ri.AcquisitionStartTime }),
		buildArray(array.NewInt16Builder(mem), adcMax),
		buildArray(array.NewInt16Builder(mem), adcMin),
		tags(func(ri *RunInfo) map[string]string { return ri.ContextTags }),
		strs(func(ri *RunInfo) string { return ri.ExperimentName }),
		strs(func(ri *RunInfo) string { return ri.FlowCellID }),
		strs(func(ri *RunInfo) string { return ri.FlowCellProductCode }),
		strs(func(ri *RunInfo) string { return ri.ProtocolName }),
		strs(func(ri *RunInfo) string { return ri.ProtocolRunID }),
		times(func(ri *RunInfo) time.Time { return ri.ProtocolStartTime }),
		strs(func(ri *RunInfo) string { return ri.SampleID }),
		buildArray(array.NewUint16Builder(mem), rates),
		strs(func(ri *RunInfo) string { return ri.SequencingKit }),
		strs(func(ri *RunInfo) string { return ri.SequencerPosition }),
		strs(func(ri *RunInfo) string { return ri.SequencerPositionType }),
		strs(func(ri *RunInfo) string { return ri.Software }),
		strs(func(ri *RunInfo) string { return ri.SystemName }),
		strs(func(ri *RunInfo) string { return ri.SystemType }),
		tags(func(ri *RunInfo) map[string]string { return ri.TrackingID }),
	}
	defer releaseAll(cols)

	return array.NewRecord(schema, cols, int64(n))
}

// DecodeRunInfos reads every row of a run info table IPC file. Timestamps
// come back in UTC.
func DecodeRunInfos(r ipc.ReadAtSeeker, mem memory.Allocator) ([]RunInfo, Stamp, error) {
	var infos []RunInfo

	schema, err := readIPC(r, mem, func(rec arrow.Record) error {
		rows, err := decodeRunInfoRecord(rec)
		if err != nil {
			return err
		}

		infos = append(infos, rows...)

		return nil
	})
	if err != nil {
		return nil, Stamp{}, err
	}

	stamp, err := StampOf(schema)
	if err != nil {
		return nil, Stamp{}, err
	}

	return infos, stamp, nil
}

func decodeRunInfoRecord(rec arrow.Record) ([]RunInfo, error) {
	c := &columns{rec: rec}
	var (
		acquisitionID   = column[*array.String](c, colAcquisitionID)
		acquisitionTime = column[*array.Timestamp](c, colAcquisitionStartTime)
		adcMax          = column[*array.Int16](c, colAdcMax)
		adcMin          = column[*array.Int16](c, colAdcMin)
		contextTags     = column[*array.Map](c, colContextTags)
		experiment      = column[*array.String](c, colExperimentName)
		flowCell        = column[*array.String](c, colFlowCellID)
		productCode     = column[*array.String](c, colFlowCellProductCode)
		protocol        = column[*array.String](c, colProtocolName)
		protocolRunID   = column[*array.String](c, colProtocolRunID)
		protocolTime    = column[*array.Timestamp](c, colProtocolStartTime)
		sampleID        = column[*array.String](c, colSampleID)
		sampleRate      = column[*array.Uint16](c, colSampleRate)
		kit             = column[*array.String](c, colSequencingKit)
		position        = column[*array.String](c, colSequencerPosition)
		positionType    = column[*array.String](c, colSequencerPositionType)
		software        = column[*array.String](c, colSoftware)
		systemName      = column[*array.String](c, colSystemName)
		systemType      = column[*array.String](c, colSystemType)
		trackingID      = column[*array.Map](c, colTrackingID)
	)
	if c.err != nil {
		return nil, c.err
	}

	n := int(rec.NumRows())
	infos := make([]RunInfo, n)
	for i := 0; i < n; i++ {
		ctxTags, err := tagsAt(contextTags, i)
		if err != nil {
			return nil, err
		}

		tracking, err := tagsAt(trackingID, i)
		if err != nil {
			return nil, err
		}

		infos[i] = RunInfo{
			AcquisitionID:         acquisitionID.Value(i),
			AcquisitionStartTime:  timeAt(acquisitionTime, i),
			AdcMax:                adcMax.Value(i),
			AdcMin:                adcMin.Value(i),
			ContextTags:           ctxTags,
			ExperimentName:        experiment.Value(i),
			FlowCellID:            flowCell.Value(i),
			FlowCellProductCode:   productCode.Value(i),
			ProtocolName:          protocol.Value(i),
			ProtocolRunID:         protocolRunID.Value(i),
			ProtocolStartTime:     timeAt(protocolTime, i),
			SampleID:              sampleID.Value(i),
			SampleRate:            sampleRate.Value(i),
			SequencingKit:         kit.Value(i),
			SequencerPosition:     position.Value(i),
			SequencerPositionType: positionType.Value(i),
			Software:              software.Value(i),
			SystemName:            systemName.Value(i),
			SystemType:            systemType.Value(i),
			TrackingID:            tracking,
		}
	}

	return infos, nil
}

func tagsAt(col *array.Map, i int) (map[string]string, error) {
	keys, ok := col.Keys().(*array.String)
	if !ok {
		return nil, fmt.Errorf("%w: map keys have type %s", errs.ErrInvalidTable, col.Keys().DataType())
	}

	items, ok := col.Items().(*array.String)
	if !ok {
		return nil, fmt.Errorf("%w: map items have type %s", errs.ErrInvalidTable, col.Items().DataType())
	}

	start, end := col.ValueOffsets(i)
	m := make(map[string]string, end-start)
	for j := int(start); j < int(end); j++ {
		m[keys.Value(j)] = items.Value(j)
	}

	return m, nil
}

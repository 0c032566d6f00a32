package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/format"
)

// schema-level metadata keys
const (
	MetaPod5Version    = "MINKNOW:pod5_version"
	MetaSoftware       = "MINKNOW:software"
	MetaFileIdentifier = "MINKNOW:file_identifier"

	// MetaSignalCompression is set on the signal field of compressed signal
	// tables. Only this module reads that layout.
	MetaSignalCompression = "PODDERS:signal_compression"
)

// field-level metadata marking a fixed_size_binary(16) column as a UUID
const (
	extensionNameKey     = "ARROW:extension:name"
	extensionMetadataKey = "ARROW:extension:metadata"
	uuidExtensionName    = "minknow.uuid"
)

// Stamp is the per-session metadata written into every table schema.
type Stamp struct {
	FileIdentifier uuid.UUID
	Software       string
	Pod5Version    string
}

func (s Stamp) metadata() *arrow.Metadata {
	md := arrow.NewMetadata(
		[]string{MetaPod5Version, MetaSoftware, MetaFileIdentifier},
		[]string{s.Pod5Version, s.Software, s.FileIdentifier.String()},
	)

	return &md
}

// StampOf reads the stamp back from a schema.
func StampOf(schema *arrow.Schema) (Stamp, error) {
	md := schema.Metadata()

	value := func(key string) (string, error) {
		idx := md.FindKey(key)
		if idx < 0 {
			return "", fmt.Errorf("%w: schema metadata %q missing", errs.ErrInvalidTable, key)
		}

		return md.Values()[idx], nil
	}

	var s Stamp
	raw, err := value(MetaFileIdentifier)
	if err != nil {
		return Stamp{}, err
	}

	if s.FileIdentifier, err = uuid.Parse(raw); err != nil {
		return Stamp{}, fmt.Errorf("%w: file identifier %q: %v", errs.ErrInvalidTable, raw, err)
	}

	if s.Software, err = value(MetaSoftware); err != nil {
		return Stamp{}, err
	}

	if s.Pod5Version, err = value(MetaPod5Version); err != nil {
		return Stamp{}, err
	}

	return s, nil
}

var (
	uuidType = &arrow.FixedSizeBinaryType{ByteWidth: 16}

	categoricalType = &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Int16,
		ValueType: arrow.BinaryTypes.String,
	}

	timestampType = &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}

	tagsType = arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)
)

func uuidField(name string) arrow.Field {
	return arrow.Field{
		Name: name,
		Type: uuidType,
		Metadata: arrow.NewMetadata(
			[]string{extensionNameKey, extensionMetadataKey},
			[]string{uuidExtensionName, ""},
		),
	}
}

func field(name string, typ arrow.DataType) arrow.Field {
	return arrow.Field{Name: name, Type: typ}
}

// ReadsSchema returns the reads table schema.
func ReadsSchema(stamp Stamp) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		uuidField(colReadID),
		field(colSignal, arrow.ListOf(arrow.PrimitiveTypes.Uint64)),
		field(colChannel, arrow.PrimitiveTypes.Uint16),
		field(colWell, arrow.PrimitiveTypes.Uint8),
		field(colPoreType, categoricalType),
		field(colCalibrationOffset, arrow.PrimitiveTypes.Float32),
		field(colCalibrationScale, arrow.PrimitiveTypes.Float32),
		field(colReadNumber, arrow.PrimitiveTypes.Uint32),
		field(colStart, arrow.PrimitiveTypes.Uint64),
		field(colMedianBefore, arrow.PrimitiveTypes.Float32),
		field(colTrackedScalingScale, arrow.PrimitiveTypes.Float32),
		field(colTrackedScalingShift, arrow.PrimitiveTypes.Float32),
		field(colPredictedScalingScale, arrow.PrimitiveTypes.Float32),
		field(colPredictedScalingShift, arrow.PrimitiveTypes.Float32),
		field(colNumReadsSinceMuxChange, arrow.PrimitiveTypes.Uint32),
		field(colTimeSinceMuxChange, arrow.PrimitiveTypes.Float32),
		field(colNumMinknowEvents, arrow.PrimitiveTypes.Uint64),
		field(colEndReason, categoricalType),
		field(colEndReasonForced, arrow.FixedWidthTypes.Boolean),
		field(colRunInfo, categoricalType),
		field(colNumSamples, arrow.PrimitiveTypes.Uint64),
	}, stamp.metadata())
}

// RunInfoSchema returns the run info table schema.
func RunInfoSchema(stamp Stamp) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		field(colAcquisitionID, arrow.BinaryTypes.String),
		field(colAcquisitionStartTime, timestampType),
		field(colAdcMax, arrow.PrimitiveTypes.Int16),
		field(colAdcMin, arrow.PrimitiveTypes.Int16),
		field(colContextTags, tagsType),
		field(colExperimentName, arrow.BinaryTypes.String),
		field(colFlowCellID, arrow.BinaryTypes.String),
		field(colFlowCellProductCode, arrow.BinaryTypes.String),
		field(colProtocolName, arrow.BinaryTypes.String),
		field(colProtocolRunID, arrow.BinaryTypes.String),
		field(colProtocolStartTime, timestampType),
		field(colSampleID, arrow.BinaryTypes.String),
		field(colSampleRate, arrow.PrimitiveTypes.Uint16),
		field(colSequencingKit, arrow.BinaryTypes.String),
		field(colSequencerPosition, arrow.BinaryTypes.String),
		field(colSequencerPositionType, arrow.BinaryTypes.String),
		field(colSoftware, arrow.BinaryTypes.String),
		field(colSystemName, arrow.BinaryTypes.String),
		field(colSystemType, arrow.BinaryTypes.String),
		field(colTrackingID, tagsType),
	}, stamp.metadata())
}

// SignalSchema returns the signal table schema. Any compression other than
// format.CompressionNone switches the signal column to large_binary.
func SignalSchema(stamp Stamp, compression format.CompressionType) (*arrow.Schema, error) {
	signal := field(colSignal, arrow.LargeListOf(arrow.PrimitiveTypes.Int16))

	switch compression {
	case format.CompressionNone:
	case format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		signal = arrow.Field{
			Name:     colSignal,
			Type:     arrow.BinaryTypes.LargeBinary,
			Metadata: arrow.NewMetadata([]string{MetaSignalCompression}, []string{compression.String()}),
		}
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compression)
	}

	return arrow.NewSchema([]arrow.Field{
		uuidField(colReadID),
		signal,
		field(colSamples, arrow.PrimitiveTypes.Uint32),
	}, stamp.metadata()), nil
}

// signalCompression reports how the signal column of schema is stored.
func signalCompression(schema *arrow.Schema) (format.CompressionType, error) {
	fields, ok := schema.FieldsByName(colSignal)
	if !ok {
		return 0, fmt.Errorf("%w: missing column %q", errs.ErrInvalidTable, colSignal)
	}

	f := fields[0]
	switch f.Type.ID() {
	case arrow.LARGE_LIST:
		return format.CompressionNone, nil
	case arrow.LARGE_BINARY:
		idx := f.Metadata.FindKey(MetaSignalCompression)
		if idx < 0 {
			return 0, fmt.Errorf("%w: compressed signal column without codec metadata", errs.ErrInvalidTable)
		}

		c, ok := format.ParseCompressionType(f.Metadata.Values()[idx])
		if !ok || c == format.CompressionNone {
			return 0, fmt.Errorf("%w: %q", errs.ErrInvalidCompression, f.Metadata.Values()[idx])
		}

		return c, nil
	default:
		return 0, fmt.Errorf("%w: signal column has type %s", errs.ErrInvalidTable, f.Type)
	}
}

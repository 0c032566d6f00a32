package format

type (
	// ContentType tags the logical table an embedded file holds.
	ContentType int16
	// TableFormat is the encoding of an embedded file.
	TableFormat int16
	// CompressionType selects the codec applied to signal samples.
	CompressionType uint8
)

// Values match the Minknow.ReadsFormat footer schema.
const (
	ContentReadsTable   ContentType = 0
	ContentSignalTable  ContentType = 1
	ContentReadIDIndex  ContentType = 2
	ContentOtherIndex   ContentType = 3
	ContentRunInfoTable ContentType = 4
)

const (
	FormatFeatherV2 TableFormat = 0 // FormatFeatherV2 is an Arrow IPC file.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores samples as large_list<int16>.
	CompressionZstd CompressionType = 0x2 // CompressionZstd stores Zstandard-compressed samples.
	CompressionS2   CompressionType = 0x3 // CompressionS2 stores S2-compressed samples.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 stores LZ4 block-compressed samples.
)

func (c ContentType) String() string {
	switch c {
	case ContentReadsTable:
		return "ReadsTable"
	case ContentSignalTable:
		return "SignalTable"
	case ContentReadIDIndex:
		return "ReadIdIndex"
	case ContentOtherIndex:
		return "OtherIndex"
	case ContentRunInfoTable:
		return "RunInfoTable"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is one of the known content types.
func (c ContentType) IsValid() bool {
	return c >= ContentReadsTable && c <= ContentRunInfoTable
}

func (f TableFormat) String() string {
	switch f {
	case FormatFeatherV2:
		return "FeatherV2"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType is the inverse of CompressionType.String.
func ParseCompressionType(s string) (CompressionType, bool) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		if c.String() == s {
			return c, true
		}
	}

	return 0, false
}

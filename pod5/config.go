package pod5

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/internal/options"
	"github.com/Adoni5/podders/table"
)

const (
	// Pod5Version is the format version written into the footer and every table schema.
	Pod5Version = "0.3.2"
	// DefaultSoftware names the producing software unless WithSoftware overrides it.
	DefaultSoftware = "PODDERS! v0.1.0"
)

type writerConfig struct {
	logger          *zap.Logger
	mem             memory.Allocator
	software        string
	fileIdentifier  uuid.UUID
	compression     format.CompressionType
	signalBatchRows int
}

func defaultWriterConfig() *writerConfig {
	return &writerConfig{
		logger:          zap.NewNop(),
		mem:             memory.DefaultAllocator,
		software:        DefaultSoftware,
		compression:     format.CompressionNone,
		signalBatchRows: table.DefaultSignalBatchRows,
	}
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithLogger sets the logger used for session events. The default discards everything.
func WithLogger(logger *zap.Logger) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithAllocator sets the Arrow allocator used to build table columns.
func WithAllocator(mem memory.Allocator) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if mem != nil {
			c.mem = mem
		}
	})
}

// WithSoftware overrides the producing software recorded in the footer and schemas.
func WithSoftware(software string) WriterOption {
	return options.New(func(c *writerConfig) error {
		if software == "" {
			return errors.New("software name must not be empty")
		}
		c.software = software

		return nil
	})
}

// WithFileIdentifier fixes the file identifier instead of drawing a random one.
func WithFileIdentifier(id uuid.UUID) WriterOption {
	return options.New(func(c *writerConfig) error {
		if id == uuid.Nil {
			return errors.New("file identifier must not be the nil UUID")
		}
		c.fileIdentifier = id

		return nil
	})
}

// WithSignalCompression stores signal rows compressed with the given codec.
// format.CompressionNone, the default, keeps the plain large_list<int16> layout.
//
// Any other codec writes the signal column as large_binary tagged with
// PODDERS:signal_compression field metadata. That layout is specific to this
// module: other POD5 readers cannot decode the signal table of such files.
func WithSignalCompression(compression format.CompressionType) WriterOption {
	return options.New(func(c *writerConfig) error {
		switch compression {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = compression
			return nil
		default:
			return fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compression)
		}
	})
}

// WithSignalBatchRows sets how many signal rows go into one Arrow record batch.
func WithSignalBatchRows(rows int) WriterOption {
	return options.New(func(c *writerConfig) error {
		if rows <= 0 {
			return fmt.Errorf("signal batch rows must be positive, got %d", rows)
		}
		c.signalBatchRows = rows

		return nil
	})
}

type readerConfig struct {
	logger *zap.Logger
	mem    memory.Allocator
}

func defaultReaderConfig() *readerConfig {
	return &readerConfig{
		logger: zap.NewNop(),
		mem:    memory.DefaultAllocator,
	}
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

// WithReaderLogger sets the logger used by a Reader.
func WithReaderLogger(logger *zap.Logger) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithReaderAllocator sets the Arrow allocator used while decoding tables.
func WithReaderAllocator(mem memory.Allocator) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		if mem != nil {
			c.mem = mem
		}
	})
}

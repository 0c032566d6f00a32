// Package signal splits per-read sample sequences into signal table rows and
// joins them back.
//
// A read with N samples occupies ceil(N/MaxSignal) consecutive signal rows,
// every row but the last holding exactly MaxSignal samples. A read with no
// samples still occupies one row with zero samples, so every read has a
// non-empty signal index.
package signal

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/table"
)

// MaxSignal is the maximum number of samples in one signal row.
const MaxSignal = 20000

// Chunker assigns signal table row numbers across the reads of one session.
//
// The row counter starts at zero and only grows; rows produced by successive
// Chunk calls are meant to be appended to the signal table in call order.
// A Chunker is not safe for concurrent use.
type Chunker struct {
	rows uint64
}

// NewChunker creates a Chunker whose first row is signal table row 0.
func NewChunker() *Chunker {
	return &Chunker{}
}

// Rows returns the number of signal rows produced so far.
func (c *Chunker) Rows() uint64 {
	return c.rows
}

// Chunk splits samples into signal rows for readID and returns them with the
// global row number of each. Rows reference samples without copying.
func (c *Chunker) Chunk(readID uuid.UUID, samples []int16) ([]table.SignalRow, []uint64) {
	n := max(1, (len(samples)+MaxSignal-1)/MaxSignal)
	rows := make([]table.SignalRow, 0, n)
	index := make([]uint64, 0, n)

	for start := 0; start == 0 || start < len(samples); start += MaxSignal {
		end := min(start+MaxSignal, len(samples))
		rows = append(rows, table.SignalRow{
			ReadID:     readID,
			Samples:    samples[start:end:end],
			NumSamples: uint32(end - start), //nolint: gosec
		})
		index = append(index, c.rows)
		c.rows++
	}

	return rows, index
}

// Join reassembles a read's samples from the signal table rows named by index,
// in index order. Every referenced row must belong to readID.
func Join(readID uuid.UUID, rows []table.SignalRow, index []uint64) ([]int16, error) {
	total := 0
	for _, i := range index {
		if i >= uint64(len(rows)) {
			return nil, fmt.Errorf("%w: row %d of %d for read %s", errs.ErrSignalIndexOutOfRange, i, len(rows), readID)
		}

		if rows[i].ReadID != readID {
			return nil, fmt.Errorf("%w: row %d holds read %s, want %s", errs.ErrSignalMismatch, i, rows[i].ReadID, readID)
		}

		total += len(rows[i].Samples)
	}

	samples := make([]int16, 0, total)
	for _, i := range index {
		samples = append(samples, rows[i].Samples...)
	}

	return samples, nil
}

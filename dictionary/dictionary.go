// Package dictionary implements the string dictionary behind the categorical
// columns of the reads table.
//
// One Dictionary is shared by pore_type, end_reason and run_info: the distinct
// values of all three columns are pooled into a single value set, and every
// row of every column indexes into it. Readers resolve each column through the
// same value set, so writer and reader never disagree about which vocabulary
// an index belongs to.
package dictionary

import (
	"fmt"
	"math"

	"github.com/Adoni5/podders/errs"
)

// MaxValues is the number of distinct values an int16 index can address.
const MaxValues = math.MaxInt16 + 1

// Dictionary maps strings to int16 indices in first-occurrence order.
//
// Note: Dictionary is NOT thread-safe.
type Dictionary struct {
	values []string
	lookup map[string]int16
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{lookup: make(map[string]int16)}
}

// Add returns the index of value, appending it if it is new.
// It fails with ErrDictionaryOverflow once MaxValues distinct values exist.
func (d *Dictionary) Add(value string) (int16, error) {
	if idx, ok := d.lookup[value]; ok {
		return idx, nil
	}

	if len(d.values) >= MaxValues {
		return 0, fmt.Errorf("%w: more than %d distinct values", errs.ErrDictionaryOverflow, MaxValues)
	}

	idx := int16(len(d.values)) //nolint: gosec
	d.values = append(d.values, value)
	d.lookup[value] = idx

	return idx, nil
}

// Index returns the index of value.
func (d *Dictionary) Index(value string) (int16, bool) {
	idx, ok := d.lookup[value]
	return idx, ok
}

// Values returns the value set in index order. The slice must not be modified.
func (d *Dictionary) Values() []string {
	return d.values
}

// Len returns the number of distinct values.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// Encode pools the distinct values of every column into one shared
// dictionary and returns, per column, the index of each row.
//
// Values are pooled before any index is assigned, so an overflow is reported
// before any indices are produced.
func Encode(columns ...[]string) (*Dictionary, [][]int16, error) {
	d := New()
	for _, col := range columns {
		for _, v := range col {
			if _, err := d.Add(v); err != nil {
				return nil, nil, err
			}
		}
	}

	indices := make([][]int16, len(columns))
	for i, col := range columns {
		indices[i] = make([]int16, len(col))
		for j, v := range col {
			indices[i][j], _ = d.Index(v)
		}
	}

	return d, indices, nil
}

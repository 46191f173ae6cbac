package columnar

import (
	"fmt"
	"iter"
)

// CSR stores variable-length rows of uint32 in compressed sparse row layout.
// Row i occupies data[indptr[i]:indptr[i+1]].
type CSR struct {
	indptr []uint32
	data   []uint32
}

// BuildCSR builds a CSR from per-row sequences: one pass for the cumulative
// offsets, one pass to fill the flat data array.
func BuildCSR(rows [][]uint32) *CSR {
	indptr := make([]uint32, len(rows)+1)
	total := 0
	for i, r := range rows {
		total += len(r)
		indptr[i+1] = uint32(total) //nolint:gosec
	}
	data := make([]uint32, total)
	for i, r := range rows {
		copy(data[indptr[i]:], r)
	}
	return &CSR{indptr: indptr, data: data}
}

// NewCSR wraps existing arrays, typically views of a mapped section file.
func NewCSR(indptr, data []uint32) (*CSR, error) {
	if len(indptr) == 0 {
		return nil, fmt.Errorf("%w: csr without row offsets", ErrCorrupted)
	}
	if indptr[0] != 0 || int(indptr[len(indptr)-1]) != len(data) {
		return nil, fmt.Errorf("%w: csr offsets do not cover %d entries", ErrCorrupted, len(data))
	}
	return &CSR{indptr: indptr, data: data}, nil
}

// NumRows returns the number of rows.
func (c *CSR) NumRows() int { return len(c.indptr) - 1 }

// Len returns the total number of entries over all rows.
func (c *CSR) Len() int { return len(c.data) }

// Span returns the [start, end) positions of row i in the flat data array.
// Parallel value columns are indexed by these positions.
func (c *CSR) Span(i int) (int, int) {
	if i < 0 || i >= c.NumRows() {
		return 0, 0
	}
	return int(c.indptr[i]), int(c.indptr[i+1])
}

// Row returns row i as a view into the flat data array; callers must not
// modify it. Out-of-range rows are empty.
func (c *CSR) Row(i int) []uint32 {
	start, end := c.Span(i)
	return c.data[start:end:end]
}

// RowCopy returns a freshly allocated copy of row i.
func (c *CSR) RowCopy(i int) []uint32 {
	r := c.Row(i)
	out := make([]uint32, len(r))
	copy(out, r)
	return out
}

// Items yields every non-empty row with its index.
func (c *CSR) Items() iter.Seq2[int, []uint32] {
	return func(yield func(int, []uint32) bool) {
		for i := 0; i < c.NumRows(); i++ {
			start, end := int(c.indptr[i]), int(c.indptr[i+1])
			if start == end {
				continue
			}
			if !yield(i, c.data[start:end:end]) {
				return
			}
		}
	}
}

// Indptr returns the row offset array.
func (c *CSR) Indptr() []uint32 { return c.indptr }

// Data returns the flat data array.
func (c *CSR) Data() []uint32 { return c.data }

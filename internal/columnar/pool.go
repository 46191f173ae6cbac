package columnar

import (
	"fmt"
	"slices"
	"sort"
	"unsafe"
)

// Pool is a sorted table of unique strings.
//
// String i occupies data[offsets[i]:offsets[i+1]]. Strings returned by a
// pool built over mapped memory alias that memory.
type Pool struct {
	offsets []uint32
	data    []byte
}

// BuildPool deduplicates and sorts values so that pool indexes are stable
// across compilations of the same corpus.
func BuildPool(values []string) *Pool {
	uniq := slices.Clone(values)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)

	offsets := make([]uint32, len(uniq)+1)
	size := 0
	for i, s := range uniq {
		size += len(s)
		offsets[i+1] = uint32(size) //nolint:gosec
	}
	data := make([]byte, 0, size)
	for _, s := range uniq {
		data = append(data, s...)
	}
	return &Pool{offsets: offsets, data: data}
}

// NewPool wraps existing arrays.
func NewPool(offsets []uint32, data []byte) (*Pool, error) {
	if len(offsets) == 0 || offsets[0] != 0 || int(offsets[len(offsets)-1]) != len(data) {
		return nil, fmt.Errorf("%w: string pool offsets do not cover %d bytes", ErrCorrupted, len(data))
	}
	return &Pool{offsets: offsets, data: data}, nil
}

// Len returns the number of strings in the pool.
func (p *Pool) Len() int { return len(p.offsets) - 1 }

// String returns string i without copying.
func (p *Pool) String(i uint32) string {
	start, end := p.offsets[i], p.offsets[i+1]
	if start == end {
		return ""
	}
	return unsafe.String(&p.data[start], int(end-start))
}

// Find returns the index of s.
func (p *Pool) Find(s string) (uint32, bool) {
	n := p.Len()
	i := sort.Search(n, func(i int) bool { return p.String(uint32(i)) >= s }) //nolint:gosec
	if i < n && p.String(uint32(i)) == s {                                    //nolint:gosec
		return uint32(i), true //nolint:gosec
	}
	return 0, false
}

// Indexer returns a lookup from string to pool index for bulk column
// building.
func (p *Pool) Indexer() map[string]uint32 {
	m := make(map[string]uint32, p.Len())
	for i := 0; i < p.Len(); i++ {
		m[p.String(uint32(i))] = uint32(i) //nolint:gosec
	}
	return m
}

// Offsets returns the offset array.
func (p *Pool) Offsets() []uint32 { return p.offsets }

// Data returns the concatenated string bytes.
func (p *Pool) Data() []byte { return p.data }

package columnar

import (
	"iter"
	"math"
)

const (
	// NoString is the StringColumn index meaning "no value".
	NoString uint32 = math.MaxUint32

	// Missing is the IntColumn value meaning "no value". A real value equal
	// to Missing cannot be stored; builders report such collisions.
	Missing int64 = math.MinInt64
)

// StringColumn maps positions to strings of a shared Pool.
type StringColumn struct {
	pool  *Pool
	index []uint32
}

// NewStringColumn wraps an existing pool and index array. Indexes beyond
// the pool read as absent, so mapped columns need no validation scan.
func NewStringColumn(pool *Pool, index []uint32) *StringColumn {
	return &StringColumn{pool: pool, index: index}
}

// BuildStringColumn builds a column of n positions where positions[i] holds
// values[i]. Every value must be present in pool.
func BuildStringColumn(pool *Pool, n int, positions []int, values []string) *StringColumn {
	index := make([]uint32, n)
	for i := range index {
		index[i] = NoString
	}
	lookup := pool.Indexer()
	for i, pos := range positions {
		index[pos] = lookup[values[i]]
	}
	return &StringColumn{pool: pool, index: index}
}

// Len returns the number of positions.
func (c *StringColumn) Len() int { return len(c.index) }

// Get returns the string at position i.
func (c *StringColumn) Get(i int) (string, bool) {
	ix, ok := c.IndexOf(i)
	if !ok {
		return "", false
	}
	return c.pool.String(ix), true
}

// IndexOf returns the pool index at position i.
func (c *StringColumn) IndexOf(i int) (uint32, bool) {
	if i < 0 || i >= len(c.index) {
		return 0, false
	}
	ix := c.index[i]
	if ix == NoString || int(ix) >= c.pool.Len() {
		return 0, false
	}
	return ix, true
}

// Items yields (position, string) for every present entry.
func (c *StringColumn) Items() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		n := c.pool.Len()
		for i, ix := range c.index {
			if ix == NoString || int(ix) >= n {
				continue
			}
			if !yield(i, c.pool.String(ix)) {
				return
			}
		}
	}
}

// Pool returns the backing string pool.
func (c *StringColumn) Pool() *Pool { return c.pool }

// Index returns the raw index array.
func (c *StringColumn) Index() []uint32 { return c.index }

// IntColumn maps positions to int64 values with Missing as the absent marker.
type IntColumn struct {
	data []int64
}

// NewIntColumn wraps an existing array.
func NewIntColumn(data []int64) *IntColumn {
	return &IntColumn{data: data}
}

// BuildIntColumn builds a column of n positions where positions[i] holds
// values[i]. It returns how many values collided with Missing; those read
// back as absent.
func BuildIntColumn(n int, positions []int, values []int64) (*IntColumn, int) {
	data := make([]int64, n)
	for i := range data {
		data[i] = Missing
	}
	collisions := 0
	for i, pos := range positions {
		if values[i] == Missing {
			collisions++
		}
		data[pos] = values[i]
	}
	return &IntColumn{data: data}, collisions
}

// Len returns the number of positions.
func (c *IntColumn) Len() int { return len(c.data) }

// Get returns the value at position i.
func (c *IntColumn) Get(i int) (int64, bool) {
	if i < 0 || i >= len(c.data) {
		return 0, false
	}
	v := c.data[i]
	if v == Missing {
		return 0, false
	}
	return v, true
}

// Items yields (position, value) for every present entry.
func (c *IntColumn) Items() iter.Seq2[int, int64] {
	return func(yield func(int, int64) bool) {
		for i, v := range c.data {
			if v == Missing {
				continue
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Data returns the raw array.
func (c *IntColumn) Data() []int64 { return c.data }

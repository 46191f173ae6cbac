package corpus

import (
	"fmt"
	"iter"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/model"
)

// NodeColumn is a node feature: one optional value per node.
// Exactly one of Str and Int is set, matching ValueType.
type NodeColumn struct {
	Name      string
	ValueType model.ValueType
	Meta      map[string]string
	Str       *columnar.StringColumn
	Int       *columnar.IntColumn
}

// BuildNodeColumn builds a node column from a parsed feature file. Later
// entries for the same node override earlier ones. It returns the number of
// integer values that collide with the missing-value sentinel.
func BuildNodeColumn(f *featfile.Feature, maxNode uint32) (*NodeColumn, int, error) {
	positions := make([]int, len(f.Nodes))
	for i, n := range f.Nodes {
		if uint32(n) > maxNode {
			return nil, 0, fmt.Errorf("%w: %s: node %d beyond maxNode %d", ErrFeature, f.Name, n, maxNode)
		}
		positions[i] = int(n)
	}

	col := &NodeColumn{Name: f.Name, ValueType: f.ValueType, Meta: f.Meta}
	size := int(maxNode) + 1
	if f.ValueType == model.ValueInt {
		var collisions int
		col.Int, collisions = columnar.BuildIntColumn(size, positions, f.Ints)
		return col, collisions, nil
	}
	col.Str = columnar.BuildStringColumn(columnar.BuildPool(f.Strs), size, positions, f.Strs)
	return col, 0, nil
}

// Get returns the value of node n.
func (c *NodeColumn) Get(n uint32) (model.Value, bool) {
	if c.Int != nil {
		if v, ok := c.Int.Get(int(n)); ok {
			return model.IntValue(v), true
		}
		return model.Value{}, false
	}
	if s, ok := c.Str.Get(int(n)); ok {
		return model.StrValue(s), true
	}
	return model.Value{}, false
}

// Has reports whether node n has a value.
func (c *NodeColumn) Has(n uint32) bool {
	if c.Int != nil {
		_, ok := c.Int.Get(int(n))
		return ok
	}
	_, ok := c.Str.IndexOf(int(n))
	return ok
}

// Items yields every node with a value, in node order.
func (c *NodeColumn) Items() iter.Seq2[uint32, model.Value] {
	return func(yield func(uint32, model.Value) bool) {
		if c.Int != nil {
			for n, v := range c.Int.Items() {
				if !yield(uint32(n), model.IntValue(v)) { //nolint:gosec
					return
				}
			}
			return
		}
		for n, s := range c.Str.Items() {
			if !yield(uint32(n), model.StrValue(s)) { //nolint:gosec
				return
			}
		}
	}
}

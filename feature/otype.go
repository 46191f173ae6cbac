package feature

import (
	"iter"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// Level describes one node type: its average number of slots per node and
// the node number interval its nodes occupy.
type Level struct {
	Type     string
	AvgSlots float64
	Min      model.Node
	Max      model.Node
}

// Otype is the node type feature.
type Otype struct {
	d *corpus.Data
}

// MaxSlot returns the number of slot nodes.
func (o *Otype) MaxSlot() model.Node { return model.Node(o.d.MaxSlot()) }

// MaxNode returns the highest node number.
func (o *Otype) MaxNode() model.Node { return model.Node(o.d.MaxNode()) }

// SlotType returns the type name shared by all slot nodes.
func (o *Otype) SlotType() string { return o.d.SlotType() }

// Levels returns the node types from the slot type up to the most
// encompassing one.
func (o *Otype) Levels() []Level {
	out := make([]Level, len(o.d.Levels))
	for i, l := range o.d.Levels {
		out[i] = Level{Type: l.Type, AvgSlots: l.AvgSlots, Min: model.Node(l.Min), Max: model.Node(l.Max)}
	}
	return out
}

// Types returns the type names in level order.
func (o *Otype) Types() []string {
	out := make([]string, len(o.d.Levels))
	for i, l := range o.d.Levels {
		out[i] = l.Type
	}
	return out
}

// V returns the type of node n, or "" when n is not a node.
func (o *Otype) V(n model.Node) string {
	if !inRange(o.d, uint32(n)) {
		return ""
	}
	return o.d.TypeName(uint32(n))
}

// S returns all nodes of type typ in canonical order.
func (o *Otype) S(typ string) []model.Node {
	raw := o.nodes(typ)
	precompute.SortByRank(raw, o.d.Rank)
	return model.NodesFromUint32(raw)
}

// nodes returns the nodes of typ in node order, scanning only the type's
// node interval.
func (o *Otype) nodes(typ string) []uint32 {
	code, ok := o.d.TypeCode(typ)
	if !ok {
		return nil
	}
	l := o.d.Levels[o.d.LevelOf[code]]
	out := make([]uint32, 0, l.Max-l.Min+1)
	types := o.d.Structure.Types
	for n := l.Min; n <= l.Max; n++ {
		if types[n] == code {
			out = append(out, n)
		}
	}
	return out
}

// Items yields (node, type) for every node, slots first.
func (o *Otype) Items() iter.Seq2[model.Node, string] {
	return func(yield func(model.Node, string) bool) {
		for n := uint32(1); n <= o.d.MaxNode(); n++ {
			if !yield(model.Node(n), o.d.TypeName(n)) {
				return
			}
		}
	}
}

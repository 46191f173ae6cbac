package feature

import (
	"iter"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/model"
)

// Oslots maps nodes to the slots they span.
type Oslots struct {
	d *corpus.Data
}

// S returns the ascending slots of node n. A slot returns itself.
func (o *Oslots) S(n model.Node) []model.Node {
	if !inRange(o.d, uint32(n)) {
		return nil
	}
	return model.NodesFromUint32(o.d.Structure.Slots(uint32(n)))
}

// View returns the slots of node n as a read-only view.
func (o *Oslots) View(n model.Node) []uint32 {
	if !inRange(o.d, uint32(n)) {
		return nil
	}
	return o.d.Structure.Slots(uint32(n))
}

// Items yields (node, slots) for every non-slot node.
func (o *Oslots) Items() iter.Seq2[model.Node, []model.Node] {
	return func(yield func(model.Node, []model.Node) bool) {
		for n := o.d.MaxSlot() + 1; n <= o.d.MaxNode(); n++ {
			if !yield(model.Node(n), model.NodesFromUint32(o.d.Structure.Slots(n))) {
				return
			}
		}
	}
}

package feature

import (
	"cmp"
	"iter"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// Names of the computed features.
const (
	LevUp    = corpus.LevUp
	LevDown  = corpus.LevDown
	Boundary = corpus.Boundary
)

// Computed is a containment structure derived at compile time.
//
// levUp lists the nodes embedding a node, nearest level first; levDown
// lists the lower-level nodes a node embeds, in canonical order.
type Computed struct {
	name string
	csr  *columnar.CSR
}

// Name returns the feature name.
func (c *Computed) Name() string { return c.name }

// V returns the row of node n.
func (c *Computed) V(n model.Node) []model.Node {
	return model.NodesFromUint32(c.csr.Row(int(n)))
}

// View returns the row of node n as a read-only view.
func (c *Computed) View(n model.Node) []uint32 { return c.csr.Row(int(n)) }

// Items yields every node with a non-empty row.
func (c *Computed) Items() iter.Seq2[model.Node, []model.Node] {
	return func(yield func(model.Node, []model.Node) bool) {
		for n, row := range c.csr.Items() {
			if !yield(model.Node(n), model.NodesFromUint32(row)) { //nolint:gosec
				return
			}
		}
	}
}

// Bounds holds the first and last slot of every node, and per slot the
// nodes starting or ending there.
type Bounds struct {
	d *corpus.Data
	b *precompute.Boundary
}

// V returns the first and last slot of node n.
func (b *Bounds) V(n model.Node) (first, last model.Node) {
	if !inRange(b.d, uint32(n)) {
		return 0, 0
	}
	return model.Node(b.b.First[n]), model.Node(b.b.Last[n])
}

// StartsAt returns the nodes whose first slot is slot, in canonical order.
func (b *Bounds) StartsAt(slot model.Node) []model.Node {
	return model.NodesFromUint32(b.b.StartsAt.Row(int(slot)))
}

// EndsAt returns the nodes whose last slot is slot, in canonical order.
func (b *Bounds) EndsAt(slot model.Node) []model.Node {
	return model.NodesFromUint32(b.b.EndsAt.Row(int(slot)))
}

// StartsAtView is StartsAt as a read-only view.
func (b *Bounds) StartsAtView(slot model.Node) []uint32 { return b.b.StartsAt.Row(int(slot)) }

// EndsAtView is EndsAt as a read-only view.
func (b *Bounds) EndsAtView(slot model.Node) []uint32 { return b.b.EndsAt.Row(int(slot)) }

// Canonical exposes the canonical node order.
type Canonical struct {
	d *corpus.Data
}

// Rank returns the position of node n in canonical order.
func (c *Canonical) Rank(n model.Node) int { return int(c.d.Rank[n]) }

// Compare orders a before b when a comes first canonically.
func (c *Canonical) Compare(a, b model.Node) int {
	return cmp.Compare(c.d.Rank[a], c.d.Rank[b])
}

// Sort sorts nodes into canonical order in place.
func (c *Canonical) Sort(nodes []model.Node) {
	sortNodes(nodes, c.d.Rank)
}

// Nodes yields all nodes in canonical order.
func (c *Canonical) Nodes() iter.Seq[model.Node] {
	return func(yield func(model.Node) bool) {
		for _, n := range c.d.Order {
			if !yield(model.Node(n)) {
				return
			}
		}
	}
}

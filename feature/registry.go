package feature

import (
	"slices"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/model"
)

// Kind tags the variant of a registered feature.
type Kind uint8

const (
	KindStrNode Kind = iota + 1
	KindIntNode
	KindEdge
	KindEdgeValues
	KindComputed
)

func (k Kind) String() string {
	switch k {
	case KindStrNode:
		return "str-node"
	case KindIntNode:
		return "int-node"
	case KindEdge:
		return "edge"
	case KindEdgeValues:
		return "edge-values"
	case KindComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// Entry is a registered feature. Exactly one accessor matching Kind is set;
// the boundary feature sets Bounds instead of Computed.
type Entry struct {
	Name     string
	Kind     Kind
	Node     *NodeFeature
	Edge     *EdgeFeature
	Computed *Computed
	Bounds   *Bounds
}

// Registry resolves feature names to accessors. It is built once when a
// corpus is loaded and never changes afterwards.
type Registry struct {
	otype     *Otype
	oslots    *Oslots
	canonical *Canonical
	entries   map[string]Entry
}

// NewRegistry builds the accessors of every feature held by d.
func NewRegistry(d *corpus.Data) *Registry {
	r := &Registry{
		otype:     &Otype{d: d},
		oslots:    &Oslots{d: d},
		canonical: &Canonical{d: d},
		entries:   make(map[string]Entry, len(d.Nodes)+len(d.Edges)+3),
	}
	for name, col := range d.Nodes {
		kind := KindStrNode
		if col.ValueType == model.ValueInt {
			kind = KindIntNode
		}
		r.entries[name] = Entry{Name: name, Kind: kind, Node: &NodeFeature{d: d, col: col}}
	}
	for name, col := range d.Edges {
		kind := KindEdge
		if col.EdgeValues {
			kind = KindEdgeValues
		}
		r.entries[name] = Entry{Name: name, Kind: kind, Edge: &EdgeFeature{d: d, col: col}}
	}
	r.entries[LevUp] = Entry{Name: LevUp, Kind: KindComputed, Computed: &Computed{name: LevUp, csr: d.LevUp}}
	r.entries[LevDown] = Entry{Name: LevDown, Kind: KindComputed, Computed: &Computed{name: LevDown, csr: d.LevDown}}
	r.entries[Boundary] = Entry{Name: Boundary, Kind: KindComputed, Bounds: &Bounds{d: d, b: d.Boundary}}
	return r
}

// Otype returns the node type feature.
func (r *Registry) Otype() *Otype { return r.otype }

// Oslots returns the slot containment feature.
func (r *Registry) Oslots() *Oslots { return r.oslots }

// Canonical returns the canonical node order.
func (r *Registry) Canonical() *Canonical { return r.canonical }

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Node returns the node feature name.
func (r *Registry) Node(name string) (*NodeFeature, bool) {
	e := r.entries[name]
	return e.Node, e.Node != nil
}

// Edge returns the edge feature name.
func (r *Registry) Edge(name string) (*EdgeFeature, bool) {
	e := r.entries[name]
	return e.Edge, e.Edge != nil
}

// Computed returns the computed feature name (levUp or levDown).
func (r *Registry) Computed(name string) (*Computed, bool) {
	e := r.entries[name]
	return e.Computed, e.Computed != nil
}

// Bounds returns the boundary feature.
func (r *Registry) Bounds() *Bounds { return r.entries[Boundary].Bounds }

// Names returns the sorted names of the features of the given kinds, or of
// all features when no kind is given.
func (r *Registry) Names(kinds ...Kind) []string {
	var out []string
	for name, e := range r.entries {
		if len(kinds) == 0 || slices.Contains(kinds, e.Kind) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

package search

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
)

// engine evaluates templates against one corpus.
type engine struct {
	env    *env
	params Params
	sets   map[string]*roaring.Bitmap
	logger *slog.Logger
}

// plan is a spun and stitched template.
type plan struct {
	t      *template
	yarns  []*roaring.Bitmap
	sorted [][]uint32
	edges  []edge
	steps  []step
	rounds int
}

func (p *plan) empty() bool {
	for _, y := range p.yarns {
		if y.IsEmpty() {
			return true
		}
	}
	return len(p.yarns) == 0
}

func (p *plan) total() uint64 {
	var n uint64
	for _, y := range p.yarns {
		n += y.GetCardinality()
	}
	return n
}

// sortedYarn returns the candidates of atom i in canonical order.
func (g *engine) sortedYarn(p *plan, i int) []uint32 {
	if p.sorted[i] == nil {
		arr := p.yarns[i].ToArray()
		g.env.sortByRank(arr)
		p.sorted[i] = arr
	}
	return p.sorted[i]
}

// spin builds the candidate set of every atom. parent seeds the implicit
// parent atom of a quantifier block.
func (g *engine) spin(t *template, parent *roaring.Bitmap) (*plan, error) {
	p := &plan{
		t:      t,
		yarns:  make([]*roaring.Bitmap, len(t.atoms)),
		sorted: make([][]uint32, len(t.atoms)),
	}
	for i, a := range t.atoms {
		var bm *roaring.Bitmap
		switch {
		case a.typ == parentAtom:
			bm = parent.Clone()
		case g.sets[a.typ] != nil:
			bm = g.sets[a.typ].Clone()
			bm.Remove(0)
			bm.RemoveRange(uint64(g.env.maxNode)+1, 1<<32)
		default:
			bm = g.env.typeNodes(a.typ)
		}
		for _, c := range a.constraints {
			c.apply(bm)
		}
		p.yarns[i] = bm
	}

	for _, q := range t.quants {
		y, err := g.quantify(q, p.yarns[q.parent])
		if err != nil {
			return nil, err
		}
		p.yarns[q.parent] = y
	}

	p.edges = orient(t)
	g.thin(p)
	return p, nil
}

// thin removes candidates without a partner over relations that can
// generate their targets. It stops at a fixpoint, after ThinRounds rounds,
// or once a round shrinks the yarns by less than YarnRatio.
func (g *engine) thin(p *plan) {
	if p.empty() {
		return
	}
	prev := p.total()
	for p.rounds < g.params.ThinRounds {
		p.rounds++
		for _, e := range p.edges {
			if e.rel.gen == nil || e.from == e.to {
				continue
			}
			p.yarns[e.to] = g.reach(p.yarns[e.from], p.yarns[e.to], e.rel)
		}
		cur := p.total()
		if cur == prev || cur == 0 || float64(prev)/float64(cur) < g.params.YarnRatio {
			break
		}
		prev = cur
	}
	for i := range p.sorted {
		p.sorted[i] = nil
	}
}

// reach returns the members of to related to some member of from.
func (g *engine) reach(from, to *roaring.Bitmap, rel *relation) *roaring.Bitmap {
	out := roaring.New()
	it := from.Iterator()
	for it.HasNext() {
		x := it.Next()
		for _, y := range rel.gen(x) {
			if to.Contains(y) && !out.Contains(y) && rel.test(x, y) {
				out.Add(y)
			}
		}
	}
	return out
}

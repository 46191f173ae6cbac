package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// edge is a link oriented from an atom to another one.
type edge struct {
	from, to int
	rel      *relation
	// forward is set for the orientation the link was written in.
	forward bool
}

// orient returns both orientations of every link.
func orient(t *template) []edge {
	edges := make([]edge, 0, 2*len(t.links))
	for _, l := range t.links {
		edges = append(edges,
			edge{from: l.from, to: l.to, rel: l.rel, forward: true},
			edge{from: l.to, to: l.from, rel: l.rel.conv},
		)
	}
	return edges
}

// step fetches the candidates of one atom. With gen set the candidates come
// from the relation generator applied to an earlier atom; otherwise the
// atom's yarn is scanned.
type step struct {
	atom   int
	gen    *edge
	spread float64
	checks []edge
}

// sample picks up to limit evenly spaced members of bm.
func sample(bm *roaring.Bitmap, limit int) []uint32 {
	n := int(bm.GetCardinality())
	if n <= limit {
		return bm.ToArray()
	}
	out := make([]uint32, 0, limit)
	for i := 0; i < limit; i++ {
		x, err := bm.Select(uint32(i * n / limit))
		if err == nil {
			out = append(out, x)
		}
	}
	return out
}

// spread estimates how many partners in the target yarn a node of the
// source yarn has over e.
func (g *engine) spread(p *plan, e edge) float64 {
	src := sample(p.yarns[e.from], g.params.TryLimitFrom)
	if len(src) == 0 {
		return 0
	}
	to := p.yarns[e.to]
	if e.rel.gen != nil {
		hits := 0
		for _, x := range src {
			for _, y := range e.rel.gen(x) {
				if to.Contains(y) {
					hits++
				}
			}
		}
		return float64(hits) / float64(len(src))
	}
	dst := sample(to, g.params.TryLimitTo)
	if len(dst) == 0 {
		return 0
	}
	hits := 0
	for _, x := range src {
		for _, y := range dst {
			if e.rel.test(x, y) {
				hits++
			}
		}
	}
	return float64(hits) / float64(len(src)*len(dst)) * float64(to.GetCardinality())
}

// stitch chooses the join order. The first forced atoms (0..forced-1) are
// placed before all others; the rest follow the cheapest edge from the
// atoms already placed.
func (g *engine) stitch(p *plan, forced int) {
	n := len(p.t.atoms)
	p.steps = p.steps[:0]
	if n == 0 {
		return
	}
	placed := make([]bool, n)
	spreads := make(map[int]float64)
	size := func(i int) uint64 { return p.yarns[i].GetCardinality() }
	allowed := func(i int) bool {
		if forced <= 0 || i < forced {
			return true
		}
		for j := 0; j < forced; j++ {
			if !placed[j] {
				return false
			}
		}
		return true
	}

	smallest := func() int {
		best := -1
		for i := 0; i < n; i++ {
			if placed[i] || !allowed(i) {
				continue
			}
			if best < 0 || size(i) < size(best) {
				best = i
			}
		}
		return best
	}

	place := func(atom int, via *edge, spread float64) {
		s := step{atom: atom, gen: via, spread: spread}
		for _, e := range p.edges {
			if e.to != atom || (via != nil && e == *via) {
				continue
			}
			if placed[e.from] || (e.from == atom && e.forward) {
				s.checks = append(s.checks, e)
			}
		}
		placed[atom] = true
		p.steps = append(p.steps, s)
	}

	place(smallest(), nil, 0)
	for len(p.steps) < n {
		bestIdx, bestCost := -1, math.Inf(1)
		for i, e := range p.edges {
			if !placed[e.from] || placed[e.to] || !allowed(e.to) {
				continue
			}
			cost := float64(size(e.to))
			if e.rel.gen != nil {
				sp, ok := spreads[i]
				if !ok {
					sp = g.spread(p, e)
					spreads[i] = sp
				}
				cost = sp
			}
			if bestIdx < 0 || better(cost, size(e.to), e.to, bestCost, size(p.edges[bestIdx].to), p.edges[bestIdx].to) {
				bestIdx, bestCost = i, cost
			}
		}
		if bestIdx < 0 {
			place(smallest(), nil, 0)
			continue
		}
		e := p.edges[bestIdx]
		if e.rel.gen == nil {
			place(e.to, nil, 0)
			continue
		}
		place(e.to, &e, bestCost)
	}
}

func better(cost float64, size uint64, atom int, bestCost float64, bestSize uint64, bestAtom int) bool {
	if cost != bestCost {
		return cost < bestCost
	}
	if size != bestSize {
		return size < bestSize
	}
	return atom < bestAtom
}

// describe renders the plan in a readable form.
func (p *plan) describe(b *strings.Builder, indent string) {
	for i, a := range p.t.atoms {
		fmt.Fprintf(b, "%satom %d %s: %d candidates\n", indent, i, a, p.yarns[i].GetCardinality())
	}
	for d, s := range p.steps {
		a := p.t.atoms[s.atom]
		switch {
		case s.gen != nil:
			fmt.Fprintf(b, "%sstep %d: %s via %s from atom %d (spread %.2f)", indent, d, a, s.gen.rel.name, s.gen.from, s.spread)
		default:
			fmt.Fprintf(b, "%sstep %d: %s by scan", indent, d, a)
		}
		for _, c := range s.checks {
			fmt.Fprintf(b, ", check %s from atom %d", c.rel.name, c.from)
		}
		b.WriteByte('\n')
	}
}

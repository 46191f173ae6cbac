package search

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// quantify filters the candidates of a quantifier's parent atom.
func (g *engine) quantify(q *quantifier, yarn *roaring.Bitmap) (*roaring.Bitmap, error) {
	switch q.kind {
	case quantWithout:
		hit, err := g.parents(q.blocks[0], yarn)
		if err != nil {
			return nil, err
		}
		return roaring.AndNot(yarn, hit), nil
	case quantWith:
		union := roaring.New()
		for _, alt := range q.blocks {
			hit, err := g.parents(alt, yarn)
			if err != nil {
				return nil, err
			}
			union.Or(hit)
		}
		return roaring.And(yarn, union), nil
	default:
		return g.where(q.blocks[0], q.blocks[1], yarn)
	}
}

// parents returns the parent candidates for which t has a match.
func (g *engine) parents(t *template, yarn *roaring.Bitmap) (*roaring.Bitmap, error) {
	out := roaring.New()
	err := g.prefixes(t, yarn, 1, func(prefix []uint32) {
		out.Add(prefix[0])
	})
	return out, err
}

// prefixes calls fn once for every distinct assignment of atoms 0..k-1 of
// t that extends to a full match.
func (g *engine) prefixes(t *template, yarn *roaring.Bitmap, k int, fn func([]uint32)) error {
	p, err := g.spin(t, yarn)
	if err != nil {
		return err
	}
	if p.empty() {
		return nil
	}
	g.stitch(p, k)
	r := newRunner(g, p, k-1)
	for r.next() {
		fn(r.cur[:k])
	}
	return nil
}

// where keeps the parent candidates for which every match of cond extends
// to a match of both. Atoms of cond keep their indexes in both.
func (g *engine) where(cond, both *template, yarn *roaring.Bitmap) (*roaring.Bitmap, error) {
	cp, err := g.spin(cond, yarn)
	if err != nil {
		return nil, err
	}
	if cp.empty() {
		return yarn.Clone(), nil
	}
	g.stitch(cp, 0)

	k := len(cond.atoms)
	extended := make(map[string]struct{})
	var buf []byte
	err = g.prefixes(both, yarn, k, func(prefix []uint32) {
		buf = tupleKey(buf[:0], prefix)
		extended[string(buf)] = struct{}{}
	})
	if err != nil {
		return nil, err
	}

	failed := roaring.New()
	limit := g.cutoff()
	r := newRunner(g, cp, -1)
	for n := 0; r.next(); n++ {
		if n >= limit {
			return nil, fmt.Errorf("%w: /where/ condition has more than %d matches", ErrResultOverflow, limit)
		}
		buf = tupleKey(buf[:0], r.cur[:k])
		if _, ok := extended[string(buf)]; !ok {
			failed.Add(r.cur[0])
		}
	}
	return roaring.AndNot(yarn, failed), nil
}

func tupleKey(buf []byte, nodes []uint32) []byte {
	for _, n := range nodes {
		buf = binary.LittleEndian.AppendUint32(buf, n)
	}
	return buf
}

// cutoff is the result bound of unlimited enumerations.
func (g *engine) cutoff() int {
	return int(g.env.maxNode) * g.params.OverflowFactor
}

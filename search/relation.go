package search

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tfgraph/model"
)

// relation is a binary predicate between the nodes of two atoms.
//
// gen, when set, returns a superset of the nodes b with test(a, b); the
// result may be a read-only view and contains no duplicates. conv is the
// relation with its arguments swapped.
type relation struct {
	name string
	test func(a, b uint32) bool
	gen  func(a uint32) []uint32
	conv *relation
}

func pair(name, convName string, test func(a, b uint32) bool, gen, convGen func(uint32) []uint32) *relation {
	r := &relation{name: name, test: test, gen: gen}
	c := &relation{name: convName, test: func(a, b uint32) bool { return test(b, a) }, gen: convGen}
	r.conv, c.conv = c, r
	return r
}

var (
	reDistance = regexp.MustCompile(`^([=:<])(\d+)([=:>])$`)
	reEdge     = regexp.MustCompile(`^([-<])([A-Za-z_][A-Za-z0-9_.-]*)([->])$`)
	reFeature  = regexp.MustCompile(`^\.([A-Za-z_][A-Za-z0-9_]*)(?:([=#<>])([A-Za-z_][A-Za-z0-9_]*))?\.$`)
)

// looksLikeRelation reports whether tok is shaped like a relation operator.
func looksLikeRelation(tok string) bool {
	switch tok {
	case "=", "#", "<", ">", "==", "&&", "##", "||", "[[", "]]", "<<", ">>", "=:", ":=", "::", "<:", ":>":
		return true
	}
	return reDistance.MatchString(tok) || reEdge.MatchString(tok) || reFeature.MatchString(tok)
}

// relation resolves a relation operator. A non-empty message reports a
// semantic error.
func (e *env) relation(op string) (*relation, string) {
	switch op {
	case "=":
		self := func(a uint32) []uint32 { return []uint32{a} }
		return pair("=", "=", func(a, b uint32) bool { return a == b }, self, self), ""
	case "#":
		return pair("#", "#", func(a, b uint32) bool { return a != b }, nil, nil), ""
	case "<":
		return pair("<", ">", func(a, b uint32) bool { return e.rank(a) < e.rank(b) }, nil, nil), ""
	case ">":
		return pair(">", "<", func(a, b uint32) bool { return e.rank(a) > e.rank(b) }, nil, nil), ""
	case "==":
		gen := func(a uint32) []uint32 { f := int64(e.first(a)); return e.startsIn(f, f) }
		return pair("==", "==", func(a, b uint32) bool { return sameSet(e.slots(a), e.slots(b)) }, gen, gen), ""
	case "&&":
		return pair("&&", "&&", func(a, b uint32) bool { return overlaps(e.slots(a), e.slots(b)) }, e.overlapping, e.overlapping), ""
	case "##":
		return pair("##", "##", func(a, b uint32) bool { return !sameSet(e.slots(a), e.slots(b)) }, nil, nil), ""
	case "||":
		return pair("||", "||", func(a, b uint32) bool { return !overlaps(e.slots(a), e.slots(b)) }, nil, nil), ""
	case "[[":
		return pair("[[", "]]", e.embeds, e.inside, e.around), ""
	case "]]":
		return pair("]]", "[[", func(a, b uint32) bool { return e.embeds(b, a) }, e.around, e.inside), ""
	case "<<":
		return pair("<<", ">>", func(a, b uint32) bool { return e.last(a) < e.first(b) }, nil, nil), ""
	case ">>":
		return pair(">>", "<<", func(a, b uint32) bool { return e.first(a) > e.last(b) }, nil, nil), ""
	case "=:":
		gen := func(a uint32) []uint32 { f := int64(e.first(a)); return e.startsIn(f, f) }
		return pair("=:", "=:", func(a, b uint32) bool { return e.first(a) == e.first(b) }, gen, gen), ""
	case ":=":
		gen := func(a uint32) []uint32 { l := int64(e.last(a)); return e.endsIn(l, l) }
		return pair(":=", ":=", func(a, b uint32) bool { return e.last(a) == e.last(b) }, gen, gen), ""
	case "::":
		gen := func(a uint32) []uint32 { f := int64(e.first(a)); return e.startsIn(f, f) }
		test := func(a, b uint32) bool { return e.first(a) == e.first(b) && e.last(a) == e.last(b) }
		return pair("::", "::", test, gen, gen), ""
	case "<:":
		return e.distance("<", 0, ":"), ""
	case ":>":
		return e.distance(":", 0, ">"), ""
	}
	if m := reDistance.FindStringSubmatch(op); m != nil {
		k, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			return nil, "distance out of range in " + op
		}
		if r := e.distance(m[1], k, m[3]); r != nil {
			return r, ""
		}
		return nil, "unknown relation " + op
	}
	if m := reEdge.FindStringSubmatch(op); m != nil {
		return e.edge(m[1], m[2], m[3])
	}
	if m := reFeature.FindStringSubmatch(op); m != nil {
		return e.compare(m[1], m[2], m[3])
	}
	return nil, "unknown relation " + op
}

func absDiff(a, b uint32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}

// distance builds the slot distance relations =k: :k= :k: <k: :k>.
func (e *env) distance(left string, k int64, right string) *relation {
	name := left + strconv.FormatInt(k, 10) + right
	switch left + right {
	case "=:":
		gen := func(a uint32) []uint32 { f := int64(e.first(a)); return e.startsIn(f-k, f+k) }
		test := func(a, b uint32) bool { return absDiff(e.first(a), e.first(b)) <= k }
		return pair(name, name, test, gen, gen)
	case ":=":
		gen := func(a uint32) []uint32 { l := int64(e.last(a)); return e.endsIn(l-k, l+k) }
		test := func(a, b uint32) bool { return absDiff(e.last(a), e.last(b)) <= k }
		return pair(name, name, test, gen, gen)
	case "::":
		gen := func(a uint32) []uint32 { f := int64(e.first(a)); return e.startsIn(f-k, f+k) }
		test := func(a, b uint32) bool {
			return absDiff(e.first(a), e.first(b)) <= k && absDiff(e.last(a), e.last(b)) <= k
		}
		return pair(name, name, test, gen, gen)
	case "<:", ":>":
		// a <k: b: b starts 1..k+1 slots after a ends.
		before := func(a, b uint32) bool {
			d := int64(e.first(b)) - int64(e.last(a))
			return d >= 1 && d <= k+1
		}
		after := func(a uint32) []uint32 { l := int64(e.last(a)); return e.startsIn(l+1, l+k+1) }
		prior := func(b uint32) []uint32 { f := int64(e.first(b)); return e.endsIn(f-k-1, f-1) }
		conv := ":" + strconv.FormatInt(k, 10) + ">"
		fwd := "<" + strconv.FormatInt(k, 10) + ":"
		if k == 0 {
			fwd, conv = "<:", ":>"
		}
		r := pair(fwd, conv, before, after, prior)
		if left == ":" {
			return r.conv
		}
		return r
	}
	return nil
}

// embeds reports whether the slots of b are a subset of those of a, a != b.
func (e *env) embeds(a, b uint32) bool {
	return a != b && subset(e.slots(b), e.slots(a))
}

// inside generates candidates embedded in a: every such node starts at one
// of a's slots.
func (e *env) inside(a uint32) []uint32 {
	var out []uint32
	for _, s := range e.slots(a) {
		out = append(out, e.bounds.StartsAtView(model.Node(s))...)
	}
	return out
}

// around generates the nodes embedding b.
func (e *env) around(b uint32) []uint32 {
	up := e.levUp.View(model.Node(b))
	slots := e.slots(b)
	if b > e.maxSlot && len(slots) == 1 {
		return append(slices.Clone(up), slots[0])
	}
	return up
}

// overlapping generates the nodes sharing a slot with a.
func (e *env) overlapping(a uint32) []uint32 {
	bm := roaring.New()
	for _, s := range e.slots(a) {
		bm.Add(s)
		bm.AddMany(e.levUp.View(model.Node(s)))
	}
	return bm.ToArray()
}

func (e *env) edge(left, name, right string) (*relation, string) {
	ef, ok := e.reg.Edge(name)
	if !ok {
		return nil, "unknown edge feature " + name
	}
	out := func(a uint32) []uint32 { return ef.Out(model.Node(a)) }
	in := func(a uint32) []uint32 { return ef.In(model.Node(a)) }
	has := func(a, b uint32) bool { return slices.Contains(out(a), b) }

	switch left + right {
	case "->":
		return pair("-"+name+">", "<"+name+"-", has, out, in), ""
	case "<-":
		return pair("<"+name+"-", "-"+name+">", func(a, b uint32) bool { return has(b, a) }, in, out), ""
	case "<>":
		both := func(a uint32) []uint32 {
			bm := roaring.BitmapOf(out(a)...)
			bm.AddMany(in(a))
			return bm.ToArray()
		}
		test := func(a, b uint32) bool { return has(a, b) || has(b, a) }
		return pair("<"+name+">", "<"+name+">", test, both, both), ""
	}
	return nil, "unknown relation " + left + name + right
}

// compare builds the feature comparisons .f. .f=g. .f#g. .f<g. .f>g.
// Both nodes must have a value. Values compare numerically when both are
// integers and as strings otherwise.
func (e *env) compare(f, op, g string) (*relation, string) {
	if op == "" {
		op, g = "=", f
	}
	ff, ok := e.reg.Node(f)
	if !ok {
		return nil, "unknown node feature " + f
	}
	gf, ok := e.reg.Node(g)
	if !ok {
		return nil, "unknown node feature " + g
	}
	cmpValues := func(a, b uint32) (int, bool) {
		va, ok := ff.V(model.Node(a))
		if !ok {
			return 0, false
		}
		vb, ok := gf.V(model.Node(b))
		if !ok {
			return 0, false
		}
		return compareValues(va, vb), true
	}
	var test func(a, b uint32) bool
	var convOp string
	switch op {
	case "=":
		test, convOp = func(a, b uint32) bool { c, ok := cmpValues(a, b); return ok && c == 0 }, "="
	case "#":
		test, convOp = func(a, b uint32) bool { c, ok := cmpValues(a, b); return ok && c != 0 }, "#"
	case "<":
		test, convOp = func(a, b uint32) bool { c, ok := cmpValues(a, b); return ok && c < 0 }, ">"
	case ">":
		test, convOp = func(a, b uint32) bool { c, ok := cmpValues(a, b); return ok && c > 0 }, "<"
	}
	name := "." + f + op + g + "."
	if f == g && op == "=" {
		name = "." + f + "."
	}
	conv := "." + g + convOp + f + "."
	if f == g && convOp == "=" {
		conv = "." + g + "."
	}
	return pair(name, conv, test, nil, nil), ""
}

func compareValues(a, b model.Value) int {
	ai, aok := a.Int()
	bi, bok := b.Int()
	if aok && bok {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a.Str(), b.Str())
}

package feature

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/internal/compiler"
	"github.com/hupe1980/tfgraph/internal/manifest"
	"github.com/hupe1980/tfgraph/internal/testcorpus"
	"github.com/hupe1980/tfgraph/model"
)

func nodes(ns ...uint32) []model.Node { return model.NodesFromUint32(ns) }

// forms runs fn against the corpus built from text and against the same
// corpus compiled and mapped back.
func forms(t *testing.T, files map[string]string, fn func(t *testing.T, r *Registry)) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "tf")
	require.NoError(t, testcorpus.WriteFiles(src, files))

	t.Run("text", func(t *testing.T) {
		d, err := compiler.Build(context.Background(), []string{src}, compiler.Options{})
		require.NoError(t, err)
		fn(t, NewRegistry(d))
	})
	t.Run("mapped", func(t *testing.T) {
		store := manifest.NewStore(nil, filepath.Join(t.TempDir(), "cache"))
		require.NoError(t, os.MkdirAll(store.Root(), 0o755))
		_, err := compiler.Compile(context.Background(), []string{src}, store, compiler.Options{})
		require.NoError(t, err)
		d, err := compiler.Open(context.Background(), store, compiler.Options{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = d.Close() })
		fn(t, NewRegistry(d))
	})
}

func TestOtype(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		o := r.Otype()
		assert.Equal(t, model.Node(5), o.MaxSlot())
		assert.Equal(t, model.Node(10), o.MaxNode())
		assert.Equal(t, "word", o.SlotType())
		assert.Equal(t, []string{"word", "phrase", "clause", "sentence"}, o.Types())

		assert.Equal(t, "word", o.V(1))
		assert.Equal(t, "sentence", o.V(8))
		assert.Empty(t, o.V(0))
		assert.Empty(t, o.V(11))

		assert.Equal(t, nodes(1, 2, 3, 4, 5), o.S("word"))
		assert.Equal(t, nodes(6, 7), o.S("phrase"))
		assert.Equal(t, nodes(9, 10), o.S("clause"))
		assert.Empty(t, o.S("chapter"))

		levels := o.Levels()
		require.Len(t, levels, 4)
		assert.Equal(t, Level{Type: "phrase", AvgSlots: 2.5, Min: 6, Max: 7}, levels[1])
	})
}

func TestOtype_IntervalMatchesTypes(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		o := r.Otype()
		for _, typ := range o.Types() {
			var want []model.Node
			for n, v := range o.Items() {
				if v == typ {
					want = append(want, n)
				}
			}
			r.Canonical().Sort(want)
			assert.Equal(t, want, o.S(typ), typ)
		}
	})
}

func TestOslots(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		s := r.Oslots()
		assert.Equal(t, nodes(3, 4, 5), s.S(7))
		assert.Equal(t, nodes(2), s.S(2))
		assert.Nil(t, s.S(0))

		var got []model.Node
		for n, slots := range s.Items() {
			got = append(got, n)
			assert.NotEmpty(t, slots)
		}
		assert.Equal(t, nodes(6, 7, 8, 9, 10), got)
	})
}

func TestNodeFeature(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		word, ok := r.Node("word")
		require.True(t, ok)
		assert.Equal(t, model.ValueStr, word.ValueType())
		v, ok := word.V(1)
		require.True(t, ok)
		assert.Equal(t, "hello", v.Str())
		_, ok = word.V(6)
		assert.False(t, ok)
		assert.Equal(t, nodes(1), word.S(model.StrValue("hello")))

		trailer, _ := r.Node("trailer")
		assert.Equal(t, nodes(1, 2, 4), trailer.S(model.StrValue(" ")))
		assert.Equal(t, []Freq{
			{Value: model.StrValue(" "), Count: 3},
			{Value: model.StrValue(", "), Count: 1},
			{Value: model.StrValue("."), Count: 1},
		}, trailer.FreqList())

		number, _ := r.Node("number")
		assert.Equal(t, nodes(8, 9), number.S(model.IntValue(1)))
		assert.Equal(t, []Freq{{model.IntValue(1), 2}, {model.IntValue(2), 1}}, number.FreqList())
		assert.Equal(t, []Freq{{model.IntValue(1), 1}, {model.IntValue(2), 1}}, number.FreqList("clause"))
		assert.Empty(t, number.FreqList("word"))

		freq, _ := r.Node("freq")
		v, ok = freq.V(1)
		assert.True(t, ok)
		assert.Equal(t, model.IntValue(0), v)
		assert.False(t, freq.Has(2))

		var items []model.Node
		for n := range freq.Items() {
			items = append(items, n)
		}
		assert.Equal(t, nodes(1, 3, 4), items)

		big := slices.Collect(freq.Matching(func(v model.Value) bool {
			i, _ := v.Int()
			return i > 1
		}))
		assert.Equal(t, nodes(3, 4), big)
	})
}

func TestEdgeFeature(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		mother, ok := r.Edge("mother")
		require.True(t, ok)
		assert.False(t, mother.HasValues())
		assert.Equal(t, []model.Edge{{Node: 6}}, mother.F(7))
		assert.Equal(t, []model.Edge{{Node: 7}}, mother.T(6))
		assert.Equal(t, []model.Edge{{Node: 7}}, mother.B(6))
		assert.Equal(t, 2, mother.Count(nil, nil))
		assert.Equal(t, 1, mother.Count([]string{"phrase"}, nil))
		assert.Equal(t, 0, mother.Count([]string{"phrase"}, []string{"clause"}))
		assert.Nil(t, mother.FreqList(nil, nil))

		cross, _ := r.Edge("crossref")
		assert.True(t, cross.HasValues())
		assert.Equal(t, []model.Edge{{Node: 3, Value: model.IntValue(0), HasValue: true}}, cross.F(1))
		assert.Equal(t, []model.Edge{{Node: 4}}, cross.F(2))
		assert.Equal(t, []model.Edge{{Node: 6, Value: model.IntValue(3), HasValue: true}}, cross.T(7))

		v, ok := cross.Value(6, 7)
		assert.True(t, ok)
		assert.Equal(t, model.IntValue(3), v)
		_, ok = cross.Value(2, 4)
		assert.False(t, ok)

		assert.Equal(t, []Freq{{model.IntValue(0), 1}, {model.IntValue(3), 1}}, cross.FreqList(nil, nil))
		assert.Equal(t, []Freq{{model.IntValue(3), 1}}, cross.FreqList([]string{"phrase"}, nil))

		var from []model.Node
		for n := range cross.Items() {
			from = append(from, n)
		}
		assert.Equal(t, nodes(1, 2, 6), from)
	})
}

func TestEdgeFeature_InverseLaw(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		for _, name := range r.Names(KindEdge, KindEdgeValues) {
			e, _ := r.Edge(name)
			for n := model.Node(1); n <= r.Otype().MaxNode(); n++ {
				for _, out := range e.F(n) {
					assert.Contains(t, e.T(out.Node), model.Edge{Node: n, Value: out.Value, HasValue: out.HasValue}, name)
				}
				for _, in := range e.T(n) {
					assert.Contains(t, e.F(in.Node), model.Edge{Node: n, Value: in.Value, HasValue: in.HasValue}, name)
				}
			}
		}
	})
}

func TestEdgeFeature_BothPrefersOutgoing(t *testing.T) {
	files := testcorpus.With(map[string]string{
		"crossref.tf": "@edge\n@edgeValues\n@valueType=int\n\n1\t3\t0\n6\t7\t3\n7\t6\t9\n7\t2\t4\n",
	})
	forms(t, files, func(t *testing.T, r *Registry) {
		cross, _ := r.Edge("crossref")
		assert.Equal(t, []model.Edge{{Node: 7, Value: model.IntValue(3), HasValue: true}}, cross.B(6))
		assert.Equal(t, []model.Edge{
			{Node: 6, Value: model.IntValue(9), HasValue: true},
			{Node: 2, Value: model.IntValue(4), HasValue: true},
		}, cross.B(7))
	})
}

func TestComputed(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		up, ok := r.Computed(LevUp)
		require.True(t, ok)
		assert.Equal(t, nodes(6, 9, 8), up.V(1))
		assert.Equal(t, nodes(9, 10, 8), up.V(7))
		assert.Equal(t, nodes(8), up.V(9))

		down, _ := r.Computed(LevDown)
		assert.Equal(t, nodes(9, 6, 10, 7), down.V(8))
		assert.Equal(t, nodes(6, 7), down.V(9))
		assert.Equal(t, nodes(7), down.V(10))
		assert.Empty(t, down.V(3))

		b := r.Bounds()
		first, last := b.V(7)
		assert.Equal(t, model.Node(3), first)
		assert.Equal(t, model.Node(5), last)
		assert.Equal(t, nodes(10, 7, 3), b.StartsAt(3))
		assert.Equal(t, nodes(8, 9, 10, 7, 5), b.EndsAt(5))
	})
}

func TestCanonical(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		c := r.Canonical()
		assert.Equal(t, nodes(8, 9, 6, 1, 2, 10, 7, 3, 4, 5), slices.Collect(c.Nodes()))
		ns := nodes(5, 8, 1)
		c.Sort(ns)
		assert.Equal(t, nodes(8, 1, 5), ns)
		assert.Negative(t, c.Compare(10, 7))
		assert.Equal(t, 0, c.Rank(8))
	})
}

func TestRegistry(t *testing.T) {
	forms(t, testcorpus.Toy, func(t *testing.T, r *Registry) {
		assert.Equal(t, []string{"boundary", "levDown", "levUp"}, r.Names(KindComputed))
		assert.Equal(t, []string{"freq", "number"}, r.Names(KindIntNode))
		assert.Equal(t, []string{"function", "trailer", "word"}, r.Names(KindStrNode))

		e, ok := r.Lookup("crossref")
		require.True(t, ok)
		assert.Equal(t, KindEdgeValues, e.Kind)
		assert.NotNil(t, e.Edge)

		_, ok = r.Node("mother")
		assert.False(t, ok)
		_, ok = r.Lookup("gloss")
		assert.False(t, ok)
	})
}

func TestRegistry_OnlySelectedFeatures(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tf")
	require.NoError(t, testcorpus.Write(src))
	d, err := compiler.Build(context.Background(), []string{src}, compiler.Options{Features: []string{"word"}})
	require.NoError(t, err)

	r := NewRegistry(d)
	assert.Equal(t, []string{"number", "word"}, r.Names(KindStrNode, KindIntNode))
	assert.Empty(t, r.Names(KindEdge, KindEdgeValues))
}

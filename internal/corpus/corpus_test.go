package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/model"
)

func parse(t *testing.T, text string) *featfile.Feature {
	t.Helper()
	f, err := featfile.Parse(strings.NewReader(text), "f", 1)
	require.NoError(t, err)
	return f
}

// identity rank for 8 nodes, except 8 sorts first.
var rank = []uint32{0, 1, 2, 3, 4, 5, 6, 7, 0}

func TestBuildNodeColumn_Str(t *testing.T) {
	col, collisions, err := BuildNodeColumn(parse(t, "@node\n\nhello\n\n3\tworld\n3\tagain\n"), 8)
	require.NoError(t, err)
	assert.Zero(t, collisions)

	v, ok := col.Get(1)
	assert.True(t, ok)
	assert.Equal(t, model.StrValue("hello"), v)

	_, ok = col.Get(2)
	assert.False(t, ok)

	v, _ = col.Get(3)
	assert.Equal(t, "again", v.Str())
	assert.True(t, col.Has(3))
	assert.False(t, col.Has(8))

	var nodes []uint32
	for n := range col.Items() {
		nodes = append(nodes, n)
	}
	assert.Equal(t, []uint32{1, 3}, nodes)
}

func TestBuildNodeColumn_IntZeroVersusMissing(t *testing.T) {
	col, _, err := BuildNodeColumn(parse(t, "@node\n@valueType=int\n\n0\n\n7\n"), 5)
	require.NoError(t, err)

	v, ok := col.Get(1)
	assert.True(t, ok)
	assert.Equal(t, model.IntValue(0), v)

	v, ok = col.Get(2)
	assert.False(t, ok)
	assert.Equal(t, model.Value{}, v)
	assert.False(t, col.Has(2))
}

func TestBuildNodeColumn_SentinelCollision(t *testing.T) {
	col, collisions, err := BuildNodeColumn(parse(t, "@node\n@valueType=int\n\n-9223372036854775808\n"), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, collisions)
	assert.False(t, col.Has(1))
}

func TestBuildNodeColumn_BeyondMaxNode(t *testing.T) {
	_, _, err := BuildNodeColumn(parse(t, "@node\n\n9\tx\n"), 8)
	require.ErrorIs(t, err, ErrFeature)
}

func TestBuildEdgeColumn_NoValues(t *testing.T) {
	col, _, err := BuildEdgeColumn(parse(t, "@edge\n\n8\t1-3\n8\t2\n1\t2\n"), 8, rank)
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2, 3}, col.Out(8))
	assert.Equal(t, []uint32{2}, col.Out(1))
	// 8 ranks before 1.
	assert.Equal(t, []uint32{8, 1}, col.In(2))
	assert.Equal(t, []uint32{8}, col.In(1))
	assert.Empty(t, col.In(8))
	assert.True(t, col.HasEdge(8, 3))
	assert.False(t, col.HasEdge(3, 8))
	assert.Nil(t, col.FwdStr)
	assert.Nil(t, col.FwdInt)
}

func TestBuildEdgeColumn_InverseLaw(t *testing.T) {
	col, _, err := BuildEdgeColumn(parse(t, "@edge\n\n1\t2,5\n2\t5\n6\t1-6\n"), 8, rank)
	require.NoError(t, err)

	for n := uint32(1); n <= 8; n++ {
		for _, m := range col.Out(n) {
			assert.Contains(t, col.In(m), n)
		}
		for _, m := range col.In(n) {
			assert.Contains(t, col.Out(m), n)
		}
	}
}

func TestBuildEdgeColumn_IntValues(t *testing.T) {
	col, _, err := BuildEdgeColumn(parse(t, "@edge\n@edgeValues\n@valueType=int\n\n1\t2\t0\n1\t3\t\n4\t2\t5\n4\t2\t6\n"), 8, rank)
	require.NoError(t, err)

	out := col.OutEdges(1)
	require.Len(t, out, 2)
	assert.Equal(t, model.Edge{Node: 2, Value: model.IntValue(0), HasValue: true}, out[0])
	assert.Equal(t, model.Edge{Node: 3}, out[1])

	v, ok := col.OutValue(1, 3)
	assert.False(t, ok)
	assert.Equal(t, model.Value{}, v)
	assert.NotEqual(t, model.IntValue(0), v)


	v, ok = col.OutValue(4, 2)
	assert.True(t, ok)
	assert.Equal(t, model.IntValue(6), v)

	in := col.InEdges(2)
	require.Len(t, in, 2)
	assert.Equal(t, model.Node(1), in[0].Node)
	assert.Equal(t, model.IntValue(0), in[0].Value)
	assert.Equal(t, model.IntValue(6), in[1].Value)
}

func TestBuildEdgeColumn_StrValuesSharePool(t *testing.T) {
	col, _, err := BuildEdgeColumn(parse(t, "@edge\n@edgeValues\n\n1\t2\tsubj\n3\t2\tobj\n"), 8, rank)
	require.NoError(t, err)

	assert.Same(t, col.FwdStr.Pool(), col.InvStr.Pool())
	v, ok := col.OutValue(3, 2)
	assert.True(t, ok)
	assert.Equal(t, "obj", v.Str())

	in := col.InEdges(2)
	require.Len(t, in, 2)
	assert.Equal(t, "subj", in[0].Value.Str())
	assert.Equal(t, "obj", in[1].Value.Str())
}

func TestData_Close(t *testing.T) {
	d := &Data{}
	d.AddCloser(closerFunc(func() error { return nil }))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

package featfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/model"
)

func parse(t *testing.T, text string, start model.Node) *Feature {
	t.Helper()
	f, err := Parse(strings.NewReader(text), "test", start)
	require.NoError(t, err)
	return f
}

func TestParse_NodeFeatureImplicitAndExplicit(t *testing.T) {
	f := parse(t, "@node\n@valueType=str\n@description=words\n\nhello\n\n3\tworld\n4-5,7\tx\ny\n", 1)

	assert.Equal(t, KindNode, f.Kind)
	assert.Equal(t, model.ValueStr, f.ValueType)
	assert.Equal(t, "words", f.Meta["description"])
	assert.Equal(t, []model.Node{1, 3, 4, 5, 7, 8}, f.Nodes)
	assert.Equal(t, []string{"hello", "world", "x", "x", "x", "y"}, f.Strs)
}

func TestParse_BlankLineAdvancesCounter(t *testing.T) {
	f := parse(t, "@node\n\na\n\n\nb\n", 1)
	assert.Equal(t, []model.Node{1, 4}, f.Nodes)
}

func TestParse_IntValues(t *testing.T) {
	f := parse(t, "@node\n@valueType=int\n\n0\n-4\n5\t\n12\n", 1)
	assert.Equal(t, []model.Node{1, 2, 6}, f.Nodes)
	assert.Equal(t, []int64{0, -4, 12}, f.Ints)

	_, err := Parse(strings.NewReader("@node\n@valueType=int\n\nabc\n"), "bad", 1)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Line)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParse_EdgeFeatureWithoutValues(t *testing.T) {
	f := parse(t, "@edge\n\n1-2,4\n8\t6-7\n5\n", 6)

	assert.Equal(t, []model.Node{6, 6, 6, 8, 8, 9}, f.From)
	assert.Equal(t, []model.Node{1, 2, 4, 6, 7, 5}, f.To)
	assert.Nil(t, f.Has)
	assert.Equal(t, 6, f.Len())
}

func TestParse_EdgeFeatureWithValues(t *testing.T) {
	f := parse(t, "@edge\n@edgeValues\n@valueType=int\n\n1\t2\t0\n1\t3\t\n4\t7\n5\n", 1)

	assert.True(t, f.EdgeValues)
	assert.Equal(t, []model.Node{1, 1, 2, 3}, f.From)
	assert.Equal(t, []model.Node{2, 3, 4, 5}, f.To)
	assert.Equal(t, []bool{true, false, true, false}, f.Has)
	assert.Equal(t, []int64{0, 0, 7, 0}, f.Ints)
}

func TestParse_ConfigHasNoData(t *testing.T) {
	f := parse(t, "@config\n@sectionTypes=book,chapter\n@fmt:text-orig-full={word} \n", 1)
	assert.Equal(t, KindConfig, f.Kind)
	assert.Equal(t, "book,chapter", f.Meta["sectionTypes"])
	assert.Equal(t, "{word} ", f.Meta["fmt:text-orig-full"])
	assert.Zero(t, f.Len())
}

func TestParse_HeaderWithoutBlankLine(t *testing.T) {
	f := parse(t, "@node\n@valueType=str\na\nb\n", 1)
	assert.Equal(t, []string{"a", "b"}, f.Strs)
}

func TestParse_Escapes(t *testing.T) {
	f := parse(t, "@node\n\na\\tb\n\\\\n\n", 1)
	assert.Equal(t, []string{"a\tb", `\n`}, f.Strs)
	assert.Equal(t, `a\tb`, Escape("a\tb"))
	assert.Equal(t, "x\\ny", Unescape(Escape("x\\ny")))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"unknown role", "@nodes\n\n"},
		{"bad value type", "@node\n@valueType=float\n\n"},
		{"edge values on node", "@node\n@edgeValues\n\n"},
		{"too many node fields", "@node\n\n1\t2\t3\n"},
		{"too many edge fields", "@edge\n\n1\t2\t3\n"},
		{"blank edge line", "@edge\n\n\n"},
		{"zero node", "@node\n\n0\tx\n"},
		{"descending range", "@node\n\n5-3\tx\n"},
		{"garbage node", "@edge\n\n1\tx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.text), tt.name, 1)
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParseRange(t *testing.T) {
	got, err := ParseRange("3,1-2,9")
	require.NoError(t, err)
	assert.Equal(t, []model.Node{3, 1, 2, 9}, got)

	_, err = ParseRange("")
	assert.Error(t, err)
	_, err = ParseRange("1-")
	assert.Error(t, err)
}

func TestReadHeaderAndParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemma.tf")
	require.NoError(t, os.WriteFile(path, []byte("@node\n@valueType=str\n\nbe\n"), 0o600))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "lemma", h.Name)
	assert.Equal(t, KindNode, h.Kind)

	f, err := ParseFile(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"be"}, f.Strs)
}

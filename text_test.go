package tfgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/internal/testcorpus"
	"github.com/hupe1980/tfgraph/model"
)

func toyText(t *testing.T, opts ...Option) *Text {
	t.Helper()
	c := mustLoad(t, []string{toyDir(t, testcorpus.Toy)}, opts...)
	text, err := c.Text()
	require.NoError(t, err)
	return text
}

func TestText_Render(t *testing.T) {
	for name, opts := range map[string][]Option{"text": {WithoutCache()}, "compiled": nil} {
		t.Run(name, func(t *testing.T) {
			text := toyText(t, opts...)
			assert.Equal(t, []string{"lex-trans-plain", "text-orig-full"}, text.Formats())

			s, err := text.Render([]model.Node{8}, "")
			require.NoError(t, err)
			assert.Equal(t, "hello big world, says hi.", s)

			s, err = text.Render([]model.Node{6}, "lex-trans-plain")
			require.NoError(t, err)
			assert.Equal(t, "hello big ", s)

			s, err = text.Render([]model.Node{3, 4}, DefaultFormat)
			require.NoError(t, err)
			assert.Equal(t, "world, says ", s)

			_, err = text.Render([]model.Node{8}, "nope")
			require.ErrorIs(t, err, ErrFormatNotFound)
		})
	}
}

func TestText_Sections(t *testing.T) {
	text := toyText(t, WithoutCache())
	assert.Equal(t, []string{"sentence", "clause"}, text.SectionTypes())
	assert.Equal(t, []string{"sentence"}, text.StructureTypes())

	labels, err := text.SectionFromNode(3)
	require.NoError(t, err)
	assert.Equal(t, []model.Value{model.IntValue(1), model.IntValue(1)}, labels)

	labels, err = text.SectionFromNode(8)
	require.NoError(t, err)
	assert.Equal(t, []model.Value{model.IntValue(1), model.IntValue(1)}, labels)

	n, err := text.NodeFromSection("1", "2")
	require.NoError(t, err)
	assert.Equal(t, model.Node(10), n)

	n, err = text.NodeFromSection("1")
	require.NoError(t, err)
	assert.Equal(t, model.Node(8), n)

	n, err = text.NodeFromSection("7")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = text.NodeFromSection("1", "1", "1")
	require.Error(t, err)
}

func TestText_Structure(t *testing.T) {
	text := toyText(t)

	labels, err := text.StructureFromNode(5)
	require.NoError(t, err)
	assert.Equal(t, []model.Value{model.IntValue(1)}, labels)

	n, err := text.NodeFromStructure("1")
	require.NoError(t, err)
	assert.Equal(t, model.Node(8), n)
}

func TestText_Unavailable(t *testing.T) {
	t.Run("no otext", func(t *testing.T) {
		c := mustLoad(t, []string{toyDir(t, testcorpus.With(map[string]string{"otext.tf": ""}))}, WithoutCache())
		_, err := c.Text()
		require.ErrorIs(t, err, ErrNoTextConfig)
	})

	t.Run("format feature missing", func(t *testing.T) {
		text := toyText(t, WithoutCache(), WithFeatures("freq"))
		_, err := text.Render([]model.Node{1}, DefaultFormat)
		require.ErrorIs(t, err, ErrFeatureNotFound)
	})
}

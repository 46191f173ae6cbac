package tfgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/internal/testcorpus"
	"github.com/hupe1980/tfgraph/model"
	"github.com/hupe1980/tfgraph/search"
)

func toyDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "tf")
	require.NoError(t, testcorpus.WriteFiles(dir, files))
	return dir
}

func mustLoad(t *testing.T, locations []string, opts ...Option) *Corpus {
	t.Helper()
	c, err := Load(context.Background(), locations, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func tuples(rows ...[]uint32) [][]model.Node {
	out := make([][]model.Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.NodesFromUint32(r))
	}
	return out
}

func TestLoad_EndToEnd(t *testing.T) {
	scenarios := []struct {
		name string
		text string
		want [][]model.Node
	}{
		{"all words", "word", tuples([]uint32{1}, []uint32{2}, []uint32{3}, []uint32{4}, []uint32{5})},
		{"word by value", "word word=hello", tuples([]uint32{1})},
		{"words in phrases", "phrase\n  word", tuples(
			[]uint32{6, 1}, []uint32{6, 2}, []uint32{7, 3}, []uint32{7, 4}, []uint32{7, 5},
		)},
		{"clause without subject", "clause\n/without/\n  phrase function=Subj\n/-/", tuples([]uint32{10})},
	}

	src := toyDir(t, testcorpus.Toy)
	forms := map[string][]Option{
		"text":     {WithoutCache()},
		"compiled": {WithCacheDir(filepath.Join(t.TempDir(), "cache"))},
	}
	for form, opts := range forms {
		c := mustLoad(t, []string{src}, opts...)
		for _, sc := range scenarios {
			t.Run(form+"/"+sc.name, func(t *testing.T) {
				got, err := c.Search(context.Background(), sc.text, 0)
				require.NoError(t, err)
				assert.ElementsMatch(t, sc.want, got)
			})
		}
	}
}

func TestLoad_ReloadFromCacheGivesSameTuples(t *testing.T) {
	ctx := context.Background()
	src := toyDir(t, testcorpus.Toy)
	const query = "phrase\n  word"

	first, err := Load(ctx, []string{src})
	require.NoError(t, err)
	assert.Equal(t, SourceCompiled, first.Source())
	want, err := first.Search(ctx, query, 0)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = os.Stat(filepath.Join(DefaultCacheDir([]string{src}), "CURRENT"))
	require.NoError(t, err)

	second := mustLoad(t, []string{src})
	assert.Equal(t, SourceCache, second.Source())
	got, err := second.Search(ctx, query, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestLoad_WithoutCacheWritesNothing(t *testing.T) {
	src := toyDir(t, testcorpus.Toy)
	c := mustLoad(t, []string{src}, WithoutCache())
	assert.Equal(t, SourceText, c.Source())

	_, err := os.Stat(filepath.Join(src, ".tfg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_NoLocations(t *testing.T) {
	_, err := Load(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoLocations)

	_, err = Compile(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoLocations)
}

func TestLoad_StructuralError(t *testing.T) {
	src := toyDir(t, testcorpus.With(map[string]string{"oslots.tf": ""}))
	for _, opts := range [][]Option{{WithoutCache()}, nil} {
		_, err := Load(context.Background(), []string{src}, opts...)
		require.ErrorIs(t, err, ErrStructural)

		var se *StructuralError
		require.True(t, errors.As(err, &se))
		assert.NotEmpty(t, se.Stage)
	}
	_, err := os.Stat(filepath.Join(DefaultCacheDir([]string{src}), "CURRENT"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_CorruptCacheIsReported(t *testing.T) {
	ctx := context.Background()
	src := toyDir(t, testcorpus.Toy)
	dir, err := Compile(ctx, []string{src})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node", "word.tfb"), []byte("garbage"), 0o600))

	_, err = Load(ctx, []string{src})
	require.ErrorIs(t, err, ErrCacheCorrupt)

	var ce *CacheCorruptError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, DefaultCacheDir([]string{src}), ce.Dir)
	assert.Contains(t, err.Error(), "delete it")

	// Forcing a compile publishes a fresh build next to the corrupt one.
	c := mustLoad(t, []string{src}, WithForceCompile())
	assert.Equal(t, SourceCompiled, c.Source())
}

func TestLoad_Warnings(t *testing.T) {
	src := toyDir(t, testcorpus.With(map[string]string{"number.tf": ""}))
	c := mustLoad(t, []string{src}, WithoutCache())

	warnings := c.Warnings()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, ErrDependencyMissing)
	}
	var dm *DependencyMissingError
	require.True(t, errors.As(warnings[0], &dm))
	assert.Equal(t, "sections", dm.Feature)

	text, err := c.Text()
	require.NoError(t, err)
	_, err = text.SectionFromNode(1)
	require.ErrorIs(t, err, ErrDependencyMissing)
}

func TestLoad_SentinelCollisionWarningSurvivesCache(t *testing.T) {
	src := toyDir(t, testcorpus.With(map[string]string{"freq.tf": "@node\n@valueType=int\n\n-9223372036854775808\n"}))
	for _, opts := range [][]Option{{WithoutCache()}, nil, nil} {
		c := mustLoad(t, []string{src}, opts...)
		warnings := c.Warnings()
		require.Len(t, warnings, 1)
		var sc *SentinelCollisionError
		require.True(t, errors.As(warnings[0], &sc))
		assert.Equal(t, "freq", sc.Feature)
		assert.ErrorIs(t, warnings[0], ErrSentinelCollision)
	}
}

func TestLoad_FeatureSelection(t *testing.T) {
	src := toyDir(t, testcorpus.Toy)
	c := mustLoad(t, []string{src}, WithFeatures("freq"), WithCompression(CompressionZSTD), WithParallelism(2))

	assert.ElementsMatch(t, []string{"freq", "number"}, c.NodeFeatures())
	assert.Empty(t, c.EdgeFeatures())

	_, err := c.Node("word")
	require.ErrorIs(t, err, ErrFeatureNotFound)

	q := c.Study("word word=hello")
	assert.False(t, q.Valid())
	assert.ErrorIs(t, q.Err(), search.ErrQuerySemantic)
}

func TestCorpus_Accessors(t *testing.T) {
	c := mustLoad(t, []string{toyDir(t, testcorpus.Toy)}, WithoutCache())

	assert.Equal(t, model.Node(5), c.MaxSlot())
	assert.Equal(t, model.Node(10), c.MaxNode())
	assert.Equal(t, "phrase", c.Otype().V(6))
	assert.Equal(t, []model.Node{3, 4, 5}, c.Oslots().S(7))

	word, err := c.Node("word")
	require.NoError(t, err)
	v, ok := word.V(1)
	require.True(t, ok)
	assert.Equal(t, "hello", v.Str())

	mother, err := c.Edge("mother")
	require.NoError(t, err)
	assert.Equal(t, []uint32{6}, mother.Out(7))

	_, err = c.Edge("nope")
	require.ErrorIs(t, err, ErrFeatureNotFound)

	levUp, err := c.Computed("levUp")
	require.NoError(t, err)
	assert.Equal(t, []model.Node{6, 9, 8}, levUp.V(1))

	first, last := c.Bounds().V(7)
	assert.Equal(t, model.Node(3), first)
	assert.Equal(t, model.Node(5), last)

	assert.Equal(t, []string{"crossref", "mother"}, c.EdgeFeatures())
}

func TestCorpus_CompileLoadedData(t *testing.T) {
	ctx := context.Background()
	src := toyDir(t, testcorpus.Toy)
	text := mustLoad(t, []string{src}, WithoutCache())

	cache := filepath.Join(t.TempDir(), "cache")
	dir, err := text.Compile(ctx, cache)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	mapped := mustLoad(t, []string{src}, WithCacheDir(cache))
	assert.Equal(t, SourceCache, mapped.Source())

	want, err := text.Search(ctx, "phrase\n  word", 0)
	require.NoError(t, err)
	got, err := mapped.Search(ctx, "phrase\n  word", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestCompile_PublishesNewBuildEachTime(t *testing.T) {
	ctx := context.Background()
	src := toyDir(t, testcorpus.Toy)
	cache := filepath.Join(t.TempDir(), "cache")

	a, err := Compile(ctx, []string{src}, WithCacheDir(cache))
	require.NoError(t, err)
	b, err := Compile(ctx, []string{src}, WithCacheDir(cache))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.DirExists(t, a)

	current, err := os.ReadFile(filepath.Join(cache, "CURRENT"))
	require.NoError(t, err)
	assert.Contains(t, string(current), filepath.Base(b))
}

func TestCorpus_Search(t *testing.T) {
	ctx := context.Background()
	p := search.DefaultParams()
	p.OverflowFactor = 1
	metrics := &BasicMetricsCollector{}
	c := mustLoad(t, []string{toyDir(t, testcorpus.Toy)}, WithoutCache(), WithSearchParams(p), WithMetricsCollector(metrics))

	t.Run("invalid template", func(t *testing.T) {
		_, err := c.Search(ctx, "word\n/have/", 0)
		require.ErrorIs(t, err, search.ErrQuerySyntax)
		var qe *search.Error
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, 2, qe.Line)
	})

	t.Run("overflow keeps partial results", func(t *testing.T) {
		got, err := c.Search(ctx, "a:word\nb:word\na # b", 0)
		require.ErrorIs(t, err, search.ErrResultOverflow)
		assert.Len(t, got, 10)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := c.Search(ctx, "a:word\nb:word\na # b", 12)
		require.NoError(t, err)
		assert.Len(t, got, 12)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.Search(cctx, "word", 0)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("named sets", func(t *testing.T) {
		got, err := c.Search(ctx, "picked\n  word", 0, search.WithSets(map[string][]model.Node{"picked": {7}}))
		require.NoError(t, err)
		assert.ElementsMatch(t, tuples([]uint32{7, 3}, []uint32{7, 4}, []uint32{7, 5}), got)
	})

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(5), stats.SearchCount)
	assert.Equal(t, int64(3), stats.SearchErrors)
}

func TestCorpus_CloseIsIdempotent(t *testing.T) {
	c, err := Load(context.Background(), []string{toyDir(t, testcorpus.Toy)})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	var nilCorpus *Corpus
	assert.NoError(t, nilCorpus.Close())
}

func TestMetrics_LoadSources(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	src := toyDir(t, testcorpus.Toy)

	mustLoad(t, []string{src}, WithMetricsCollector(metrics))
	mustLoad(t, []string{src}, WithMetricsCollector(metrics))
	_, err := Load(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, WithMetricsCollector(metrics))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadFromCache)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(2), stats.CompileCount)
	assert.Equal(t, int64(1), stats.CompileErrors)
}

func TestLoad_ReservedFeatureNameIsIgnored(t *testing.T) {
	src := toyDir(t, testcorpus.With(map[string]string{"levUp.tf": "@node\n\n1\tshadow\n"}))
	c := mustLoad(t, []string{src})

	require.Len(t, c.Warnings(), 1)
	assert.Contains(t, c.Warnings()[0].Error(), "levUp")
	assert.NotContains(t, c.NodeFeatures(), "levUp")

	levUp, err := c.Computed("levUp")
	require.NoError(t, err)
	assert.Equal(t, []model.Node{6, 9, 8}, levUp.V(1))
}

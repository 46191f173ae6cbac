package tfgraph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/internal/compiler"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/testcorpus"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil, "cache"))

	t.Run("structural with stage", func(t *testing.T) {
		cause := &compiler.StageError{Stage: "structure", Err: fmt.Errorf("%w: otype is empty", compiler.ErrStructural)}
		err := translateError(cause, "cache")
		require.ErrorIs(t, err, ErrStructural)

		var se *StructuralError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "structure", se.Stage)
		assert.ErrorIs(t, err, compiler.ErrStructural)
	})

	t.Run("corrupt", func(t *testing.T) {
		err := translateError(fmt.Errorf("%w: bad header", compiler.ErrCorrupt), "cache")
		require.ErrorIs(t, err, ErrCacheCorrupt)

		var ce *CacheCorruptError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "cache", ce.Dir)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		err := errors.New("disk full")
		assert.Same(t, err, translateError(err, "cache"))
	})
}

func TestWarningError(t *testing.T) {
	err := warningError(corpus.Warning{Kind: corpus.WarnReserved, Feature: corpus.LevUp, Detail: "ignored"})
	assert.Contains(t, err.Error(), "reserved")
	assert.NotErrorIs(t, err, ErrDependencyMissing)

	err = warningError(corpus.Warning{Kind: corpus.WarnDependencyMissing, Feature: "sections"})
	assert.ErrorIs(t, err, ErrDependencyMissing)
}

func TestCorpus_CompileReportsCacheFailure(t *testing.T) {
	c := mustLoad(t, []string{toyDir(t, testcorpus.Toy)}, WithoutCache())

	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o600))

	metrics := &BasicMetricsCollector{}
	c.opts.metricsCollector = metrics
	_, err := c.Compile(context.Background(), blocked)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheCorrupt)
	assert.Equal(t, int64(1), metrics.GetStats().CompileErrors)
}

package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/internal/compiler"
	"github.com/hupe1980/tfgraph/internal/testcorpus"
	"github.com/hupe1980/tfgraph/model"
)

func toy(t *testing.T) *feature.Registry {
	t.Helper()
	src := filepath.Join(t.TempDir(), "tf")
	require.NoError(t, testcorpus.Write(src))
	d, err := compiler.Build(context.Background(), []string{src}, compiler.Options{})
	require.NoError(t, err)
	return feature.NewRegistry(d)
}

func tuples(rows ...[]uint32) [][]model.Node {
	out := make([][]model.Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.NodesFromUint32(r))
	}
	return out
}

func run(t *testing.T, reg *feature.Registry, text string, opts ...Option) [][]model.Node {
	t.Helper()
	q := Study(reg, text, opts...)
	require.True(t, q.Valid(), "%v", q.Err())
	got, err := q.Fetch(0).Collect()
	require.NoError(t, err)
	return got
}

func TestSearch_Scenarios(t *testing.T) {
	reg := toy(t)

	tests := []struct {
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
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, run(t, reg, tt.text))
		})
	}
}

func TestSearch_Relations(t *testing.T) {
	reg := toy(t)

	tests := []struct {
		name string
		text string
		want [][]model.Node
	}{
		{"named containment", "p:phrase\nw:word\np [[ w", tuples(
			[]uint32{6, 1}, []uint32{6, 2}, []uint32{7, 3}, []uint32{7, 4}, []uint32{7, 5},
		)},
		{"embedded in", "word word=world\n]] phrase", tuples([]uint32{3, 7})},
		{"canonical before", "w1:word\n< w2:word word=world", tuples([]uint32{1, 3}, []uint32{2, 3})},
		{"adjacent", "word word=big\n<: word", tuples([]uint32{2, 3})},
		{"adjacent after", "word word=big\n:> word", tuples([]uint32{2, 1})},
		{"bounded distance", "word word=hello\n<1: word", tuples([]uint32{1, 2}, []uint32{1, 3})},
		{"same first slot", "phrase\n=: clause", tuples([]uint32{6, 9}, []uint32{7, 10})},
		{"same last slot", "phrase\n:= clause", tuples([]uint32{7, 9}, []uint32{7, 10})},
		{"same boundaries", "phrase\n:: clause", tuples([]uint32{7, 10})},
		{"near first slot", "phrase function=Pred\n=2: clause", tuples([]uint32{7, 9}, []uint32{7, 10})},
		{"same slots", "sentence\n== clause", tuples([]uint32{8, 9})},
		{"different slots", "sentence\n## clause", tuples([]uint32{8, 10})},
		{"overlap", "phrase function=Subj\n&& clause", tuples([]uint32{6, 9})},
		{"disjoint", "phrase function=Subj\n|| clause", tuples([]uint32{6, 10})},
		{"before slots", "phrase function=Subj\n<< word", tuples([]uint32{6, 3}, []uint32{6, 4}, []uint32{6, 5})},
		{"after slots", "phrase function=Pred\n>> word", tuples([]uint32{7, 1}, []uint32{7, 2})},
		{"identity", "word word=hi\n= word", tuples([]uint32{5, 5})},
		{"edge out", "phrase\n-mother> phrase", tuples([]uint32{7, 6})},
		{"edge in", "clause\n<mother- clause", tuples([]uint32{9, 10})},
		{"edge both", "word word=world\n<crossref> word", tuples([]uint32{3, 1})},
		{"feature equal", "s:sentence\nc:clause\ns .number. c", tuples([]uint32{8, 9})},
		{"feature less", "s:sentence\nc:clause\ns .number<number. c", tuples([]uint32{8, 10})},
		{"feature differs", "c:clause\nd:clause\nc .number#number. d", tuples([]uint32{9, 10}, []uint32{10, 9})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, run(t, reg, tt.text))
		})
	}
}

func TestSearch_Constraints(t *testing.T) {
	reg := toy(t)

	tests := []struct {
		name string
		text string
		want []uint32
	}{
		{"alternatives", "word word=hello|hi", []uint32{1, 5}},
		{"not equal keeps missing", "word freq#0", []uint32{2, 3, 4, 5}},
		{"has value", "word freq*", []uint32{1, 3, 4}},
		{"missing", "word freq", []uint32{2, 5}},
		{"missing with hash", "word freq#", []uint32{2, 5}},
		{"greater", "word freq>1", []uint32{3, 4}},
		{"less", "word freq<1", []uint32{1}},
		{"regex", "word word~^h", []uint32{1, 5}},
		{"escaped space", `word trailer=,\s`, []uint32{3}},
		{"integer normalised", "word freq=05", []uint32{4}},
		{"two constraints", "word word~o freq>0", []uint32{3}},
		{"on phrases", "phrase function#Subj", []uint32{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want [][]model.Node
			for _, n := range tt.want {
				want = append(want, []model.Node{model.Node(n)})
			}
			assert.ElementsMatch(t, want, run(t, reg, tt.text))
		})
	}
}

func TestSearch_Quantifiers(t *testing.T) {
	reg := toy(t)

	tests := []struct {
		name string
		text string
		want [][]model.Node
	}{
		{"with one alternative holding", "phrase\n/with/\n  word word=hello\n/or/\n  word word=nope\n/-/", tuples([]uint32{6})},
		{"with both alternatives", "phrase\n/with/\n  word word=hello\n/or/\n  word word=hi\n/-/", tuples([]uint32{6}, []uint32{7})},
		{"without on nested atom", "sentence\n  clause\n  /without/\n    phrase function=Subj\n  /-/", tuples([]uint32{8, 10})},
		{
			"where have",
			"clause\n/where/\n  w:word freq<3\n/have/\n  v:word freq*\n  w <: v\n/-/",
			tuples([]uint32{10}),
		},
		{"nested quantifiers", "clause\n/without/\n  phrase\n  /without/\n    word word=hello\n  /-/\n/-/", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, run(t, reg, tt.text))
		})
	}
}

func TestSearch_WhereVacuous(t *testing.T) {
	reg := toy(t)
	// Phrase 6 has no word with freq>4 and passes; phrase 7 has word 4
	// (freq 5) which is not followed by a word with a value.
	text := "phrase\n/where/\n  w:word freq>4\n/have/\n  v:word freq*\n  w <: v\n/-/"
	assert.ElementsMatch(t, tuples([]uint32{6}), run(t, reg, text))
}

func TestSearch_NamedSets(t *testing.T) {
	reg := toy(t)

	got := run(t, reg, "chosen\n  word", WithSets(map[string][]model.Node{"chosen": {6}}))
	assert.ElementsMatch(t, tuples([]uint32{6, 1}, []uint32{6, 2}), got)

	got = run(t, reg, "phrase", WithSets(map[string][]model.Node{"phrase": {7, 99}}))
	assert.Equal(t, tuples([]uint32{7}), got)
}

func TestSearch_Errors(t *testing.T) {
	reg := toy(t)

	tests := []struct {
		name string
		text string
		kind error
		line int
		col  int
	}{
		{"empty", "\n% only a comment\n", ErrQuerySyntax, 0, 0},
		{"unknown type", "word\n  wrd", ErrQuerySemantic, 2, 3},
		{"unknown feature", "word foo=bar", ErrQuerySemantic, 1, 6},
		{"missing value", "word word=", ErrQuerySyntax, 1, 6},
		{"bad number", "word freq>x", ErrQuerySyntax, 1, 6},
		{"bad regex", "word word~(", ErrQuerySyntax, 1, 6},
		{"not an integer value", "word freq=abc", ErrQuerySemantic, 1, 6},
		{"unclosed quantifier", "word\n/without/\n  phrase", ErrQuerySyntax, 2, 1},
		{"stray keyword", "word\n/have/", ErrQuerySyntax, 2, 1},
		{"where without have", "word\n/where/\n  phrase\n/-/", ErrQuerySyntax, 2, 1},
		{"with without or", "word\n/with/\n  phrase\n/-/", ErrQuerySyntax, 2, 1},
		{"or in without", "word\n/without/\n  phrase\n/or/\n  clause\n/-/", ErrQuerySyntax, 4, 1},
		{"quantifier without atom", "/without/\n  word\n/-/", ErrQuerySemantic, 1, 1},
		{"disconnected", "phrase\nword", ErrQuerySemantic, 2, 1},
		{"prefix without sibling", "< word", ErrQuerySemantic, 1, 1},
		{"unknown edge", "word\n-nosuch> word", ErrQuerySemantic, 2, 1},
		{"unknown name", "a:word\na < b", ErrQuerySemantic, 2, 5},
		{"declared parent", "word\n  ..", ErrQuerySemantic, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Study(reg, tt.text)
			assert.False(t, q.Valid())
			assert.Equal(t, StateFailed, q.State())
			require.ErrorIs(t, q.Err(), tt.kind)

			var qe *Error
			require.True(t, errors.As(q.Errors()[0], &qe))
			assert.Equal(t, tt.line, qe.Line)
			assert.Equal(t, tt.col, qe.Col)

			res := q.Fetch(0)
			assert.False(t, res.Next())
			assert.ErrorIs(t, res.Err(), tt.kind)
		})
	}
}

func TestSearch_DuplicateName(t *testing.T) {
	reg := toy(t)
	q := Study(reg, "w:word\nw:word\nw < w")
	require.False(t, q.Valid())
	assert.ErrorContains(t, q.Err(), "declared twice")
}

func TestSearch_Overflow(t *testing.T) {
	reg := toy(t)
	p := DefaultParams()
	p.OverflowFactor = 1
	text := "a:word\nb:word\na # b"

	q := Study(reg, text, WithParams(p))
	require.True(t, q.Valid(), "%v", q.Err())

	got, err := q.Fetch(0).Collect()
	require.ErrorIs(t, err, ErrResultOverflow)
	assert.Len(t, got, 10)

	got, err = q.Fetch(15).Collect()
	require.NoError(t, err)
	assert.Len(t, got, 15)

	got, err = q.Fetch(100).Collect()
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestQuery_Fetch(t *testing.T) {
	reg := toy(t)
	q := Study(reg, "phrase\n  word")
	require.Equal(t, StateFetchable, q.State())
	assert.Equal(t, []int{2, 5}, q.YarnSizes())
	assert.Contains(t, q.Plan(), "step 1: word via [[")

	first, err := q.Fetch(0).Collect()
	require.NoError(t, err)
	second, err := q.Fetch(0).Collect()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	limited, err := q.Fetch(2).Collect()
	require.NoError(t, err)
	assert.Equal(t, first[:2], limited)

	var seen int
	for tuple := range q.Fetch(0).All() {
		assert.Len(t, tuple, 2)
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestQuery_Count(t *testing.T) {
	reg := toy(t)
	q := Study(reg, "phrase\n  word")

	var calls []int
	n, err := q.Count(func(c int) { calls = append(calls, c) }, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NotEmpty(t, calls)
	assert.Equal(t, 5, calls[len(calls)-1])

	n, err = q.Count(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQuery_CountLogsProgress(t *testing.T) {
	reg := toy(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	q := Study(reg, "phrase\n  word", WithLogger(logger))
	n, err := q.Count(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Counted results"`)
	assert.Contains(t, out, `"results":5`)
	assert.NotContains(t, out, "Query planned")
}

func TestSearch_Convenience(t *testing.T) {
	reg := toy(t)

	got, err := Search(reg, "sentence\n  clause number=2", 0)
	require.NoError(t, err)
	assert.Equal(t, tuples([]uint32{8, 10}), got)

	_, err = Search(reg, "nope", 0)
	require.ErrorIs(t, err, ErrQuerySemantic)
}

func TestSearch_CommentsAndBlankLines(t *testing.T) {
	reg := toy(t)
	text := "% phrases and their words\n\nphrase function=Subj\n\n  % nested\n  word\n"
	assert.ElementsMatch(t, tuples([]uint32{6, 1}, []uint32{6, 2}), run(t, reg, text))
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1.25, p.YarnRatio)
	require.NoError(t, p.Validate())

	bad := p
	bad.YarnRatio = 0.5
	require.Error(t, bad.Validate())
	require.Error(t, SetDefaultParams(bad))
	assert.Equal(t, p, DefaultParams())

	q := Study(toy(t), "word", WithParams(Params{}))
	assert.False(t, q.Valid())
	assert.Error(t, q.Err())
}

func TestSearch_ParamsDoNotChangeResults(t *testing.T) {
	reg := toy(t)
	text := "clause\n  phrase\n    w:word\n  <: word\n"
	base := run(t, reg, text)
	require.NotEmpty(t, base)

	for _, p := range []Params{
		{YarnRatio: 1, TryLimitFrom: 1, TryLimitTo: 1, ThinRounds: 0, OverflowFactor: 4},
		{YarnRatio: 10, TryLimitFrom: 1000, TryLimitTo: 1000, ThinRounds: 50, OverflowFactor: 4},
	} {
		assert.ElementsMatch(t, base, run(t, reg, text, WithParams(p)))
	}
}

func TestTokenize(t *testing.T) {
	lines := splitLines("a\n\t  b:word  f=x\n% c\n")
	require.Len(t, lines, 2)
	assert.Equal(t, srcLine{num: 2, indent: 3, text: "b:word  f=x"}, lines[1])
	assert.Equal(t, []token{{text: "b:word", col: 4}, {text: "f=x", col: 12}}, tokenize(lines[1]))
}

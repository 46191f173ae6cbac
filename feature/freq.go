package feature

import (
	"cmp"
	"slices"

	"github.com/hupe1980/tfgraph/model"
)

// Freq is a value with its number of occurrences.
type Freq struct {
	Value model.Value
	Count int
}

// freqList sorts counts by count descending, then value ascending.
func freqList(counts map[model.Value]int) []Freq {
	out := make([]Freq, 0, len(counts))
	for v, c := range counts {
		out = append(out, Freq{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b Freq) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Value.Compare(b.Value)
	})
	return out
}

package search

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tfgraph/model"
)

type options struct {
	params *Params
	sets   map[string]*roaring.Bitmap
	logger *slog.Logger
}

// Option configures a query.
type Option func(*options)

// WithParams overrides the default parameters for one query.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = &p
	}
}

// WithSets makes named node sets available as atom types. A set name takes
// precedence over a node type of the same name.
func WithSets(sets map[string][]model.Node) Option {
	return func(o *options) {
		if o.sets == nil {
			o.sets = make(map[string]*roaring.Bitmap, len(sets))
		}
		for name, nodes := range sets {
			bm := roaring.New()
			for _, n := range nodes {
				bm.Add(uint32(n))
			}
			o.sets[name] = bm
		}
	}
}

// WithLogger sets the logger for plan summaries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.params == nil {
		p := DefaultParams()
		o.params = &p
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

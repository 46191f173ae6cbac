package search

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/model"
)

// progressInterval throttles Count progress callbacks.
const progressInterval = 200 * time.Millisecond

// Query is a studied template. Errors are recorded on the query instead of
// being returned: an invalid query yields no results.
type Query struct {
	text  string
	g     *engine
	state State
	errs  []error
	plan  *plan
}

// Study parses, validates and plans a template against reg.
func Study(reg *feature.Registry, text string, opts ...Option) *Query {
	o := applyOptions(opts)
	q := &Query{text: text}
	if err := o.params.Validate(); err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	q.g = &engine{env: newEnv(reg), params: *o.params, sets: o.sets, logger: o.logger}

	lines := splitLines(text)
	if len(lines) == 0 {
		q.errs = append(q.errs, syntaxErr(0, 0, "empty template"))
		return q
	}
	p := &parser{env: q.g.env, sets: o.sets}
	t := p.parse(lines, 0, false)
	if len(p.errs) > 0 {
		q.errs = p.errs
		return q
	}
	q.state = StateParsed

	if errs := prepare(t); len(errs) > 0 {
		q.fail(errs...)
		return q
	}
	q.state = StatePrepared

	pl, err := q.g.spin(t, nil)
	if err != nil {
		q.fail(err)
		return q
	}
	q.state = StateSpun

	q.g.stitch(pl, 0)
	q.plan = pl
	q.state = StateStitched

	q.state = StateFetchable
	q.g.logger.Debug("Query planned",
		"atoms", len(t.atoms),
		"relations", len(t.links),
		"quantifiers", len(t.quants),
		"thin_rounds", pl.rounds,
		"candidates", pl.total(),
	)
	return q
}

func (q *Query) fail(errs ...error) {
	q.errs = append(q.errs, errs...)
	q.state = StateFailed
}

// State returns the stage the query reached.
func (q *Query) State() State { return q.state }

// Valid reports whether the query can be fetched.
func (q *Query) Valid() bool { return q.state == StateFetchable }

// Err returns all recorded errors joined, or nil.
func (q *Query) Err() error { return errors.Join(q.errs...) }

// Errors returns the recorded errors.
func (q *Query) Errors() []error { return append([]error(nil), q.errs...) }

// Text returns the template.
func (q *Query) Text() string { return q.text }

// YarnSizes returns the candidate count of every atom after planning, in
// declaration order.
func (q *Query) YarnSizes() []int {
	if q.plan == nil {
		return nil
	}
	out := make([]int, len(q.plan.yarns))
	for i, y := range q.plan.yarns {
		out[i] = int(y.GetCardinality())
	}
	return out
}

// Plan describes candidate sizes and the join order.
func (q *Query) Plan() string {
	if q.plan == nil {
		return ""
	}
	var b strings.Builder
	q.plan.describe(&b, "")
	return b.String()
}

// Fetch starts a new enumeration. A positive limit bounds the number of
// tuples; with limit 0 the enumeration ends with ErrResultOverflow once it
// passes the safety cutoff.
func (q *Query) Fetch(limit int) *Results {
	if !q.Valid() {
		return &Results{err: q.Err()}
	}
	return &Results{
		r:      newRunner(q.g, q.plan, -1),
		limit:  limit,
		cutoff: q.g.cutoff(),
	}
}

// Count enumerates without keeping the tuples. Progress is logged at Info
// and passed to progress (when not nil) at most every progressInterval, and
// once more at the end.
func (q *Query) Count(progress func(int), limit int) (int, error) {
	res := q.Fetch(limit)
	every := rate.Sometimes{Interval: progressInterval}
	n := 0
	report := func() {
		q.g.logger.Info("Counting results", "results", n)
		if progress != nil {
			progress(n)
		}
	}
	for res.Next() {
		n++
		every.Do(report)
	}
	err := res.Err()
	q.g.logger.Info("Counted results", "results", n, "error", err)
	if progress != nil {
		progress(n)
	}
	return n, err
}

// Search studies text and collects up to limit tuples.
func Search(reg *feature.Registry, text string, limit int, opts ...Option) ([][]model.Node, error) {
	q := Study(reg, text, opts...)
	if !q.Valid() {
		return nil, q.Err()
	}
	return q.Fetch(limit).Collect()
}

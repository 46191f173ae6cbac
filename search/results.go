package search

import (
	"fmt"
	"iter"

	"github.com/hupe1980/tfgraph/model"
)

// Results is a lazy sequence of match tuples. It is not safe for
// concurrent use.
//
//	res := q.Fetch(0)
//	for res.Next() {
//		fmt.Println(res.Tuple())
//	}
//	if err := res.Err(); err != nil { ... }
type Results struct {
	r      *runner
	limit  int
	cutoff int
	n      int
	tuple  []model.Node
	err    error
}

// Next advances to the next tuple.
func (rs *Results) Next() bool {
	rs.tuple = nil
	if rs.r == nil || rs.err != nil {
		return false
	}
	if rs.limit > 0 && rs.n >= rs.limit {
		return false
	}
	if !rs.r.next() {
		return false
	}
	if rs.limit <= 0 && rs.n >= rs.cutoff {
		rs.err = fmt.Errorf("%w: more than %d results", ErrResultOverflow, rs.cutoff)
		return false
	}
	rs.n++
	tuple := make([]model.Node, len(rs.r.cur))
	for i, n := range rs.r.cur {
		tuple[i] = model.Node(n)
	}
	rs.tuple = tuple
	return true
}

// Tuple returns the current tuple, one node per atom in declaration order.
// The slice is owned by the caller.
func (rs *Results) Tuple() []model.Node { return rs.tuple }

// Err returns the error that ended the sequence, if any.
func (rs *Results) Err() error { return rs.err }

// All iterates over the remaining tuples. Check Err afterwards.
func (rs *Results) All() iter.Seq[[]model.Node] {
	return func(yield func([]model.Node) bool) {
		for rs.Next() {
			if !yield(rs.Tuple()) {
				return
			}
		}
	}
}

// Collect drains the sequence. On overflow the tuples produced so far are
// returned together with the error.
func (rs *Results) Collect() ([][]model.Node, error) {
	var out [][]model.Node
	for rs.Next() {
		out = append(out, rs.Tuple())
	}
	return out, rs.Err()
}

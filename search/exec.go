package search

// runner enumerates the matches of a plan depth first with explicit state:
// one candidate list and position per join step.
type runner struct {
	g       *engine
	p       *plan
	cand    [][]uint32
	pos     []int
	cur     []uint32
	resume  int
	started bool
	done    bool
}

// newRunner prepares an enumeration. After a match the search continues
// at step resume; a negative resume continues at the last step, which
// yields every match. A smaller resume yields one match per distinct
// assignment of the steps up to resume.
func newRunner(g *engine, p *plan, resume int) *runner {
	n := len(p.steps)
	if resume < 0 || resume > n-1 {
		resume = n - 1
	}
	return &runner{
		g:      g,
		p:      p,
		cand:   make([][]uint32, n),
		pos:    make([]int, n),
		cur:    make([]uint32, len(p.t.atoms)),
		resume: resume,
		done:   n == 0 || p.empty(),
	}
}

// next advances to the following match. The match is in cur, indexed by
// atom.
func (r *runner) next() bool {
	if r.done {
		return false
	}
	last := len(r.p.steps) - 1
	d := r.resume
	if !r.started {
		r.started = true
		r.fill(0)
		d = 0
	}
	for d >= 0 {
		if !r.advance(d) {
			d--
			continue
		}
		if d == last {
			return true
		}
		d++
		r.fill(d)
	}
	r.done = true
	return false
}

func (r *runner) fill(d int) {
	s := &r.p.steps[d]
	r.pos[d] = 0
	if s.gen != nil {
		r.cand[d] = s.gen.rel.gen(r.cur[s.gen.from])
		return
	}
	r.cand[d] = r.g.sortedYarn(r.p, s.atom)
}

// advance moves step d to its next acceptable candidate.
func (r *runner) advance(d int) bool {
	s := &r.p.steps[d]
	yarn := r.p.yarns[s.atom]
	for r.pos[d] < len(r.cand[d]) {
		x := r.cand[d][r.pos[d]]
		r.pos[d]++
		if !yarn.Contains(x) {
			continue
		}
		if s.gen != nil && !s.gen.rel.test(r.cur[s.gen.from], x) {
			continue
		}
		ok := true
		for _, c := range s.checks {
			from := r.cur[c.from]
			if c.from == s.atom {
				from = x
			}
			if !c.rel.test(from, x) {
				ok = false
				break
			}
		}
		if ok {
			r.cur[s.atom] = x
			return true
		}
	}
	return false
}

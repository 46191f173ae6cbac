package search

// prepare verifies that every template, including the blocks of its
// quantifiers, forms one connected relation graph.
func prepare(t *template) []error {
	var errs []error
	if i := disconnected(t); i >= 0 {
		a := t.atoms[i]
		errs = append(errs, semanticErr(a.line, a.col, "atom %s is not related to the rest of the template", a))
	}
	for _, q := range t.quants {
		for _, b := range q.blocks {
			errs = append(errs, prepare(b)...)
		}
	}
	return errs
}

// disconnected returns the first atom that cannot be reached from atom 0
// over relations, or -1.
func disconnected(t *template) int {
	parent := make([]int, len(t.atoms))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, l := range t.links {
		if a, b := find(l.from), find(l.to); a != b {
			parent[b] = a
		}
	}
	for i := 1; i < len(t.atoms); i++ {
		if find(i) != find(0) {
			return i
		}
	}
	return -1
}

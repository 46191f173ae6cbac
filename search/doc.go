// Package search evaluates graph-pattern templates against a corpus.
//
// A template lists atoms (node types with feature constraints), relations
// between atoms and quantifier blocks. Indentation nests an atom inside the
// nearest less indented atom above it.
//
//	% clauses without a subject phrase
//	clause
//	/without/
//	  phrase function=Subj
//	/-/
//
// Study parses and validates a template and builds a plan in stages: atom
// candidate sets ("yarns") are computed and thinned along the relations, then
// the atoms are stitched into a join order. Results are produced lazily by
// an explicit-state iterator, one node per atom in declaration order.
//
// Syntax and semantic errors never panic or abort the caller; they are kept
// on the Query, which then yields no results.
package search

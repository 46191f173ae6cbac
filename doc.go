// Package tfgraph loads graph-structured text corpora and answers
// graph-pattern queries over them.
//
// A corpus is a directory of feature files: otype assigns a type to every
// node, oslots maps non-slot nodes to the slots (words) they span, and any
// number of node and edge features attach values. Loading compiles the
// files once into a versioned, memory-mappable cache next to the corpus;
// later loads map the cache and share its pages across processes.
//
// # Quick Start
//
//	ctx := context.Background()
//	c, err := tfgraph.Load(ctx, []string{"./tf"})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	tuples, err := c.Search(ctx, "phrase function=Subj\n  word", 0)
//
// # Templates
//
// A template lists atoms (a node type with optional name and feature
// constraints), relations between atoms and quantifier blocks. Indentation
// nests atoms:
//
//	clause
//	  p:phrase function=Pred
//	  w:word
//	p < w
//	/without/
//	  word freq>100
//	/-/
//
// See the search package for the full language.
//
// # Text
//
// Corpora with an otext feature expose sections, structure and text
// formats through Corpus.Text:
//
//	text, err := c.Text()
//	s, err := text.Render(c.Otype().S("sentence"), "text-orig-full")
//
// # Caching
//
// The cache lives in .tfg/v<format version> inside the first location
// (override with WithCacheDir). Builds are immutable; a recompile publishes
// a new build directory and flips the CURRENT pointer, so open readers are
// never affected. A cache that exists but cannot be read fails the load
// with a *CacheCorruptError instead of being rebuilt.
//
// # Errors
//
// Structural problems fail with *StructuralError. Missing section
// dependencies and integer values colliding with the missing-value marker
// are reported as warnings through Corpus.Warnings. Invalid templates never
// panic: the returned *search.Query records its errors.
package tfgraph

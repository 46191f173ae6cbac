package tfgraph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/model"
)

// DefaultFormat is the text format used when none is named.
const DefaultFormat = "text-orig-full"

// Text renders nodes and navigates the section and structure hierarchies
// declared by the otext feature.
type Text struct {
	c   *Corpus
	cfg *corpus.TextConfig
}

// Text returns the text API, or ErrNoTextConfig when the corpus has no
// otext feature.
func (c *Corpus) Text() (*Text, error) {
	if c.data.Text == nil {
		return nil, ErrNoTextConfig
	}
	return &Text{c: c, cfg: c.data.Text}, nil
}

// SectionTypes returns the section types, outermost first.
func (t *Text) SectionTypes() []string { return slices.Clone(t.cfg.SectionTypes) }

// StructureTypes returns the structure types, outermost first.
func (t *Text) StructureTypes() []string { return slices.Clone(t.cfg.StructureTypes) }

// Formats returns the names of the declared text formats.
func (t *Text) Formats() []string {
	return slices.Sorted(maps.Keys(t.cfg.Formats))
}

type hierarchy struct {
	name     string
	types    []string
	features []string
	tree     *columnar.CSR
}

func (t *Text) sections() hierarchy {
	return hierarchy{name: "sections", types: t.cfg.SectionTypes, features: t.cfg.SectionFeatures, tree: t.c.data.Sections}
}

func (t *Text) structure() hierarchy {
	return hierarchy{name: "structure", types: t.cfg.StructureTypes, features: t.cfg.StructureFeatures, tree: t.c.data.StructureMap}
}

func (h hierarchy) check() error {
	if h.tree == nil {
		return &DependencyMissingError{Feature: h.name, Detail: "not computed for this corpus"}
	}
	return nil
}

// path returns the nodes of the hierarchy that contain n, outermost first.
func (t *Text) path(h hierarchy, n model.Node) []model.Node {
	levUp, _ := t.c.reg.Computed(feature.LevUp)
	up := levUp.View(n)
	contains := func(m uint32) bool { return m == uint32(n) || slices.Contains(up, m) }

	var path []model.Node
	row := h.tree.Row(0)
	for range h.types {
		i := slices.IndexFunc(row, contains)
		if i < 0 {
			break
		}
		path = append(path, model.Node(row[i]))
		row = h.tree.Row(int(row[i]))
	}
	return path
}

func (t *Text) labels(h hierarchy, n model.Node) ([]model.Value, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	path := t.path(h, n)
	out := make([]model.Value, 0, len(path))
	for i, m := range path {
		f, err := t.c.Node(h.features[i])
		if err != nil {
			return nil, err
		}
		v, _ := f.V(m)
		out = append(out, v)
	}
	return out, nil
}

func (t *Text) find(h hierarchy, labels []string) (model.Node, error) {
	if err := h.check(); err != nil {
		return 0, err
	}
	if len(labels) == 0 || len(labels) > len(h.types) {
		return 0, fmt.Errorf("%s: expected 1 to %d labels, got %d", h.name, len(h.types), len(labels))
	}
	var found model.Node
	row := h.tree.Row(0)
	for i, label := range labels {
		f, err := t.c.Node(h.features[i])
		if err != nil {
			return 0, err
		}
		j := slices.IndexFunc(row, func(m uint32) bool {
			v, ok := f.V(model.Node(m))
			return ok && v.Str() == label
		})
		if j < 0 {
			return 0, nil
		}
		found = model.Node(row[j])
		row = h.tree.Row(int(found))
	}
	return found, nil
}

// SectionFromNode returns the section labels of n, outermost first. The
// result is shorter than SectionTypes when n lies outside the deeper
// sections.
func (t *Text) SectionFromNode(n model.Node) ([]model.Value, error) {
	return t.labels(t.sections(), n)
}

// NodeFromSection returns the section node with the given labels, or 0.
func (t *Text) NodeFromSection(labels ...string) (model.Node, error) {
	return t.find(t.sections(), labels)
}

// StructureFromNode returns the structure labels of n, outermost first.
func (t *Text) StructureFromNode(n model.Node) ([]model.Value, error) {
	return t.labels(t.structure(), n)
}

// NodeFromStructure returns the structure node with the given labels, or 0.
func (t *Text) NodeFromStructure(labels ...string) (model.Node, error) {
	return t.find(t.structure(), labels)
}

// segment is a literal or a list of alternative features.
type segment struct {
	literal string
	alts    []*feature.NodeFeature
}

func (t *Text) compile(format string) ([]segment, error) {
	tmpl, ok := t.cfg.Formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormatNotFound, format)
	}
	var segs []segment
	for tmpl != "" {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			segs = append(segs, segment{literal: tmpl})
			break
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("format %q: unclosed {", format)
		}
		if open > 0 {
			segs = append(segs, segment{literal: tmpl[:open]})
		}
		var seg segment
		names := strings.Split(tmpl[open+1:open+end], "/")
		for _, name := range names {
			if f, ok := t.c.reg.Node(name); ok {
				seg.alts = append(seg.alts, f)
			}
		}
		if len(seg.alts) == 0 {
			return nil, fmt.Errorf("%w: format %q needs one of %v", ErrFeatureNotFound, format, names)
		}
		segs = append(segs, seg)
		tmpl = tmpl[open+end+1:]
	}
	return segs, nil
}

// Render renders the slots of nodes with a format such as
// "{word}{trailer}". In "{a/b}" the first feature with a value wins. An
// empty format selects DefaultFormat.
func (t *Text) Render(nodes []model.Node, format string) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	segs, err := t.compile(format)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	oslots := t.c.reg.Oslots()
	for _, n := range nodes {
		for _, s := range oslots.View(n) {
			for _, seg := range segs {
				if seg.alts == nil {
					b.WriteString(seg.literal)
					continue
				}
				for _, f := range seg.alts {
					if v, ok := f.V(model.Node(s)); ok {
						b.WriteString(v.Str())
						break
					}
				}
			}
		}
	}
	return b.String(), nil
}

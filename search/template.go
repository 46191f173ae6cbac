package search

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// parentAtom is the implicit first atom of a quantifier block. It stands
// for the node the quantifier is attached to.
const parentAtom = ".."

const commentMarker = "%"

// Quantifier keywords.
const (
	kwWithout = "/without/"
	kwWhere   = "/where/"
	kwHave    = "/have/"
	kwWith    = "/with/"
	kwOr      = "/or/"
	kwEnd     = "/-/"
)

type srcLine struct {
	num    int
	indent int
	text   string
}

type token struct {
	text string
	col  int
}

type atom struct {
	line, col   int
	indent      int
	name        string
	typ         string
	constraints []*constraint
}

func (a *atom) String() string {
	if a.name != "" && a.name != parentAtom {
		return a.name + ":" + a.typ
	}
	return a.typ
}

// link is a relation between two atoms of the same template.
type link struct {
	line, col int
	from, to  int
	op        string
	rel       *relation
}

type quantKind int

const (
	quantWithout quantKind = iota
	quantWhere
	quantWith
)

// quantifier filters the candidates of its parent atom. blocks holds the
// negated template for /without/, the /where/ template and the combined
// /where/ + /have/ template for /where/, and the alternatives for /with/.
type quantifier struct {
	line   int
	indent int
	kind   quantKind
	parent int
	blocks []*template
}

type template struct {
	atoms  []*atom
	links  []*link
	quants []*quantifier
	// sub templates start with the parent atom.
	sub bool
}

// enclosing returns the latest atom indented less than indent, or -1.
func (t *template) enclosing(indent int) int {
	for j := len(t.atoms) - 1; j >= 0; j-- {
		if t.atoms[j].indent < indent {
			return j
		}
	}
	return -1
}

// sibling returns the previous atom at exactly indent with no less
// indented atom in between, or -1.
func (t *template) sibling(indent int) int {
	for j := len(t.atoms) - 1; j >= 0; j-- {
		switch {
		case t.atoms[j].indent == indent:
			return j
		case t.atoms[j].indent < indent:
			return -1
		}
	}
	return -1
}

// owner returns the latest atom indented at most indent, or -1.
func (t *template) owner(indent int) int {
	for j := len(t.atoms) - 1; j >= 0; j-- {
		if t.atoms[j].indent <= indent {
			return j
		}
	}
	return -1
}

// splitLines drops blank and comment lines and measures indentation.
func splitLines(text string) []srcLine {
	var out []srcLine
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, " \t\r")
		body := strings.TrimLeft(raw, " \t")
		if body == "" || strings.HasPrefix(body, commentMarker) {
			continue
		}
		out = append(out, srcLine{num: i + 1, indent: len(raw) - len(body), text: body})
	}
	return out
}

func tokenize(ln srcLine) []token {
	var out []token
	s := ln.text
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		if start < i {
			out = append(out, token{text: s[start:i], col: ln.indent + start + 1})
		}
	}
	return out
}

type parser struct {
	env  *env
	sets map[string]*roaring.Bitmap
	errs []error
}

func (p *parser) fail(err *Error) { p.errs = append(p.errs, err) }

// parse builds a template from lines. Sub templates receive the implicit
// parent atom at parentIndent.
func (p *parser) parse(lines []srcLine, parentIndent int, sub bool) *template {
	t := &template{sub: sub}
	names := map[string]int{}
	if sub {
		t.atoms = append(t.atoms, &atom{name: parentAtom, typ: parentAtom, indent: parentIndent})
		names[parentAtom] = 0
	}

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		switch ln.text {
		case kwWithout, kwWhere, kwWith:
			i = p.quantifier(t, lines, i)
			continue
		case kwHave, kwOr, kwEnd:
			p.fail(syntaxErr(ln.num, ln.indent+1, "%s outside a quantifier", ln.text))
			continue
		}

		toks := tokenize(ln)
		if len(toks) == 3 && looksLikeRelation(toks[1].text) && isAtomName(toks[0].text) && isAtomName(toks[2].text) {
			p.relationLine(t, names, ln, toks)
			continue
		}
		p.atomLine(t, names, ln, toks)
	}
	return t
}

func isAtomName(s string) bool {
	return s == parentAtom || (isIdent(s) && !strings.ContainsAny(s, ".-"))
}

func (p *parser) relationLine(t *template, names map[string]int, ln srcLine, toks []token) {
	from, ok := names[toks[0].text]
	if !ok {
		p.fail(semanticErr(ln.num, toks[0].col, "unknown atom name %q", toks[0].text))
		return
	}
	to, ok := names[toks[2].text]
	if !ok {
		p.fail(semanticErr(ln.num, toks[2].col, "unknown atom name %q", toks[2].text))
		return
	}
	p.link(t, ln.num, toks[1].col, from, to, toks[1].text)
}

func (p *parser) link(t *template, line, col, from, to int, op string) {
	rel, msg := p.env.relation(op)
	if msg != "" {
		p.fail(semanticErr(line, col, "%s", msg))
		return
	}
	t.links = append(t.links, &link{line: line, col: col, from: from, to: to, op: op, rel: rel})
}

func (p *parser) atomLine(t *template, names map[string]int, ln srcLine, toks []token) {
	var op *token
	if len(toks) > 1 && looksLikeRelation(toks[0].text) {
		op, toks = &toks[0], toks[1:]
	}
	head := toks[0]
	a := &atom{line: ln.num, col: head.col, indent: ln.indent, typ: head.text}
	if name, typ, ok := strings.Cut(head.text, ":"); ok {
		if !isAtomName(name) || name == parentAtom {
			p.fail(syntaxErr(ln.num, head.col, "bad atom name %q", name))
			return
		}
		a.name, a.typ = name, typ
	}
	switch {
	case a.typ == parentAtom:
		p.fail(semanticErr(ln.num, head.col, "%q is implicit and cannot be declared", parentAtom))
		return
	case !isIdent(a.typ):
		p.fail(syntaxErr(ln.num, head.col, "bad node type %q", a.typ))
		return
	case p.sets[a.typ] == nil && !p.env.isType(a.typ):
		p.fail(semanticErr(ln.num, head.col, "unknown node type or set %q", a.typ))
	}

	for _, tok := range toks[1:] {
		c, err := parseConstraint(tok.text, ln.num, tok.col)
		if err != nil {
			p.fail(err)
			continue
		}
		if msg := c.resolve(p.env.reg); msg != "" {
			p.fail(semanticErr(ln.num, tok.col, "%s", msg))
			continue
		}
		a.constraints = append(a.constraints, c)
	}

	idx := len(t.atoms)
	if a.name != "" {
		if _, dup := names[a.name]; dup {
			p.fail(semanticErr(ln.num, head.col, "atom name %q declared twice", a.name))
		}
		names[a.name] = idx
	}
	parent := t.enclosing(ln.indent)
	sib := t.sibling(ln.indent)
	t.atoms = append(t.atoms, a)

	if parent >= 0 {
		p.link(t, ln.num, head.col, parent, idx, "[[")
	}
	if op != nil {
		if sib < 0 {
			p.fail(semanticErr(ln.num, op.col, "relation %s has no preceding atom at the same indentation", op.text))
			return
		}
		p.link(t, ln.num, op.col, sib, idx, op.text)
	}
}

// quantifier parses the block opened at lines[i] and returns the index of
// its closing line.
func (p *parser) quantifier(t *template, lines []srcLine, i int) int {
	open := lines[i]
	var (
		blocks [][]srcLine
		seps   []srcLine
		cur    []srcLine
		depth  int
		end    = -1
	)
	for j := i + 1; j < len(lines) && end < 0; j++ {
		ln := lines[j]
		if ln.indent == open.indent {
			switch ln.text {
			case kwWithout, kwWhere, kwWith:
				depth++
			case kwEnd:
				if depth == 0 {
					end = j
					continue
				}
				depth--
			case kwHave, kwOr:
				if depth == 0 {
					blocks = append(blocks, cur)
					seps = append(seps, ln)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, ln)
	}
	if end < 0 {
		p.fail(syntaxErr(open.num, open.indent+1, "%s is not closed by %s", open.text, kwEnd))
		return len(lines) - 1
	}
	blocks = append(blocks, cur)

	q := &quantifier{line: open.num, indent: open.indent}
	switch open.text {
	case kwWithout:
		q.kind = quantWithout
		if len(seps) > 0 {
			p.fail(syntaxErr(seps[0].num, seps[0].indent+1, "%s not allowed in %s", seps[0].text, kwWithout))
			return end
		}
	case kwWhere:
		q.kind = quantWhere
		if len(seps) != 1 || seps[0].text != kwHave {
			p.fail(syntaxErr(open.num, open.indent+1, "%s needs exactly one %s", kwWhere, kwHave))
			return end
		}
	case kwWith:
		q.kind = quantWith
		for _, s := range seps {
			if s.text != kwOr {
				p.fail(syntaxErr(s.num, s.indent+1, "%s not allowed in %s", s.text, kwWith))
				return end
			}
		}
		if len(seps) == 0 {
			p.fail(syntaxErr(open.num, open.indent+1, "%s needs at least one %s", kwWith, kwOr))
			return end
		}
	}
	for _, b := range blocks {
		if len(b) == 0 {
			p.fail(syntaxErr(open.num, open.indent+1, "empty block in %s", open.text))
			return end
		}
	}

	q.parent = t.owner(open.indent)
	if q.parent < 0 {
		p.fail(semanticErr(open.num, open.indent+1, "%s has no atom to attach to", open.text))
		return end
	}

	switch q.kind {
	case quantWhere:
		q.blocks = append(q.blocks, p.parse(blocks[0], open.indent, true))
		// Errors in the /where/ lines were reported above.
		mark := len(p.errs)
		both := p.parse(append(append([]srcLine{}, blocks[0]...), blocks[1]...), open.indent, true)
		kept := p.errs[:mark]
		for _, err := range p.errs[mark:] {
			if e, ok := err.(*Error); ok && e.Line < blocks[1][0].num {
				continue
			}
			kept = append(kept, err)
		}
		p.errs = kept
		q.blocks = append(q.blocks, both)
	default:
		for _, b := range blocks {
			q.blocks = append(q.blocks, p.parse(b, open.indent, true))
		}
	}
	t.quants = append(t.quants, q)
	return end
}

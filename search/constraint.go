package search

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/model"
)

// Operator is the comparison of a feature constraint.
type Operator int

const (
	OpIn      Operator = iota // f=v|w
	OpNotIn                   // f#v|w; nodes without a value qualify
	OpHas                     // f*
	OpMissing                 // f or f#
	OpLess                    // f<N
	OpGreater                 // f>N
	OpMatch                   // f~re
)

// constraint restricts an atom by one node feature.
type constraint struct {
	col     int
	feature string
	op      Operator
	values  []string
	num     int64
	re      *regexp.Regexp

	nf *feature.NodeFeature
}

// parseConstraint parses one feature constraint token.
func parseConstraint(tok string, line, col int) (*constraint, *Error) {
	c := &constraint{col: col}
	i := strings.IndexAny(tok, "=#<>~")
	if i < 0 {
		c.feature, c.op = tok, OpMissing
		if name, ok := strings.CutSuffix(tok, "*"); ok {
			c.feature, c.op = name, OpHas
		}
	} else {
		c.feature = tok[:i]
		rest := tok[i+1:]
		switch tok[i] {
		case '~':
			re, err := regexp.Compile(rest)
			if err != nil {
				return nil, syntaxErr(line, col, "bad regular expression %q: %v", rest, err)
			}
			c.op, c.re = OpMatch, re
		case '=', '#':
			if rest == "" {
				if tok[i] == '=' {
					return nil, syntaxErr(line, col, "missing value after %q", tok)
				}
				c.op = OpMissing
				break
			}
			c.op = OpIn
			if tok[i] == '#' {
				c.op = OpNotIn
			}
			for _, v := range splitValues(rest) {
				c.values = append(c.values, unescapeValue(v))
			}
		case '<', '>':
			n, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return nil, syntaxErr(line, col, "%q is not an integer", rest)
			}
			c.op, c.num = OpLess, n
			if tok[i] == '>' {
				c.op = OpGreater
			}
		}
	}
	if !isIdent(c.feature) {
		return nil, syntaxErr(line, col, "bad feature name in %q", tok)
	}
	return c, nil
}

// splitValues splits at unescaped pipes.
func splitValues(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '|':
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// unescapeValue decodes \s (space), \t, \| and \\ in constraint values.
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 's':
			b.WriteByte(' ')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// resolve binds the constraint to its feature, returning a semantic error
// message on failure.
func (c *constraint) resolve(reg *feature.Registry) string {
	nf, ok := reg.Node(c.feature)
	if !ok {
		return "unknown node feature " + c.feature
	}
	if nf.ValueType() == model.ValueInt && (c.op == OpIn || c.op == OpNotIn) {
		for i, v := range c.values {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return "feature " + c.feature + " has integer values; " + strconv.Quote(v) + " is not one"
			}
			c.values[i] = strconv.FormatInt(n, 10)
		}
	}
	c.nf = nf
	return ""
}

func (c *constraint) matches(v model.Value) bool {
	switch c.op {
	case OpIn, OpNotIn:
		return slices.Contains(c.values, v.Str())
	case OpHas, OpMissing:
		return true
	case OpLess, OpGreater:
		n, ok := v.Int()
		if !ok {
			return false
		}
		if c.op == OpLess {
			return n < c.num
		}
		return n > c.num
	case OpMatch:
		return c.re.MatchString(v.Str())
	default:
		return false
	}
}

// apply restricts the candidate bitmap in place.
func (c *constraint) apply(bm *roaring.Bitmap) {
	hits := roaring.New()
	for n := range c.nf.Matching(c.matches) {
		hits.Add(uint32(n))
	}
	switch c.op {
	case OpNotIn, OpMissing:
		bm.AndNot(hits)
	default:
		bm.And(hits)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '.' || r == '-'):
		default:
			return false
		}
	}
	return true
}

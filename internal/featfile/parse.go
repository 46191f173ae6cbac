package featfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/tfgraph/model"
)

// Ext is the file extension of feature files.
const Ext = ".tf"

const maxLineSize = 64 << 20

// Feature is a parsed feature file. Entries are in file order.
//
// For node features Nodes[i] carries value i. For edge features From[i] and
// To[i] form edge i; when EdgeValues is set, Has[i] reports whether edge i
// carries a value. Values live in Strs or Ints depending on ValueType.
type Feature struct {
	Header

	Nodes []model.Node
	From  []model.Node
	To    []model.Node
	Has   []bool
	Strs  []string
	Ints  []int64
}

// Len returns the number of node entries or edges.
func (f *Feature) Len() int {
	if f.Kind == KindEdge {
		return len(f.From)
	}
	return len(f.Nodes)
}

// NameOf returns the feature name of a feature file path.
func NameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}

// ParseFile parses the feature file at path. start is the node the implicit
// counter begins at.
func ParseFile(path string, start model.Node) (*Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, NameOf(path), start)
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return sc
}

// Parse parses a feature file read from r.
func Parse(r io.Reader, name string, start model.Node) (*Feature, error) {
	sc := newScanner(r)
	h, line, pending, err := readHeader(sc, name)
	if err != nil {
		return nil, err
	}

	p := &parser{feat: &Feature{Header: *h}, next: start, line: line}
	if h.Kind == KindConfig {
		return p.feat, nil
	}

	if pending != nil {
		if err := p.parseLine(*pending); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		p.line++
		if err := p.parseLine(strings.TrimRight(sc.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p.feat, nil
}

type parser struct {
	feat *Feature
	next model.Node
	line int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{File: p.feat.Name, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(text string) error {
	if p.feat.Kind == KindNode {
		return p.nodeLine(text)
	}
	return p.edgeLine(text)
}

// implicit returns the next sequential node and advances the counter.
func (p *parser) implicit() []model.Node {
	n := p.next
	p.next++
	return []model.Node{n}
}

func (p *parser) explicit(spec string) ([]model.Node, error) {
	nodes, err := ParseRange(spec)
	if err != nil {
		return nil, p.errorf("%v", err)
	}
	maxNode := nodes[0]
	for _, n := range nodes[1:] {
		maxNode = max(maxNode, n)
	}
	p.next = maxNode + 1
	return nodes, nil
}

func (p *parser) nodeLine(text string) error {
	if text == "" {
		p.next++
		return nil
	}
	fields := strings.Split(text, "\t")
	var (
		nodes []model.Node
		err   error
	)
	switch len(fields) {
	case 1:
		nodes = p.implicit()
	case 2:
		if nodes, err = p.explicit(fields[0]); err != nil {
			return err
		}
	default:
		return p.errorf("node feature line has %d fields", len(fields))
	}
	raw := fields[len(fields)-1]
	if raw == "" {
		return nil
	}
	for _, n := range nodes {
		if err := p.addValue(raw); err != nil {
			return err
		}
		p.feat.Nodes = append(p.feat.Nodes, n)
	}
	return nil
}

func (p *parser) edgeLine(text string) error {
	fields := strings.Split(text, "\t")
	var (
		from, to []model.Node
		raw      string
		hasValue bool
		err      error
	)

	maxFields := 2
	if p.feat.EdgeValues {
		maxFields = 3
	}
	if len(fields) > maxFields || text == "" {
		return p.errorf("edge feature line has %d fields", len(fields))
	}

	switch {
	case len(fields) == 3:
		if from, err = p.explicit(fields[0]); err != nil {
			return err
		}
		fields = fields[1:]
		raw, hasValue = fields[1], fields[1] != ""
	case len(fields) == 2 && p.feat.EdgeValues:
		from = p.implicit()
		raw, hasValue = fields[1], fields[1] != ""
	case len(fields) == 2:
		if from, err = p.explicit(fields[0]); err != nil {
			return err
		}
		fields = fields[1:]
	default:
		from = p.implicit()
	}

	to, err = ParseRange(fields[0])
	if err != nil {
		return p.errorf("%v", err)
	}
	for _, n := range from {
		for _, m := range to {
			p.feat.From = append(p.feat.From, n)
			p.feat.To = append(p.feat.To, m)
			if !p.feat.EdgeValues {
				continue
			}
			p.feat.Has = append(p.feat.Has, hasValue)
			if hasValue {
				if err := p.addValue(raw); err != nil {
					return err
				}
			} else {
				p.addZero()
			}
		}
	}
	return nil
}

func (p *parser) addValue(raw string) error {
	if p.feat.ValueType == model.ValueInt {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p.errorf("invalid int value %q", raw)
		}
		p.feat.Ints = append(p.feat.Ints, v)
		return nil
	}
	p.feat.Strs = append(p.feat.Strs, Unescape(raw))
	return nil
}

func (p *parser) addZero() {
	if p.feat.ValueType == model.ValueInt {
		p.feat.Ints = append(p.feat.Ints, 0)
		return
	}
	p.feat.Strs = append(p.feat.Strs, "")
}

// ParseRange expands a node spec such as "1-3,7" in written order.
func ParseRange(spec string) ([]model.Node, error) {
	if spec == "" {
		return nil, fmt.Errorf("empty node spec")
	}
	var out []model.Node
	for _, part := range strings.Split(spec, ",") {
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := parseNode(lo)
		if err != nil {
			return nil, err
		}
		b := a
		if isRange {
			if b, err = parseNode(hi); err != nil {
				return nil, err
			}
			if b < a {
				return nil, fmt.Errorf("descending node range %q", part)
			}
		}
		for n := a; n <= b; n++ {
			out = append(out, n)
		}
	}
	return out, nil
}

func parseNode(s string) (model.Node, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 || v == math.MaxUint32 {
		return 0, fmt.Errorf("invalid node %q", s)
	}
	return model.Node(v), nil
}

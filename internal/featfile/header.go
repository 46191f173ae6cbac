package featfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/tfgraph/model"
)

// Kind is the role declared on the first line of a feature file.
type Kind int

const (
	KindNode Kind = iota + 1
	KindEdge
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Well-known metadata keys.
const (
	MetaValueType  = "valueType"
	MetaEdgeValues = "edgeValues"
)

// Header holds the role and metadata of a feature file.
type Header struct {
	Name       string
	Kind       Kind
	ValueType  model.ValueType
	EdgeValues bool
	Meta       map[string]string
}

// ReadHeader reads only the role line and metadata of the file at path.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := newScanner(f)
	h, _, _, err := readHeader(sc, NameOf(path))
	return h, err
}

// readHeader consumes the header and returns the line number reached plus
// the first data line when the header was not terminated by a blank line.
func readHeader(sc *bufio.Scanner, name string) (*Header, int, *string, error) {
	h := &Header{Name: name, Meta: map[string]string{}}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, 0, nil, err
		}
		return nil, 0, nil, &SyntaxError{File: name, Msg: "empty feature file"}
	}

	switch strings.TrimRight(sc.Text(), "\r") {
	case "@node":
		h.Kind = KindNode
	case "@edge":
		h.Kind = KindEdge
	case "@config":
		h.Kind = KindConfig
	default:
		return nil, 1, nil, &SyntaxError{File: name, Line: 1, Msg: fmt.Sprintf("unknown role line %q", sc.Text())}
	}

	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			break
		}
		if !strings.HasPrefix(text, "@") {
			if err := h.finish(line); err != nil {
				return nil, line, nil, err
			}
			return h, line, &text, nil
		}
		key, value, _ := strings.Cut(text[1:], "=")
		h.Meta[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, line, nil, err
	}
	return h, line, nil, h.finish(line)
}

func (h *Header) finish(line int) error {
	vt, err := model.ParseValueType(h.Meta[MetaValueType])
	if err != nil {
		return &SyntaxError{File: h.Name, Line: line, Msg: err.Error()}
	}
	h.ValueType = vt
	_, h.EdgeValues = h.Meta[MetaEdgeValues]
	if h.EdgeValues && h.Kind != KindEdge {
		return &SyntaxError{File: h.Name, Line: line, Msg: "@edgeValues on a non-edge feature"}
	}
	return nil
}

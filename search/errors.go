package search

import (
	"errors"
	"fmt"
)

var (
	// ErrQuerySyntax marks a template that cannot be parsed.
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrQuerySemantic marks a template that parses but cannot be evaluated,
	// for example because it names an unknown type or feature.
	ErrQuerySemantic = errors.New("query semantic error")

	// ErrResultOverflow is returned when an unlimited enumeration exceeds
	// the safety cutoff. Results produced before it are valid.
	ErrResultOverflow = errors.New("result overflow")
)

// Error is a template error at a line and column (both 1-based; 0 when
// unknown).
type Error struct {
	Type   error
	Detail string
	Line   int
	Col    int
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("%v: %s (line %d col %d)", e.Type, e.Detail, e.Line, e.Col)
	case e.Line > 0:
		return fmt.Sprintf("%v: %s (line %d)", e.Type, e.Detail, e.Line)
	default:
		return fmt.Sprintf("%v: %s", e.Type, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Type }

func syntaxErr(line, col int, format string, args ...any) *Error {
	return &Error{Type: ErrQuerySyntax, Detail: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func semanticErr(line, col int, format string, args ...any) *Error {
	return &Error{Type: ErrQuerySemantic, Detail: fmt.Sprintf(format, args...), Line: line, Col: col}
}

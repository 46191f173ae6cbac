package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural indicates missing or malformed otype/oslots data.
	ErrStructural = errors.New("compiler: structural error")
	// ErrCorrupt indicates a published build that cannot be read back.
	ErrCorrupt = errors.New("compiler: corrupt build")
	// ErrNoCache indicates that no build has been published yet.
	ErrNoCache = errors.New("compiler: no compiled build")
)

// StageError reports the pipeline stage in which compilation failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("compile stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func structuralf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}

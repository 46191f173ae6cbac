package tfgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tfgraph/internal/compiler"
	"github.com/hupe1980/tfgraph/internal/corpus"
)

var (
	// ErrStructural indicates a missing or malformed otype or oslots feature.
	ErrStructural = errors.New("structural error")

	// ErrDependencyMissing indicates a derived structure that could not be
	// computed because a declared dependency is absent.
	ErrDependencyMissing = errors.New("dependency missing")

	// ErrSentinelCollision indicates an integer value equal to the internal
	// missing-value marker. Such values read back as absent.
	ErrSentinelCollision = errors.New("sentinel collision")

	// ErrCacheCorrupt indicates a published compiled corpus that cannot be
	// read. It is never repaired automatically.
	ErrCacheCorrupt = errors.New("compiled cache corrupt")

	// ErrFeatureNotFound is returned for unknown feature names.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrNoTextConfig is returned by text operations on a corpus without an
	// otext feature.
	ErrNoTextConfig = errors.New("no text configuration")

	// ErrFormatNotFound is returned for unknown text formats.
	ErrFormatNotFound = errors.New("text format not found")

	// ErrNoLocations is returned when Load or Compile receive no locations.
	ErrNoLocations = errors.New("no corpus locations")
)

// StructuralError reports a fatal problem with the corpus structure.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type StructuralError struct {
	Stage string
	cause error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in stage %s: %v", e.Stage, e.cause)
}

func (e *StructuralError) Unwrap() []error { return []error{ErrStructural, e.cause} }

// CacheCorruptError reports a compiled cache that failed to load.
type CacheCorruptError struct {
	Dir   string
	cause error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("compiled cache %s cannot be read (delete it to recompile): %v", e.Dir, e.cause)
}

func (e *CacheCorruptError) Unwrap() []error { return []error{ErrCacheCorrupt, e.cause} }

// DependencyMissingError is a warning: a derived structure was skipped.
type DependencyMissingError struct {
	Feature string
	Detail  string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("dependency missing for %s: %s", e.Feature, e.Detail)
}

func (e *DependencyMissingError) Unwrap() error { return ErrDependencyMissing }

// SentinelCollisionError is a warning: a feature holds the missing-value
// marker as real data.
type SentinelCollisionError struct {
	Feature string
	Detail  string
}

func (e *SentinelCollisionError) Error() string {
	return fmt.Sprintf("sentinel collision in %s: %s", e.Feature, e.Detail)
}

func (e *SentinelCollisionError) Unwrap() error { return ErrSentinelCollision }

func warningError(w corpus.Warning) error {
	switch w.Kind {
	case corpus.WarnDependencyMissing:
		return &DependencyMissingError{Feature: w.Feature, Detail: w.Detail}
	case corpus.WarnSentinelCollision:
		return &SentinelCollisionError{Feature: w.Feature, Detail: w.Detail}
	default:
		return errors.New(w.String())
	}
}

func translateError(err error, cacheDir string) error {
	if err == nil {
		return nil
	}

	var se *compiler.StageError
	if errors.Is(err, compiler.ErrStructural) {
		stage := "structure"
		if errors.As(err, &se) {
			stage = se.Stage
		}
		return &StructuralError{Stage: stage, cause: err}
	}
	if errors.Is(err, compiler.ErrCorrupt) {
		return &CacheCorruptError{Dir: cacheDir, cause: err}
	}
	return err
}

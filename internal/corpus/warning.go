package corpus

import "fmt"

// WarningKind classifies a non-fatal compile or load problem.
type WarningKind string

const (
	// WarnDependencyMissing: a derived structure could not be computed.
	WarnDependencyMissing WarningKind = "dependency-missing"
	// WarnSentinelCollision: an integer value equals the missing marker.
	WarnSentinelCollision WarningKind = "sentinel-collision"
	// WarnOverride: a later location redefines a feature.
	WarnOverride WarningKind = "override"
	// WarnReserved: a feature file uses the name of a computed feature and
	// is skipped.
	WarnReserved WarningKind = "reserved"
)

// Names of the computed features. Feature files cannot use them.
const (
	LevUp    = "levUp"
	LevDown  = "levDown"
	Boundary = "boundary"
)

// Reserved reports whether name belongs to a computed feature.
func Reserved(name string) bool {
	return name == LevUp || name == LevDown || name == Boundary
}

// Warning is a non-fatal problem recorded during compilation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Feature string      `json:"feature"`
	Detail  string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Feature, w.Detail)
}

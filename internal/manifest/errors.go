package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrNotFound is returned when no build has been published yet.
	ErrNotFound = errors.New("manifest not found")

	// ErrCorrupt is returned when a published build cannot be read back.
	ErrCorrupt = errors.New("manifest corrupt")
)

package columnar

import "errors"

var (
	// ErrCorrupted indicates a section file or container that fails validation.
	ErrCorrupted = errors.New("columnar: corrupted data")
	// ErrBadMagic indicates a file that is not a section file.
	ErrBadMagic = errors.New("columnar: bad magic")
	// ErrVersion indicates a section file written by another format version.
	ErrVersion = errors.New("columnar: unsupported version")
	// ErrChecksum indicates a header whose checksum does not match.
	ErrChecksum = errors.New("columnar: checksum mismatch")
	// ErrKind indicates a section file holding a different kind of container.
	ErrKind = errors.New("columnar: unexpected kind")
)

package corpus

import "errors"

// ErrFeature indicates feature data inconsistent with the corpus structure.
var ErrFeature = errors.New("corpus: invalid feature")

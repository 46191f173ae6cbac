package search

// State is the planning stage a query has reached.
type State int

const (
	// StateFailed marks a query with syntax, semantic or planning errors.
	StateFailed State = iota
	StateParsed
	StatePrepared
	StateSpun
	StateStitched
	StateFetchable
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateParsed:
		return "parsed"
	case StatePrepared:
		return "prepared"
	case StateSpun:
		return "spun"
	case StateStitched:
		return "stitched"
	case StateFetchable:
		return "fetchable"
	default:
		return "unknown"
	}
}

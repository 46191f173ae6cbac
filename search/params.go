package search

import (
	"errors"
	"sync"
)

// Params tunes planning and enumeration. They affect speed and result order,
// never the result set.
type Params struct {
	// YarnRatio stops thinning once a round shrinks the total yarn size by
	// less than this factor.
	YarnRatio float64
	// TryLimitFrom is the number of source nodes sampled to estimate the
	// spread of a relation.
	TryLimitFrom int
	// TryLimitTo is the number of target nodes tested per sampled source
	// for relations that cannot generate their targets.
	TryLimitTo int
	// ThinRounds bounds the number of thinning rounds.
	ThinRounds int
	// OverflowFactor times maxNode is the result cutoff of an unlimited
	// enumeration.
	OverflowFactor int
}

// Validate reports whether all parameters are usable.
func (p Params) Validate() error {
	if p.YarnRatio < 1 {
		return errors.New("search: YarnRatio must be at least 1")
	}
	if p.TryLimitFrom < 1 || p.TryLimitTo < 1 {
		return errors.New("search: try limits must be positive")
	}
	if p.ThinRounds < 0 {
		return errors.New("search: ThinRounds must not be negative")
	}
	if p.OverflowFactor < 1 {
		return errors.New("search: OverflowFactor must be positive")
	}
	return nil
}

var (
	defaultsMu sync.RWMutex
	defaults   = Params{
		YarnRatio:      1.25,
		TryLimitFrom:   40,
		TryLimitTo:     40,
		ThinRounds:     4,
		OverflowFactor: 4,
	}
)

// DefaultParams returns the process-wide default parameters.
func DefaultParams() Params {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}

// SetDefaultParams replaces the process-wide defaults used by queries that
// do not pass WithParams.
func SetDefaultParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults = p
	return nil
}

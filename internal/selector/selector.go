// Package selector implements the result-selection stage: slicing and
// persisting the globally-ranked trajectory list the evaluator returns.
package selector

import (
	"github.com/kbmod/kbmod/internal/resultio"
	"github.com/kbmod/kbmod/internal/search"
)

// Selector holds a totally-ordered trajectory list (per the evaluator's
// tie-break rule) and exposes paging and persistence over it. It adds
// no detection semantics of its own — filtering predicates belong to
// the search grid, not here.
type Selector struct {
	ranked []search.Trajectory
}

// New wraps an already-sorted trajectory list.
func New(ranked []search.Trajectory) *Selector {
	return &Selector{ranked: ranked}
}

// Len returns the number of ranked trajectories.
func (s *Selector) Len() int { return len(s.ranked) }

// GetResults returns up to count trajectories starting at offset. It
// clamps both the offset and the returned length to the available
// range rather than erroring on an out-of-range request.
func (s *Selector) GetResults(offset, count int) []search.Trajectory {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.ranked) {
		return nil
	}
	end := offset + count
	if end > len(s.ranked) || count < 0 {
		end = len(s.ranked)
	}
	return s.ranked[offset:end]
}

// SaveResults writes the top fraction of the ranked list to path in the
// plain-text results format, delegating formatting to resultio. The
// fraction parameter is unconstrained in the source this was ported
// from; out-of-range values are clamped to [0,1] rather than rejected.
func (s *Selector) SaveResults(path string, fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	keep := int(float64(len(s.ranked)) * fraction)
	return resultio.WriteResults(path, s.ranked[:keep])
}

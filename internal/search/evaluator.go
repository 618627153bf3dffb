package search

import "github.com/kbmod/kbmod/internal/psiphi"

// Evaluator scores every (starting pixel, candidate velocity) hypothesis
// over a stack's psi/phi planes and returns the globally-ranked survivors.
type Evaluator interface {
	// Evaluate runs the exhaustive grid search described in the
	// trajectory evaluator's inner loop and returns trajectories ordered
	// by (lh desc, flux desc, obs desc, x, y, vx, vy). It is the only
	// blocking point exposed to callers; it returns once every candidate
	// has been scored and the per-pixel survivors have been merged and
	// sorted.
	Evaluate(planes *psiphi.Planes, spec SearchSpec) ([]Trajectory, error)
}

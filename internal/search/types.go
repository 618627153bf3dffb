package search

import (
	"math"

	"github.com/kbmod/kbmod/internal/kerr"
)

// Trajectory is a linear motion hypothesis and its evaluated statistics.
type Trajectory struct {
	X, Y     int
	VX, VY   float64
	Lh       float64
	Flux     float64
	ObsCount int
}

// SearchSpec describes the candidate trajectory grid and retention
// policy for one evaluator call.
type SearchSpec struct {
	VMin, VMax     float64 // velocity magnitude bounds, pixels per unit time
	NV             int     // number of velocity magnitudes, linearly spaced inclusive
	ThetaMin       float64 // angle bounds, radians relative to +x axis
	ThetaMax       float64
	NTheta         int
	MinObs         int // minimum observation count to retain a trajectory
	TopK           int // results to retain per starting pixel
	KeepFraction   float64
}

// Validate enforces the BadSearchSpec invariants: NV and NTheta must be
// at least 1, the magnitude and angle bounds must not be inverted, and
// MinObs must be at least 1.
func (s SearchSpec) Validate() error {
	switch {
	case s.NV < 1:
		return kerr.NewBadSearchSpec("n_v must be >= 1")
	case s.NTheta < 1:
		return kerr.NewBadSearchSpec("n_theta must be >= 1")
	case s.VMin > s.VMax:
		return kerr.NewBadSearchSpec("v_min must be <= v_max")
	case s.ThetaMin > s.ThetaMax:
		return kerr.NewBadSearchSpec("theta_min must be <= theta_max")
	case s.MinObs < 1:
		return kerr.NewBadSearchSpec("min_obs must be >= 1")
	case s.TopK < 1:
		return kerr.NewBadSearchSpec("top_k must be >= 1")
	}
	return nil
}

// Candidates returns the Cartesian product of velocity magnitudes and
// angles as (vx, vy) pairs, in magnitude-major, angle-minor order. The
// count always equals NV*NTheta.
func (s SearchSpec) Candidates() []Candidate {
	out := make([]Candidate, 0, s.NV*s.NTheta)
	for vi := 0; vi < s.NV; vi++ {
		v := linspace(s.VMin, s.VMax, s.NV, vi)
		for ti := 0; ti < s.NTheta; ti++ {
			theta := linspace(s.ThetaMin, s.ThetaMax, s.NTheta, ti)
			out = append(out, Candidate{
				VX: v * math.Cos(theta),
				VY: v * math.Sin(theta),
			})
		}
	}
	return out
}

// Candidate is one (vx, vy) hypothesis in the search grid.
type Candidate struct {
	VX, VY float64
}

func linspace(lo, hi float64, n, i int) float64 {
	if n == 1 {
		return lo
	}
	return lo + (hi-lo)*float64(i)/float64(n-1)
}

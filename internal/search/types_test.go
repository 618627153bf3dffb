package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchSpecValidate(t *testing.T) {
	base := SearchSpec{VMin: 5, VMax: 15, NV: 10, ThetaMin: -0.1, ThetaMax: 0.1, NTheta: 10, MinObs: 2, TopK: 8}
	assert.NoError(t, base.Validate())

	bad := base
	bad.NV = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.NTheta = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.VMin, bad.VMax = 10, 5
	assert.Error(t, bad.Validate())

	bad = base
	bad.ThetaMin, bad.ThetaMax = 1, -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.MinObs = 0
	assert.Error(t, bad.Validate())
}

func TestCandidatesGridCompleteness(t *testing.T) {
	spec := SearchSpec{VMin: 1, VMax: 5, NV: 4, ThetaMin: 0, ThetaMax: math.Pi / 2, NTheta: 3, MinObs: 1, TopK: 1}
	cands := spec.Candidates()
	assert.Len(t, cands, 4*3)
}

func TestCandidatesCoverBoundsInclusive(t *testing.T) {
	spec := SearchSpec{VMin: 2, VMax: 10, NV: 2, ThetaMin: 0, ThetaMax: math.Pi, NTheta: 2, MinObs: 1, TopK: 1}
	cands := spec.Candidates()
	// vi=0 -> v=2, ti=0 -> theta=0 => (2,0)
	assert.InDelta(t, 2.0, cands[0].VX, 1e-9)
	assert.InDelta(t, 0.0, cands[0].VY, 1e-9)
	// vi=1 -> v=10, ti=1 -> theta=pi => (-10, ~0)
	last := cands[len(cands)-1]
	assert.InDelta(t, -10.0, last.VX, 1e-9)
}

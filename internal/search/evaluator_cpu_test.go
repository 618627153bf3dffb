package search

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbmod/kbmod/internal/frame"
	"github.com/kbmod/kbmod/internal/kernel"
	"github.com/kbmod/kbmod/internal/psiphi"
	"github.com/kbmod/kbmod/internal/rawimage"
	"github.com/kbmod/kbmod/internal/stack"
)

func buildNoisyStack(t *testing.T, rng *rand.Rand, times []float64, w, h int, bgSigma, varVal float32) *stack.ImageStack {
	t.Helper()
	psf, err := kernel.NewGaussian(1.4)
	require.NoError(t, err)

	frames := make([]*frame.LayeredImage, len(times))
	for i, tm := range times {
		sci := rawimage.New(w, h)
		vari := rawimage.New(w, h)
		mask := rawimage.New(w, h)
		for p := range sci.Data() {
			sci.Data()[p] = float32(rng.NormFloat64()) * bgSigma
			vari.Data()[p] = varVal
		}
		f, err := frame.New(sci, vari, mask, tm, psf)
		require.NoError(t, err)
		frames[i] = f
	}
	s, err := stack.New(frames)
	require.NoError(t, err)
	return s
}

func TestEvaluateRecoversInjectedTrajectory(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	times := []float64{0, 2, 3, 4.5, 5, 6, 7, 10, 11, 14}
	s := buildNoisyStack(t, rng, times, 100, 100, 10, 5)

	x0, y0 := 20.0, 35.0
	vx, vy := 8.0, 0.0
	flux := 25000.0
	psf, err := kernel.NewGaussian(1.4)
	require.NoError(t, err)
	for i, f := range s.Frames() {
		t := times[i]
		f.AddObject(x0+vx*t, y0+vy*t, flux, psf)
	}

	planes, err := psiphi.Build(s)
	require.NoError(t, err)

	spec := SearchSpec{
		VMin: 5, VMax: 15, NV: 10,
		ThetaMin: -0.1, ThetaMax: 0.1, NTheta: 10,
		MinObs: 2, TopK: 8, KeepFraction: 1.0,
	}
	ev := NewCPUEvaluator()
	results, err := ev.Evaluate(planes, spec)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Contains(t, []int{20, 21, 22}, top.X)
	assert.Contains(t, []int{34, 35, 36}, top.Y)
	assert.InDelta(t, 8.0, top.VX, 0.1)
	assert.InDelta(t, 0.0, top.VY, 0.2)
	assert.Greater(t, top.Lh, 3000.0)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	times := []float64{0, 1, 2, 3, 4}
	s := buildNoisyStack(t, rng, times, 40, 40, 8, 4)
	planes, err := psiphi.Build(s)
	require.NoError(t, err)

	spec := SearchSpec{VMin: 1, VMax: 3, NV: 3, ThetaMin: 0, ThetaMax: math.Pi / 2, NTheta: 3, MinObs: 1, TopK: 2, KeepFraction: 1.0}
	ev := NewCPUEvaluator()

	r1, err := ev.Evaluate(planes, spec)
	require.NoError(t, err)
	r2, err := ev.Evaluate(planes, spec)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestEvaluateRejectsEmptyStack(t *testing.T) {
	ev := NewCPUEvaluator()
	_, err := ev.Evaluate(nil, SearchSpec{NV: 1, NTheta: 1, MinObs: 1, TopK: 1, VMax: 1})
	assert.Error(t, err)
}

func TestEvaluateRejectsBadSpec(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := buildNoisyStack(t, rng, []float64{0, 1}, 10, 10, 1, 1)
	planes, err := psiphi.Build(s)
	require.NoError(t, err)
	ev := NewCPUEvaluator()
	_, err = ev.Evaluate(planes, SearchSpec{NV: 0, NTheta: 1, MinObs: 1, TopK: 1})
	assert.Error(t, err)
}

func TestEvaluateMinObsFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	times := []float64{0, 1, 2, 3, 4, 5, 6}
	s := buildNoisyStack(t, rng, times, 30, 30, 5, 3)
	planes, err := psiphi.Build(s)
	require.NoError(t, err)

	spec := SearchSpec{VMin: 1, VMax: 2, NV: 2, ThetaMin: 0, ThetaMax: 1, NTheta: 2, MinObs: 5, TopK: 4, KeepFraction: 1.0}
	ev := NewCPUEvaluator()
	results, err := ev.Evaluate(planes, spec)
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.ObsCount, 5)
	}
}

func TestEvaluateOutOfBoundsExitReducesObsCount(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// An object moving fast enough will exit a small frame partway through.
	times := []float64{0, 1, 2, 3, 4, 5}
	s := buildNoisyStack(t, rng, times, 20, 20, 3, 2)
	psf, err := kernel.NewGaussian(1.0)
	require.NoError(t, err)
	for i, f := range s.Frames() {
		x := 2.0 + 4.0*times[i]
		if x < 20 {
			f.AddObject(x, 10, 5000, psf)
		}
	}
	planes, err := psiphi.Build(s)
	require.NoError(t, err)

	spec := SearchSpec{VMin: 3, VMax: 5, NV: 3, ThetaMin: -0.05, ThetaMax: 0.05, NTheta: 3, MinObs: 1, TopK: 4, KeepFraction: 1.0}
	ev := NewCPUEvaluator()
	results, err := ev.Evaluate(planes, spec)
	require.NoError(t, err)
	found := false
	for _, r := range results {
		assert.LessOrEqual(t, r.ObsCount, len(times))
		if r.X == 2 && r.Y == 10 && math.Abs(r.VX-4) < 1e-9 && math.Abs(r.VY) < 1e-9 {
			// x = 2 + 4t is past the last column (19) only at t=5, so
			// that one frame is skipped and 5 of 6 frames count.
			found = true
			assert.Equal(t, 5, r.ObsCount)
		}
	}
	assert.True(t, found, "trajectory (2,10) with v=(4,0) not returned")
}

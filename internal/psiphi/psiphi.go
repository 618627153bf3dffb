// Package psiphi converts a preprocessed ImageStack into the matched-filter
// psi and phi planes the trajectory evaluator samples along candidate
// trajectories.
package psiphi

import (
	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/rawimage"
	"github.com/kbmod/kbmod/internal/stack"
)

// Planes holds the per-frame psi and phi planes built from a stack,
// plus the stack's relative time vector.
type Planes struct {
	Psi   []*rawimage.RawImage
	Phi   []*rawimage.RawImage
	Times []float64
	Width, Height int
}

// Build computes psi_i = convolve(science_i/variance_i, psf_i) and
// phi_i = convolve(1/variance_i, psf_i^2) for every frame in s. Masked
// pixels (science already NoData) contribute 0 to phi and stay NoData in
// psi after the convolution.
func Build(s *stack.ImageStack) (*Planes, error) {
	if s == nil || s.Len() == 0 {
		return nil, kerr.ErrEmptyStack
	}
	w, h := s.Width(), s.Height()
	frames := s.Frames()

	psiPlanes := make([]*rawimage.RawImage, len(frames))
	phiPlanes := make([]*rawimage.RawImage, len(frames))

	for i, f := range frames {
		psiRaw := rawimage.New(w, h)
		phiRaw := rawimage.New(w, h)
		noData := make([]bool, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sci := f.Science.At(x, y)
				vari := f.Variance.At(x, y)
				if rawimage.IsNoData(sci) || vari <= 0 {
					psiRaw.Set(x, y, rawimage.NoData)
					phiRaw.Set(x, y, 0)
					noData[y*w+x] = true
					continue
				}
				psiRaw.Set(x, y, sci/vari)
				phiRaw.Set(x, y, 1/vari)
			}
		}
		psiRaw.ConvolvePSF(f.PSF)
		phiRaw.ConvolvePSF(f.PSF.Squared())

		// The convolution fills masked pixels from their valid neighbors;
		// put NoData back so the evaluator skips them.
		for p, masked := range noData {
			if masked {
				psiRaw.Data()[p] = rawimage.NoData
			}
		}

		// phi's convolution may propagate NoData where psi's would not
		// (different valid-weight masks are not expected here since both
		// derive from the same science/variance NoData pattern, but phi
		// must never carry NoData forward — it's a denominator the
		// evaluator tests with `<= 0`, so collapse any NoData to 0).
		for i := range phiRaw.Data() {
			if rawimage.IsNoData(phiRaw.Data()[i]) {
				phiRaw.Data()[i] = 0
			}
		}

		psiPlanes[i] = psiRaw
		phiPlanes[i] = phiRaw
	}

	return &Planes{
		Psi:    psiPlanes,
		Phi:    phiPlanes,
		Times:  s.Times(),
		Width:  w,
		Height: h,
	}, nil
}

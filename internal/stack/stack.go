// Package stack implements ImageStack, the ordered collection of
// LayeredImages that the psi/phi builder and trajectory evaluator
// operate on.
package stack

import (
	"github.com/kbmod/kbmod/internal/frame"
	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/kernel"
	"github.com/kbmod/kbmod/internal/rawimage"
)

// ImageStack is an ordered sequence of LayeredImages sharing identical
// (width, height). Times are stored relative to the first frame.
type ImageStack struct {
	frames        []*frame.LayeredImage
	width, height int
}

// New builds a stack from already-constructed frames, all of which must
// share the same dimensions. Times are normalized so the first frame's
// time becomes zero.
func New(frames []*frame.LayeredImage) (*ImageStack, error) {
	if len(frames) == 0 {
		return nil, kerr.ErrEmptyStack
	}
	w, h := frames[0].Width(), frames[0].Height()
	for _, f := range frames {
		if f.Width() != w || f.Height() != h {
			return nil, kerr.NewInvalidShape("image stack frames have mismatched dimensions")
		}
	}
	s := &ImageStack{frames: frames, width: w, height: h}
	s.normalizeTimes()
	return s, nil
}

// NewUniformPSF builds a stack from per-frame science/variance/mask
// planes and timestamps, broadcasting a single PSF across every frame —
// the convenience constructor for the common single-seeing workflow.
func NewUniformPSF(sciences, variances, masks []*rawimage.RawImage, times []float64, psf *kernel.PSF) (*ImageStack, error) {
	if len(sciences) != len(variances) || len(sciences) != len(masks) || len(sciences) != len(times) {
		return nil, kerr.NewInvalidShape("image stack input slices have mismatched lengths")
	}
	frames := make([]*frame.LayeredImage, len(sciences))
	for i := range sciences {
		f, err := frame.New(sciences[i], variances[i], masks[i], times[i], psf)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return New(frames)
}

func (s *ImageStack) normalizeTimes() {
	if len(s.frames) == 0 {
		return
	}
	t0 := s.frames[0].Time
	for _, f := range s.frames {
		f.Time -= t0
	}
}

// Len returns the number of frames.
func (s *ImageStack) Len() int { return len(s.frames) }

// Width returns the shared frame width.
func (s *ImageStack) Width() int { return s.width }

// Height returns the shared frame height.
func (s *ImageStack) Height() int { return s.height }

// Frames returns the underlying frame pointers. Mutating a returned
// frame is visible through the stack — this is the deliberate
// shared-mutation surface that supports inject-and-research workflows;
// callers that want an explicit, documented mutation entry point should
// prefer Apply.
func (s *ImageStack) Frames() []*frame.LayeredImage { return s.frames }

// Apply runs fn against the frame at index i, in place.
func (s *ImageStack) Apply(i int, fn func(*frame.LayeredImage)) {
	fn(s.frames[i])
}

// Times returns the relative timestamps t_i = raw_t_i - raw_t_0, with
// Times()[0] == 0.
func (s *ImageStack) Times() []float64 {
	out := make([]float64, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Time
	}
	return out
}

// SetTimes overrides every frame's timestamp from an explicit slice
// (one entry per frame, in raw units) and renormalizes so the first
// entry becomes t0 = 0.
func (s *ImageStack) SetTimes(times []float64) error {
	if len(times) != len(s.frames) {
		return kerr.NewInvalidShape("SetTimes length does not match frame count")
	}
	for i, f := range s.frames {
		f.Time = times[i]
	}
	s.normalizeTimes()
	return nil
}

// ApplyMaskFlags propagates ApplyMaskFlags to every frame.
func (s *ImageStack) ApplyMaskFlags(flagMask uint32, exceptions []uint32) {
	for _, f := range s.frames {
		f.ApplyMaskFlags(flagMask, exceptions)
	}
}

// ApplyGlobalMask sets a pixel to NoData in every frame's science plane
// if, across the stack, more than threshold frames have that pixel
// matching flagMask in their mask plane. The comparison is strict
// greater-than: a pixel flagged in exactly threshold frames survives.
func (s *ImageStack) ApplyGlobalMask(flagMask uint32, threshold int) {
	counts := make([]int, s.width*s.height)
	for _, f := range s.frames {
		for y := 0; y < s.height; y++ {
			for x := 0; x < s.width; x++ {
				if uint32(f.Mask.At(x, y))&flagMask != 0 {
					counts[y*s.width+x]++
				}
			}
		}
	}
	for _, f := range s.frames {
		for y := 0; y < s.height; y++ {
			for x := 0; x < s.width; x++ {
				if counts[y*s.width+x] > threshold {
					f.Science.Set(x, y, rawimage.NoData)
				}
			}
		}
	}
}

// ConvolvePSF applies each frame's PSF convolution.
func (s *ImageStack) ConvolvePSF() {
	for _, f := range s.frames {
		f.ConvolvePSF()
	}
}

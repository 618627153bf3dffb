// Package frame implements LayeredImage, the (science, variance, mask)
// triple for a single exposure.
package frame

import (
	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/kernel"
	"github.com/kbmod/kbmod/internal/rawimage"
)

// LayeredImage holds the science, variance and mask planes for one
// exposure, its timestamp, and the PSF that describes the seeing at
// capture time.
type LayeredImage struct {
	Science  *rawimage.RawImage
	Variance *rawimage.RawImage
	Mask     *rawimage.RawImage // integer bit flags stored as float32
	Time     float64
	PSF      *kernel.PSF

	width, height int
}

// New builds a LayeredImage from three same-sized planes, a timestamp
// and a PSF. Returns InvalidShapeError if the planes' dimensions differ.
func New(science, variance, mask *rawimage.RawImage, t float64, psf *kernel.PSF) (*LayeredImage, error) {
	if science.Width() != variance.Width() || science.Height() != variance.Height() ||
		science.Width() != mask.Width() || science.Height() != mask.Height() {
		return nil, kerr.NewInvalidShape("layered image plane dimensions do not match")
	}
	return &LayeredImage{
		Science:  science,
		Variance: variance,
		Mask:     mask,
		Time:     t,
		PSF:      psf,
		width:    science.Width(),
		height:   science.Height(),
	}, nil
}

// Width returns the shared plane width.
func (li *LayeredImage) Width() int { return li.width }

// Height returns the shared plane height.
func (li *LayeredImage) Height() int { return li.height }

// SetScience replaces the science plane, enforcing matching dimensions.
func (li *LayeredImage) SetScience(p *rawimage.RawImage) error {
	if p.Width() != li.width || p.Height() != li.height {
		return kerr.NewInvalidShape("science plane dimensions do not match layered image")
	}
	li.Science = p
	return nil
}

// SetVariance replaces the variance plane, enforcing matching dimensions.
func (li *LayeredImage) SetVariance(p *rawimage.RawImage) error {
	if p.Width() != li.width || p.Height() != li.height {
		return kerr.NewInvalidShape("variance plane dimensions do not match layered image")
	}
	li.Variance = p
	return nil
}

// SetMask replaces the mask plane, enforcing matching dimensions.
func (li *LayeredImage) SetMask(p *rawimage.RawImage) error {
	if p.Width() != li.width || p.Height() != li.height {
		return kerr.NewInvalidShape("mask plane dimensions do not match layered image")
	}
	li.Mask = p
	return nil
}

// AddObject injects a synthetic point source into the science plane by
// adding flux*psf(i-x, j-y) for every pixel within the PSF's footprint
// around (x, y). Used to build recovery tests.
func (li *LayeredImage) AddObject(x, y float64, flux float64, psf *kernel.PSF) {
	cx := int(x)
	cy := int(y)
	r := psf.Radius()
	for dy := -r; dy <= r; dy++ {
		py := cy + dy
		if py < 0 || py >= li.height {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			px := cx + dx
			if px < 0 || px >= li.width {
				continue
			}
			cur := li.Science.At(px, py)
			if rawimage.IsNoData(cur) {
				continue
			}
			li.Science.Set(px, py, cur+float32(flux)*psf.At(dx, dy))
		}
	}
}

// ApplyMaskFlags sets the science pixel to NoData wherever
// (mask & flagMask) != 0 and that masked value is not present in
// exceptions.
func (li *LayeredImage) ApplyMaskFlags(flagMask uint32, exceptions []uint32) {
	excluded := make(map[uint32]bool, len(exceptions))
	for _, e := range exceptions {
		excluded[e] = true
	}
	for y := 0; y < li.height; y++ {
		for x := 0; x < li.width; x++ {
			m := uint32(li.Mask.At(x, y)) & flagMask
			if m != 0 && !excluded[m] {
				li.Science.Set(x, y, rawimage.NoData)
			}
		}
	}
}

// ConvolvePSF convolves the science plane with the frame's PSF, the
// first half of the psi/phi builder's preprocessing contract.
func (li *LayeredImage) ConvolvePSF() {
	li.Science.ConvolvePSF(li.PSF)
}

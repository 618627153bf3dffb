// Package kernel implements the point-spread-function kernel used to
// convolve raw image planes before matched-filter statistics are built.
package kernel

import (
	"math"

	"github.com/kbmod/kbmod/internal/kerr"
)

// PSF is an odd-sided square kernel of float32 weights. It is immutable
// once constructed; callers that need a different kernel build a new one.
type PSF struct {
	dim    int
	radius int
	data   []float32 // row-major, dim*dim
	sum    float32
}

// minCoverageSigma is the number of standard deviations the discretized
// Gaussian grid must cover on each side of the center.
const minCoverageSigma = 3.0

// NewGaussian discretizes an isotropic 2D Gaussian of standard deviation
// sigma onto a square grid covering at least minCoverageSigma*sigma on
// each side, sized up to the next odd dimension. The result is normalized
// so the discrete sum equals 1 within float32 tolerance.
func NewGaussian(sigma float64) (*PSF, error) {
	if sigma <= 0 {
		return nil, kerr.NewInvalidShape("psf sigma must be positive")
	}
	radius := int(math.Ceil(minCoverageSigma * sigma))
	if radius < 1 {
		radius = 1
	}
	dim := 2*radius + 1

	data := make([]float32, dim*dim)
	var sum float64
	twoSigma2 := 2 * sigma * sigma
	for j := 0; j < dim; j++ {
		dy := float64(j - radius)
		for i := 0; i < dim; i++ {
			dx := float64(i - radius)
			v := math.Exp(-(dx*dx + dy*dy) / twoSigma2)
			data[j*dim+i] = float32(v)
			sum += v
		}
	}
	if sum == 0 {
		return nil, kerr.NewInvalidShape("psf discretization collapsed to zero")
	}
	inv := float32(1.0 / sum)
	var normSum float32
	for i := range data {
		data[i] *= inv
		normSum += data[i]
	}
	return &PSF{dim: dim, radius: radius, data: data, sum: normSum}, nil
}

// NewFromArray builds a PSF from an explicit row-major square array of
// odd side length. Returns InvalidShapeError if the array is not square
// or its side is even.
func NewFromArray(data []float32, dim int) (*PSF, error) {
	if dim <= 0 || dim%2 == 0 {
		return nil, kerr.NewInvalidShape("psf dim must be odd and positive")
	}
	if len(data) != dim*dim {
		return nil, kerr.NewInvalidShape("psf array length does not match dim*dim")
	}
	cp := make([]float32, len(data))
	var sum float32
	for i, v := range data {
		cp[i] = v
		sum += v
	}
	return &PSF{dim: dim, radius: (dim - 1) / 2, data: cp, sum: sum}, nil
}

// Dim returns the side length of the kernel.
func (p *PSF) Dim() int { return p.dim }

// Radius returns (Dim-1)/2.
func (p *PSF) Radius() int { return p.radius }

// Size returns the number of weights (Dim*Dim).
func (p *PSF) Size() int { return len(p.data) }

// Sum returns the cached sum of all weights.
func (p *PSF) Sum() float32 { return p.sum }

// At returns the weight at kernel-local offset (dx, dy) relative to the
// center, where dx, dy are in [-Radius, Radius].
func (p *PSF) At(dx, dy int) float32 {
	i := dx + p.radius
	j := dy + p.radius
	return p.data[j*p.dim+i]
}

// Squared returns a new PSF whose weights are the elementwise square of
// this kernel's weights, used to build the phi plane's 1/variance*psf^2
// denominator.
func (p *PSF) Squared() *PSF {
	sq := make([]float32, len(p.data))
	var sum float32
	for i, v := range p.data {
		sq[i] = v * v
		sum += sq[i]
	}
	return &PSF{dim: p.dim, radius: p.radius, data: sq, sum: sum}
}

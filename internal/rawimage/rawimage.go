// Package rawimage implements the single float32 plane with a NO_DATA
// sentinel that underlies every science, variance, mask-derived, psi and
// phi plane in the kbmod core.
package rawimage

import (
	"math"

	"github.com/kbmod/kbmod/internal/kerr"
	"github.com/kbmod/kbmod/internal/kernel"
)

// NoData marks a pixel with no valid value. Arithmetic that would touch
// a NoData cell propagates NoData.
const NoData float32 = -9999.0

// RawImage is a width x height float32 plane stored row-major.
type RawImage struct {
	width, height int
	data          []float32
}

// New returns a zero-initialized width x height plane.
func New(width, height int) *RawImage {
	return &RawImage{width: width, height: height, data: make([]float32, width*height)}
}

// FromSlice wraps an existing row-major float32 slice. The slice is used
// directly, not copied; callers that need isolation should copy first.
func FromSlice(data []float32, width, height int) (*RawImage, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, kerr.NewInvalidShape("raw image data length does not match width*height")
	}
	return &RawImage{width: width, height: height, data: data}, nil
}

// Width returns the plane width.
func (r *RawImage) Width() int { return r.width }

// Height returns the plane height.
func (r *RawImage) Height() int { return r.height }

// Data returns the underlying row-major slice. Mutating it mutates the
// plane.
func (r *RawImage) Data() []float32 { return r.data }

func (r *RawImage) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// At returns the pixel at (x, y), or NoData if out of bounds.
func (r *RawImage) At(x, y int) float32 {
	if !r.inBounds(x, y) {
		return NoData
	}
	return r.data[y*r.width+x]
}

// Set writes the pixel at (x, y). It is a no-op if out of bounds.
func (r *RawImage) Set(x, y int, v float32) {
	if !r.inBounds(x, y) {
		return
	}
	r.data[y*r.width+x] = v
}

// IsNoData reports whether v is the NoData sentinel.
func IsNoData(v float32) bool { return v == NoData }

// Clone returns a deep copy of the plane.
func (r *RawImage) Clone() *RawImage {
	cp := make([]float32, len(r.data))
	copy(cp, r.data)
	return &RawImage{width: r.width, height: r.height, data: cp}
}

// Bilinear samples the plane at fractional coordinates (x, y) using
// bilinear interpolation over the four neighboring pixels. Returns
// NoData if the sample lies outside the image or any of the four
// neighbors is NoData.
func (r *RawImage) Bilinear(x, y float64) float32 {
	if x < 0 || y < 0 || x > float64(r.width-1) || y > float64(r.height-1) {
		return NoData
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= r.width {
		x1 = x0
	}
	if y1 >= r.height {
		y1 = y0
	}

	v00 := r.At(x0, y0)
	v10 := r.At(x1, y0)
	v01 := r.At(x0, y1)
	v11 := r.At(x1, y1)
	if IsNoData(v00) || IsNoData(v10) || IsNoData(v01) || IsNoData(v11) {
		return NoData
	}

	fx := x - float64(x0)
	fy := y - float64(y0)
	top := float64(v00)*(1-fx) + float64(v10)*fx
	bot := float64(v01)*(1-fx) + float64(v11)*fx
	return float32(top*(1-fy) + bot*fy)
}

// ConvolvePSF convolves the plane in place with psf. The convolution is
// the centered correlation of the plane with the kernel, renormalized
// per output pixel over the weights whose source neighbor is not NoData;
// if every neighbor of a pixel is NoData the output stays NoData.
//
// This is implemented as a normalized convolution: two FFT convolutions
// (signal-where-valid, and the validity mask itself) whose ratio is
// exactly the NoData-excluding renormalization described above.
func (r *RawImage) ConvolvePSF(psf *kernel.PSF) {
	weights, dim := kernelWeights(psf)

	signal := make([]float32, len(r.data))
	valid := make([]float32, len(r.data))
	for i, v := range r.data {
		if !IsNoData(v) {
			signal[i] = v
			valid[i] = 1
		}
	}

	num := convolveSame(signal, r.width, r.height, weights, dim)
	den := convolveSame(valid, r.width, r.height, weights, dim)

	const epsilon = 1e-6
	for i := range r.data {
		if den[i] <= epsilon {
			r.data[i] = NoData
		} else {
			r.data[i] = num[i] / den[i]
		}
	}
}

package rawimage

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/kbmod/kbmod/internal/kernel"
)

// convolveSame runs a zero-padded 2D FFT centered correlation of a
// width x height row-major plane with a centered square kernel, cropped
// back to the original dimensions ("same" mode). The kernel is placed
// flipped and ifftshifted so its peak, stored at the center of the PSF's
// footprint, lands at frequency-domain origin.
func convolveSame(plane []float32, width, height int, weights []float32, dim int) []float32 {
	radius := dim / 2
	fh := nextPow2(height + dim - 1)
	fw := nextPow2(width + dim - 1)

	a := make([][]complex128, fh)
	b := make([][]complex128, fh)
	for y := 0; y < fh; y++ {
		a[y] = make([]complex128, fw)
		b[y] = make([]complex128, fw)
	}
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			a[y][x] = complex(float64(plane[row+x]), 0)
		}
	}
	// Place the kernel flipped and ifftshifted: kernel[radius][radius]
	// (its center) goes to b[0][0] and the weight at offset (dx, dy) goes
	// to (-dx, -dy), so the frequency-domain product is a correlation.
	for ky := 0; ky < dim; ky++ {
		sy := (radius - ky + fh) % fh
		for kx := 0; kx < dim; kx++ {
			sx := (radius - kx + fw) % fw
			b[sy][sx] = complex(float64(weights[ky*dim+kx]), 0)
		}
	}

	fft2InPlace(a, fh, fw, true)
	fft2InPlace(b, fh, fw, true)
	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			a[y][x] *= b[y][x]
		}
	}
	fft2InPlace(a, fh, fw, false)

	scale := float64(fh * fw)
	out := make([]float32, width*height)
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			out[row+x] = float32(real(a[y][x]) / scale)
		}
	}
	return out
}

func fft2InPlace(a [][]complex128, h, w int, forward bool) {
	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// kernelWeights extracts a PSF's row-major weight array and dim for use
// by convolveSame, which operates on flat slices rather than the PSF type
// to keep the FFT path free of a kernel-package import cycle concern.
func kernelWeights(p *kernel.PSF) ([]float32, int) {
	dim := p.Dim()
	radius := p.Radius()
	w := make([]float32, dim*dim)
	for j := 0; j < dim; j++ {
		for i := 0; i < dim; i++ {
			w[j*dim+i] = p.At(i-radius, j-radius)
		}
	}
	return w, dim
}

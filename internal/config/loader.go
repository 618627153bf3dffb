package config

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/kbmod/kbmod/internal/kernel"
	"github.com/kbmod/kbmod/internal/rawimage"
	"github.com/kbmod/kbmod/internal/stack"
)

// LoadStack reads every frame named in job.Frames from raw
// little-endian float32/uint32 blobs and assembles an ImageStack with a
// single Gaussian PSF of job.PSFSigma broadcast across every frame.
// This is ambient CLI glue around the core types, not a core detection
// component — a real deployment would swap this for a FITS-backed
// loader without touching anything under internal/stack, internal/frame
// or internal/search.
func LoadStack(job *SearchJob) (*stack.ImageStack, error) {
	psf, err := kernel.NewGaussian(job.PSFSigma)
	if err != nil {
		return nil, fmt.Errorf("failed to build psf: %w", err)
	}

	sciences := make([]*rawimage.RawImage, len(job.Frames))
	variances := make([]*rawimage.RawImage, len(job.Frames))
	masks := make([]*rawimage.RawImage, len(job.Frames))
	times := make([]float64, len(job.Frames))

	for i, fr := range job.Frames {
		sci, err := readFloat32Plane(fr.Science, fr.Width, fr.Height)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		vari, err := readFloat32Plane(fr.Variance, fr.Width, fr.Height)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		mask, err := readUint32PlaneAsFloat(fr.Mask, fr.Width, fr.Height)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		sciences[i] = sci
		variances[i] = vari
		masks[i] = mask
		times[i] = fr.Time
	}

	return stack.NewUniformPSF(sciences, variances, masks, times, psf)
}

func readFloat32Plane(path string, w, h int) (*rawimage.RawImage, error) {
	raw, err := readPlaneBytes(path, w, h)
	if err != nil {
		return nil, err
	}
	data := make([]float32, w*h)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return rawimage.FromSlice(data, w, h)
}

func readUint32PlaneAsFloat(path string, w, h int) (*rawimage.RawImage, error) {
	raw, err := readPlaneBytes(path, w, h)
	if err != nil {
		return nil, err
	}
	data := make([]float32, w*h)
	for i := range data {
		data[i] = float32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return rawimage.FromSlice(data, w, h)
}

func readPlaneBytes(path string, w, h int) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read plane: %w", path, err)
	}
	want := 4 * w * h
	if len(raw) != want {
		return nil, fmt.Errorf("%s: plane has %d bytes, want %d for %dx%d float32/uint32 data", path, len(raw), want, w, h)
	}
	return raw, nil
}

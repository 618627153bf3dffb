package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbmod/kbmod/internal/kernel"
	"github.com/kbmod/kbmod/internal/rawimage"
)

func newUniform(w, h int, sciVal, varVal float32) (*LayeredImage, error) {
	sci := rawimage.New(w, h)
	vari := rawimage.New(w, h)
	mask := rawimage.New(w, h)
	for i := range sci.Data() {
		sci.Data()[i] = sciVal
	}
	for i := range vari.Data() {
		vari.Data()[i] = varVal
	}
	psf, err := kernel.NewGaussian(1.0)
	if err != nil {
		return nil, err
	}
	return New(sci, vari, mask, 0, psf)
}

func TestNewRejectsMismatchedDims(t *testing.T) {
	sci := rawimage.New(3, 3)
	vari := rawimage.New(2, 2)
	mask := rawimage.New(3, 3)
	psf, err := kernel.NewGaussian(1.0)
	require.NoError(t, err)
	_, err = New(sci, vari, mask, 0, psf)
	assert.Error(t, err)
}

func TestApplyMaskFlagsSetsNoDataExceptException(t *testing.T) {
	li, err := newUniform(4, 4, 5, 2)
	require.NoError(t, err)
	li.Mask.Set(1, 1, 4)
	li.Mask.Set(2, 2, 4)
	li.ApplyMaskFlags(4, []uint32{4})

	// mask&flag == 4, which is in the exception list, so no masking.
	assert.Equal(t, float32(5), li.Science.At(1, 1))
	assert.Equal(t, float32(5), li.Science.At(2, 2))

	li2, err := newUniform(4, 4, 5, 2)
	require.NoError(t, err)
	li2.Mask.Set(1, 1, 4)
	li2.ApplyMaskFlags(4, nil)
	assert.True(t, rawimage.IsNoData(li2.Science.At(1, 1)))
}

func TestApplyMaskFlagsLeavesUnflaggedPixels(t *testing.T) {
	li, err := newUniform(3, 3, 7, 2)
	require.NoError(t, err)
	li.Mask.Set(0, 0, 1)
	li.ApplyMaskFlags(2, nil) // flagMask doesn't overlap the set bit
	assert.Equal(t, float32(7), li.Science.At(0, 0))
}

func TestAddObjectDepositsFluxWithinFootprint(t *testing.T) {
	li, err := newUniform(21, 21, 0, 1)
	require.NoError(t, err)
	psf, err := kernel.NewGaussian(1.0)
	require.NoError(t, err)
	li.AddObject(10, 10, 100, psf)
	assert.Greater(t, li.Science.At(10, 10), float32(0))
	assert.Equal(t, float32(0), li.Science.At(0, 0))
}

func TestAddObjectSkipsNoDataPixels(t *testing.T) {
	li, err := newUniform(5, 5, 0, 1)
	require.NoError(t, err)
	li.Science.Set(2, 2, rawimage.NoData)
	psf, err := kernel.NewFromArray([]float32{1}, 1)
	require.NoError(t, err)
	li.AddObject(2, 2, 10, psf)
	assert.True(t, rawimage.IsNoData(li.Science.At(2, 2)))
}

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGaussianNormalizes(t *testing.T) {
	for _, sigma := range []float64{0.5, 1.0, 2.5} {
		psf, err := NewGaussian(sigma)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, float64(psf.Sum()), 1e-5)
		assert.Equal(t, 1, psf.Dim()%2)
	}
}

func TestNewGaussianRejectsNonPositiveSigma(t *testing.T) {
	_, err := NewGaussian(0)
	assert.Error(t, err)
}

func TestNewFromArrayRejectsEvenDim(t *testing.T) {
	_, err := NewFromArray(make([]float32, 4), 2)
	assert.Error(t, err)
}

func TestNewFromArrayRejectsNonSquareLength(t *testing.T) {
	_, err := NewFromArray(make([]float32, 10), 3)
	assert.Error(t, err)
}

func TestAtAddressesCenterAsOrigin(t *testing.T) {
	data := []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	psf, err := NewFromArray(data, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(5), psf.At(0, 0))
	assert.Equal(t, float32(1), psf.At(-1, -1))
	assert.Equal(t, float32(9), psf.At(1, 1))
}

func TestSquaredPreservesDim(t *testing.T) {
	psf, err := NewGaussian(1.0)
	require.NoError(t, err)
	sq := psf.Squared()
	assert.Equal(t, psf.Dim(), sq.Dim())
	for dy := -psf.Radius(); dy <= psf.Radius(); dy++ {
		for dx := -psf.Radius(); dx <= psf.Radius(); dx++ {
			assert.InDelta(t, float64(psf.At(dx, dy))*float64(psf.At(dx, dy)), float64(sq.At(dx, dy)), 1e-9)
		}
	}
}

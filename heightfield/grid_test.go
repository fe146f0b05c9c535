package heightfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSliceValidation(t *testing.T) {
	_, err := FromSlice([]float64{1, 2, 3}, 2, 1)
	require.Error(t, err)

	_, err = FromSlice(nil, 0, 1)
	require.Error(t, err)

	g, err := FromSlice([]float64{1, 2, 3, 4}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Resolution())
}

func TestFromSliceCopiesInput(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	g, err := FromSlice(src, 2, 1)
	require.NoError(t, err)
	src[0] = 99
	assert.Equal(t, 1.0, g.HeightAt(0, 0))
}

func TestSampleExactAtCellCentres(t *testing.T) {
	g, err := FromSlice([]float64{1, 2, 3, 4}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Sample(0, 0))
	assert.Equal(t, 2.0, g.Sample(1, 0))
	assert.Equal(t, 3.0, g.Sample(0, 1))
	assert.Equal(t, 4.0, g.Sample(1, 1))
}

func TestSampleBilinearMidpoint(t *testing.T) {
	g, err := FromSlice([]float64{0, 2, 4, 6}, 2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g.Sample(0.5, 0.5), 1e-12)
	assert.InDelta(t, 1.0, g.Sample(0.5, 0), 1e-12)
}

func TestSampleClampsOutOfRange(t *testing.T) {
	g, err := FromSlice([]float64{1, 2, 3, 4}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Sample(-5, -5))
	assert.Equal(t, 4.0, g.Sample(10, 10))
	assert.Equal(t, 2.0, g.Sample(99, 0))
}

func TestNormalize(t *testing.T) {
	g, err := FromSlice([]float64{10, 20, 30, 40}, 2, 1)
	require.NoError(t, err)
	g.Normalize()
	assert.Equal(t, 0.0, g.HeightAt(0, 0))
	assert.Equal(t, 1.0, g.HeightAt(1, 1))

	flat, err := FromSlice([]float64{7, 7, 7, 7}, 2, 1)
	require.NoError(t, err)
	flat.Normalize()
	for _, h := range flat.Heights() {
		assert.Equal(t, 0.0, h)
	}
}

func TestGradientsOnRamp(t *testing.T) {
	const res = 5
	samples := make([]float64, res*res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			samples[y*res+x] = float64(x)
		}
	}
	grads := Gradients(samples, res, nil)
	// Interior central differences see the full unit slope along +x.
	g := grads[2*res+2]
	assert.InDelta(t, 1.0, g.X(), 1e-12)
	assert.InDelta(t, 0.0, g.Y(), 1e-12)
}

func TestSlopeAt(t *testing.T) {
	const res = 5
	samples := make([]float64, res*res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			samples[y*res+x] = 2 * float64(x)
		}
	}
	assert.InDelta(t, 2.0, SlopeAt(samples, res, 2, 2, 1), 1e-12)
	assert.Equal(t, 0.0, SlopeAt(samples, res, 0, 2, 1))
	assert.Equal(t, 0.0, SlopeAt(samples, res, 2, res-1, 1))
}

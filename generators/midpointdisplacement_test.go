package generators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	a, err := NewMidpointDisplacement(33, 42)
	require.NoError(t, err)
	b, err := NewMidpointDisplacement(33, 42)
	require.NoError(t, err)

	a.Generate(0.5, 0.5)
	b.Generate(0.5, 0.5)
	assert.Equal(t, a.Grid().Heights(), b.Grid().Heights())

	c, err := NewMidpointDisplacement(33, 43)
	require.NoError(t, err)
	c.Generate(0.5, 0.5)
	assert.NotEqual(t, a.Grid().Heights(), c.Grid().Heights())
}

func TestGenerateNormalizedRange(t *testing.T) {
	m, err := NewMidpointDisplacement(65, 7)
	require.NoError(t, err)
	m.Generate(0.5, 0.5)

	heights := m.Grid().Heights()
	require.Len(t, heights, 65*65)
	min, max := heights[0], heights[0]
	for _, h := range heights {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 1.0, max)
}

func TestGenerateFillsInterior(t *testing.T) {
	m, err := NewMidpointDisplacement(17, 9)
	require.NoError(t, err)
	m.Generate(0.8, 0.6)

	zeros := 0
	for _, h := range m.Grid().Heights() {
		if h == 0 {
			zeros++
		}
	}
	// Normalization pins the minimum at zero; everything else should have
	// been displaced away from the initial fill value.
	assert.Less(t, zeros, 5)
}

func TestInvalidResolution(t *testing.T) {
	_, err := NewMidpointDisplacement(0, 1)
	require.Error(t, err)
}

package erosion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThermalIdempotentWithinRepose(t *testing.T) {
	cfg := DefaultConfig() // 33° angle of repose
	e, err := New(cfg)
	require.NoError(t, err)
	// A 0.1 rise per cell is far below tan(33°) ≈ 0.65.
	require.NoError(t, e.SetHeightData(rampGrid(12, 0.1), 12))

	before := append([]float64(nil), e.height...)
	e.relaxThermal()
	for i := range before {
		assert.InDelta(t, before[i], e.height[i], 1e-12)
	}
}

func TestThermalNeverTouchesBorder(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	const res = 16
	rng := rand.New(rand.NewSource(3))
	heights := make([]float64, res*res)
	for i := range heights {
		heights[i] = rng.Float64() * 50
	}
	require.NoError(t, e.SetHeightData(heights, res))

	before := append([]float64(nil), e.height...)
	for pass := 0; pass < 5; pass++ {
		e.relaxThermal()
	}
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			if x == 0 || y == 0 || x == res-1 || y == res-1 {
				assert.Equal(t, before[y*res+x], e.height[y*res+x])
			}
		}
	}
}

func TestThermalConvergesToRepose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AngleOfRepose = 0
	cfg.ThermalRate = 0.5
	e, err := New(cfg)
	require.NoError(t, err)

	const res = 5
	heights := make([]float64, res*res)
	heights[2*res+2] = 100
	require.NoError(t, e.SetHeightData(heights, res))

	for pass := 0; pass < 200; pass++ {
		e.relaxThermal()
	}

	const tolerance = 0.05
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			h := e.height[y*res+x]
			if x+1 < res {
				assert.LessOrEqual(t, math.Abs(h-e.height[y*res+x+1]), tolerance)
			}
			if y+1 < res {
				assert.LessOrEqual(t, math.Abs(h-e.height[(y+1)*res+x]), tolerance)
			}
		}
	}
}

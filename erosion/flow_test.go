package erosion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdvancedEngine(t *testing.T, heights []float64, res int, worldSize float64) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, e.SetHeightDataWithWorldSize(heights, res, worldSize))
	return e
}

func TestFlowRoutingOnRamp(t *testing.T) {
	const res = 8
	e := newAdvancedEngine(t, rampGrid(res, 10), res, float64(res))
	e.routeFlow()

	cellArea := e.cellSize * e.cellSize
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			i := y*res + x
			if x < res-1 {
				assert.Equalf(t, int8(dirEast), e.flowDir[i], "cell (%d,%d) should flow east", x, y)
			} else {
				assert.Equal(t, int8(noFlow), e.flowDir[i])
			}
			assert.GreaterOrEqual(t, e.drainageArea[i], cellArea)
			if x > 0 {
				assert.Greater(t, e.drainageArea[i], e.drainageArea[i-1])
			}
		}
	}
}

func TestDrainageTransferInvariant(t *testing.T) {
	const res = 16
	heights := make([]float64, res*res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			// A bumpy bowl draining toward one corner.
			heights[y*res+x] = float64(x+y) + 3*float64((x*7+y*13)%5)
		}
	}
	e := newAdvancedEngine(t, heights, res, 1600)
	e.routeFlow()

	cellArea := e.cellSize * e.cellSize
	for i := 0; i < res*res; i++ {
		target := e.downstreamOf(i)
		if target < 0 {
			continue
		}
		// The receiver's catchment includes its own footprint plus
		// everything credited by this cell.
		assert.GreaterOrEqual(t, e.drainageArea[target], e.drainageArea[i]+cellArea-1e-9)
	}
}

func TestChannelIdentification(t *testing.T) {
	const res = 16
	e := newAdvancedEngine(t, rampGrid(res, 5), res, 1600)
	adv := e.AdvancedConfig()
	adv.CriticalDrainage = 5 * e.cellSize * e.cellSize
	require.NoError(t, e.SetAdvancedConfig(adv))

	e.routeFlow()
	e.identifyChannels()

	channels := 0
	for i := 0; i < res*res; i++ {
		if e.isChannel[i] {
			channels++
			assert.Greater(t, e.discharge[i], 0.0)
		} else {
			assert.Zero(t, e.discharge[i])
			assert.Zero(t, e.velocity[i])
		}
	}
	// On the ramp every row accumulates left to right, so the downstream
	// part of each row passes the five-cell threshold.
	assert.Greater(t, channels, 0)
}

func TestFlowRoutingDeterministic(t *testing.T) {
	const res = 16
	run := func() []float64 {
		e := newAdvancedEngine(t, rampGrid(res, 2), res, 800)
		e.routeFlow()
		return append([]float64(nil), e.drainageArea...)
	}
	assert.Equal(t, run(), run())
}

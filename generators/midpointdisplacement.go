package generators

import (
	"math/rand"

	"landmorph/heightfield"
)

// TerrainGenerator produces an initial heightfield for the erosion engine.
type TerrainGenerator interface {
	Generate(spread, reduce float64)
	Grid() *heightfield.Grid
}

// MidpointDisplacement builds fractal terrain by recursively displacing the
// midpoints of a square region. The grid side must be 2^n + 1 so the
// recursion lands exactly on cell centres.
type MidpointDisplacement struct {
	resolution int
	grid       *heightfield.Grid
	rng        *rand.Rand
}

// NewMidpointDisplacement allocates a generator for a resolution×resolution
// grid using the provided seed for all displacement jitter.
func NewMidpointDisplacement(resolution int, seed int64) (*MidpointDisplacement, error) {
	g, err := heightfield.New(resolution, 0)
	if err != nil {
		return nil, err
	}
	return &MidpointDisplacement{
		resolution: resolution,
		grid:       g,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Grid returns the generated heightfield.
func (m *MidpointDisplacement) Grid() *heightfield.Grid { return m.grid }

func (m *MidpointDisplacement) set(x, y int, value float64) {
	m.grid.Heights()[m.grid.Index(x, y)] = value
}

func (m *MidpointDisplacement) get(x, y int) float64 {
	return m.grid.HeightAt(x, y)
}

func (m *MidpointDisplacement) jitter(value, spread float64) float64 {
	return value + spread - m.rng.Float64()*spread*2
}

// Generate fills the grid with fresh terrain. spread controls the initial
// displacement magnitude and reduce the per-level decay; the result is
// normalized to [0, 1].
func (m *MidpointDisplacement) Generate(spread, reduce float64) {
	heights := m.grid.Heights()
	for i := range heights {
		heights[i] = 0
	}
	last := m.resolution - 1
	m.set(0, 0, m.rng.Float64())
	m.set(last, 0, m.rng.Float64())
	m.set(0, last, m.rng.Float64())
	m.set(last, last, m.rng.Float64())
	m.displace(0, 0, last, last, spread, reduce)
	m.grid.Normalize()
}

func (m *MidpointDisplacement) displace(x0, y0, x1, y1 int, spread, reduce float64) {
	if x1-x0 <= 1 && y1-y0 <= 1 {
		return
	}
	mx := (x0 + x1) / 2
	my := (y0 + y1) / 2

	if m.get(mx, y0) == 0 {
		m.set(mx, y0, m.jitter((m.get(x0, y0)+m.get(x1, y0))/2, spread))
	}
	if m.get(x0, my) == 0 {
		m.set(x0, my, m.jitter((m.get(x0, y0)+m.get(x0, y1))/2, spread))
	}
	if m.get(x1, my) == 0 {
		m.set(x1, my, m.jitter((m.get(x1, y0)+m.get(x1, y1))/2, spread))
	}
	if m.get(mx, y1) == 0 {
		m.set(mx, y1, m.jitter((m.get(x0, y1)+m.get(x1, y1))/2, spread))
	}
	if m.get(mx, my) == 0 {
		avg := (m.get(mx, y0) + m.get(x0, my) + m.get(x1, my) + m.get(mx, y1)) / 4
		m.set(mx, my, m.jitter(avg, spread))
	}

	next := spread * reduce
	m.displace(x0, y0, mx, my, next, reduce)
	m.displace(mx, y0, x1, my, next, reduce)
	m.displace(x0, my, mx, y1, next, reduce)
	m.displace(mx, my, x1, y1, next, reduce)
}

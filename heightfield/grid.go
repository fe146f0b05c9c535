package heightfield

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

// Grid is a square heightfield stored as a flat row-major buffer of
// elevation samples. CellSize is the real-world length covered by one cell
// and is only meaningful when the grid was built from a physical extent.
type Grid struct {
	resolution int
	cellSize   float64
	heights    []float64
}

// New allocates a zeroed grid. The resolution is fixed for the lifetime of
// the grid.
func New(resolution int, cellSize float64) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("heightfield: resolution must be positive, got %d", resolution)
	}
	return &Grid{
		resolution: resolution,
		cellSize:   cellSize,
		heights:    make([]float64, resolution*resolution),
	}, nil
}

// FromSlice builds a grid from an existing elevation buffer. The buffer is
// copied, so the caller keeps ownership of its slice.
func FromSlice(heights []float64, resolution int, cellSize float64) (*Grid, error) {
	g, err := New(resolution, cellSize)
	if err != nil {
		return nil, err
	}
	if len(heights) != resolution*resolution {
		return nil, fmt.Errorf("heightfield: expected %d samples for resolution %d, got %d",
			resolution*resolution, resolution, len(heights))
	}
	copy(g.heights, heights)
	return g, nil
}

// Resolution reports the side length of the grid in cells.
func (g *Grid) Resolution() int { return g.resolution }

// CellSize reports the real-world length per cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Heights exposes the backing buffer so simulation passes can read and
// write samples directly.
func (g *Grid) Heights() []float64 { return g.heights }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.resolution + x }

// HeightAt returns the sample at integer coordinates. The coordinates must
// be in bounds.
func (g *Grid) HeightAt(x, y int) float64 { return g.heights[y*g.resolution+x] }

// Sample bilinearly interpolates the four cells nearest the fractional
// coordinates. Coordinates are clamped to the grid, so edge cells extend
// outward rather than wrapping or mirroring.
func (g *Grid) Sample(u, v float64) float64 {
	return Bilinear(g.heights, g.resolution, u, v)
}

// Normalize rescales all samples to [0, 1].
func (g *Grid) Normalize() {
	min := floats.Min(g.heights)
	max := floats.Max(g.heights)
	span := max - min
	if span == 0 {
		for i := range g.heights {
			g.heights[i] = 0
		}
		return
	}
	for i := range g.heights {
		g.heights[i] = (g.heights[i] - min) / span
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bilinear interpolates a flat row-major scalar field of the given
// resolution at fractional coordinates, clamping to the grid edges.
func Bilinear(samples []float64, resolution int, u, v float64) float64 {
	u = clampf(u, 0, float64(resolution-1))
	v = clampf(v, 0, float64(resolution-1))
	x0 := int(u)
	y0 := int(v)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > resolution-1 {
		x1 = resolution - 1
	}
	if y1 > resolution-1 {
		y1 = resolution - 1
	}
	fx := u - float64(x0)
	fy := v - float64(y0)

	h00 := samples[y0*resolution+x0]
	h10 := samples[y0*resolution+x1]
	h01 := samples[y1*resolution+x0]
	h11 := samples[y1*resolution+x1]

	top := h00*(1-fx) + h10*fx
	bottom := h01*(1-fx) + h11*fx
	return top*(1-fy) + bottom*fy
}

// BilinearVec interpolates a flat row-major vector field at fractional
// coordinates with the same clamped edge policy as Bilinear.
func BilinearVec(field []mgl64.Vec2, resolution int, u, v float64) mgl64.Vec2 {
	u = clampf(u, 0, float64(resolution-1))
	v = clampf(v, 0, float64(resolution-1))
	x0 := int(u)
	y0 := int(v)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > resolution-1 {
		x1 = resolution - 1
	}
	if y1 > resolution-1 {
		y1 = resolution - 1
	}
	fx := u - float64(x0)
	fy := v - float64(y0)

	top := field[y0*resolution+x0].Mul(1 - fx).Add(field[y0*resolution+x1].Mul(fx))
	bottom := field[y1*resolution+x0].Mul(1 - fx).Add(field[y1*resolution+x1].Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

// Gradients fills dst with the central-difference gradient of the scalar
// field. Neighbour lookups clamp at the edges. dst is allocated when nil.
func Gradients(samples []float64, resolution int, dst []mgl64.Vec2) []mgl64.Vec2 {
	if dst == nil {
		dst = make([]mgl64.Vec2, len(samples))
	}
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			xl := x - 1
			if xl < 0 {
				xl = 0
			}
			xr := x + 1
			if xr > resolution-1 {
				xr = resolution - 1
			}
			yt := y - 1
			if yt < 0 {
				yt = 0
			}
			yb := y + 1
			if yb > resolution-1 {
				yb = resolution - 1
			}
			gx := (samples[y*resolution+xr] - samples[y*resolution+xl]) * 0.5
			gy := (samples[yb*resolution+x] - samples[yt*resolution+x]) * 0.5
			dst[y*resolution+x] = mgl64.Vec2{gx, gy}
		}
	}
	return dst
}

// SlopeAt returns the central-difference slope magnitude at (x, y), scaled
// by the horizontal cell length. Border cells report zero slope.
func SlopeAt(samples []float64, resolution int, x, y int, cellSize float64) float64 {
	if x <= 0 || y <= 0 || x >= resolution-1 || y >= resolution-1 {
		return 0
	}
	sx := (samples[y*resolution+x+1] - samples[y*resolution+x-1]) / (2 * cellSize)
	sy := (samples[(y+1)*resolution+x] - samples[(y-1)*resolution+x]) / (2 * cellSize)
	return math.Sqrt(sx*sx + sy*sy)
}

package erosion

import "math"

// relaxThermal runs one talus-slumping pass. For every interior cell the
// slope to each of the eight neighbours is compared against the angle of
// repose; the mean excess, scaled by the thermal rate, is removed from the
// cell. All adjustments are computed from an unmodified snapshot and
// applied only after the full pass so the result does not depend on
// traversal order.
func (e *Engine) relaxThermal() {
	maxSlope := math.Tan(e.cfg.AngleOfRepose * math.Pi / 180)
	snap := e.scratch
	copy(snap, e.height)

	for y := 1; y < e.res-1; y++ {
		for x := 1; x < e.res-1; x++ {
			i := y*e.res + x
			h := snap[i]
			excess := 0.0
			count := 0
			for dir := 0; dir < 8; dir++ {
				n := (y+d8dy[dir])*e.res + x + d8dx[dir]
				dist := d8dist[dir]
				dh := h - snap[n]
				if dh/dist > maxSlope {
					excess += dh - maxSlope*dist
					count++
				}
			}
			if count > 0 {
				e.height[i] -= excess / float64(count) * e.cfg.ThermalRate
			}
		}
	}
}

package erosion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"landmorph/heightfield"
)

// waterEpsilon is the carried-water volume below which a droplet stops.
const waterEpsilon = 0.01

// droplet is the transient state of one simulated raindrop. Droplets are
// created and destroyed within a single outer iteration and never stored
// on the grid.
type droplet struct {
	pos      mgl64.Vec2
	vel      mgl64.Vec2
	speed    float64
	water    float64
	sediment float64
	lifetime int
}

// simulateDroplets spawns one batch of droplets at random continuous
// positions and traces each until it dies.
func (e *Engine) simulateDroplets() {
	count := e.res / 4
	if count < 1 {
		count = 1
	}
	span := float64(e.res - 1)
	for i := 0; i < count; i++ {
		d := droplet{
			pos:      mgl64.Vec2{e.rng.Float64() * span, e.rng.Float64() * span},
			speed:    e.cfg.DropletSpeed,
			water:    e.cfg.RainStrength,
			lifetime: e.cfg.DropletLifetime,
		}
		e.traceDroplet(&d)
	}
}

func (e *Engine) traceDroplet(d *droplet) {
	for ; d.lifetime > 0; d.lifetime-- {
		if d.water < waterEpsilon {
			return
		}
		oldPos := d.pos
		oldHeight := heightfield.Bilinear(e.height, e.res, oldPos.X(), oldPos.Y())
		grad := heightfield.BilinearVec(e.gradient, e.res, oldPos.X(), oldPos.Y())

		// Gravity pulls the droplet down-gradient while drag bleeds off
		// the previous velocity.
		d.vel = d.vel.Mul(1 - e.cfg.EvaporationRate).Sub(grad.Mul(e.cfg.Gravity))
		norm := d.vel.Len()
		if norm < 1e-9 {
			// Stalled on flat ground; nudge in a neutral direction.
			d.vel = mgl64.Vec2{0.5, 0.5}
			norm = d.vel.Len()
		}
		d.vel = d.vel.Mul(e.cfg.DropletSpeed / norm)
		d.pos = d.pos.Add(d.vel)

		// Droplets that reach the one-cell border margin run off the map.
		limit := float64(e.res - 2)
		if d.pos.X() < 1 || d.pos.Y() < 1 || d.pos.X() > limit || d.pos.Y() > limit {
			return
		}

		newHeight := heightfield.Bilinear(e.height, e.res, d.pos.X(), d.pos.Y())
		dh := newHeight - oldHeight

		// Leave a flow trace for the water-flow query.
		traceIdx, traceW := e.cellWeights(oldPos)
		for k := 0; k < 4; k++ {
			e.water[traceIdx[k]] += d.water * traceW[k]
		}

		slope := math.Max(e.cfg.MinSlope, -dh)
		capacity := d.speed * d.water * slope * e.cfg.SedimentCapacity

		if d.sediment > capacity || dh > 0 {
			amount := (d.sediment - capacity) * e.cfg.DepositionRate
			if dh > 0 && amount < dh {
				// Fill the pit the droplet just climbed out of, at most
				// with everything it carries.
				amount = dh
			}
			amount = math.Min(d.sediment, math.Max(0, amount))
			d.sediment -= amount
			e.depositAt(oldPos, amount)
		} else {
			amount := math.Min((capacity-d.sediment)*e.cfg.ErosionStrength, slope)
			d.sediment += e.erodeAt(oldPos, amount)
		}

		d.water *= 1 - e.cfg.EvaporationRate
		d.speed = math.Sqrt(d.speed*d.speed + math.Max(0, -dh)*e.cfg.Gravity)
	}
}

// cellWeights returns the four cells around a continuous position and
// their bilinear weights. The weights always sum to one.
func (e *Engine) cellWeights(pos mgl64.Vec2) (idx [4]int, w [4]float64) {
	x0 := int(pos.X())
	y0 := int(pos.Y())
	if x0 > e.res-2 {
		x0 = e.res - 2
	}
	if y0 > e.res-2 {
		y0 = e.res - 2
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	fx := pos.X() - float64(x0)
	fy := pos.Y() - float64(y0)

	idx[0] = y0*e.res + x0
	idx[1] = y0*e.res + x0 + 1
	idx[2] = (y0+1)*e.res + x0
	idx[3] = (y0+1)*e.res + x0 + 1
	w[0] = (1 - fx) * (1 - fy)
	w[1] = fx * (1 - fy)
	w[2] = (1 - fx) * fy
	w[3] = fx * fy
	return idx, w
}

// depositAt spreads amount over the four cells nearest pos. The grid gains
// exactly what the droplet gave up.
func (e *Engine) depositAt(pos mgl64.Vec2, amount float64) {
	if amount <= 0 {
		return
	}
	idx, w := e.cellWeights(pos)
	for k := 0; k < 4; k++ {
		e.height[idx[k]] += amount * w[k]
		e.sediment[idx[k]] += amount * w[k]
	}
}

// erodeAt removes up to amount from the four cells nearest pos, scaled per
// cell by hardness and vegetation shielding, and returns the total
// actually removed so the droplet's load stays in balance with the grid.
func (e *Engine) erodeAt(pos mgl64.Vec2, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	idx, w := e.cellWeights(pos)
	removed := 0.0
	for k := 0; k < 4; k++ {
		take := amount * w[k] * e.hardness[idx[k]]
		if e.cfg.VegetationProtection {
			take *= 1 - 0.7*e.vegetation[idx[k]]
		}
		e.height[idx[k]] -= take
		removed += take
	}
	return removed
}

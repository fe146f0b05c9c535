package erosion

import (
	"math"

	"landmorph/heightfield"
)

// faultInfluenceBand is how far, in grid units, a fault's throw reaches on
// either side of its trace.
const faultInfluenceBand = 5.0

// tanMassWasting is tan(35°), the failure threshold for mass wasting.
var tanMassWasting = math.Tan(35 * math.Pi / 180)

// climateFactor is the precipitation-normalized multiplier shared by the
// incision and weathering laws, capped at 2×.
func (e *Engine) climateFactor() float64 {
	f := e.adv.Precipitation / e.adv.ReferencePrecipitation
	if f > 2 {
		f = 2
	}
	return f
}

// applyTectonics lifts the grid according to the configured spatial
// pattern, then applies every fault's throw to the cells straddling its
// trace.
func (e *Engine) applyTectonics(dt float64) {
	if e.adv.UpliftRate != 0 {
		base := e.adv.UpliftRate * dt
		centre := float64(e.res-1) / 2
		maxDist := centre * math.Sqrt2
		for y := 0; y < e.res; y++ {
			for x := 0; x < e.res; x++ {
				factor := 1.0
				switch e.adv.Uplift {
				case UpliftDome:
					d := math.Hypot(float64(x)-centre, float64(y)-centre)
					factor = 1 - d/maxDist
				case UpliftRidge:
					factor = 1 - math.Abs(float64(y)-centre)/centre
				case UpliftRandom:
					factor = 0.5 + e.rng.Float64()
				}
				if factor < 0 {
					factor = 0
				}
				e.elevation[y*e.res+x] += base * factor
			}
		}
	}
	for _, f := range e.adv.Faults {
		e.applyFault(f)
	}
}

// applyFault raises one side of the fault trace and lowers the other so
// the total throw across the trace equals the configured offset.
func (e *Engine) applyFault(f Fault) {
	sx := f.X2 - f.X1
	sy := f.Y2 - f.Y1
	segLen2 := sx*sx + sy*sy
	if segLen2 == 0 {
		return
	}
	half := f.Offset / 2
	for y := 0; y < e.res; y++ {
		for x := 0; x < e.res; x++ {
			px := float64(x) - f.X1
			py := float64(y) - f.Y1
			t := (px*sx + py*sy) / segLen2
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			dx := px - t*sx
			dy := py - t*sy
			if math.Hypot(dx, dy) > faultInfluenceBand {
				continue
			}
			cross := sx*py - sy*px
			if cross >= 0 {
				e.elevation[y*e.res+x] += half
			} else {
				e.elevation[y*e.res+x] -= half
			}
		}
	}
}

// inciseChannels applies the stream power law E = K·A^m·S^n to channel
// cells, with K damped by rock hardness and erosion shielded by
// vegetation. Border cells have zero central-difference slope and are
// untouched by construction.
func (e *Engine) inciseChannels(dt float64) {
	if e.adv.IncisionConstant == 0 {
		return
	}
	climate := e.climateFactor()
	for y := 1; y < e.res-1; y++ {
		for x := 1; x < e.res-1; x++ {
			i := y*e.res + x
			if !e.isChannel[i] {
				continue
			}
			slope := heightfield.SlopeAt(e.elevation, e.res, x, y, e.cellSize)
			if slope <= 0 {
				continue
			}
			k := e.adv.IncisionConstant / e.rockHardness[i]
			rate := k * math.Pow(e.drainageArea[i], e.adv.AreaExponent) *
				math.Pow(slope, e.adv.SlopeExponent) *
				climate * (1 - 0.8*e.vegetationCover[i])
			e.elevation[i] -= rate * dt
		}
	}
}

// diffuseHillslopes applies an explicit four-neighbour Laplacian soil
// creep term to every interior cell. Diffusivity drops with vegetation
// cover, rises under freeze-thaw temperatures, and gains a thermal term
// once the local slope passes the critical angle. All reads come from a
// snapshot so updates share one consistent input.
func (e *Engine) diffuseHillslopes(dt float64) {
	snap := e.scratch
	copy(snap, e.elevation)
	critTan := math.Tan(e.adv.CriticalSlopeAngle * math.Pi / 180)
	cs2 := e.cellSize * e.cellSize

	for y := 1; y < e.res-1; y++ {
		for x := 1; x < e.res-1; x++ {
			i := y*e.res + x
			lap := (snap[i-1] + snap[i+1] + snap[i-e.res] + snap[i+e.res] - 4*snap[i]) / cs2
			kd := e.adv.Diffusivity * (1 - 0.5*e.vegetationCover[i])
			if e.temperature[i] < 5 {
				kd *= 1.5
			}
			slope := heightfield.SlopeAt(snap, e.res, x, y, e.cellSize)
			if slope > critTan {
				kd += e.adv.Diffusivity * 2 * (slope - critTan)
			}
			e.elevation[i] += kd * lap * dt
		}
	}
}

// weatherChemically dissolves rock at a rate driven by an Arrhenius-style
// temperature factor, the capped precipitation factor and rock
// solubility. Active weathering builds soil, nudging vegetation upward.
func (e *Engine) weatherChemically(dt float64) {
	precip := e.climateFactor()
	total := e.res * e.res
	for i := 0; i < total; i++ {
		tempFactor := math.Exp((e.temperature[i] - 15) / 10)
		solubility := 1.0
		if e.rockHardness[i] < 0.8 {
			solubility = 2.0
		} else if e.rockHardness[i] > 1.2 {
			solubility = 0.5
		}
		rate := e.adv.WeatheringRate * tempFactor * precip * solubility
		if rate <= 0 {
			continue
		}
		e.elevation[i] -= rate * dt
		e.vegetationCover[i] = math.Min(1, e.vegetationCover[i]+0.1*rate*dt)
	}
}

// wasteMass moves material from over-steepened cells along their flow
// direction. A fifth of the failed volume is lost in transit and
// vegetated cells shed only half as much. Transfers are collected first
// and applied after the scan.
func (e *Engine) wasteMass(dt float64) {
	delta := e.scratch
	for i := range delta {
		delta[i] = 0
	}
	total := e.res * e.res
	for i := 0; i < total; i++ {
		target := e.downstreamOf(i)
		if target < 0 {
			continue
		}
		slope := e.downstreamSlope(i)
		if slope <= tanMassWasting {
			continue
		}
		volume := (slope - tanMassWasting) * e.cellSize * 0.1
		if e.vegetationCover[i] > 0.5 {
			volume *= 0.5
		}
		delta[i] -= volume
		delta[target] += volume * 0.8
	}
	for i := 0; i < total; i++ {
		e.elevation[i] += delta[i]
	}
}

// meanderRivers ages every channel cell and, past the threshold, erodes a
// random bank perpendicular to the flow in proportion to discharge.
func (e *Engine) meanderRivers(dt float64) {
	total := e.res * e.res
	for i := 0; i < total; i++ {
		if !e.isChannel[i] || e.flowDir[i] < 0 {
			e.meanderAge[i] = 0
			continue
		}
		e.meanderAge[i] += dt
		if e.meanderAge[i] < e.adv.MeanderThreshold {
			continue
		}
		// Pick one of the two banks perpendicular to the flow direction.
		lateral := (int(e.flowDir[i]) + 2) % 8
		if e.rng.Intn(2) == 0 {
			lateral = (int(e.flowDir[i]) + 6) % 8
		}
		x := i%e.res + d8dx[lateral]
		y := i/e.res + d8dy[lateral]
		if x < 1 || y < 1 || x >= e.res-1 || y >= e.res-1 {
			e.meanderAge[i] = 0
			continue
		}
		n := y*e.res + x
		cut := e.adv.MeanderStrength * e.discharge[i] * dt
		e.elevation[n] -= cut
		e.bankHeight[n] = e.elevation[n] - e.elevation[i]
		e.meanderAge[i] = 0
	}
}

// migrateKnickpoints finds channel cells with locally steep downstream
// slope and erodes their upstream contributors in proportion to local
// stream power. The upstream search scans the whole grid per knickpoint,
// which is quadratic and only acceptable at moderate grid sizes.
func (e *Engine) migrateKnickpoints(dt float64) {
	total := e.res * e.res
	e.knickpoints = e.knickpoints[:0]
	for i := 0; i < total; i++ {
		if !e.isChannel[i] {
			continue
		}
		if e.downstreamSlope(i) <= e.adv.KnickpointSlope {
			continue
		}
		e.knickpoints = append(e.knickpoints, i)
		retreat := e.adv.KnickpointRate * e.streamPower[i] * dt
		for j := 0; j < total; j++ {
			if e.downstreamOf(j) == i {
				e.elevation[j] -= retreat
			}
		}
	}
}

package erosion

import "math"

// veryFineGrain is the diameter (mm) below which cohesion dominates and
// the Hjulström entrainment threshold stops falling with grain size.
const veryFineGrain = 0.1

// entrainmentVelocity is a simplified Hjulström–Sundborg threshold: very
// fine grains resist entrainment cohesively, coarser grains scale with
// the square root of their diameter.
func entrainmentVelocity(size float64) float64 {
	if size < veryFineGrain {
		return 0.1
	}
	return 0.01 * math.Sqrt(size)
}

// transportSediment moves each grain class through the channel network.
// Fast water entrains bed material into the per-class load; water well
// below half the threshold drops it back out, thickening the sediment
// record. Loads lose a fixed abrasion fraction every step.
func (e *Engine) transportSediment(dt float64) {
	grains := len(e.adv.GrainClasses)
	total := e.res * e.res
	for i := 0; i < total; i++ {
		if !e.isChannel[i] {
			continue
		}
		v := e.velocity[i]
		for g := 0; g < grains; g++ {
			li := i*grains + g
			vc := entrainmentVelocity(e.adv.GrainClasses[g].Size)
			switch {
			case v > vc:
				amount := e.adv.EntrainmentRate * (v - vc) * dt
				e.sedimentLoad[li] += amount
				e.elevation[i] -= amount
			case v < vc/2:
				amount := e.sedimentLoad[li] * e.adv.SettlingRate
				e.sedimentLoad[li] -= amount
				e.elevation[i] += amount
				e.sedimentThickness[i] += amount
			}
			e.sedimentLoad[li] *= 1 - e.adv.AbrasionRate
		}
	}
}

package erosion

import (
	"math"
	"sort"
)

// D8 neighbour offsets. Direction k points from a cell to its k-th
// neighbour; diagonal directions carry a √2 distance factor.
var (
	d8dx   = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	d8dy   = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	d8dist = [8]float64{1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2}
)

const (
	dirEast = 0
	noFlow  = -1
)

// routeFlow computes D8 flow directions and drainage areas. Every cell
// starts with its own footprint area; cells are then processed strictly
// from high to low elevation, handing their accumulated area to the
// steepest downhill neighbour. The descending order guarantees a cell's
// outflow is final before anything downstream consumes it, so one pass is
// exact.
func (e *Engine) routeFlow() {
	total := e.res * e.res
	cellArea := e.cellSize * e.cellSize
	for i := 0; i < total; i++ {
		e.drainageArea[i] = cellArea
		e.flowDir[i] = noFlow
		e.flowOrder[i] = i
	}

	elev := e.elevation
	sort.Slice(e.flowOrder, func(a, b int) bool {
		ia, ib := e.flowOrder[a], e.flowOrder[b]
		if elev[ia] != elev[ib] {
			return elev[ia] > elev[ib]
		}
		return ia < ib
	})

	for _, i := range e.flowOrder {
		x := i % e.res
		y := i / e.res
		best := noFlow
		bestSlope := 0.0
		for dir := 0; dir < 8; dir++ {
			nx := x + d8dx[dir]
			ny := y + d8dy[dir]
			if nx < 0 || ny < 0 || nx >= e.res || ny >= e.res {
				continue
			}
			n := ny*e.res + nx
			slope := (elev[i] - elev[n]) / (d8dist[dir] * e.cellSize)
			if slope > bestSlope {
				bestSlope = slope
				best = dir
			}
		}
		if best != noFlow {
			n := (y+d8dy[best])*e.res + x + d8dx[best]
			e.drainageArea[n] += e.drainageArea[i]
			e.flowDir[i] = int8(best)
		}
	}
}

// identifyChannels marks cells whose catchment exceeds the critical
// drainage area and derives their discharge, flow velocity and unit
// stream power.
func (e *Engine) identifyChannels() {
	total := e.res * e.res
	for i := 0; i < total; i++ {
		channel := e.drainageArea[i] > e.adv.CriticalDrainage
		e.isChannel[i] = channel
		if !channel {
			e.discharge[i] = 0
			e.velocity[i] = 0
			e.streamPower[i] = 0
			continue
		}
		e.discharge[i] = e.drainageArea[i] * e.adv.Precipitation * e.adv.RunoffCoefficient
		slope := e.downstreamSlope(i)
		// Manning-style power law; only the relative magnitude matters for
		// the entrainment thresholds.
		e.velocity[i] = 0.4 * math.Sqrt(slope) * math.Pow(e.discharge[i], 0.3)
		e.streamPower[i] = e.discharge[i] * slope
	}
}

// downstreamSlope returns the slope along a cell's flow direction, or zero
// for cells with no outflow.
func (e *Engine) downstreamSlope(i int) float64 {
	dir := e.flowDir[i]
	if dir < 0 {
		return 0
	}
	x := i%e.res + d8dx[dir]
	y := i/e.res + d8dy[dir]
	n := y*e.res + x
	slope := (e.elevation[i] - e.elevation[n]) / (d8dist[dir] * e.cellSize)
	if slope < 0 {
		return 0
	}
	return slope
}

// downstreamOf returns the linear index of the cell a cell flows into, or
// -1 when it has no outflow.
func (e *Engine) downstreamOf(i int) int {
	dir := e.flowDir[i]
	if dir < 0 {
		return -1
	}
	x := i%e.res + d8dx[dir]
	y := i/e.res + d8dy[dir]
	if x < 0 || y < 0 || x >= e.res || y >= e.res {
		return -1
	}
	return y*e.res + x
}

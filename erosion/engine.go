package erosion

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"landmorph/heightfield"
)

// ProgressFunc observes a running simulation. progress is in [0, 1] and
// stage names the pass being executed. The callback cannot cancel a run;
// hosts that need to interleave control should drive ErodeStep or
// AdvanceStep directly.
type ProgressFunc func(progress float64, stage string)

// gradientRefreshInterval is how many outer iterations the droplet pass
// reuses the precomputed gradient field before recomputing it.
const gradientRefreshInterval = 10

// Engine owns a heightfield snapshot and mutates it through two
// independent pipelines: the basic droplet + thermal model and the
// advanced geomorphology model. An engine is not safe for concurrent use;
// exactly one run may be active at a time.
type Engine struct {
	cfg Config
	adv AdvancedConfig

	rng      *rand.Rand
	progress ProgressFunc

	res      int
	cellSize float64

	// Basic-model state, one flat array per attribute.
	height     []float64
	water      []float64
	sediment   []float64
	vegetation []float64
	hardness   []float64
	gradient   []mgl64.Vec2
	scratch    []float64

	// Advanced-model state.
	advReady          bool
	elevation         []float64
	drainageArea      []float64
	discharge         []float64
	velocity          []float64
	streamPower       []float64
	sedimentThickness []float64
	rockHardness      []float64
	vegetationCover   []float64
	temperature       []float64
	bankHeight        []float64
	meanderAge        []float64
	sedimentLoad      []float64 // flattened [cell*grainCount + grain]
	flowDir           []int8    // 0..7, -1 for no outflow
	isChannel         []bool
	flowOrder         []int
	timeEvolved       float64
	riverNetwork      [][]int
	knickpoints       []int
}

// Results is the read-out of the advanced pipeline. All slices are copies.
type Results struct {
	Elevation         []float64
	DrainageArea      []float64
	StreamPower       []float64
	SedimentThickness []float64
	VegetationCover   []float64
	TimeEvolved       float64
	RiverNetwork      [][]int
	Knickpoints       []int
}

// New creates an engine with the given basic configuration and the default
// advanced configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		adv: DefaultAdvancedConfig(),
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// SetConfig validates and replaces the basic configuration. The random
// stream is reseeded so a fresh run is reproducible.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.rng = rand.New(rand.NewSource(cfg.Seed))
	return nil
}

// Config returns a copy of the basic configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetAdvancedConfig validates and replaces the advanced configuration.
func (e *Engine) SetAdvancedConfig(cfg AdvancedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.adv = cfg
	e.adv.Faults = append([]Fault(nil), cfg.Faults...)
	e.adv.GrainClasses = append([]GrainClass(nil), cfg.GrainClasses...)
	if e.advReady && len(e.sedimentLoad) != e.res*e.res*len(e.adv.GrainClasses) {
		// The load buffer is flattened per grain class; a class-count
		// change invalidates any in-transit sediment.
		e.sedimentLoad = make([]float64, e.res*e.res*len(e.adv.GrainClasses))
	}
	return nil
}

// AdvancedConfig returns a copy of the advanced configuration.
func (e *Engine) AdvancedConfig() AdvancedConfig {
	cfg := e.adv
	cfg.Faults = append([]Fault(nil), e.adv.Faults...)
	cfg.GrainClasses = append([]GrainClass(nil), e.adv.GrainClasses...)
	return cfg
}

// SetProgressFunc installs the progress observer. A nil fn disables
// reporting.
func (e *Engine) SetProgressFunc(fn ProgressFunc) { e.progress = fn }

func (e *Engine) report(progress float64, stage string) {
	if e.progress != nil {
		e.progress(progress, stage)
	}
}

// SetHeightData copies the caller's elevation buffer into fresh basic
// model state. Hardness and vegetation are drawn once from the seeded
// random stream and kept for the lifetime of the state. Advanced state is
// not initialized; use SetHeightDataWithWorldSize for that.
func (e *Engine) SetHeightData(elevation []float64, resolution int) error {
	if resolution <= 0 {
		return fmt.Errorf("erosion: resolution must be positive, got %d", resolution)
	}
	if len(elevation) != resolution*resolution {
		return fmt.Errorf("erosion: expected %d samples for resolution %d, got %d",
			resolution*resolution, resolution, len(elevation))
	}
	total := resolution * resolution
	e.res = resolution
	e.cellSize = 1
	e.height = append(e.height[:0], elevation...)
	e.water = make([]float64, total)
	e.sediment = make([]float64, total)
	e.vegetation = make([]float64, total)
	e.hardness = make([]float64, total)
	e.scratch = make([]float64, total)
	for i := 0; i < total; i++ {
		e.hardness[i] = 0.3 + 0.7*e.rng.Float64()
		e.vegetation[i] = 0.6 * e.rng.Float64()
	}
	e.gradient = heightfield.Gradients(e.height, e.res, nil)
	e.advReady = false
	return nil
}

// SetHeightDataWithWorldSize initializes basic state and additionally the
// advanced-model arrays, deriving the physical cell size from the supplied
// real-world extent in metres.
func (e *Engine) SetHeightDataWithWorldSize(elevation []float64, resolution int, realWorldSize float64) error {
	if realWorldSize <= 0 {
		return fmt.Errorf("erosion: real-world size must be positive, got %g", realWorldSize)
	}
	if err := e.SetHeightData(elevation, resolution); err != nil {
		return err
	}
	total := resolution * resolution
	e.cellSize = realWorldSize / float64(resolution)
	e.elevation = append([]float64(nil), elevation...)
	e.drainageArea = make([]float64, total)
	e.discharge = make([]float64, total)
	e.velocity = make([]float64, total)
	e.streamPower = make([]float64, total)
	e.sedimentThickness = make([]float64, total)
	e.rockHardness = make([]float64, total)
	e.vegetationCover = make([]float64, total)
	e.temperature = make([]float64, total)
	e.bankHeight = make([]float64, total)
	e.meanderAge = make([]float64, total)
	e.sedimentLoad = make([]float64, total*len(e.adv.GrainClasses))
	e.flowDir = make([]int8, total)
	e.isChannel = make([]bool, total)
	e.flowOrder = make([]int, total)
	for i := 0; i < total; i++ {
		e.rockHardness[i] = 0.5 + e.rng.Float64()
		e.vegetationCover[i] = 0.5 * e.rng.Float64()
		// Environmental lapse rate, 6.5 °C per km of elevation.
		e.temperature[i] = e.adv.Temperature - 0.0065*e.elevation[i]
	}
	e.timeEvolved = 0
	e.riverNetwork = nil
	e.knickpoints = nil
	e.advReady = true
	return nil
}

// Resolution reports the side length of the current grid, or zero before
// SetHeightData.
func (e *Engine) Resolution() int { return e.res }

// ApplyErosion runs the basic pipeline to completion and returns a copy of
// the eroded elevation buffer.
func (e *Engine) ApplyErosion() ([]float64, error) {
	if e.height == nil {
		return nil, fmt.Errorf("erosion: no height data set")
	}
	for i := 0; i < e.cfg.Iterations; i++ {
		e.ErodeStep(i)
		if i%gradientRefreshInterval == 0 {
			e.report(float64(i)/float64(e.cfg.Iterations), "hydraulic erosion")
		}
	}
	e.report(1, "erosion complete")
	return append([]float64(nil), e.height...), nil
}

// ErodeStep performs one outer iteration of the basic pipeline: a droplet
// batch followed by thermal relaxation. The gradient field is refreshed on
// every tenth iteration rather than every droplet step.
func (e *Engine) ErodeStep(iteration int) {
	if iteration%gradientRefreshInterval == 0 {
		e.gradient = heightfield.Gradients(e.height, e.res, e.gradient)
	}
	e.simulateDroplets()
	e.relaxThermal()
}

// ApplyAdvancedErosion runs the geomorphology pipeline for
// TotalTime/TimeStep iterations and returns a copy of the evolved
// elevation buffer.
func (e *Engine) ApplyAdvancedErosion() ([]float64, error) {
	if !e.advReady {
		return nil, fmt.Errorf("erosion: advanced state not initialized; call SetHeightDataWithWorldSize")
	}
	steps := int(e.adv.TotalTime / e.adv.TimeStep)
	for i := 0; i < steps; i++ {
		e.AdvanceStep()
		if i%10 == 0 {
			e.report(float64(i)/float64(steps), "geomorphology")
		}
	}
	e.report(1, "geomorphology complete")
	return append([]float64(nil), e.elevation...), nil
}

// AdvanceStep performs one time step of the advanced pipeline in the fixed
// process order: tectonics, flow routing, channel identification, incision,
// diffusion, weathering, mass wasting, meandering, knickpoint migration and
// sediment transport.
func (e *Engine) AdvanceStep() {
	dt := e.adv.TimeStep
	e.applyTectonics(dt)
	e.routeFlow()
	e.identifyChannels()
	e.inciseChannels(dt)
	e.diffuseHillslopes(dt)
	if e.adv.EnableChemicalWeathering {
		e.weatherChemically(dt)
	}
	if e.adv.EnableMassWasting {
		e.wasteMass(dt)
	}
	if e.adv.EnableMeandering {
		e.meanderRivers(dt)
	}
	if e.adv.EnableKnickpoints {
		e.migrateKnickpoints(dt)
	}
	e.transportSediment(dt)
	e.timeEvolved += dt
}

// WaterFlow returns a copy of the basic model's per-cell water volume.
func (e *Engine) WaterFlow() []float64 {
	return append([]float64(nil), e.water...)
}

// SedimentMap returns a copy of the basic model's deposited sediment.
func (e *Engine) SedimentMap() []float64 {
	return append([]float64(nil), e.sediment...)
}

// Results returns a snapshot of the advanced model's outputs. Every slice
// is a copy, so the snapshot is stable across further runs.
func (e *Engine) Results() Results {
	network := make([][]int, len(e.riverNetwork))
	for i, path := range e.riverNetwork {
		network[i] = append([]int(nil), path...)
	}
	return Results{
		Elevation:         append([]float64(nil), e.elevation...),
		DrainageArea:      append([]float64(nil), e.drainageArea...),
		StreamPower:       append([]float64(nil), e.streamPower...),
		SedimentThickness: append([]float64(nil), e.sedimentThickness...),
		VegetationCover:   append([]float64(nil), e.vegetationCover...),
		TimeEvolved:       e.timeEvolved,
		RiverNetwork:      network,
		Knickpoints:       append([]int(nil), e.knickpoints...),
	}
}

// CreateRiverErosion carves a straight channel between two grid points
// with a linear width falloff, mutating the basic elevation and, when
// present, the advanced elevation.
func (e *Engine) CreateRiverErosion(startX, startY, endX, endY float64) error {
	if e.height == nil {
		return fmt.Errorf("erosion: no height data set")
	}
	const (
		carveDepth  = 2.0
		carveRadius = 3.0
	)
	dx := endX - startX
	dy := endY - startY
	length := math.Hypot(dx, dy)
	steps := int(length*2) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		px := startX + dx*t
		py := startY + dy*t
		e.carveAt(px, py, carveDepth, carveRadius)
	}
	return nil
}

func (e *Engine) carveAt(px, py, depth, radius float64) {
	r := int(radius) + 1
	cx := int(px)
	cy := int(py)
	for y := cy - r; y <= cy+r; y++ {
		if y < 0 || y >= e.res {
			continue
		}
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || x >= e.res {
				continue
			}
			dist := math.Hypot(float64(x)-px, float64(y)-py)
			if dist > radius {
				continue
			}
			cut := depth * (1 - dist/radius)
			i := y*e.res + x
			e.height[i] -= cut
			if e.advReady {
				e.elevation[i] -= cut
			}
		}
	}
}

// CreateRealisticRiverNetwork traces dendritic channel paths downstream
// from high-drainage seeds along the precomputed flow directions, carving
// a shallow channel along each path. Traces are capped at 1000 steps so a
// malformed direction field cannot cycle forever.
func (e *Engine) CreateRealisticRiverNetwork() ([][]int, error) {
	if !e.advReady {
		return nil, fmt.Errorf("erosion: advanced state not initialized; call SetHeightDataWithWorldSize")
	}
	const maxTraceSteps = 1000
	e.routeFlow()
	e.identifyChannels()

	seedThreshold := 5 * e.adv.CriticalDrainage
	e.riverNetwork = e.riverNetwork[:0]
	for i := 0; i < e.res*e.res; i++ {
		if e.drainageArea[i] <= seedThreshold {
			continue
		}
		path := []int{i}
		cur := i
		for step := 0; step < maxTraceSteps; step++ {
			dir := e.flowDir[cur]
			if dir < 0 {
				break
			}
			x := cur%e.res + d8dx[dir]
			y := cur/e.res + d8dy[dir]
			if x < 0 || y < 0 || x >= e.res || y >= e.res {
				break
			}
			cur = y*e.res + x
			path = append(path, cur)
		}
		if len(path) > 1 {
			for _, c := range path {
				cut := 0.5 * math.Min(1, e.drainageArea[c]/seedThreshold)
				e.elevation[c] -= cut
				e.height[c] -= cut
			}
			e.riverNetwork = append(e.riverNetwork, path)
		}
	}

	network := make([][]int, len(e.riverNetwork))
	for i, path := range e.riverNetwork {
		network[i] = append([]int(nil), path...)
	}
	return network, nil
}

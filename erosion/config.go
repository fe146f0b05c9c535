package erosion

import "fmt"

// Config holds the tunable rates for the basic droplet + thermal pipeline.
type Config struct {
	Iterations      int
	DropletLifetime int
	DropletSpeed    float64

	// RainStrength is the water volume each spawned droplet starts with.
	RainStrength     float64
	EvaporationRate  float64
	DepositionRate   float64
	ErosionStrength  float64
	SedimentCapacity float64
	MinSlope         float64
	Gravity          float64

	// ThermalRate scales how much slope excess is removed per relaxation
	// pass; AngleOfRepose is in degrees.
	ThermalRate   float64
	AngleOfRepose float64

	VegetationProtection bool

	Seed int64
}

// DefaultConfig returns the standard basic-pipeline tuning.
func DefaultConfig() Config {
	return Config{
		Iterations:           64,
		DropletLifetime:      30,
		DropletSpeed:         1.0,
		RainStrength:         1.0,
		EvaporationRate:      0.02,
		DepositionRate:       0.3,
		ErosionStrength:      0.3,
		SedimentCapacity:     4.0,
		MinSlope:             0.01,
		Gravity:              4.0,
		ThermalRate:          0.5,
		AngleOfRepose:        33,
		VegetationProtection: true,
		Seed:                 1,
	}
}

// Validate reports the first malformed field, if any.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("erosion: iterations must be positive, got %d", c.Iterations)
	}
	if c.DropletLifetime <= 0 {
		return fmt.Errorf("erosion: droplet lifetime must be positive, got %d", c.DropletLifetime)
	}
	if c.DropletSpeed <= 0 {
		return fmt.Errorf("erosion: droplet speed must be positive, got %g", c.DropletSpeed)
	}
	if c.EvaporationRate < 0 || c.EvaporationRate >= 1 {
		return fmt.Errorf("erosion: evaporation rate must be in [0, 1), got %g", c.EvaporationRate)
	}
	if c.AngleOfRepose < 0 || c.AngleOfRepose >= 90 {
		return fmt.Errorf("erosion: angle of repose must be in [0, 90) degrees, got %g", c.AngleOfRepose)
	}
	return nil
}

// UpliftPattern selects the spatial shape of tectonic uplift.
type UpliftPattern string

const (
	UpliftUniform UpliftPattern = "uniform"
	UpliftDome    UpliftPattern = "dome"
	UpliftRidge   UpliftPattern = "ridge"
	UpliftRandom  UpliftPattern = "random"
)

// Fault is a line segment in grid coordinates with a vertical throw.
// Cells within the influence band move up on one side of the segment and
// down on the other, splitting the offset between them.
type Fault struct {
	X1, Y1 float64
	X2, Y2 float64
	Offset float64
}

// GrainClass describes one sediment grain-size fraction. Size is the grain
// diameter in millimetres.
type GrainClass struct {
	Name string
	Size float64
}

// AdvancedConfig holds the tunables for the geomorphology pipeline.
type AdvancedConfig struct {
	// TotalTime and TimeStep are in simulated years; the iteration count is
	// their quotient.
	TotalTime float64
	TimeStep  float64

	// Stream power law E = K * A^m * S^n.
	IncisionConstant float64
	AreaExponent     float64
	SlopeExponent    float64

	Diffusivity        float64
	CriticalSlopeAngle float64

	// CriticalDrainage is the catchment area (m²) past which a cell counts
	// as a channel. RunoffCoefficient converts precipitation over the
	// catchment into channel discharge.
	CriticalDrainage  float64
	RunoffCoefficient float64

	// Climate. Precipitation in m/yr, Temperature in °C at datum; the
	// reference precipitation normalizes the climate multiplier.
	Precipitation          float64
	ReferencePrecipitation float64
	Temperature            float64

	WeatheringRate float64

	UpliftRate float64
	Uplift     UpliftPattern
	Faults     []Fault

	GrainClasses    []GrainClass
	EntrainmentRate float64
	SettlingRate    float64
	AbrasionRate    float64

	MeanderThreshold float64
	MeanderStrength  float64

	KnickpointSlope float64
	KnickpointRate  float64

	EnableChemicalWeathering bool
	EnableMassWasting        bool
	EnableMeandering         bool
	EnableKnickpoints        bool
	// EnableGlacial is accepted but the glacial pass is not implemented.
	EnableGlacial bool
}

// DefaultAdvancedConfig returns the standard geomorphology tuning for a
// grid covering a few kilometres.
func DefaultAdvancedConfig() AdvancedConfig {
	return AdvancedConfig{
		TotalTime:                10000,
		TimeStep:                 100,
		IncisionConstant:         2e-6,
		AreaExponent:             0.5,
		SlopeExponent:            1.0,
		Diffusivity:              0.01,
		CriticalSlopeAngle:       30,
		CriticalDrainage:         1e5,
		RunoffCoefficient:        0.3,
		Precipitation:            1.0,
		ReferencePrecipitation:   1.0,
		Temperature:              15,
		WeatheringRate:           1e-4,
		UpliftRate:               1e-3,
		Uplift:                   UpliftUniform,
		GrainClasses:             []GrainClass{{"silt", 0.03}, {"sand", 0.5}, {"gravel", 10}},
		EntrainmentRate:          1e-3,
		SettlingRate:             0.3,
		AbrasionRate:             0.01,
		MeanderThreshold:         500,
		MeanderStrength:          1e-9,
		KnickpointSlope:          0.2,
		KnickpointRate:           1e-4,
		EnableChemicalWeathering: true,
		EnableMassWasting:        true,
		EnableMeandering:         true,
		EnableKnickpoints:        true,
	}
}

// Validate reports the first malformed field, if any.
func (c AdvancedConfig) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("erosion: time step must be positive, got %g", c.TimeStep)
	}
	if c.TotalTime < c.TimeStep {
		return fmt.Errorf("erosion: total time %g shorter than time step %g", c.TotalTime, c.TimeStep)
	}
	if len(c.GrainClasses) == 0 {
		return fmt.Errorf("erosion: at least one grain class is required")
	}
	for _, gc := range c.GrainClasses {
		if gc.Size <= 0 {
			return fmt.Errorf("erosion: grain class %q has non-positive size %g", gc.Name, gc.Size)
		}
	}
	switch c.Uplift {
	case UpliftUniform, UpliftDome, UpliftRidge, UpliftRandom, "":
	default:
		return fmt.Errorf("erosion: unknown uplift pattern %q", c.Uplift)
	}
	if c.ReferencePrecipitation <= 0 {
		return fmt.Errorf("erosion: reference precipitation must be positive, got %g", c.ReferencePrecipitation)
	}
	return nil
}

package config

import "math"

// Control ranges exposed to callers. Out-of-range values are clamped.
const (
	MinSpeed         = 0.1
	MaxSpeed         = 10.0
	MinFoodAbundance = 0.0
	MaxFoodAbundance = 3.0
	MinMutationRate  = 0.0
	MaxMutationRate  = 0.3
)

// Controls holds the knobs a user can change while the simulation runs.
// Unlike Config these take effect immediately and survive a reset.
type Controls struct {
	Speed         float64
	Temperature   float64
	FoodAbundance float64
	MutationRate  float64
	RandomZones   bool

	minTemp, maxTemp float64
}

// NewControls seeds controls from the configuration defaults.
func NewControls(cfg *Config) *Controls {
	c := &Controls{
		minTemp: cfg.Temperature.Min,
		maxTemp: cfg.Temperature.Max,
	}
	c.SetSpeed(1)
	c.SetTemperature(cfg.Temperature.Global)
	c.SetFoodAbundance(1)
	c.SetMutationRate(cfg.Genetics.MutationRate)
	c.RandomZones = cfg.Temperature.RandomZones
	return c
}

// SetSpeed sets the simulation speed multiplier.
func (c *Controls) SetSpeed(v float64) {
	c.Speed = clamp(v, MinSpeed, MaxSpeed)
}

// SetTemperature sets the global temperature.
func (c *Controls) SetTemperature(v float64) {
	c.Temperature = clamp(v, c.minTemp, c.maxTemp)
}

// SetFoodAbundance sets the food spawn multiplier.
func (c *Controls) SetFoodAbundance(v float64) {
	c.FoodAbundance = clamp(v, MinFoodAbundance, MaxFoodAbundance)
}

// SetMutationRate sets the per-trait mutation amplitude.
func (c *Controls) SetMutationRate(v float64) {
	c.MutationRate = clamp(v, MinMutationRate, MaxMutationRate)
}

// clamp clamps x to [lo, hi]. NaN clamps to lo.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

package main

import (
	"github.com/pthm-cable/critters/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy budget
			{Name: "base_drain", Path: "phenotype.base_drain", Min: 0.3, Max: 2.0, Default: 0.9,
				get: func(c *config.Config) float64 { return c.Phenotype.BaseDrain },
				set: func(c *config.Config, v float64) { c.Phenotype.BaseDrain = v }},
			{Name: "move_cost", Path: "energy.move_cost", Min: 0.5, Max: 3.0, Default: 1.4,
				get: func(c *config.Config) float64 { return c.Energy.MoveCost },
				set: func(c *config.Config, v float64) { c.Energy.MoveCost = v }},
			// Reproduction
			{Name: "base_cooldown", Path: "reproduction.base_cooldown", Min: 3, Max: 20, Default: 8,
				get: func(c *config.Config) float64 { return c.Reproduction.BaseCooldown },
				set: func(c *config.Config, v float64) { c.Reproduction.BaseCooldown = v }},
			{Name: "birth_efficiency", Path: "reproduction.birth_efficiency", Min: 0.5, Max: 0.95, Default: 0.8,
				get: func(c *config.Config) float64 { return c.Reproduction.BirthEfficiency },
				set: func(c *config.Config, v float64) { c.Reproduction.BirthEfficiency = v }},
			// Feeding
			{Name: "bite_rate", Path: "feeding.bite_rate", Min: 10, Max: 50, Default: 25,
				get: func(c *config.Config) float64 { return c.Feeding.BiteRate },
				set: func(c *config.Config, v float64) { c.Feeding.BiteRate = v }},
			{Name: "scavenge_rate", Path: "feeding.scavenge_rate", Min: 10, Max: 60, Default: 30,
				get: func(c *config.Config) float64 { return c.Feeding.ScavengeRate },
				set: func(c *config.Config, v float64) { c.Feeding.ScavengeRate = v }},
			// Combat
			{Name: "carnivore_extraction", Path: "combat.carnivore_extraction", Min: 0.4, Max: 0.95, Default: 0.7,
				get: func(c *config.Config) float64 { return c.Combat.CarnivoreExtraction },
				set: func(c *config.Config, v float64) { c.Combat.CarnivoreExtraction = v }},
			{Name: "counter_base", Path: "combat.counter_base", Min: 0, Max: 10, Default: 4,
				get: func(c *config.Config) float64 { return c.Combat.CounterBase },
				set: func(c *config.Config, v float64) { c.Combat.CounterBase = v }},
			{Name: "herd_protection", Path: "combat.herd_protection", Min: 0, Max: 0.25, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Combat.HerdProtection },
				set: func(c *config.Config, v float64) { c.Combat.HerdProtection = v }},
			// Environment
			{Name: "food_spawn_rate", Path: "food.spawn_rate", Min: 1, Max: 8, Default: 3,
				get: func(c *config.Config) float64 { return c.Food.SpawnRate },
				set: func(c *config.Config, v float64) { c.Food.SpawnRate = v }},
			{Name: "corpse_energy_fraction", Path: "corpse.energy_fraction", Min: 0.2, Max: 0.9, Default: 0.6,
				get: func(c *config.Config) float64 { return c.Corpse.EnergyFraction },
				set: func(c *config.Config, v float64) { c.Corpse.EnergyFraction = v }},
			// Genetics
			{Name: "mutation_rate", Path: "genetics.mutation_rate", Min: 0.01, Max: 0.3, Default: 0.05,
				get: func(c *config.Config) float64 { return c.Genetics.MutationRate },
				set: func(c *config.Config, v float64) { c.Genetics.MutationRate = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}

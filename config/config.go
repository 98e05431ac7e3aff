// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// A loaded Config is treated as immutable for the lifetime of a run.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Population   PopulationConfig   `yaml:"population"`
	Genetics     GeneticsConfig     `yaml:"genetics"`
	Phenotype    PhenotypeConfig    `yaml:"phenotype"`
	Energy       EnergyConfig       `yaml:"energy"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Behavior     BehaviorConfig     `yaml:"behavior"`
	Combat       CombatConfig       `yaml:"combat"`
	Feeding      FeedingConfig      `yaml:"feeding"`
	Food         FoodConfig         `yaml:"food"`
	Corpse       CorpseConfig       `yaml:"corpse"`
	Temperature  TemperatureConfig  `yaml:"temperature"`
	Migration    MigrationConfig    `yaml:"migration"`
	Emigration   EmigrationConfig   `yaml:"emigration"`
	Species      SpeciesConfig      `yaml:"species"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions in world units (pixels).
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds timing and spatial indexing parameters.
type PhysicsConfig struct {
	MaxTickDelta float64 `yaml:"max_tick_delta"` // Wall-clock cap per tick (seconds)
	MaxSubstep   float64 `yaml:"max_substep"`    // Longest sim-time step after speed scaling
	GridCellSize float64 `yaml:"grid_cell_size"`
	TickRate     float64 `yaml:"tick_rate"` // Ticks per wall-clock second in realtime mode
}

// PopulationConfig holds founder and cap parameters.
type PopulationConfig struct {
	Initial        int     `yaml:"initial"`
	Max            int     `yaml:"max"`
	FounderJitter  float64 `yaml:"founder_jitter"`   // Per-trait jitter around the founder template
	FounderMaxDiet float64 `yaml:"founder_max_diet"` // Founders are clamped to at most this diet preference
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// GeneticsConfig holds mutation parameters and per-trait generation ranges.
type GeneticsConfig struct {
	MutationRate          float64          `yaml:"mutation_rate"`
	LargeMutationChance   float64          `yaml:"large_mutation_chance"`
	LargeMutationAmount   float64          `yaml:"large_mutation_amount"`
	StressBoost           float64          `yaml:"stress_boost"`            // Extra rate multiplier on diet-linked traits at stress=1
	MetabolismStressBoost float64          `yaml:"metabolism_stress_boost"` // Extra rate multiplier on metabolism at stress=1
	TraitRanges           map[string]Range `yaml:"trait_ranges"`            // Keyed by trait name; missing = [0,1]
}

// PhenotypeConfig holds the constants of the derived-phenotype model.
type PhenotypeConfig struct {
	MinSize         float64 `yaml:"min_size"` // Radius in pixels at size=0
	MaxSize         float64 `yaml:"max_size"` // Radius in pixels at size=1
	BaseSpeed       float64 `yaml:"base_speed"`
	SpeedRange      float64 `yaml:"speed_range"`
	MinVision       float64 `yaml:"min_vision"`
	MaxVision       float64 `yaml:"max_vision"`
	BaseMaxEnergy   float64 `yaml:"base_max_energy"`
	SizeEnergyBonus float64 `yaml:"size_energy_bonus"`
	BaseDrain       float64 `yaml:"base_drain"` // Energy per second before multipliers
	LifespanMin     float64 `yaml:"lifespan_min"`
	LifespanMax     float64 `yaml:"lifespan_max"`
	BaseAttack      float64 `yaml:"base_attack"`
}

// EnergyConfig holds per-tick energy and hunger-stress parameters.
type EnergyConfig struct {
	MoveCost    float64 `yaml:"move_cost"`    // Energy per second at full speed
	StressGain  float64 `yaml:"stress_gain"`  // Hunger stress gained per second at zero energy
	StressDecay float64 `yaml:"stress_decay"` // Hunger stress lost per second when well fed
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	MaturityAge             float64 `yaml:"maturity_age"`
	BaseCooldown            float64 `yaml:"base_cooldown"`
	AsexualCost             float64 `yaml:"asexual_cost"`              // Fraction of parent energy
	SexualBaseCost          float64 `yaml:"sexual_base_cost"`          // Fraction of each parent's energy
	SexualCostPerOffspring  float64 `yaml:"sexual_cost_per_offspring"` // Added per offspring
	MaxOffspring            int     `yaml:"max_offspring"`
	BirthEfficiency         float64 `yaml:"birth_efficiency"` // Fraction of paid energy reaching offspring
	SpawnOffset             float64 `yaml:"spawn_offset"`
	StressMutationThreshold float64 `yaml:"stress_mutation_threshold"`
	AsexualSizeLimit        float64 `yaml:"asexual_size_limit"`
	ReadinessSeek           float64 `yaml:"readiness_seek"`        // Proactive mate seeking starts here
	PartnerMinReadiness     float64 `yaml:"partner_min_readiness"` // Courted partners must be this ready
}

// BehaviorConfig holds decision thresholds and steering parameters.
type BehaviorConfig struct {
	ThreatRange                   float64 `yaml:"threat_range"` // Fraction of vision range
	CamouflageHide                float64 `yaml:"camouflage_hide"`
	FreezeDamping                 float64 `yaml:"freeze_damping"`
	HerbivoreHunger               float64 `yaml:"herbivore_hunger"`
	OmnivoreHunger                float64 `yaml:"omnivore_hunger"`
	CarnivoreHunger               float64 `yaml:"carnivore_hunger"`
	OmnivoreCorpseProximity       float64 `yaml:"omnivore_corpse_proximity"` // Corpse wins if closer than this fraction of plant distance
	OmnivoreVulnerabilityCriteria int     `yaml:"omnivore_vulnerability_criteria"`
	CrowdingRadius                float64 `yaml:"crowding_radius"`
	CrowdingPenalty               float64 `yaml:"crowding_penalty"`
	FallbackAsexualRate           float64 `yaml:"fallback_asexual_rate"` // Per second while waiting for a mate
	SocialThreshold               float64 `yaml:"social_threshold"`
	SocialDietBand                float64 `yaml:"social_diet_band"`
	Acceleration                  float64 `yaml:"acceleration"` // Fraction of max speed gained per second
	WanderTurnChance              float64 `yaml:"wander_turn_chance"`
	WanderDamping                 float64 `yaml:"wander_damping"`
}

// CombatConfig holds predation parameters.
type CombatConfig struct {
	MinAggression         float64 `yaml:"min_aggression"`
	AttackInterval        float64 `yaml:"attack_interval"`
	ContactMargin         float64 `yaml:"contact_margin"`
	MinPreySize           float64 `yaml:"min_prey_size"`        // Prey/predator size ratio below which prey is not worth it
	HungryMinPreySize     float64 `yaml:"hungry_min_prey_size"` // Relaxed ratio when hungry
	PackRadius            float64 `yaml:"pack_radius"`
	MaxPackAllies         int     `yaml:"max_pack_allies"`
	PackBonus             float64 `yaml:"pack_bonus"`
	HerdRadius            float64 `yaml:"herd_radius"`
	HerdProtection        float64 `yaml:"herd_protection"`
	MaxHerdProtection     float64 `yaml:"max_herd_protection"`
	PackHerdReduction     float64 `yaml:"pack_herd_reduction"` // Herd protection multiplier when a pack is present
	ClumsySize            float64 `yaml:"clumsy_size"`
	OmnivoreDamagePenalty float64 `yaml:"omnivore_damage_penalty"`
	CarnivoreExtraction   float64 `yaml:"carnivore_extraction"`
	OmnivoreExtraction    float64 `yaml:"omnivore_extraction"`
	WoundFeedFraction     float64 `yaml:"wound_feed_fraction"`
	CounterBase           float64 `yaml:"counter_base"`
}

// FeedingConfig holds plant and corpse feeding parameters.
type FeedingConfig struct {
	BiteRate                    float64 `yaml:"bite_rate"` // Energy per second
	HerbivoreSizeBonus          float64 `yaml:"herbivore_size_bonus"`
	OmnivorePlantPenalty        float64 `yaml:"omnivore_plant_penalty"`
	CompetitionRadius           float64 `yaml:"competition_radius"`
	CompetitionDiscount         float64 `yaml:"competition_discount"`
	ScavengeRate                float64 `yaml:"scavenge_rate"`
	CarnivoreScavengeExtraction float64 `yaml:"carnivore_scavenge_extraction"`
	OmnivoreScavengeExtraction  float64 `yaml:"omnivore_scavenge_extraction"`
}

// FoodTierConfig describes one food size tier.
type FoodTierConfig struct {
	Weight     float64 `yaml:"weight"`
	Energy     float64 `yaml:"energy"`
	Size       float64 `yaml:"size"`
	BiteFactor float64 `yaml:"bite_factor"`
}

// FoodConfig holds food spawning parameters.
type FoodConfig struct {
	Initial       int            `yaml:"initial"`
	Max           int            `yaml:"max"`
	SpawnRate     float64        `yaml:"spawn_rate"` // Items per second at abundance 1
	ClusterChance float64        `yaml:"cluster_chance"`
	ClusterMin    int            `yaml:"cluster_min"`
	ClusterMax    int            `yaml:"cluster_max"`
	ClusterRadius float64        `yaml:"cluster_radius"`
	Small         FoodTierConfig `yaml:"small"`
	Medium        FoodTierConfig `yaml:"medium"`
	Large         FoodTierConfig `yaml:"large"`
}

// CorpseConfig holds carrion parameters.
type CorpseConfig struct {
	EnergyFraction float64 `yaml:"energy_fraction"`
	MinEnergy      float64 `yaml:"min_energy"`
	DecayTime      float64 `yaml:"decay_time"`
	Max            int     `yaml:"max"`
}

// TemperatureConfig holds environmental temperature parameters.
type TemperatureConfig struct {
	Global              float64 `yaml:"global"`
	Min                 float64 `yaml:"min"`
	Max                 float64 `yaml:"max"`
	HotThreshold        float64 `yaml:"hot_threshold"`
	ColdThreshold       float64 `yaml:"cold_threshold"`
	DamageRate          float64 `yaml:"damage_rate"` // Energy per degree per second
	ManualZoneDelta     float64 `yaml:"manual_zone_delta"`
	RandomZones         bool    `yaml:"random_zones"`
	RandomZoneInterval  float64 `yaml:"random_zone_interval"`
	RandomZoneChance    float64 `yaml:"random_zone_chance"`
	RandomZoneLifetime  float64 `yaml:"random_zone_lifetime"`
	RandomZoneMinRadius float64 `yaml:"random_zone_min_radius"`
	RandomZoneMaxRadius float64 `yaml:"random_zone_max_radius"`
	RandomZoneMaxDelta  float64 `yaml:"random_zone_max_delta"`
	MaxRandomZones      int     `yaml:"max_random_zones"`
}

// MigrationConfig holds immigration parameters.
type MigrationConfig struct {
	Interval            float64 `yaml:"interval"`
	LowPopulation       int     `yaml:"low_population"`
	FoodRatio           float64 `yaml:"food_ratio"` // Food per creature required for a migration wave
	MinWave             int     `yaml:"min_wave"`
	MaxWave             int     `yaml:"max_wave"`
	RescueInterval      float64 `yaml:"rescue_interval"`
	RescueMinHerbivores int     `yaml:"rescue_min_herbivores"`
	RescueFraction      float64 `yaml:"rescue_fraction"`
	RescueFoodRatio     float64 `yaml:"rescue_food_ratio"` // Food per herbivore required for rescue
	RescueWave          int     `yaml:"rescue_wave"`
	InitialEnergy       float64 `yaml:"initial_energy"` // Fraction of max energy
}

// EmigrationConfig holds edge-departure parameters.
type EmigrationConfig struct {
	EdgeMargin     float64 `yaml:"edge_margin"`
	FleeingRate    float64 `yaml:"fleeing_rate"`  // Departure probability per second
	StarvingRate   float64 `yaml:"starving_rate"` // Departure probability per second
	CrowdedRate    float64 `yaml:"crowded_rate"`  // Departure probability per second
	StarvingEnergy float64 `yaml:"starving_energy"`
	LowEnergy      float64 `yaml:"low_energy"`
	CrowdRadius    float64 `yaml:"crowd_radius"`
	CrowdCount     int     `yaml:"crowd_count"`
}

// SpeciesConfig holds species clustering parameters.
type SpeciesConfig struct {
	Threshold float64 `yaml:"threshold"` // RMS genetic distance
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FoodTierWeightSum float64 // Sum of tier weights for weighted sampling
	Diagonal          float64 // World diagonal length
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the embedded defaults.
func Default() *Config {
	return MustLoad("")
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.World.Width <= 0 {
		c.World.Width = 1600
	}
	if c.World.Height <= 0 {
		c.World.Height = 1000
	}
	if c.Physics.GridCellSize <= 0 {
		c.Physics.GridCellSize = 60
	}
	if c.Physics.TickRate <= 0 {
		c.Physics.TickRate = 60
	}
	if c.Physics.MaxSubstep <= 0 {
		c.Physics.MaxSubstep = c.Physics.MaxTickDelta
	}

	for name, r := range c.Genetics.TraitRanges {
		r.Min = clamp(r.Min, 0, 1)
		r.Max = clamp(r.Max, r.Min, 1)
		c.Genetics.TraitRanges[name] = r
	}

	if c.Food.ClusterMax < c.Food.ClusterMin {
		c.Food.ClusterMax = c.Food.ClusterMin
	}
	if c.Migration.MaxWave < c.Migration.MinWave {
		c.Migration.MaxWave = c.Migration.MinWave
	}

	c.Derived.FoodTierWeightSum = c.Food.Small.Weight + c.Food.Medium.Weight + c.Food.Large.Weight
	c.Derived.Diagonal = math.Hypot(c.World.Width, c.World.Height)
}

// TraitRange returns the generation range for a trait name, defaulting to [0,1].
func (c *Config) TraitRange(name string) Range {
	if r, ok := c.Genetics.TraitRanges[name]; ok {
		return r
	}
	return Range{Min: 0, Max: 1}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Genetics.TraitRanges = make(map[string]Range, len(c.Genetics.TraitRanges))
	for k, v := range c.Genetics.TraitRanges {
		out.Genetics.TraitRanges[k] = v
	}
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

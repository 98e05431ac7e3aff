package telemetry

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

// EnergySource classifies where a creature's energy came from.
type EnergySource uint8

const (
	SourcePlants EnergySource = iota
	SourceCarrion
	SourcePrey
	numSources
)

// Sample is the population state at window end.
type Sample struct {
	Population    int
	Herbivores    int
	Omnivores     int
	Carnivores    int
	FoodCount     int
	CorpseCount   int
	Energies      []float64 // energy fractions of living creatures
	Diets         []float64
	ActiveSpecies int
	MaxGeneration int
	Temperature   float64
}

// Collector accumulates events within time windows and produces WindowStats.
// It satisfies the world's event recorder.
type Collector struct {
	windowSec float64

	windowStartTick int64
	windowStartTime float64

	births     [3]int // indexed by traits.DietType
	deaths     [3]int
	causes     [components.NumCauses]int
	kills      int
	emigrants  int
	immigrants int
	energy     [numSources]float64
}

// windowSlack absorbs float drift when sim time is a sum of sub-steps.
const windowSlack = 1e-9

// NewCollector creates a collector flushing every windowSec of sim time.
// Windows track simulated seconds, so the speed multiplier changes how many
// ticks a window spans but not how long it is.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// RecordBirth records a birth by reproduction.
func (c *Collector) RecordBirth(diet traits.DietType) {
	c.births[diet]++
}

// RecordDeath records a death. Emigration is not a death.
func (c *Collector) RecordDeath(diet traits.DietType, cause components.DeathCause) {
	c.deaths[diet]++
	c.causes[cause]++
}

// RecordEmigration records a creature leaving the world.
func (c *Collector) RecordEmigration(traits.DietType) {
	c.emigrants++
}

// RecordImmigration records n migrants arriving.
func (c *Collector) RecordImmigration(n int) {
	c.immigrants += n
}

// RecordKill records a successful predation.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordEnergy records energy gained from a food source.
func (c *Collector) RecordEnergy(source EnergySource, amount float64) {
	if source < numSources && amount > 0 {
		c.energy[source] += amount
	}
}

// ShouldFlush returns true once a full window of sim time has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowSec-windowSlack
}

// WindowSec returns the window length in sim-seconds.
func (c *Collector) WindowSec() float64 {
	return c.windowSec
}

// Flush produces the WindowStats for the ending window and resets counters.
func (c *Collector) Flush(currentTick int64, simTime float64, s Sample) WindowStats {
	eMean, eP10, eP50, eP90 := ComputeEnergyStats(s.Energies)
	dMean, dStd, dP10, dP50, dP90 := ComputeDietStats(s.Diets)

	out := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,

		Population:  s.Population,
		Herbivores:  s.Herbivores,
		Omnivores:   s.Omnivores,
		Carnivores:  s.Carnivores,
		FoodCount:   s.FoodCount,
		CorpseCount: s.CorpseCount,

		HerbivoreBirths: c.births[traits.Herbivore],
		OmnivoreBirths:  c.births[traits.Omnivore],
		CarnivoreBirths: c.births[traits.Carnivore],
		HerbivoreDeaths: c.deaths[traits.Herbivore],
		OmnivoreDeaths:  c.deaths[traits.Omnivore],
		CarnivoreDeaths: c.deaths[traits.Carnivore],
		Kills:           c.kills,
		Emigrants:       c.emigrants,
		Immigrants:      c.immigrants,

		StarvationDeaths:  c.causes[components.CauseStarvation],
		OldAgeDeaths:      c.causes[components.CauseOldAge],
		PredationDeaths:   c.causes[components.CausePredation],
		CombatDeaths:      c.causes[components.CauseCombat],
		TemperatureDeaths: c.causes[components.CauseTemperature],

		PlantEnergy:   c.energy[SourcePlants],
		CarrionEnergy: c.energy[SourceCarrion],
		PreyEnergy:    c.energy[SourcePrey],

		EnergyMean: eMean,
		EnergyP10:  eP10,
		EnergyP50:  eP50,
		EnergyP90:  eP90,

		DietMean: dMean,
		DietStd:  dStd,
		DietP10:  dP10,
		DietP50:  dP50,
		DietP90:  dP90,

		ActiveSpecies: s.ActiveSpecies,
		MaxGeneration: s.MaxGeneration,
		Temperature:   s.Temperature,
	}

	c.windowStartTick = currentTick
	c.windowStartTime = simTime
	c.births = [3]int{}
	c.deaths = [3]int{}
	c.causes = [components.NumCauses]int{}
	c.kills = 0
	c.emigrants = 0
	c.immigrants = 0
	c.energy = [numSources]float64{}

	return out
}

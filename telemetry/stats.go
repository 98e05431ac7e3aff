// Package telemetry provides ecosystem statistics, windowed event collection,
// bookmarks, tick timing, and CSV experiment output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

// SpeciesStats is a read-only view of one species.
type SpeciesStats struct {
	ID            int        `csv:"species_id"`
	Name          string     `csv:"name"`
	Population    int        `csv:"population"`
	TotalBirths   int        `csv:"births"`
	TotalDeaths   int        `csv:"deaths"`
	Emigrations   int        `csv:"emigrations"`
	MaxGeneration int        `csv:"max_generation"`
	CreatedAt     float64    `csv:"created_at"`
	Diet          float64    `csv:"diet"`
	Color         traits.RGB `csv:"-"`
}

// Stats is an on-demand snapshot of the world. It is never cached.
type Stats struct {
	Time          float64
	Population    int
	FoodCount     int
	CorpseCount   int
	TotalBirths   int
	TotalDeaths   int // emigrants excluded
	Emigrations   int
	Immigrants    int
	MaxGeneration int

	Herbivores int
	Omnivores  int
	Carnivores int

	TraitMeans   [traits.Count]float64
	TraitStdDevs [traits.Count]float64

	DeathsByCause [components.NumCauses]int

	Species       []SpeciesStats // living species, largest first
	ActiveSpecies int
	TotalSpecies  int
}

// TraitMean returns the population mean of one trait.
func (s Stats) TraitMean(i traits.Index) float64 {
	return s.TraitMeans[i]
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("time", s.Time),
		slog.Int("population", s.Population),
		slog.Int("food", s.FoodCount),
		slog.Int("corpses", s.CorpseCount),
		slog.Int("births", s.TotalBirths),
		slog.Int("deaths", s.TotalDeaths),
		slog.Int("emigrations", s.Emigrations),
		slog.Int("immigrants", s.Immigrants),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("omnivores", s.Omnivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("species", s.ActiveSpecies),
	)
}

// ComputeTraitStats returns per-trait population mean and standard deviation.
func ComputeTraitStats(population []traits.Traits) (means, stds [traits.Count]float64) {
	if len(population) == 0 {
		return means, stds
	}
	col := make([]float64, len(population))
	for _, i := range traits.All() {
		for j, t := range population {
			col[j] = t.Get(i)
		}
		means[i], stds[i] = stat.PopMeanStdDev(col, nil)
	}
	return means, stds
}

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Population  int `csv:"population"`
	Herbivores  int `csv:"herbivores"`
	Omnivores   int `csv:"omnivores"`
	Carnivores  int `csv:"carnivores"`
	FoodCount   int `csv:"food"`
	CorpseCount int `csv:"corpses"`

	// Events during window
	HerbivoreBirths int `csv:"herbivore_births"`
	OmnivoreBirths  int `csv:"omnivore_births"`
	CarnivoreBirths int `csv:"carnivore_births"`
	HerbivoreDeaths int `csv:"herbivore_deaths"`
	OmnivoreDeaths  int `csv:"omnivore_deaths"`
	CarnivoreDeaths int `csv:"carnivore_deaths"`
	Kills           int `csv:"kills"`
	Emigrants       int `csv:"emigrants"`
	Immigrants      int `csv:"immigrants"`

	StarvationDeaths  int `csv:"starvation_deaths"`
	OldAgeDeaths      int `csv:"old_age_deaths"`
	PredationDeaths   int `csv:"predation_deaths"`
	CombatDeaths      int `csv:"combat_deaths"`
	TemperatureDeaths int `csv:"temperature_deaths"`

	// Energy gained by source during window
	PlantEnergy   float64 `csv:"plant_energy"`
	CarrionEnergy float64 `csv:"carrion_energy"`
	PreyEnergy    float64 `csv:"prey_energy"`

	// Energy fraction distribution at window end
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Diet distribution
	DietMean float64 `csv:"diet_mean"`
	DietStd  float64 `csv:"diet_std"`
	DietP10  float64 `csv:"diet_p10"`
	DietP50  float64 `csv:"diet_p50"`
	DietP90  float64 `csv:"diet_p90"`

	ActiveSpecies int     `csv:"active_species"`
	MaxGeneration int     `csv:"max_generation"`
	Temperature   float64 `csv:"temperature"`
}

// Births returns total births in the window.
func (s WindowStats) Births() int {
	return s.HerbivoreBirths + s.OmnivoreBirths + s.CarnivoreBirths
}

// Deaths returns total deaths in the window, emigrants excluded.
func (s WindowStats) Deaths() int {
	return s.HerbivoreDeaths + s.OmnivoreDeaths + s.CarnivoreDeaths
}

// NonHerbivores returns omnivores plus carnivores.
func (s WindowStats) NonHerbivores() int {
	return s.Omnivores + s.Carnivores
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation. p is in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// ComputeEnergyStats calculates mean and percentiles.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)
	sorted := sortedCopy(values)
	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeDietStats calculates mean, population std, and percentiles.
func ComputeDietStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	sorted := sortedCopy(values)
	return mean, std, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("omnivores", s.Omnivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("food", s.FoodCount),
		slog.Int("births", s.Births()),
		slog.Int("deaths", s.Deaths()),
		slog.Int("kills", s.Kills),
		slog.Int("emigrants", s.Emigrants),
		slog.Int("immigrants", s.Immigrants),
		slog.Float64("plant_energy", s.PlantEnergy),
		slog.Float64("carrion_energy", s.CarrionEnergy),
		slog.Float64("prey_energy", s.PreyEnergy),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("diet_mean", s.DietMean),
		slog.Float64("diet_std", s.DietStd),
		slog.Int("active_species", s.ActiveSpecies),
		slog.Int("max_generation", s.MaxGeneration),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

package world

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// FoodView is a read-only copy of one food item.
type FoodView struct {
	ID     uint64
	Pos    components.Position
	Tier   components.FoodTier
	Energy float64
	Size   float64
}

// CorpseView is a read-only copy of one corpse.
type CorpseView struct {
	ID        uint64
	Pos       components.Position
	Energy    float64
	Size      float64
	CreatedAt float64
}

// Foods returns a snapshot of all uneaten food.
func (w *World) Foods() []FoodView {
	out := make([]FoodView, 0, w.foodCount)
	query := w.foodFilter.Query()
	for query.Next() {
		pos, f := query.Get()
		if f.Consumed {
			continue
		}
		out = append(out, FoodView{ID: f.ID, Pos: *pos, Tier: f.Tier, Energy: f.Energy, Size: f.Size})
	}
	return out
}

// Corpses returns a snapshot of all corpses.
func (w *World) Corpses() []CorpseView {
	out := make([]CorpseView, 0, w.corpseCount)
	query := w.corpseFilter.Query()
	for query.Next() {
		pos, c := query.Get()
		out = append(out, CorpseView{ID: c.ID, Pos: *pos, Energy: c.Energy, Size: c.Size, CreatedAt: c.CreatedAt})
	}
	return out
}

// Stats aggregates the current state. It is computed on every call.
func (w *World) Stats() telemetry.Stats {
	s := telemetry.Stats{
		Time:          w.time,
		FoodCount:     w.foodCount,
		CorpseCount:   w.corpseCount,
		TotalBirths:   w.births,
		TotalDeaths:   w.deaths,
		Emigrations:   w.emigrations,
		Immigrants:    w.immigrants,
		MaxGeneration: w.maxGeneration,
		DeathsByCause: w.deathsByCause,
	}

	population := make([]traits.Traits, 0, w.alive)
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if !c.Alive {
			continue
		}
		population = append(population, c.Traits)
		switch c.Traits.Diet() {
		case traits.Herbivore:
			s.Herbivores++
		case traits.Omnivore:
			s.Omnivores++
		default:
			s.Carnivores++
		}
	}
	s.Population = len(population)
	s.TraitMeans, s.TraitStdDevs = telemetry.ComputeTraitStats(population)

	active := w.registry.Active()
	s.Species = make([]telemetry.SpeciesStats, len(active))
	for i, sp := range active {
		s.Species[i] = telemetry.SpeciesStats{
			ID:            sp.ID,
			Name:          sp.Name,
			Population:    sp.Population,
			TotalBirths:   sp.TotalBirths,
			TotalDeaths:   sp.TotalDeaths,
			Emigrations:   sp.Emigrations,
			MaxGeneration: sp.MaxGeneration,
			CreatedAt:     sp.CreatedAt,
			Diet:          sp.Prototype.DietPreference,
			Color:         sp.Color,
		}
	}
	s.ActiveSpecies = len(active)
	s.TotalSpecies = len(w.registry.All())
	return s
}

// Sample captures the population state for a telemetry window.
func (w *World) Sample() telemetry.Sample {
	s := telemetry.Sample{
		FoodCount:     w.foodCount,
		CorpseCount:   w.corpseCount,
		Energies:      make([]float64, 0, w.alive),
		Diets:         make([]float64, 0, w.alive),
		ActiveSpecies: w.registry.ActiveCount(),
		MaxGeneration: w.maxGeneration,
		Temperature:   w.controls.Temperature,
	}
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if !c.Alive {
			continue
		}
		s.Population++
		switch c.Traits.Diet() {
		case traits.Herbivore:
			s.Herbivores++
		case traits.Omnivore:
			s.Omnivores++
		default:
			s.Carnivores++
		}
		s.Energies = append(s.Energies, c.EnergyFraction())
		s.Diets = append(s.Diets, c.Traits.DietPreference)
	}
	return s
}

package world

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/organism"
	"github.com/pthm-cable/critters/traits"
)

// SpawnFood grows food at the configured rate scaled by food abundance,
// either as single items or small clusters, up to the food cap.
func (w *World) SpawnFood(dt float64) {
	f := &w.cfg.Food
	if w.foodCount >= f.Max {
		w.foodAccum = 0
		return
	}
	w.foodAccum += f.SpawnRate * w.controls.FoodAbundance * dt

	for w.foodAccum >= 1 && w.foodCount < f.Max {
		w.foodAccum--
		x := w.rng.Float64() * w.cfg.World.Width
		y := w.rng.Float64() * w.cfg.World.Height
		if w.rng.Float64() >= f.ClusterChance {
			w.spawnFoodAt(x, y)
			continue
		}
		n := f.ClusterMin + w.rng.Intn(f.ClusterMax-f.ClusterMin+1)
		for i := 0; i < n && w.foodCount < f.Max; i++ {
			angle := w.rng.Float64() * 2 * math.Pi
			r := w.rng.Float64() * f.ClusterRadius
			w.spawnFoodAt(x+math.Cos(angle)*r, y+math.Sin(angle)*r)
		}
	}
}

// spawnFoodAt creates one food entity of a weighted random tier.
func (w *World) spawnFoodAt(x, y float64) {
	tier, tc := w.pickFoodTier()
	pos := components.Position{
		X: clamp(x, 0, w.cfg.World.Width),
		Y: clamp(y, 0, w.cfg.World.Height),
	}
	food := components.Food{
		ID:         w.ids.Next(),
		Tier:       tier,
		Energy:     tc.Energy,
		MaxEnergy:  tc.Energy,
		Size:       tc.Size,
		BiteFactor: tc.BiteFactor,
	}
	w.foodMapper.NewEntity(&pos, &food)
	w.foodCount++
}

func (w *World) pickFoodTier() (components.FoodTier, config.FoodTierConfig) {
	f := &w.cfg.Food
	r := w.rng.Float64() * w.cfg.Derived.FoodTierWeightSum
	switch {
	case r < f.Small.Weight:
		return components.FoodSmall, f.Small
	case r < f.Small.Weight+f.Medium.Weight:
		return components.FoodMedium, f.Medium
	default:
		return components.FoodLarge, f.Large
	}
}

// spawnCorpse leaves the remains of a dead creature.
func (w *World) spawnCorpse(c *organism.Creature) {
	pos := c.Pos
	corpse := components.Corpse{
		ID:        w.ids.Next(),
		Energy:    c.Energy * w.cfg.Corpse.EnergyFraction,
		Size:      c.Radius(),
		CreatedAt: w.time,
	}
	w.corpseMapper.NewEntity(&pos, &corpse)
	w.corpseCount++
}

// SpawnMigrants periodically lets a small herbivore wave arrive when the
// population is low and food is plentiful.
func (w *World) SpawnMigrants(dt float64) {
	m := &w.cfg.Migration
	w.migrationTime += dt
	if w.migrationTime < m.Interval {
		return
	}
	w.migrationTime = 0

	if w.alive >= m.LowPopulation {
		return
	}
	if float64(w.foodCount) < m.FoodRatio*float64(max(w.alive, 1)) {
		return
	}
	n := m.MinWave + w.rng.Intn(m.MaxWave-m.MinWave+1)
	added := w.spawnHerbivoresAtEdge(n)
	if added > 0 {
		slog.Info("migration_wave", "migrants", added, "population", w.alive, "food", w.foodCount)
	}
}

// SpawnRescueMigrants protects the herbivore foundation: when herbivores
// fall below max(RescueMinHerbivores, RescueFraction of the population) and
// there is food for them, a wave of herbivores arrives. Only herbivores are
// ever rescued.
func (w *World) SpawnRescueMigrants(dt float64) {
	m := &w.cfg.Migration
	w.rescueTime += dt
	if w.rescueTime < m.RescueInterval {
		return
	}
	w.rescueTime = 0

	herbivores := w.countHerbivores()
	threshold := math.Max(float64(m.RescueMinHerbivores), m.RescueFraction*float64(w.alive))
	if float64(herbivores) >= threshold {
		return
	}
	if float64(w.foodCount) < m.RescueFoodRatio*float64(max(herbivores, 1)) {
		return
	}
	added := w.spawnHerbivoresAtEdge(m.RescueWave)
	if added > 0 {
		slog.Info("rescue_migration",
			"herbivores", herbivores,
			"migrants", added,
			"population", w.alive,
		)
	}
}

func (w *World) countHerbivores() int {
	n := 0
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if c.Alive && c.Traits.IsHerbivore() {
			n++
		}
	}
	return n
}

// spawnHerbivoresAtEdge adds up to n herbivore immigrants along random
// world edges and returns how many arrived.
func (w *World) spawnHerbivoresAtEdge(n int) int {
	added := 0
	for i := 0; i < n && w.CanAddCreatures(); i++ {
		t := traits.RandomHerbivore(w.rng, w.cfg)
		x, y := w.edgePoint()
		energy := traits.MaxEnergy(t, &w.cfg.Phenotype) * w.cfg.Migration.InitialEnergy
		w.AddCreature(organism.New(w.ids.Next(), t, x, y, 0, energy, w.time, w.cfg, w.rng))
		added++
	}
	if added > 0 {
		w.immigrants += added
		w.recorder.RecordImmigration(added)
	}
	return added
}

// edgePoint returns a random point just inside one of the four edges.
func (w *World) edgePoint() (float64, float64) {
	width, height := w.cfg.World.Width, w.cfg.World.Height
	inset := w.cfg.Phenotype.MaxSize
	switch w.rng.Intn(4) {
	case 0:
		return w.rng.Float64() * width, inset
	case 1:
		return w.rng.Float64() * width, height - inset
	case 2:
		return inset, w.rng.Float64() * height
	default:
		return width - inset, w.rng.Float64() * height
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

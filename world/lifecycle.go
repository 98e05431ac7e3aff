package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/organism"
)

// ProcessEmigration lets creatures near an edge leave the world when they
// are fleeing, starving, or low on energy in a crowd. Each condition has a
// per-second departure probability.
func (w *World) ProcessEmigration(dt float64) {
	e := &w.cfg.Emigration
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if !c.Alive || !w.nearEdge(c) {
			continue
		}
		var rate float64
		frac := c.EnergyFraction()
		switch {
		case c.State == components.StateFleeing:
			rate = e.FleeingRate
		case frac < e.StarvingEnergy:
			rate = e.StarvingRate
		case frac < e.LowEnergy && w.crowded(c):
			rate = e.CrowdedRate
		default:
			continue
		}
		if w.rng.Float64() < rate*dt {
			c.Emigrate()
		}
	}
}

func (w *World) nearEdge(c *organism.Creature) bool {
	m := w.cfg.Emigration.EdgeMargin
	return c.Pos.X < m || c.Pos.Y < m ||
		c.Pos.X > w.cfg.World.Width-m || c.Pos.Y > w.cfg.World.Height-m
}

func (w *World) crowded(c *organism.Creature) bool {
	e := &w.cfg.Emigration
	n := 0
	w.creatureBuf = w.NearbyCreatures(w.creatureBuf[:0], c.Pos.X, c.Pos.Y, e.CrowdRadius)
	for _, other := range w.creatureBuf {
		if other != c {
			n++
		}
	}
	return n >= e.CrowdCount
}

// UpdateSpatialHashes rebuilds the creature, food and corpse grids from
// scratch.
func (w *World) UpdateSpatialHashes() {
	w.creatureGrid.Clear()
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if c.Alive {
			w.creatureGrid.Insert(c, c.Pos.X, c.Pos.Y)
		}
	}

	w.foodGrid.Clear()
	query := w.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		if !food.Consumed {
			w.foodGrid.Insert(query.Entity(), pos.X, pos.Y)
		}
	}

	w.corpseGrid.Clear()
	cq := w.corpseFilter.Query()
	for cq.Next() {
		pos, corpse := cq.Get()
		if !corpse.Expired(w.time, w.cfg.Corpse.DecayTime) {
			w.corpseGrid.Insert(cq.Entity(), pos.X, pos.Y)
		}
	}
}

// Cleanup turns the newly dead into corpses, then removes dead creatures,
// eaten food, and decayed corpses. Entities are collected first and
// removed once each query has finished.
func (w *World) Cleanup() {
	w.FlushBirths()

	toRemove := w.removeBuf[:0]
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		if !organisms.Get().Alive {
			toRemove = append(toRemove, organisms.Entity())
		}
	}
	for _, e := range toRemove {
		c := w.organismMapper.Get(e).Creature
		if !c.Emigrated() && c.Energy > w.cfg.Corpse.MinEnergy && w.corpseCount < w.cfg.Corpse.Max {
			w.spawnCorpse(c)
		}
		w.ecs.RemoveEntity(e)
	}

	toRemove = toRemove[:0]
	query := w.foodFilter.Query()
	for query.Next() {
		if _, food := query.Get(); food.Consumed {
			toRemove = append(toRemove, query.Entity())
		}
	}
	for _, e := range toRemove {
		w.ecs.RemoveEntity(e)
		w.foodCount--
	}

	toRemove = toRemove[:0]
	cq := w.corpseFilter.Query()
	for cq.Next() {
		if _, corpse := cq.Get(); corpse.Expired(w.time, w.cfg.Corpse.DecayTime) {
			toRemove = append(toRemove, cq.Entity())
		}
	}
	for _, e := range toRemove {
		w.ecs.RemoveEntity(e)
		w.corpseCount--
	}
	w.removeBuf = toRemove[:0]
}

// NearbyCreatures appends living creatures within radius of (x, y) to dst.
func (w *World) NearbyCreatures(dst []*organism.Creature, x, y, radius float64) []*organism.Creature {
	start := len(dst)
	dst = w.creatureGrid.NearbyInto(dst, x, y, radius)
	out := dst[:start]
	for _, c := range dst[start:] {
		if c.Alive && math.Hypot(c.Pos.X-x, c.Pos.Y-y) <= radius {
			out = append(out, c)
		}
	}
	return out
}

// NearbyFood appends uneaten food entities within radius of (x, y) to dst.
func (w *World) NearbyFood(dst []ecs.Entity, x, y, radius float64) []ecs.Entity {
	start := len(dst)
	dst = w.foodGrid.NearbyInto(dst, x, y, radius)
	out := dst[:start]
	for _, e := range dst[start:] {
		pos, food := w.Food(e)
		if food != nil && !food.Consumed && math.Hypot(pos.X-x, pos.Y-y) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// NearbyCorpses appends unexpired corpse entities within radius of (x, y)
// to dst.
func (w *World) NearbyCorpses(dst []ecs.Entity, x, y, radius float64) []ecs.Entity {
	start := len(dst)
	dst = w.corpseGrid.NearbyInto(dst, x, y, radius)
	out := dst[:start]
	for _, e := range dst[start:] {
		pos, corpse := w.Corpse(e)
		if corpse != nil && corpse.Energy > 0 && math.Hypot(pos.X-x, pos.Y-y) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// Food returns the components of a food entity, or nils if it was removed.
func (w *World) Food(e ecs.Entity) (*components.Position, *components.Food) {
	if !w.ecs.Alive(e) {
		return nil, nil
	}
	return w.foodMapper.Get(e)
}

// Corpse returns the components of a corpse entity, or nils if it was
// removed.
func (w *World) Corpse(e ecs.Entity) (*components.Position, *components.Corpse) {
	if !w.ecs.Alive(e) {
		return nil, nil
	}
	return w.corpseMapper.Get(e)
}

package world

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/organism"
)

// TemperatureZone shifts the temperature inside a circle, falling off
// linearly from Delta at the centre to zero at Radius.
type TemperatureZone struct {
	X, Y      float64
	Radius    float64
	Delta     float64
	CreatedAt float64
	Lifetime  float64 // random zones only
	Random    bool
}

// Expired reports whether a random zone has outlived its lifetime.
// Manual zones never expire.
func (z TemperatureZone) Expired(now float64) bool {
	return z.Random && now-z.CreatedAt >= z.Lifetime
}

// influence returns the zone's contribution at (x, y).
func (z TemperatureZone) influence(x, y float64) float64 {
	if z.Radius <= 0 {
		return 0
	}
	d := math.Hypot(x-z.X, y-z.Y)
	if d >= z.Radius {
		return 0
	}
	return z.Delta * (1 - d/z.Radius)
}

// TemperatureAt returns the global temperature plus every zone's falloff
// contribution at (x, y).
func (w *World) TemperatureAt(x, y float64) float64 {
	temp := w.controls.Temperature
	for _, z := range w.zones {
		temp += z.influence(x, y)
	}
	return temp
}

// TemperatureDamage returns the energy per second a creature loses to heat
// or cold at its position, reduced by the matching tolerance.
func (w *World) TemperatureDamage(c *organism.Creature) float64 {
	t := &w.cfg.Temperature
	temp := w.TemperatureAt(c.Pos.X, c.Pos.Y)
	switch {
	case temp > t.HotThreshold:
		return (temp - t.HotThreshold) * t.DamageRate * (1 - c.Traits.HeatTolerance)
	case temp < t.ColdThreshold:
		return (t.ColdThreshold - temp) * t.DamageRate * (1 - c.Traits.ColdTolerance)
	}
	return 0
}

// ApplyTemperature charges every living creature its temperature damage.
func (w *World) ApplyTemperature(dt float64) {
	organisms := w.organismFilter.Query()
	for organisms.Next() {
		c := organisms.Get().Creature
		if !c.Alive {
			continue
		}
		if dmg := w.TemperatureDamage(c) * dt; dmg > 0 {
			c.TakeDamage(dmg, components.CauseTemperature)
		}
	}
}

// UpdateTemperatureZones expires old random zones and, when random zones
// are enabled, occasionally spawns a new one.
func (w *World) UpdateTemperatureZones(dt float64) {
	kept := w.zones[:0]
	for _, z := range w.zones {
		if !z.Expired(w.time) {
			kept = append(kept, z)
		}
	}
	w.zones = kept

	if !w.controls.RandomZones {
		return
	}
	t := &w.cfg.Temperature
	w.zoneTime += dt
	if w.zoneTime < t.RandomZoneInterval {
		return
	}
	w.zoneTime = 0
	if w.randomZoneCount() >= t.MaxRandomZones || w.rng.Float64() >= t.RandomZoneChance {
		return
	}

	delta := (w.rng.Float64()*2 - 1) * t.RandomZoneMaxDelta
	z := TemperatureZone{
		X:         w.rng.Float64() * w.cfg.World.Width,
		Y:         w.rng.Float64() * w.cfg.World.Height,
		Radius:    t.RandomZoneMinRadius + w.rng.Float64()*(t.RandomZoneMaxRadius-t.RandomZoneMinRadius),
		Delta:     delta,
		CreatedAt: w.time,
		Lifetime:  t.RandomZoneLifetime,
		Random:    true,
	}
	w.zones = append(w.zones, z)
	slog.Debug("temperature_zone", "x", z.X, "y", z.Y, "radius", z.Radius, "delta", z.Delta)
}

func (w *World) randomZoneCount() int {
	n := 0
	for _, z := range w.zones {
		if z.Random {
			n++
		}
	}
	return n
}

// AddHeatZone places a persistent hot zone.
func (w *World) AddHeatZone(x, y, radius float64) {
	w.addZone(x, y, radius, w.cfg.Temperature.ManualZoneDelta)
}

// AddColdZone places a persistent cold zone.
func (w *World) AddColdZone(x, y, radius float64) {
	w.addZone(x, y, radius, -w.cfg.Temperature.ManualZoneDelta)
}

func (w *World) addZone(x, y, radius, delta float64) {
	if radius <= 0 {
		return
	}
	w.zones = append(w.zones, TemperatureZone{
		X:         x,
		Y:         y,
		Radius:    radius,
		Delta:     delta,
		CreatedAt: w.time,
	})
}

// ClearTemperatureZones removes manual zones, and random ones too when
// includeRandom is set.
func (w *World) ClearTemperatureZones(includeRandom bool) {
	if includeRandom {
		w.zones = nil
		return
	}
	kept := w.zones[:0]
	for _, z := range w.zones {
		if z.Random {
			kept = append(kept, z)
		}
	}
	w.zones = kept
}

// Zones returns a copy of the active temperature zones.
func (w *World) Zones() []TemperatureZone {
	out := make([]TemperatureZone, len(w.zones))
	copy(out, w.zones)
	return out
}

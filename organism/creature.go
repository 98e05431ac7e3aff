// Package organism implements the creature: its energy budget, movement,
// eating, combat damage, and reproduction.
package organism

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/traits"
)

// Creature is an autonomous agent. Phenotypes are derived from Traits on
// demand and never cached.
type Creature struct {
	ID               uint64
	Pos              components.Position
	Vel              components.Velocity
	Traits           traits.Traits
	Energy           float64
	Age              float64
	Generation       int
	BornAt           float64
	LastReproduction float64
	State            components.State
	HungerStress     float64
	Alive            bool
	Cause            components.DeathCause
	SpeciesID        int // 0 until assigned

	// OnDeath is called once when the creature dies or emigrates.
	OnDeath func(c *Creature)

	heading        float64
	attackCooldown float64
	exploreX       float64
	exploreY       float64
	hasExplore     bool

	cfg *config.Config
	rng *rand.Rand
}

// New creates a living creature. Energy is clamped to the creature's
// capacity and the position to the world bounds.
func New(id uint64, t traits.Traits, x, y float64, generation int, energy, now float64, cfg *config.Config, rng *rand.Rand) *Creature {
	c := &Creature{
		ID:               id,
		Traits:           t.Clamp(),
		Generation:       generation,
		BornAt:           now,
		LastReproduction: now,
		State:            components.StateWandering,
		Alive:            true,
		heading:          rng.Float64() * 2 * math.Pi,
		cfg:              cfg,
		rng:              rng,
	}
	c.Pos = components.Position{
		X: clamp(x, 0, cfg.World.Width),
		Y: clamp(y, 0, cfg.World.Height),
	}
	c.Energy = clamp(energy, 0, c.MaxEnergy())
	return c
}

// Phenotype accessors.

func (c *Creature) MaxEnergy() float64   { return traits.MaxEnergy(c.Traits, &c.cfg.Phenotype) }
func (c *Creature) MaxSpeed() float64    { return traits.MaxSpeed(c.Traits, &c.cfg.Phenotype) }
func (c *Creature) Vision() float64      { return traits.Vision(c.Traits, &c.cfg.Phenotype) }
func (c *Creature) Radius() float64      { return traits.SizePixels(c.Traits, &c.cfg.Phenotype) }
func (c *Creature) MaxLifespan() float64 { return traits.MaxLifespan(c.Traits, &c.cfg.Phenotype) }
func (c *Creature) AttackDamage() float64 {
	return traits.AttackDamage(c.Traits, &c.cfg.Phenotype)
}
func (c *Creature) Color() traits.RGB { return traits.Color(c.Traits) }

// EnergyFraction returns energy as a fraction of capacity.
func (c *Creature) EnergyFraction() float64 {
	capacity := c.MaxEnergy()
	if capacity <= 0 {
		return 0
	}
	return c.Energy / capacity
}

// Speed returns the current velocity magnitude.
func (c *Creature) Speed() float64 {
	return math.Hypot(c.Vel.X, c.Vel.Y)
}

// DistanceTo returns the centre distance to (x, y).
func (c *Creature) DistanceTo(x, y float64) float64 {
	return math.Hypot(x-c.Pos.X, y-c.Pos.Y)
}

// HungerThreshold is the energy fraction below which the creature's diet
// makes it look for food.
func (c *Creature) HungerThreshold() float64 {
	b := &c.cfg.Behavior
	return traits.DietCurve(c.Traits.DietPreference, b.HerbivoreHunger, b.OmnivoreHunger, b.CarnivoreHunger)
}

// IsHungry reports energy below the diet-specific hunger threshold.
func (c *Creature) IsHungry() bool {
	return c.EnergyFraction() < c.HungerThreshold()
}

// Update advances age, pays metabolic and movement costs, updates hunger
// stress, applies death checks, and integrates position.
func (c *Creature) Update(dt, now float64) {
	if !c.Alive || dt <= 0 {
		return
	}
	c.Age += dt
	if c.attackCooldown > 0 {
		c.attackCooldown -= dt
	}

	maxSpeed := c.MaxSpeed()
	moveFrac := 0.0
	if maxSpeed > 0 {
		moveFrac = math.Min(c.Speed()/maxSpeed, 1.5)
	}
	rest := traits.EnergyDrain(c.Traits, &c.cfg.Phenotype) * traits.RestEfficiency(c.Traits)
	move := c.cfg.Energy.MoveCost * moveFrac * moveFrac * (0.5 + c.Traits.Size) *
		traits.MovementEfficiency(c.Traits, c.State.Sprinting())
	c.Energy -= (rest + move) * dt

	switch frac := c.EnergyFraction(); {
	case frac < 0.5:
		c.HungerStress += c.cfg.Energy.StressGain * dt
	case frac > 0.7:
		c.HungerStress -= c.cfg.Energy.StressDecay * dt
	}
	c.HungerStress = clamp(c.HungerStress, 0, 1)

	if c.Energy <= 0 {
		c.Energy = 0
		c.die(components.CauseStarvation)
		return
	}
	if c.Age >= c.MaxLifespan() {
		c.die(components.CauseOldAge)
		return
	}

	c.Pos.X += c.Vel.X * dt
	c.Pos.Y += c.Vel.Y * dt
	c.reflect()
}

// reflect keeps the body inside the world, bouncing velocity off walls.
func (c *Creature) reflect() {
	r := math.Min(c.Radius(), math.Min(c.cfg.World.Width, c.cfg.World.Height)/2)
	if c.Pos.X < r {
		c.Pos.X = r
		c.Vel.X = math.Abs(c.Vel.X)
	} else if c.Pos.X > c.cfg.World.Width-r {
		c.Pos.X = c.cfg.World.Width - r
		c.Vel.X = -math.Abs(c.Vel.X)
	}
	if c.Pos.Y < r {
		c.Pos.Y = r
		c.Vel.Y = math.Abs(c.Vel.Y)
	} else if c.Pos.Y > c.cfg.World.Height-r {
		c.Pos.Y = c.cfg.World.Height - r
		c.Vel.Y = -math.Abs(c.Vel.Y)
	}
}

// Eat adds energy up to capacity and returns the amount absorbed.
func (c *Creature) Eat(amount float64) float64 {
	if !c.Alive || amount <= 0 {
		return 0
	}
	before := c.Energy
	c.Energy = math.Min(c.Energy+amount, c.MaxEnergy())
	return c.Energy - before
}

// TakeDamage subtracts energy. Reaching zero kills the creature with the
// given cause and leaves energy at 0.
func (c *Creature) TakeDamage(amount float64, cause components.DeathCause) {
	if !c.Alive || amount <= 0 {
		return
	}
	c.Energy -= amount
	if c.Energy <= 0 {
		c.Energy = 0
		c.die(cause)
	}
}

// Emigrate removes the creature from the world without counting a death.
func (c *Creature) Emigrate() {
	c.die(components.CauseEmigration)
}

// Emigrated reports whether the creature left by emigration.
func (c *Creature) Emigrated() bool {
	return c.Cause == components.CauseEmigration
}

func (c *Creature) die(cause components.DeathCause) {
	if !c.Alive {
		return
	}
	c.Alive = false
	c.Cause = cause
	c.Vel = components.Velocity{}
	if c.OnDeath != nil {
		c.OnDeath(c)
	}
}

// CanAttack reports whether the strike cooldown has elapsed.
func (c *Creature) CanAttack() bool {
	return c.attackCooldown <= 0
}

// ResetAttack starts the strike cooldown.
func (c *Creature) ResetAttack() {
	c.attackCooldown = c.cfg.Combat.AttackInterval
}

func clamp(x, lo, hi float64) float64 {
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

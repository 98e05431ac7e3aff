package organism

import (
	"math"

	"github.com/pthm-cable/critters/components"
)

// Speed caps per movement mode, as multiples of MaxSpeed.
const (
	seekSpeedCap   = 0.8
	fleeSpeedCap   = 1.1
	wanderSpeedCap = 0.5
	huntAccel      = 1.5
	fleeAccel      = 1.5
	exploreReach   = 20.0
)

// steer accelerates velocity toward direction (dx, dy) at full cap speed
// and clamps the result to cap.
func (c *Creature) steer(dx, dy, capSpeed, accel, dt float64) {
	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		return
	}
	desiredX := dx / dist * capSpeed
	desiredY := dy / dist * capSpeed
	k := math.Min(1, c.cfg.Behavior.Acceleration*accel*dt)
	c.Vel.X += (desiredX - c.Vel.X) * k
	c.Vel.Y += (desiredY - c.Vel.Y) * k
	c.limitSpeed(capSpeed)
	c.heading = math.Atan2(c.Vel.Y, c.Vel.X)
}

func (c *Creature) limitSpeed(capSpeed float64) {
	if s := c.Speed(); s > capSpeed && s > 0 {
		c.Vel.X *= capSpeed / s
		c.Vel.Y *= capSpeed / s
	}
}

// SeekTarget moves toward (x, y) at a cruising pace.
func (c *Creature) SeekTarget(x, y, dt float64) {
	c.steer(x-c.Pos.X, y-c.Pos.Y, c.MaxSpeed()*seekSpeedCap, 1, dt)
}

// HuntTarget chases (x, y) with faster acceleration and a stamina-scaled
// speed cap.
func (c *Creature) HuntTarget(x, y, dt float64) {
	capSpeed := c.MaxSpeed() * (1 + 0.3*c.Traits.Stamina)
	c.steer(x-c.Pos.X, y-c.Pos.Y, capSpeed, huntAccel, dt)
}

// FleeFrom runs directly away from (x, y).
func (c *Creature) FleeFrom(x, y, dt float64) {
	dx, dy := c.Pos.X-x, c.Pos.Y-y
	if math.Hypot(dx, dy) < 1e-9 {
		dx, dy = math.Cos(c.heading), math.Sin(c.heading)
	}
	c.steer(dx, dy, c.MaxSpeed()*fleeSpeedCap, fleeAccel, dt)
}

// Wander drifts along a heading that occasionally turns at random, with
// light damping.
func (c *Creature) Wander(dt float64) {
	b := &c.cfg.Behavior
	if c.rng.Float64() < b.WanderTurnChance {
		c.heading += (c.rng.Float64()*2 - 1) * math.Pi / 2
	}
	capSpeed := c.MaxSpeed() * wanderSpeedCap
	c.steer(math.Cos(c.heading), math.Sin(c.heading), capSpeed, 0.5, dt)
	damp := math.Pow(b.WanderDamping, dt*c.cfg.Physics.TickRate)
	c.Vel.X *= damp
	c.Vel.Y *= damp
}

// Freeze damps velocity, used when a creature trusts its camouflage. A
// frozen creature is neither fleeing nor pursuing anything.
func (c *Creature) Freeze() {
	c.State = components.StateWandering
	c.Vel.X *= c.cfg.Behavior.FreezeDamping
	c.Vel.Y *= c.cfg.Behavior.FreezeDamping
}

// Explore heads for a remembered random point, picking a new one on arrival.
func (c *Creature) Explore(dt float64) {
	if !c.hasExplore || c.DistanceTo(c.exploreX, c.exploreY) < exploreReach {
		c.pickExploreTarget()
	}
	c.SeekTarget(c.exploreX, c.exploreY, dt)
}

// ExploreToward explores with the new destination biased toward (x, y) by
// weight in [0,1].
func (c *Creature) ExploreToward(x, y, weight, dt float64) {
	if !c.hasExplore || c.DistanceTo(c.exploreX, c.exploreY) < exploreReach {
		c.pickExploreTarget()
		weight = clamp(weight, 0, 1)
		c.exploreX += (x - c.exploreX) * weight
		c.exploreY += (y - c.exploreY) * weight
	}
	c.SeekTarget(c.exploreX, c.exploreY, dt)
}

func (c *Creature) pickExploreTarget() {
	c.exploreX = c.rng.Float64() * c.cfg.World.Width
	c.exploreY = c.rng.Float64() * c.cfg.World.Height
	c.hasExplore = true
}

// ExploreTarget returns the current exploration destination.
func (c *Creature) ExploreTarget() (float64, float64, bool) {
	return c.exploreX, c.exploreY, c.hasExplore
}

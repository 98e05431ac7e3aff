package organism

import (
	"math"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

// ReproductionCooldown is the minimum time between reproductions.
func (c *Creature) ReproductionCooldown() float64 {
	return traits.ReproductionCooldown(c.Traits, &c.cfg.Reproduction)
}

// CanReproduce requires maturity, energy at the reproduction threshold, and
// an elapsed cooldown.
func (c *Creature) CanReproduce(now float64) bool {
	if !c.Alive || c.Age < c.cfg.Reproduction.MaturityAge {
		return false
	}
	if c.EnergyFraction() < traits.ReproductionThreshold(c.Traits) {
		return false
	}
	return now-c.LastReproduction >= c.ReproductionCooldown()
}

// ReproductionReadiness is min(cooldown progress, energy progress) in [0,1].
func (c *Creature) ReproductionReadiness(now float64) float64 {
	if !c.Alive {
		return 0
	}
	cooldown := 1.0
	if cd := c.ReproductionCooldown(); cd > 0 {
		cooldown = clamp((now-c.LastReproduction)/cd, 0, 1)
	}
	energy := clamp(c.EnergyFraction()/traits.ReproductionThreshold(c.Traits), 0, 1)
	return math.Min(cooldown, energy)
}

// PrefersAsexual reports whether the creature clones instead of mating.
func (c *Creature) PrefersAsexual() bool {
	return traits.PrefersAsexual(c.Traits, c.cfg.Reproduction.AsexualSizeLimit)
}

// ReproduceAsexual clones the creature with stress-aware mutation. The
// parent pays a share of its energy, part of which the child receives, and
// its hunger stress halves. Returns nil if the parent is not ready.
func (c *Creature) ReproduceAsexual(ids *components.IDAllocator, now, mutationRate float64) *Creature {
	if !c.CanReproduce(now) {
		return nil
	}
	r := &c.cfg.Reproduction

	cost := c.Energy * r.AsexualCost
	c.Energy -= cost
	c.LastReproduction = now

	childTraits := traits.MutateWithStress(c.rng, &c.cfg.Genetics, c.Traits, c.HungerStress, mutationRate)
	c.HungerStress *= 0.5

	angle := c.rng.Float64() * 2 * math.Pi
	x := c.Pos.X + math.Cos(angle)*r.SpawnOffset
	y := c.Pos.Y + math.Sin(angle)*r.SpawnOffset
	return New(ids.Next(), childTraits, x, y, c.Generation+1, cost*r.BirthEfficiency, now, c.cfg, c.rng)
}

// OffspringCount is the litter size for a pair: smaller parents have more
// offspring, herbivore pairs one extra, carnivore pairs one fewer.
func (c *Creature) OffspringCount(partner *Creature) int {
	avgSize := (c.Traits.Size + partner.Traits.Size) / 2
	n := 1 + int(math.Round((1-avgSize)*2))
	switch {
	case c.Traits.IsHerbivore() && partner.Traits.IsHerbivore():
		n++
	case c.Traits.IsCarnivore() && partner.Traits.IsCarnivore():
		n--
	}
	if limit := c.cfg.Reproduction.MaxOffspring; n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ReproduceSexual mates with partner. Both must be ready. The litter is
// capped at room, the number of creatures the world can still accept, and
// nothing happens when room is zero. Each parent pays a cost that grows with
// litter size; offspring come from crossover, with an extra stress mutation
// when either parent is hunger-stressed, and are placed radially around the
// parents' midpoint.
func (c *Creature) ReproduceSexual(partner *Creature, ids *components.IDAllocator, now, mutationRate float64, room int) []*Creature {
	if partner == nil || partner == c || room < 1 || !c.CanReproduce(now) || !partner.CanReproduce(now) {
		return nil
	}
	r := &c.cfg.Reproduction

	n := min(c.OffspringCount(partner), room)
	costFrac := r.SexualBaseCost + r.SexualCostPerOffspring*float64(n)
	costA := c.Energy * costFrac
	costB := partner.Energy * costFrac
	c.Energy -= costA
	partner.Energy -= costB
	c.LastReproduction = now
	partner.LastReproduction = now

	share := (costA + costB) * r.BirthEfficiency / float64(n)
	stress := math.Max(c.HungerStress, partner.HungerStress)
	generation := max(c.Generation, partner.Generation) + 1
	midX := (c.Pos.X + partner.Pos.X) / 2
	midY := (c.Pos.Y + partner.Pos.Y) / 2

	children := make([]*Creature, 0, n)
	for i := 0; i < n; i++ {
		t := traits.Crossover(c.rng, &c.cfg.Genetics, c.Traits, partner.Traits, mutationRate)
		if stress > r.StressMutationThreshold {
			t = traits.MutateWithStress(c.rng, &c.cfg.Genetics, t, stress, mutationRate)
		}
		angle := 2*math.Pi*float64(i)/float64(n) + c.rng.Float64()*0.5
		x := midX + math.Cos(angle)*r.SpawnOffset
		y := midY + math.Sin(angle)*r.SpawnOffset
		children = append(children, New(ids.Next(), t, x, y, generation, share, now, c.cfg, c.rng))
	}
	return children
}

// IsCompatibleMate requires the same assigned species. When either side is
// unassigned it falls back to similar diet and sociability.
func (c *Creature) IsCompatibleMate(other *Creature) bool {
	if other == nil || other == c || !c.Alive || !other.Alive {
		return false
	}
	if c.SpeciesID != 0 && other.SpeciesID != 0 {
		return c.SpeciesID == other.SpeciesID
	}
	return math.Abs(c.Traits.DietPreference-other.Traits.DietPreference) < 0.15 &&
		math.Abs(c.Traits.SocialBehavior-other.Traits.SocialBehavior) < 0.3
}

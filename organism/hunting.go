package organism

// Cannibalism gates: same-diet prey is only attacked by a desperate,
// aggressive hunter, and only when the prey is clearly smaller.
const (
	cannibalMaxEnergy = 0.2
	cannibalMinAggr   = 0.7
	cannibalMaxRatio  = 0.8
)

// IsHuntingHungry reports the hunger level at which a predator accepts
// smaller prey.
func (c *Creature) IsHuntingHungry() bool {
	return c.HungerStress > 0.5 || c.EnergyFraction() < 0.3
}

// CanHunt reports whether the creature would attack target.
func (c *Creature) CanHunt(target *Creature) bool {
	if target == nil || target == c || !c.Alive || !target.Alive {
		return false
	}
	if c.Traits.IsHerbivore() || c.Traits.Aggression < c.cfg.Combat.MinAggression {
		return false
	}
	// Omnivores do not take on carnivores.
	if c.Traits.IsOmnivore() && target.Traits.IsCarnivore() {
		return false
	}

	minRatio := c.cfg.Combat.MinPreySize
	if c.IsHuntingHungry() {
		minRatio = c.cfg.Combat.HungryMinPreySize
	}
	ratio := target.Radius() / c.Radius()
	if ratio < minRatio {
		return false
	}

	if c.Traits.Diet() == target.Traits.Diet() {
		if c.EnergyFraction() >= cannibalMaxEnergy ||
			c.Traits.Aggression <= cannibalMinAggr ||
			ratio > cannibalMaxRatio {
			return false
		}
	}

	hunter := 0.5*c.Traits.Strength + 0.3*c.Traits.Size + 0.2*c.Traits.Aggression
	prey := 0.4*target.Traits.Strength + 0.4*target.Traits.Size + 0.2*target.Traits.Aggression
	if target.Traits.IsCarnivore() {
		prey *= 1.2
	}
	return hunter*(1+0.5*c.HungerStress) >= prey*0.8
}

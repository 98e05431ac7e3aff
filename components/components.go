// Package components defines ECS components and small shared value types for the simulation.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// FoodTier is the size class of a food item.
type FoodTier uint8

const (
	FoodSmall FoodTier = iota
	FoodMedium
	FoodLarge
)

func (t FoodTier) String() string {
	switch t {
	case FoodSmall:
		return "small"
	case FoodMedium:
		return "medium"
	case FoodLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Food is a plant resource. Partial bites reduce Energy; the item is
// Consumed once Energy reaches zero and removed at the next cleanup.
type Food struct {
	ID         uint64
	Tier       FoodTier
	Energy     float64
	MaxEnergy  float64
	Size       float64
	BiteFactor float64 // tier multiplier applied to bite size
	Consumed   bool
}

// Bite removes up to amount energy and returns what was actually taken.
func (f *Food) Bite(amount float64) float64 {
	if f.Consumed || amount <= 0 {
		return 0
	}
	if amount >= f.Energy {
		amount = f.Energy
		f.Energy = 0
		f.Consumed = true
		return amount
	}
	f.Energy -= amount
	return amount
}

// Corpse is the scavengeable remains of a dead creature.
type Corpse struct {
	ID        uint64
	Energy    float64
	Size      float64
	CreatedAt float64 // sim time of death
}

// Bite removes up to amount energy and returns what was actually taken.
func (c *Corpse) Bite(amount float64) float64 {
	if c.Energy <= 0 || amount <= 0 {
		return 0
	}
	if amount > c.Energy {
		amount = c.Energy
	}
	c.Energy -= amount
	return amount
}

// Expired reports whether the corpse is empty or older than decay seconds.
func (c *Corpse) Expired(now, decay float64) bool {
	return c.Energy <= 0 || now-c.CreatedAt >= decay
}

// IDAllocator hands out monotonically increasing ids, starting at 1.
// One allocator is owned per world; zero is never issued.
type IDAllocator struct {
	next uint64
}

// Next returns a fresh id.
func (a *IDAllocator) Next() uint64 {
	a.next++
	return a.next
}

// Peek returns the last id handed out, or 0.
func (a *IDAllocator) Peek() uint64 {
	return a.next
}

// Package traits defines the heritable trait vector and the phenotypes derived from it.
package traits

import "fmt"

// Count is the number of heritable traits.
const Count = 14

// Index identifies one trait within the vector.
type Index uint8

const (
	Speed Index = iota
	Size
	VisionRange
	Metabolism
	HeatTolerance
	ColdTolerance
	Aggression
	Camouflage
	Lifespan
	ReproductionRate
	SocialBehavior
	DietPreference
	Strength
	Stamina
)

var indexNames = [Count]string{
	"speed",
	"size",
	"vision_range",
	"metabolism",
	"heat_tolerance",
	"cold_tolerance",
	"aggression",
	"camouflage",
	"lifespan",
	"reproduction_rate",
	"social_behavior",
	"diet_preference",
	"strength",
	"stamina",
}

// String returns the snake_case trait name used in config and telemetry.
func (i Index) String() string {
	if int(i) < len(indexNames) {
		return indexNames[i]
	}
	return fmt.Sprintf("trait(%d)", uint8(i))
}

// All returns every trait index in vector order.
func All() [Count]Index {
	var out [Count]Index
	for i := range out {
		out[i] = Index(i)
	}
	return out
}

// Traits is the genetic encoding of a creature. Every field lies in [0,1].
// Values are copied, never shared: mutation and crossover return new vectors.
type Traits struct {
	Speed            float64
	Size             float64
	VisionRange      float64
	Metabolism       float64
	HeatTolerance    float64
	ColdTolerance    float64
	Aggression       float64
	Camouflage       float64
	Lifespan         float64
	ReproductionRate float64
	SocialBehavior   float64
	DietPreference   float64 // 0=herbivore, 0.5=omnivore, 1=carnivore
	Strength         float64
	Stamina          float64
}

// field returns a pointer to the trait at index i.
func (t *Traits) field(i Index) *float64 {
	switch i {
	case Speed:
		return &t.Speed
	case Size:
		return &t.Size
	case VisionRange:
		return &t.VisionRange
	case Metabolism:
		return &t.Metabolism
	case HeatTolerance:
		return &t.HeatTolerance
	case ColdTolerance:
		return &t.ColdTolerance
	case Aggression:
		return &t.Aggression
	case Camouflage:
		return &t.Camouflage
	case Lifespan:
		return &t.Lifespan
	case ReproductionRate:
		return &t.ReproductionRate
	case SocialBehavior:
		return &t.SocialBehavior
	case DietPreference:
		return &t.DietPreference
	case Strength:
		return &t.Strength
	case Stamina:
		return &t.Stamina
	}
	panic(fmt.Sprintf("traits: invalid index %d", i))
}

// Get returns the trait at index i.
func (t Traits) Get(i Index) float64 {
	return *t.field(i)
}

// With returns a copy with trait i set to v, clamped to [0,1].
func (t Traits) With(i Index, v float64) Traits {
	*t.field(i) = clamp01(v)
	return t
}

// Vector returns the traits in index order.
func (t Traits) Vector() []float64 {
	v := make([]float64, Count)
	for i := range v {
		v[i] = *t.field(Index(i))
	}
	return v
}

// FromVector builds a trait vector from values in index order, clamping each.
// Missing trailing values are left at zero.
func FromVector(v []float64) Traits {
	var t Traits
	for i := 0; i < Count && i < len(v); i++ {
		*t.field(Index(i)) = clamp01(v[i])
	}
	return t
}

// Clamp returns a copy with every field clamped to [0,1].
func (t Traits) Clamp() Traits {
	for i := Index(0); i < Count; i++ {
		p := t.field(i)
		*p = clamp01(*p)
	}
	return t
}

// DietType is the coarse classification of a diet preference.
type DietType uint8

const (
	Herbivore DietType = iota
	Omnivore
	Carnivore
)

// Diet classification boundaries.
const (
	HerbivoreMax = 0.35 // diet < HerbivoreMax is herbivore
	CarnivoreMin = 0.65 // diet > CarnivoreMin is carnivore
)

// String returns the display name of a diet type.
func (d DietType) String() string {
	switch d {
	case Herbivore:
		return "herbivore"
	case Omnivore:
		return "omnivore"
	case Carnivore:
		return "carnivore"
	default:
		return "unknown"
	}
}

// ClassifyDiet maps a diet preference onto exactly one diet type.
func ClassifyDiet(diet float64) DietType {
	switch {
	case diet < HerbivoreMax:
		return Herbivore
	case diet > CarnivoreMin:
		return Carnivore
	default:
		return Omnivore
	}
}

// Diet returns the diet type of the vector.
func (t Traits) Diet() DietType {
	return ClassifyDiet(t.DietPreference)
}

// IsHerbivore reports dietPreference < 0.35.
func (t Traits) IsHerbivore() bool { return t.Diet() == Herbivore }

// IsOmnivore reports dietPreference in [0.35, 0.65].
func (t Traits) IsOmnivore() bool { return t.Diet() == Omnivore }

// IsCarnivore reports dietPreference > 0.65.
func (t Traits) IsCarnivore() bool { return t.Diet() == Carnivore }

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	// NaN fails both comparisons; map it to lo so the [0,1] bound holds.
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

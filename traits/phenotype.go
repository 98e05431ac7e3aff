package traits

import (
	"math"

	"github.com/pthm-cable/critters/config"
)

// Phenotypes are recomputed from traits on every call so they cannot drift
// from the genome after mutation.

// DietCurve interpolates piecewise-linearly across the diet axis: herb at 0,
// omni at 0.5, carn at 1. Continuous at the 0.35/0.65 classification edges.
func DietCurve(diet, herb, omni, carn float64) float64 {
	diet = clamp01(diet)
	if diet <= 0.5 {
		return lerp(herb, omni, diet/0.5)
	}
	return lerp(omni, carn, (diet-0.5)/0.5)
}

// SizePixels is the body radius in world units.
func SizePixels(t Traits, p *config.PhenotypeConfig) float64 {
	return lerp(p.MinSize, p.MaxSize, t.Size)
}

// MaxSpeed is the cruising speed cap in world units per second. Herbivores
// pay the largest size penalty, carnivores the smallest.
func MaxSpeed(t Traits, p *config.PhenotypeConfig) float64 {
	base := p.BaseSpeed + t.Speed*p.SpeedRange
	dietMult := DietCurve(t.DietPreference, 1.0, 0.9, 1.15)
	sizePenalty := 1 - t.Size*DietCurve(t.DietPreference, 0.35, 0.3, 0.2)
	return base * dietMult * sizePenalty
}

// Vision is the perception radius.
func Vision(t Traits, p *config.PhenotypeConfig) float64 {
	return lerp(p.MinVision, p.MaxVision, t.VisionRange)
}

// MaxEnergy is the energy capacity.
func MaxEnergy(t Traits, p *config.PhenotypeConfig) float64 {
	return p.BaseMaxEnergy + t.Size*p.SizeEnergyBonus
}

// EnergyDrain is the resting metabolic cost per second. The size factor spans
// 0.3x to 1.8x, high metabolism is cheaper, and omnivores pay a generalist
// premium.
func EnergyDrain(t Traits, p *config.PhenotypeConfig) float64 {
	sizeFactor := 0.3 + 1.5*math.Pow(t.Size, 1.5)
	metabFactor := 1.3 - 0.6*t.Metabolism
	dietFactor := DietCurve(t.DietPreference, 1.0, 1.25, 1.05)
	return p.BaseDrain * sizeFactor * metabFactor * dietFactor
}

// MaxLifespan is the age in seconds at which a creature dies of old age.
func MaxLifespan(t Traits, p *config.PhenotypeConfig) float64 {
	base := lerp(p.LifespanMin, p.LifespanMax, t.Lifespan)
	sizeMult := 0.8 + 0.5*t.Size
	dietMult := DietCurve(t.DietPreference, 1.0, 0.95, 1.2)
	return base * sizeMult * dietMult
}

// AttackDamage is the damage of one strike.
func AttackDamage(t Traits, p *config.PhenotypeConfig) float64 {
	return p.BaseAttack *
		(0.4 + 0.6*t.Strength) *
		(0.6 + 0.8*t.Size) *
		(0.7 + 0.6*t.Aggression) *
		DietCurve(t.DietPreference, 0.4, 0.8, 1.2)
}

// ReproductionThreshold is the energy fraction needed to reproduce, in [0.5,0.95].
func ReproductionThreshold(t Traits) float64 {
	v := 0.85 - 0.3*t.ReproductionRate + DietCurve(t.DietPreference, -0.05, 0, 0.08)
	return clamp(v, 0.5, 0.95)
}

// ReproductionCooldown is the minimum time between reproductions. Carnivores
// and large bodies breed slowly.
func ReproductionCooldown(t Traits, r *config.ReproductionConfig) float64 {
	return r.BaseCooldown *
		DietCurve(t.DietPreference, 0.8, 1.0, 1.5) *
		(0.8 + 0.6*t.Size) *
		(1.2 - 0.4*t.ReproductionRate)
}

// PrefersAsexual reports whether the creature clones itself instead of
// seeking a mate. Never true above sizeLimit.
func PrefersAsexual(t Traits, sizeLimit float64) bool {
	if t.Size > sizeLimit {
		return false
	}
	return t.DietPreference > 0.7 || t.SocialBehavior < 0.3
}

// RestEfficiency scales the resting drain. Specialists idle cheaply.
func RestEfficiency(t Traits) float64 {
	return DietCurve(t.DietPreference, 0.7, 1.0, 0.6)
}

// MovementEfficiency scales movement cost. Herbivores cruise cheaply and
// carnivores sprint cheaply; omnivores are mediocre at both.
func MovementEfficiency(t Traits, sprinting bool) float64 {
	if sprinting {
		return DietCurve(t.DietPreference, 1.3, 1.1, 0.7)
	}
	return DietCurve(t.DietPreference, 0.7, 1.0, 1.2)
}

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// Color is the display colour: red tracks diet and aggression, green tracks
// plant eating and camouflage, blue tracks sociability and vision.
func Color(t Traits) RGB {
	ch := func(v float64) uint8 {
		return uint8(60 + 195*clamp01(v))
	}
	return RGB{
		R: ch(0.7*t.DietPreference + 0.3*t.Aggression),
		G: ch(0.7*(1-t.DietPreference) + 0.3*t.Camouflage),
		B: ch(0.5*t.SocialBehavior + 0.5*t.VisionRange),
	}
}

package traits

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/critters/config"
)

// Random draws every trait uniformly within its configured generation range.
func Random(rng *rand.Rand, cfg *config.Config) Traits {
	var t Traits
	for _, i := range All() {
		r := cfg.TraitRange(i.String())
		*t.field(i) = clamp01(r.Min + rng.Float64()*(r.Max-r.Min))
	}
	return t
}

// RandomHerbivore biases a random vector toward plant eating: low diet and
// aggression, better camouflage, vision and sociability.
func RandomHerbivore(rng *rand.Rand, cfg *config.Config) Traits {
	t := Random(rng, cfg)
	t.DietPreference = rng.Float64() * 0.3
	t.Aggression *= 0.4
	t.Camouflage = clamp01(t.Camouflage + 0.15)
	t.VisionRange = clamp01(t.VisionRange + 0.1)
	t.SocialBehavior = clamp01(math.Max(t.SocialBehavior, 0.4) + 0.1*rng.Float64())
	return t
}

// RandomCarnivore biases a random vector toward predation.
func RandomCarnivore(rng *rand.Rand, cfg *config.Config) Traits {
	t := Random(rng, cfg)
	t.DietPreference = 0.7 + rng.Float64()*0.3
	t.Aggression = 0.5 + rng.Float64()*0.5
	t.Strength = clamp01(t.Strength + 0.2)
	t.Speed = clamp01(t.Speed + 0.1)
	t.Stamina = clamp01(t.Stamina + 0.1)
	return t
}

// RandomOmnivore biases a random vector toward a generalist diet.
func RandomOmnivore(rng *rand.Rand, cfg *config.Config) Traits {
	t := Random(rng, cfg)
	t.DietPreference = 0.4 + rng.Float64()*0.2
	t.Aggression = 0.25 + rng.Float64()*0.3
	t.Metabolism = clamp01(t.Metabolism + 0.1)
	t.Stamina = clamp01(t.Stamina + 0.1)
	return t
}

// Founder returns a small, docile herbivore: a fixed template with per-trait
// jitter of ±population.founder_jitter and diet capped at founder_max_diet.
func Founder(rng *rand.Rand, cfg *config.Config) Traits {
	template := Traits{
		Speed:            0.5,
		Size:             0.25,
		VisionRange:      0.5,
		Metabolism:       0.5,
		HeatTolerance:    0.5,
		ColdTolerance:    0.5,
		Aggression:       0.1,
		Camouflage:       0.5,
		Lifespan:         0.5,
		ReproductionRate: 0.5,
		SocialBehavior:   0.5,
		DietPreference:   0.1,
		Strength:         0.3,
		Stamina:          0.5,
	}
	jitter := cfg.Population.FounderJitter
	t := template
	for _, i := range All() {
		p := t.field(i)
		*p = clamp01(*p + (rng.Float64()*2-1)*jitter)
	}
	t.DietPreference = math.Min(t.DietPreference, cfg.Population.FounderMaxDiet)
	t.Size = math.Min(t.Size, 0.4)
	t.Aggression = math.Min(t.Aggression, 0.25)
	return t
}

// Mutate perturbs every trait. With probability large_mutation_chance a trait
// jumps by ±large_mutation_amount (randomised magnitude); otherwise it moves
// uniformly within ±rate. Results are clamped to [0,1].
func Mutate(rng *rand.Rand, g *config.GeneticsConfig, t Traits, rate float64) Traits {
	return mutateScaled(rng, g, t, rate, func(Index) float64 { return 1 })
}

// MutateWithStress is Mutate with the rate boosted on diet-linked traits
// (diet, aggression, strength, stamina) by up to 1+stress_boost as stress
// approaches 1, and on metabolism by up to 1+metabolism_stress_boost.
func MutateWithStress(rng *rand.Rand, g *config.GeneticsConfig, t Traits, stress, rate float64) Traits {
	stress = clamp01(stress)
	return mutateScaled(rng, g, t, rate, func(i Index) float64 {
		switch i {
		case DietPreference, Aggression, Strength, Stamina:
			return 1 + g.StressBoost*stress
		case Metabolism:
			return 1 + g.MetabolismStressBoost*stress
		default:
			return 1
		}
	})
}

func mutateScaled(rng *rand.Rand, g *config.GeneticsConfig, t Traits, rate float64, scale func(Index) float64) Traits {
	if rate < 0 {
		rate = 0
	}
	for _, i := range All() {
		p := t.field(i)
		if rng.Float64() < g.LargeMutationChance {
			mag := g.LargeMutationAmount * (0.5 + 0.5*rng.Float64())
			if rng.Intn(2) == 0 {
				mag = -mag
			}
			*p = clamp01(*p + mag)
			continue
		}
		*p = clamp01(*p + (rng.Float64()*2-1)*rate*scale(i))
	}
	return t
}

// Crossover picks each trait from a (40%), b (40%) or their mean (20%), then
// mutates the child at rate.
func Crossover(rng *rand.Rand, g *config.GeneticsConfig, a, b Traits, rate float64) Traits {
	var child Traits
	for _, i := range All() {
		av, bv := a.Get(i), b.Get(i)
		var v float64
		switch r := rng.Float64(); {
		case r < 0.4:
			v = av
		case r < 0.8:
			v = bv
		default:
			v = (av + bv) / 2
		}
		*child.field(i) = clamp01(v)
	}
	return Mutate(rng, g, child, rate)
}

// Distance is the RMS Euclidean distance between two vectors, in [0,1].
func Distance(a, b Traits) float64 {
	return floats.Distance(a.Vector(), b.Vector(), 2) / math.Sqrt(Count)
}

package traits

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/critters/config"
)

func inUnit(t Traits) bool {
	for _, v := range t.Vector() {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func TestClassifyDietPartition(t *testing.T) {
	tests := []struct {
		diet float64
		want DietType
	}{
		{0, Herbivore},
		{0.3499, Herbivore},
		{0.35, Omnivore},
		{0.5, Omnivore},
		{0.65, Omnivore},
		{0.6501, Carnivore},
		{1, Carnivore},
	}

	for _, tt := range tests {
		tr := Traits{DietPreference: tt.diet}
		if got := tr.Diet(); got != tt.want {
			t.Errorf("Diet(%v) = %v, want %v", tt.diet, got, tt.want)
		}
		n := 0
		for _, b := range []bool{tr.IsHerbivore(), tr.IsOmnivore(), tr.IsCarnivore()} {
			if b {
				n++
			}
		}
		if n != 1 {
			t.Errorf("diet %v: %d classifications hold, want exactly 1", tt.diet, n)
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	tr := Traits{Speed: 0.1, Size: 0.2, DietPreference: 0.9, Stamina: 0.4}
	got := FromVector(tr.Vector())
	if got != tr {
		t.Errorf("FromVector(Vector()) = %+v, want %+v", got, tr)
	}

	clamped := FromVector([]float64{-1, 2, math.NaN()})
	if clamped.Speed != 0 || clamped.Size != 1 || clamped.VisionRange != 0 {
		t.Errorf("FromVector did not clamp: %+v", clamped)
	}
}

func TestIndexNames(t *testing.T) {
	if Size.String() != "size" || DietPreference.String() != "diet_preference" {
		t.Errorf("unexpected names %q %q", Size, DietPreference)
	}
	cfg := config.Default()
	for _, i := range All() {
		if _, ok := cfg.Genetics.TraitRanges[i.String()]; !ok {
			t.Errorf("no default trait range for %q", i)
		}
	}
}

func TestMutationClosure(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(1))
	g := cfg.Genetics
	g.LargeMutationChance = 0.2

	extremes := []Traits{
		{},
		FromVector([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}),
		RandomCarnivore(rng, cfg),
	}

	for _, base := range extremes {
		for i := 0; i < 200; i++ {
			if m := Mutate(rng, &g, base, 0.3); !inUnit(m) {
				t.Fatalf("Mutate left [0,1]: %+v", m)
			}
			if m := MutateWithStress(rng, &g, base, 1, 0.3); !inUnit(m) {
				t.Fatalf("MutateWithStress left [0,1]: %+v", m)
			}
			if c := Crossover(rng, &g, base, RandomHerbivore(rng, cfg), 0.3); !inUnit(c) {
				t.Fatalf("Crossover left [0,1]: %+v", c)
			}
		}
	}
}

func TestMutateZeroRate(t *testing.T) {
	cfg := config.Default()
	g := cfg.Genetics
	g.LargeMutationChance = 0
	rng := rand.New(rand.NewSource(2))
	base := Random(rng, cfg)

	if got := Mutate(rng, &g, base, 0); got != base {
		t.Errorf("zero-rate mutation changed traits: %+v -> %+v", base, got)
	}
}

func TestMutateWithStressBoostsDietTraits(t *testing.T) {
	cfg := config.Default()
	g := cfg.Genetics
	g.LargeMutationChance = 0
	base := FromVector([]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	var calm, stressed float64
	rngA := rand.New(rand.NewSource(3))
	rngB := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		calm += math.Abs(Mutate(rngA, &g, base, 0.02).DietPreference - 0.5)
		stressed += math.Abs(MutateWithStress(rngB, &g, base, 1, 0.02).DietPreference - 0.5)
	}
	if stressed < 3*calm {
		t.Errorf("stressed diet drift %.3f not boosted over calm %.3f", stressed, calm)
	}
}

func TestCrossoverInheritsFromParents(t *testing.T) {
	cfg := config.Default()
	g := cfg.Genetics
	g.LargeMutationChance = 0
	rng := rand.New(rand.NewSource(4))
	a := Traits{Speed: 0.2}
	b := Traits{Speed: 0.8}

	for i := 0; i < 100; i++ {
		c := Crossover(rng, &g, a, b, 0)
		if c.Speed != 0.2 && c.Speed != 0.8 && c.Speed != 0.5 {
			t.Fatalf("child speed %v is not parent A, parent B, or mean", c.Speed)
		}
	}
}

func TestGenerators(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 100; i++ {
		if tr := RandomHerbivore(rng, cfg); !tr.IsHerbivore() || !inUnit(tr) {
			t.Fatalf("RandomHerbivore produced %+v", tr)
		}
		if tr := RandomCarnivore(rng, cfg); !tr.IsCarnivore() || !inUnit(tr) {
			t.Fatalf("RandomCarnivore produced %+v", tr)
		}
		if tr := RandomOmnivore(rng, cfg); !tr.IsOmnivore() || !inUnit(tr) {
			t.Fatalf("RandomOmnivore produced %+v", tr)
		}
		if tr := Founder(rng, cfg); tr.DietPreference > cfg.Population.FounderMaxDiet || !inUnit(tr) {
			t.Fatalf("Founder produced %+v", tr)
		}
	}
}

func TestDistance(t *testing.T) {
	var zero Traits
	one := FromVector([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	if d := Distance(zero, zero); d != 0 {
		t.Errorf("Distance(x, x) = %v, want 0", d)
	}
	if d := Distance(zero, one); math.Abs(d-1) > 1e-9 {
		t.Errorf("Distance(0, 1) = %v, want 1", d)
	}
	a := Traits{Speed: 0.3}
	b := Traits{Speed: 0.7}
	if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-12 {
		t.Error("Distance is not symmetric")
	}
}

func TestDietCurveContinuity(t *testing.T) {
	tests := []struct {
		diet float64
		want float64
	}{
		{0, 1},
		{0.25, 1.5},
		{0.5, 2},
		{0.75, 2.5},
		{1, 3},
	}
	for _, tt := range tests {
		if got := DietCurve(tt.diet, 1, 2, 3); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DietCurve(%v) = %v, want %v", tt.diet, got, tt.want)
		}
	}

	cfg := config.Default()
	for _, edge := range []float64{HerbivoreMax, CarnivoreMin} {
		lo := MaxSpeed(Traits{DietPreference: edge - 1e-6, Speed: 0.5, Size: 0.5}, &cfg.Phenotype)
		hi := MaxSpeed(Traits{DietPreference: edge + 1e-6, Speed: 0.5, Size: 0.5}, &cfg.Phenotype)
		if math.Abs(lo-hi) > 1e-3 {
			t.Errorf("MaxSpeed jumps at diet %v: %v vs %v", edge, lo, hi)
		}
	}
}

func TestPhenotypes(t *testing.T) {
	cfg := config.Default()
	p := &cfg.Phenotype

	small := Traits{Size: 0}
	large := Traits{Size: 1}
	if SizePixels(small, p) != p.MinSize || SizePixels(large, p) != p.MaxSize {
		t.Errorf("SizePixels endpoints wrong")
	}

	// Square-cube drain factor spans 0.3x to 1.8x.
	mid := Traits{Metabolism: 0.5, DietPreference: 0}
	dSmall := EnergyDrain(Traits{Metabolism: 0.5, Size: 0}, p)
	dLarge := EnergyDrain(Traits{Metabolism: 0.5, Size: 1}, p)
	if math.Abs(dLarge/dSmall-6) > 1e-9 {
		t.Errorf("drain ratio large/small = %v, want 6", dLarge/dSmall)
	}

	omni := mid
	omni.DietPreference = 0.5
	if EnergyDrain(omni, p) <= EnergyDrain(mid, p) {
		t.Error("omnivore drain should exceed herbivore drain")
	}

	if MaxEnergy(large, p) <= MaxEnergy(small, p) {
		t.Error("larger creatures should store more energy")
	}

	for _, d := range []float64{0, 0.5, 1} {
		for _, r := range []float64{0, 1} {
			th := ReproductionThreshold(Traits{DietPreference: d, ReproductionRate: r})
			if th < 0.5 || th > 0.95 {
				t.Errorf("ReproductionThreshold(diet=%v, rate=%v) = %v out of range", d, r, th)
			}
		}
	}

	if ls := MaxLifespan(Traits{Lifespan: 0}, p); ls < 0.8*p.LifespanMin-1e-9 {
		t.Errorf("lifespan %v below configured minimum", ls)
	}
}

func TestPrefersAsexual(t *testing.T) {
	tests := []struct {
		name string
		t    Traits
		want bool
	}{
		{"large never", Traits{Size: 0.7, DietPreference: 0.9}, false},
		{"carnivore", Traits{Size: 0.3, DietPreference: 0.8, SocialBehavior: 0.5}, true},
		{"loner", Traits{Size: 0.3, DietPreference: 0.2, SocialBehavior: 0.1}, true},
		{"social herbivore", Traits{Size: 0.3, DietPreference: 0.2, SocialBehavior: 0.6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefersAsexual(tt.t, 0.6); got != tt.want {
				t.Errorf("PrefersAsexual = %v, want %v", got, tt.want)
			}
		})
	}
}

package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5, 0.3, 0.7}
	mean, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-0.5) > 1e-9 {
		t.Errorf("mean = %v, want 0.5", mean)
	}
	if math.Abs(p50-0.5) > 1e-9 {
		t.Errorf("p50 = %v, want 0.5", p50)
	}
	if p10 >= p50 || p90 <= p50 {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if values[0] != 0.9 {
		t.Error("input slice was reordered")
	}

	if m, a, b, c := ComputeEnergyStats(nil); m != 0 || a != 0 || b != 0 || c != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeDietStats(t *testing.T) {
	mean, std, _, _, _ := ComputeDietStats([]float64{0, 1})
	if math.Abs(mean-0.5) > 1e-9 || math.Abs(std-0.5) > 1e-9 {
		t.Errorf("mean, std = %v, %v, want 0.5, 0.5", mean, std)
	}
}

func TestComputeTraitStats(t *testing.T) {
	pop := []traits.Traits{
		{Speed: 0.2, DietPreference: 0},
		{Speed: 0.4, DietPreference: 1},
	}
	means, stds := ComputeTraitStats(pop)

	if math.Abs(means[traits.Speed]-0.3) > 1e-9 {
		t.Errorf("speed mean = %v, want 0.3", means[traits.Speed])
	}
	if math.Abs(stds[traits.DietPreference]-0.5) > 1e-9 {
		t.Errorf("diet std = %v, want 0.5", stds[traits.DietPreference])
	}

	zeroMeans, _ := ComputeTraitStats(nil)
	if zeroMeans[traits.Size] != 0 {
		t.Error("empty population should give zero means")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1)
	if c.WindowSec() != 1 {
		t.Fatalf("WindowSec = %v, want 1", c.WindowSec())
	}

	c.RecordBirth(traits.Herbivore)
	c.RecordBirth(traits.Herbivore)
	c.RecordBirth(traits.Carnivore)
	c.RecordDeath(traits.Herbivore, components.CausePredation)
	c.RecordDeath(traits.Omnivore, components.CauseStarvation)
	c.RecordEmigration(traits.Herbivore)
	c.RecordImmigration(3)
	c.RecordKill()
	c.RecordEnergy(SourcePlants, 12)
	c.RecordEnergy(SourcePrey, 5)
	c.RecordEnergy(SourcePrey, -1)

	if c.ShouldFlush(0.9) {
		t.Error("flush before window end")
	}
	if !c.ShouldFlush(1.0) {
		t.Error("no flush at window end")
	}

	ws := c.Flush(10, 1.0, Sample{Population: 4, Herbivores: 3, Carnivores: 1, Diets: []float64{0.1, 0.9}})
	if ws.HerbivoreBirths != 2 || ws.CarnivoreBirths != 1 || ws.Births() != 3 {
		t.Errorf("births wrong: %+v", ws)
	}
	if ws.Deaths() != 2 || ws.PredationDeaths != 1 || ws.StarvationDeaths != 1 {
		t.Errorf("deaths wrong: %+v", ws)
	}
	if ws.Emigrants != 1 || ws.Immigrants != 3 || ws.Kills != 1 {
		t.Errorf("migration/kills wrong: %+v", ws)
	}
	if ws.PlantEnergy != 12 || ws.PreyEnergy != 5 {
		t.Errorf("energy sources wrong: %+v", ws)
	}
	if ws.NonHerbivores() != 1 || math.Abs(ws.DietMean-0.5) > 1e-9 {
		t.Errorf("sample wrong: %+v", ws)
	}

	if c.ShouldFlush(1.5) {
		t.Error("window restarts at the last flush")
	}
	next := c.Flush(20, 2.0, Sample{})
	if next.Births() != 0 || next.Kills != 0 || next.WindowStartTick != 10 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestCollectorWindowsFollowSimTime(t *testing.T) {
	tests := []struct {
		name  string
		dt    float64
		steps int
	}{
		{"nominal speed", 1.0 / 60, 600},
		{"ten times speed", 10.0 / 60, 60},
		{"uneven steps", 0.07, 143},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(10)
			simTime := 0.0
			var ends []float64
			for i := 1; i <= 3*tt.steps; i++ {
				simTime += tt.dt
				if c.ShouldFlush(simTime) {
					c.Flush(int64(i), simTime, Sample{})
					ends = append(ends, simTime)
				}
			}
			if len(ends) != 3 {
				t.Fatalf("flushed %d windows, want 3", len(ends))
			}
			prev := 0.0
			for _, end := range ends {
				if span := end - prev; span < 10-1e-6 || span >= 10+tt.dt {
					t.Errorf("window spans %v sim-seconds, want about 10", span)
				}
				prev = end
			}
		})
	}
}

package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances by a fixed step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestPerfCollector_PhaseTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		// Each clock read advances 1ms, so behavior spans 1ms; the
		// final read advances 3ms, so collisions span 3ms.
		pc.StartTick()
		pc.StartPhase(PhaseBehavior)
		pc.StartPhase(PhaseCollisions)
		clock.step = 3 * time.Millisecond
		pc.EndTick()
		clock.step = time.Millisecond
	}

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("Samples = %d, want 5", stats.Samples)
	}
	if stats.AvgTickDuration != 5*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 5ms", stats.AvgTickDuration)
	}
	if stats.PhaseAvg[PhaseBehavior] != time.Millisecond {
		t.Errorf("behavior avg = %v, want 1ms", stats.PhaseAvg[PhaseBehavior])
	}
	if stats.PhaseAvg[PhaseCollisions] != 3*time.Millisecond {
		t.Errorf("collisions avg = %v, want 3ms", stats.PhaseAvg[PhaseCollisions])
	}
	if stats.PhasePct[PhaseCollisions] <= stats.PhasePct[PhaseBehavior] {
		t.Errorf("expected collisions share %v > behavior share %v",
			stats.PhasePct[PhaseCollisions], stats.PhasePct[PhaseBehavior])
	}
	if stats.TicksPerSecond != 200 {
		t.Errorf("TicksPerSecond = %v, want 200", stats.TicksPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFood)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("Samples = %d, want window size 5", stats.Samples)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 2 * time.Millisecond
	s.PhasePct[PhaseCleanup] = 12.5

	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 2000 || row.CleanupPct != 12.5 {
		t.Errorf("unexpected CSV row %+v", row)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseBehavior.String() != "behavior" {
		t.Errorf("PhaseBehavior.String() = %q", PhaseBehavior.String())
	}
	if Phase(200).String() != "unknown" {
		t.Error("out-of-range phase should be unknown")
	}
}

package game

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/world"
)

func newTestEngine(t *testing.T, initial int) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Population.Initial = initial
	e, err := NewEngine(cfg, Options{Seed: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, 20)

	assert.Equal(t, 20, e.World().AliveCount())
	assert.Equal(t, e.Config().Food.Initial, e.World().FoodCount())
	assert.Zero(t, e.Tick())
	assert.False(t, e.Running())
}

func TestAdvanceRunState(t *testing.T) {
	e := newTestEngine(t, 10)

	e.Advance(0.016)
	assert.Zero(t, e.Tick(), "not started")

	e.Start()
	e.Advance(0.016)
	assert.Equal(t, int64(1), e.Tick())

	e.Pause()
	assert.True(t, e.Paused())
	e.Advance(0.016)
	assert.Equal(t, int64(1), e.Tick())

	e.Resume()
	e.Advance(0.016)
	assert.Equal(t, int64(2), e.Tick())

	e.Stop()
	e.Advance(0.016)
	e.Step(0.016)
	assert.Equal(t, int64(2), e.Tick(), "stopped engines ignore ticks")

	e.Start()
	assert.False(t, e.Running())
}

func TestAdvanceCapsWallClock(t *testing.T) {
	e := newTestEngine(t, 5)
	maxDelta := e.Config().Physics.MaxTickDelta
	e.Start()

	e.Advance(5)
	assert.InDelta(t, maxDelta, e.World().Time(), 1e-9)

	e.SetSpeed(10)
	before := e.World().Time()
	e.Advance(5)
	assert.InDelta(t, maxDelta*10, e.World().Time()-before, 1e-9)
}

func TestStepSubsteps(t *testing.T) {
	e := newTestEngine(t, 5)
	e.Config().Physics.MaxSubstep = 0.05

	var frames int
	e.SetRenderCallback(func(*world.World) { frames++ })
	e.Step(0.2)

	assert.InDelta(t, 0.2, e.World().Time(), 1e-9)
	assert.Equal(t, int64(1), e.Tick())
	assert.Equal(t, 1, frames, "render runs once per tick, not per sub-step")
}

func TestControlsClamp(t *testing.T) {
	e := newTestEngine(t, 0)

	e.SetSpeed(100)
	assert.Equal(t, config.MaxSpeed, e.Controls().Speed)
	e.SetSpeed(0)
	assert.Equal(t, config.MinSpeed, e.Controls().Speed)
	e.SetFoodAbundance(-1)
	assert.Equal(t, 0.0, e.Controls().FoodAbundance)
	e.SetMutationRate(1)
	assert.Equal(t, config.MaxMutationRate, e.Controls().MutationRate)
	e.SetTemperature(1e6)
	assert.Equal(t, e.Config().Temperature.Max, e.Controls().Temperature)
}

func TestTemperatureZoneControls(t *testing.T) {
	e := newTestEngine(t, 0)

	e.AddHeatZone(100, 100, 50)
	e.AddColdZone(800, 500, 80)
	require.Len(t, e.World().Zones(), 2)
	assert.Greater(t, e.World().TemperatureAt(100, 100), e.Controls().Temperature)
	assert.Less(t, e.World().TemperatureAt(800, 500), e.Controls().Temperature)

	e.ClearTemperatureZones(false)
	assert.Empty(t, e.World().Zones())

	e.SetRandomZonesEnabled(false)
	assert.False(t, e.Controls().RandomZones)
}

func TestResetAppliesStagedConfig(t *testing.T) {
	e := newTestEngine(t, 10)
	e.SetSpeed(3)
	e.Start()
	e.Advance(0.05)

	next := config.Default()
	next.Population.Initial = 4
	e.ApplyConfig(next)
	assert.Equal(t, 10, e.Config().Population.Initial, "staged until reset")

	e.Reset()
	assert.Same(t, next, e.Config())
	assert.Equal(t, 4, e.World().AliveCount())
	assert.Zero(t, e.Tick())
	assert.Zero(t, e.World().Time())
	assert.Equal(t, 3.0, e.Controls().Speed, "controls survive reset")
	assert.True(t, e.Running())
}

func TestStatsCallback(t *testing.T) {
	e := newTestEngine(t, 10)

	var polls []telemetry.Stats
	e.SetStatsCallback(func(s telemetry.Stats) { polls = append(polls, s) }, 2)
	for i := 0; i < 6; i++ {
		e.Step(1.0 / 60)
	}

	require.Len(t, polls, 3)
	assert.Equal(t, polls[2].Population, e.World().AliveCount())
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Population.Initial = 15
	e, err := NewEngine(cfg, Options{Seed: 2, OutputDir: dir, StatsWindowSec: 0.1})
	require.NoError(t, err)

	var windows []telemetry.WindowStats
	e.SetWindowCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	steps := int(math.Round(2 * e.collector.WindowSec() * cfg.Physics.TickRate))
	for i := 0; i < steps; i++ {
		e.Step(1 / cfg.Physics.TickRate)
	}
	require.NoError(t, e.Close())

	require.Len(t, windows, 2)
	assert.Equal(t, e.World().AliveCount(), windows[1].Population)

	for _, name := range []string{"config.yaml", "stats.csv", "species.csv", "perf.csv", "bookmarks.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3, "header plus one row per window")
}

func TestWindowsFollowSimTime(t *testing.T) {
	cfg := config.Default()
	cfg.Population.Initial = 10
	e, err := NewEngine(cfg, Options{Seed: 3, StatsWindowSec: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	var windows []telemetry.WindowStats
	e.SetWindowCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })
	e.SetSpeed(10)
	e.Start()

	// Each frame simulates a sixth of a second at 10x
	for i := 0; i < 12; i++ {
		e.Advance(1.0 / 60)
	}

	require.Len(t, windows, 2)
	assert.InDelta(t, 1.0, windows[0].SimTimeSec, 1e-6)
	assert.InDelta(t, 2.0, windows[1].SimTimeSec, 1e-6)
	assert.Equal(t, int64(6), windows[0].WindowEndTick)
	assert.Equal(t, int64(12), windows[1].WindowEndTick)
}

// windowEnds reads the window_end column of a stats.csv.
func windowEnds(t *testing.T, path string) []int64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.True(t, strings.HasPrefix(lines[0], "window_end,"), "header %q", lines[0])

	var ends []int64
	for _, line := range lines[1:] {
		v, err := strconv.ParseInt(strings.SplitN(line, ",", 2)[0], 10, 64)
		require.NoError(t, err)
		ends = append(ends, v)
	}
	return ends
}

func TestResetRotatesOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Population.Initial = 10
	e, err := NewEngine(cfg, Options{Seed: 4, OutputDir: dir, StatsWindowSec: 0.1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	steps := func(n int) {
		for i := 0; i < n; i++ {
			e.Step(1.0 / 60)
		}
	}
	steps(12)

	next := config.Default()
	next.Population.Initial = 7
	e.ApplyConfig(next)
	e.Reset()
	steps(6)
	require.NoError(t, e.Close())

	rotated := filepath.Join(dir, "reset-001")
	assert.Equal(t, rotated, e.output.Dir())

	first, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, first.Population.Initial)
	second, err := config.Load(filepath.Join(rotated, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7, second.Population.Initial, "snapshot matches the config the reset applied")

	assert.Equal(t, []int64{6, 12}, windowEnds(t, filepath.Join(dir, "stats.csv")))
	assert.Equal(t, []int64{6}, windowEnds(t, filepath.Join(rotated, "stats.csv")), "window_end restarts only in a new file")
}

func TestRunCancel(t *testing.T) {
	e := newTestEngine(t, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, e.Tick(), int64(0))
}

func TestRunStopViaPost(t *testing.T) {
	e := newTestEngine(t, 5)
	e.Post(func() { e.Stop() })

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestLongRunInvariants(t *testing.T) {
	e := newTestEngine(t, 60)
	e.SetSpeed(2)
	e.Start()

	for i := 0; i < 900; i++ {
		e.Advance(1.0 / 60)
	}

	w := e.World()
	stats := w.Stats()
	assert.Equal(t, len(w.Creatures()), stats.Population)
	assert.LessOrEqual(t, stats.Population, e.Config().Population.Max)

	members := 0
	for _, c := range w.Creatures() {
		require.True(t, c.Alive)
		if c.SpeciesID != 0 {
			members++
		}
	}
	assert.Equal(t, members, w.Registry().MemberCount())
	assert.LessOrEqual(t, w.FoodCount(), e.Config().Food.Max)
	assert.LessOrEqual(t, w.CorpseCount(), e.Config().Corpse.Max)
}

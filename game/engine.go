// Package game drives the simulation: it owns the World, orders the
// per-tick phases, converts wall-clock time into simulated time, and exposes
// the control surface used by the CLI and renderers.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/species"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/world"
)

// Options configures an Engine.
type Options struct {
	Seed           int64
	LogStats       bool    // log window stats and perf via slog
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV and config snapshot directory, "" disables
}

// RenderFunc receives the world once per tick. It must not mutate it.
type RenderFunc func(w *world.World)

// StatsFunc receives a stats snapshot every stats interval.
type StatsFunc func(s telemetry.Stats)

// WindowFunc receives every flushed telemetry window.
type WindowFunc func(s telemetry.WindowStats)

// Engine runs one simulation. All methods must be called from the goroutine
// that ticks it; other goroutines go through Post while Run is active.
type Engine struct {
	cfg      *config.Config
	pending  *config.Config // applied on next Reset
	controls *config.Controls
	rng      *rand.Rand
	opts     Options

	world      *world.World
	behavior   *systems.Behavior
	collisions *systems.Collisions

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager

	tick    int64
	running bool
	paused  bool
	stopped bool

	onRender   RenderFunc
	onStats    StatsFunc
	onWindow   WindowFunc
	statsEvery int64

	commands chan func()
}

// NewEngine creates an engine and an initialized world.
func NewEngine(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:      cfg,
		controls: config.NewControls(cfg),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		opts:     opts,
		commands: make(chan func(), 64),
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	e.output = output
	if err := e.output.WriteConfig(cfg); err != nil {
		_ = e.output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	e.build()
	return e, nil
}

// build constructs a fresh world and telemetry from e.cfg.
func (e *Engine) build() {
	cfg := e.cfg
	registry := species.NewRegistry(cfg.Species.Threshold)
	e.world = world.New(cfg, e.controls, registry, e.rng)
	e.behavior = systems.NewBehavior(e.world)
	e.collisions = systems.NewCollisions(e.world)

	window := cfg.Telemetry.StatsWindow
	if e.opts.StatsWindowSec > 0 {
		window = e.opts.StatsWindowSec
	}
	e.collector = telemetry.NewCollector(window)
	e.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	e.bookmarks = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize)
	e.world.SetRecorder(e.collector)

	e.tick = 0
	e.world.Initialize(cfg.Population.Initial)
}

func (e *Engine) nominalDT() float64 {
	if e.cfg.Physics.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / e.cfg.Physics.TickRate
}

// Start begins scheduling ticks.
func (e *Engine) Start() {
	if e.stopped {
		return
	}
	e.running = true
	e.paused = false
	slog.Info("simulation_started", "population", e.world.AliveCount(), "food", e.world.FoodCount())
}

// Pause stops scheduling ticks without discarding state.
func (e *Engine) Pause() {
	if e.running {
		e.paused = true
	}
}

// Resume continues after Pause.
func (e *Engine) Resume() {
	if e.running {
		e.paused = false
	}
}

// Stop ends the run. A stopped engine ignores further ticks and Start.
func (e *Engine) Stop() {
	e.running = false
	e.stopped = true
}

// Reset discards the world and builds a new one, applying any config staged
// with ApplyConfig. Controls keep their values, re-clamped to the new config.
// A stopped engine can be started again after Reset.
func (e *Engine) Reset() {
	if e.pending != nil {
		old := e.controls
		e.cfg = e.pending
		e.pending = nil
		e.controls = config.NewControls(e.cfg)
		e.controls.SetSpeed(old.Speed)
		e.controls.SetTemperature(old.Temperature)
		e.controls.SetFoodAbundance(old.FoodAbundance)
		e.controls.SetMutationRate(old.MutationRate)
		e.controls.RandomZones = old.RandomZones
	}
	e.stopped = false
	if err := e.output.Rotate(e.cfg); err != nil {
		slog.Error("failed to rotate output", "error", err)
	}
	e.build()
	slog.Info("simulation_reset", "population", e.world.AliveCount(), "food", e.world.FoodCount(), "output", e.output.Dir())
}

// ApplyConfig stages cfg to take effect on the next Reset.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	if cfg != nil {
		e.pending = cfg
	}
}

// Advance simulates wall-clock time wallDt. The delta is capped before the
// speed multiplier is applied, and the result is split into sub-steps no
// longer than physics.max_substep. Does nothing unless started and not paused.
func (e *Engine) Advance(wallDt float64) {
	if !e.running || e.paused || wallDt <= 0 {
		return
	}
	simDt := math.Min(wallDt, e.cfg.Physics.MaxTickDelta) * e.controls.Speed
	e.Step(simDt)
}

// Step runs one tick of simDt simulated seconds regardless of run state.
func (e *Engine) Step(simDt float64) {
	if e.stopped || simDt <= 0 {
		return
	}
	maxStep := e.cfg.Physics.MaxSubstep
	n := 1
	if maxStep > 0 {
		n = int(math.Ceil(simDt / maxStep))
	}
	dt := simDt / float64(n)

	e.perf.StartTick()
	for i := 0; i < n; i++ {
		e.substep(dt)
	}
	e.tick++

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	e.flushTelemetry()
	e.perf.EndTick()

	if e.onRender != nil {
		e.onRender(e.world)
	}
	if e.onStats != nil && e.statsEvery > 0 && e.tick%e.statsEvery == 0 {
		e.onStats(e.world.Stats())
	}
}

// substep runs the phases of one tick in their fixed order.
func (e *Engine) substep(dt float64) {
	w := e.world
	w.AdvanceClock(dt)

	e.perf.StartPhase(telemetry.PhaseFood)
	w.SpawnFood(dt)

	e.perf.StartPhase(telemetry.PhaseMigration)
	w.SpawnMigrants(dt)
	w.SpawnRescueMigrants(dt)
	w.ProcessEmigration(dt)

	e.perf.StartPhase(telemetry.PhaseEnvironment)
	w.UpdateTemperatureZones(dt)
	w.ApplyTemperature(dt)

	e.perf.StartPhase(telemetry.PhaseBehavior)
	w.UpdateSpatialHashes()
	e.behavior.Update(dt)

	e.perf.StartPhase(telemetry.PhaseCollisions)
	e.collisions.Update(dt)

	e.perf.StartPhase(telemetry.PhaseCleanup)
	w.Cleanup()
}

// Run ticks the engine in real time until ctx is cancelled or Stop is
// called. Functions queued with Post run between ticks.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) * e.nominalDT())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.Start()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-e.commands:
			fn()
		case now := <-ticker.C:
			wallDt := now.Sub(last).Seconds()
			last = now
			e.Advance(wallDt)
		}
		if e.stopped {
			return nil
		}
	}
}

// Post queues fn to run on the engine goroutine while Run is active.
func (e *Engine) Post(fn func()) {
	e.commands <- fn
}

// Close flushes and closes experiment output.
func (e *Engine) Close() error {
	return e.output.Close()
}

// Callbacks.

func (e *Engine) SetRenderCallback(fn RenderFunc) { e.onRender = fn }
func (e *Engine) SetWindowCallback(fn WindowFunc) { e.onWindow = fn }

// SetStatsCallback polls World.Stats every everyTicks ticks.
func (e *Engine) SetStatsCallback(fn StatsFunc, everyTicks int64) {
	e.onStats = fn
	e.statsEvery = everyTicks
}

// Controls.

func (e *Engine) SetSpeed(v float64)         { e.controls.SetSpeed(v) }
func (e *Engine) SetTemperature(v float64)   { e.controls.SetTemperature(v) }
func (e *Engine) SetFoodAbundance(v float64) { e.controls.SetFoodAbundance(v) }
func (e *Engine) SetMutationRate(v float64)  { e.controls.SetMutationRate(v) }

func (e *Engine) AddHeatZone(x, y, radius float64) { e.world.AddHeatZone(x, y, radius) }
func (e *Engine) AddColdZone(x, y, radius float64) { e.world.AddColdZone(x, y, radius) }

// ClearTemperatureZones removes manual zones, and random ones too when
// includeRandom is set.
func (e *Engine) ClearTemperatureZones(includeRandom bool) {
	e.world.ClearTemperatureZones(includeRandom)
}

// SetRandomZonesEnabled toggles random zone spawning. Existing random zones
// run out their lifetime.
func (e *Engine) SetRandomZonesEnabled(enabled bool) {
	e.controls.RandomZones = enabled
}

// Accessors.

func (e *Engine) World() *world.World        { return e.world }
func (e *Engine) Config() *config.Config     { return e.cfg }
func (e *Engine) Controls() *config.Controls { return e.controls }
func (e *Engine) Tick() int64                { return e.tick }
func (e *Engine) Running() bool              { return e.running && !e.paused }
func (e *Engine) Paused() bool               { return e.paused }
func (e *Engine) Stats() telemetry.Stats     { return e.world.Stats() }

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	speed := flag.Float64("speed", 1, "Simulation speed multiplier (0.1-10)")
	realtime := flag.Bool("realtime", false, "Tick on a wall-clock ticker instead of as fast as possible")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window length in sim-seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	e, err := game.NewEngine(cfg, game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := e.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	e.SetSpeed(*speed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"realtime", *realtime,
		"speed", e.Controls().Speed,
		"max_ticks", *maxTicks,
		"population", e.World().AliveCount(),
	)

	if *maxTicks > 0 {
		e.SetRenderCallback(func(*world.World) {
			if e.Tick() >= *maxTicks {
				slog.Info("max ticks reached", "tick", e.Tick())
				e.Stop()
			}
		})
	}

	if *realtime {
		if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("simulation failed", "error", err)
		}
	} else {
		runHeadless(ctx, e)
	}

	slog.Info("simulation finished", "tick", e.Tick(), "stats", e.Stats())
}

// runHeadless ticks as fast as possible with a nominal wall-clock delta per
// tick until stopped or interrupted.
func runHeadless(ctx context.Context, e *game.Engine) {
	dt := 1 / e.Config().Physics.TickRate
	e.Start()
	for e.Running() {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", e.Tick())
			return
		default:
		}
		e.Advance(dt)
	}
}

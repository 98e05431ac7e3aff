// Package main searches for simulation parameters that keep a diet-diverse
// ecosystem alive, using CMA-ES over headless engine runs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/critters/config"
)

type options struct {
	configPath  string
	outputDir   string
	maxTicks    int64
	seeds       int
	seedBase    int64
	maxEvals    int
	population  int
	stepSize    float64
	statsWindow float64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Int64Var(&opts.maxTicks, "max-ticks", 216000, "Tick cap per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Runs per evaluation, each with its own seed")
	flag.Int64Var(&opts.seedBase, "seed-base", 42, "First evaluation seed")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&opts.stepSize, "step", 0.3, "Initial CMA-ES step size in normalized units")
	flag.Float64Var(&opts.statsWindow, "stats-window", 10, "Telemetry window in sim-seconds used for quality scoring")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize_failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if opts.seeds < 1 {
		return fmt.Errorf("-seeds must be positive, got %d", opts.seeds)
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = opts.seedBase + int64(i)*1000
	}
	evaluator := NewFitnessEvaluator(params, opts.maxTicks, seeds, baseCfg)
	evaluator.statsWindow = opts.statsWindow

	evalLog, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer evalLog.Close()

	popSize := opts.population
	if popSize <= 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	prog := newProgress(opts.maxEvals, baseCfg.Physics.TickRate)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			used := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(used)
			quality := evaluator.LastQuality()

			n := prog.record(fitness, used)
			if err := evalLog.Append(n, fitness, quality, used); err != nil {
				slog.Warn("eval_log_write_failed", "error", err)
			}
			prog.log(n, fitness, quality)
			return fitness
		},
	}

	slog.Info("optimize_started",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_ticks", opts.maxTicks,
	)

	// Start from the base config, not the table defaults, so a tuned config
	// can be refined further.
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))
	result, err := optimize.Minimize(problem, initX,
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: opts.stepSize, Population: popSize},
	)
	if err != nil {
		// Hitting the evaluation budget is reported as an error; the best
		// point so far is still usable.
		slog.Info("optimize_stopped", "reason", err)
	}

	best := prog.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluations completed")
	}

	attrs := make([]any, 0, 2*params.Dim())
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Path, best[i])
	}
	slog.Info("optimize_finished",
		"evals", prog.evals,
		"best_fitness", prog.bestFitness,
		"elapsed", prog.elapsed().String(),
	)
	slog.Info("best_params", attrs...)

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best_config_written", "path", out)
	return nil
}

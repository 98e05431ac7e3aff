package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Collapse detection. Founders are all herbivores, so predators get a warmup
// period to evolve before their absence counts against the run.
const (
	warmupSec          = 120.0
	extinctionGraceSec = 60.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64 // ticks before collapse (or maxTicks if survived)
	windowStats   []telemetry.WindowStats
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: computeFitness(result),
				quality: computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until the ecosystem
// collapses or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	e, err := game.NewEngine(cfg, game.Options{Seed: seed, StatsWindowSec: fe.statsWindow})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		return result
	}
	defer e.Close()
	e.SetWindowCallback(func(s telemetry.WindowStats) {
		result.windowStats = append(result.windowStats, s)
	})

	dt := 1 / cfg.Physics.TickRate
	var noPredatorSec float64

	for e.Tick() < fe.maxTicks {
		e.Step(dt)

		s := e.World().Sample()
		if s.Population == 0 || s.Herbivores == 0 {
			result.survivalTicks = e.Tick()
			return result
		}
		if e.World().Time() < warmupSec {
			continue
		}
		if s.Omnivores+s.Carnivores == 0 {
			noPredatorSec += dt
		} else {
			noPredatorSec = 0
		}
		if noPredatorSec >= extinctionGraceSec {
			result.survivalTicks = e.Tick()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% to separate similar runs.
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDiet      = 0.35
	qualityWeightSpecies   = 0.25
	qualityWeightStability = 0.20
	qualityWeightEnergy    = 0.20

	qualityWarmupWindows = 3 // skip first N windows
)

// computeQuality scores ecosystem quality in [0, 1] from window stats:
// diet spread, species richness, population stability and energy health.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var dietSum, speciesSum, energySum float64
	pops := make([]float64, 0, len(valid))
	for _, w := range valid {
		if w.Population == 0 {
			continue
		}
		pops = append(pops, float64(w.Population))

		// Diet spread peaks around a std of 0.25 across the axis
		dietSum += math.Exp(-math.Pow((w.DietStd-0.25)/0.12, 2))
		speciesSum += 1 - math.Exp(-float64(w.ActiveSpecies)/5)
		energySum += math.Exp(-math.Pow((w.EnergyP50-0.5)/0.2, 2))
	}
	if len(pops) == 0 {
		return 0
	}
	n := float64(len(pops))

	stability := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			cv := std / mean
			stability = math.Exp(-cv * cv)
		}
	}

	quality := qualityWeightDiet*dietSum/n +
		qualityWeightSpecies*speciesSum/n +
		qualityWeightStability*stability +
		qualityWeightEnergy*energySum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/artlife/config"
	"github.com/pthm-cable/artlife/game"
	"github.com/pthm-cable/artlife/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before the first extinction (or maxTicks)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	maxCells      int
	err           error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks scaled by quality: a lineage that
// avoids extinction for longer scores lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))

	// Each seed gets its own game; nothing is shared between them.
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runSimulation(x, s)
			quality[idx] = computeQuality(r.windowStats, r.maxCells)
			fitness[idx] = computeFitness(r, quality[idx])
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastQuality = stat.Mean(quality, nil)
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless simulation run until the first
// extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{maxCells: cfg.Population.MaxCells}

	g, err := game.New(cfg, game.Options{
		Seed:   seed,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Close()

	for g.Tick() < fe.maxTicks {
		if _, err := g.Step(); err != nil {
			result.err = err
			result.survivalTicks = g.Tick()
			return result
		}
		if g.Round() > 0 {
			result.survivalTicks = g.Tick()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival. Failed runs score 0.
func computeFitness(r *runResult, quality float64) float64 {
	if r.err != nil {
		return 0
	}
	return -(float64(r.survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightOccupancy = 0.40
	qualityWeightStability = 0.30
	qualityWeightForaging  = 0.30

	qualityWarmupWindows = 2 // skip first N windows (warmup)
)

// computeQuality computes population quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats, maxCells int) float64 {
	if len(windows) <= qualityWarmupWindows || maxCells <= 0 {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	pops := make([]float64, 0, len(valid))
	var foodPerAgent float64
	for _, w := range valid {
		if w.Population == 0 {
			continue
		}
		pops = append(pops, float64(w.Population))
		foodPerAgent += float64(w.FoodEaten) / float64(w.Population)
	}
	if len(pops) == 0 {
		return 0
	}

	// 1. Occupancy: how close the population stays to the cap
	mean, std := stat.MeanStdDev(pops, nil)
	occupancy := mean / float64(maxCells)

	// 2. Stability: low coefficient of variation across windows
	stability := 0.0
	if len(pops) >= 2 && mean > 0 {
		cv := std / mean
		stability = math.Exp(-cv * cv)
	}

	// 3. Foraging: food eaten per agent per window, saturating
	foraging := 1 - math.Exp(-foodPerAgent/float64(len(pops)))

	return clamp01(qualityWeightOccupancy*occupancy +
		qualityWeightStability*stability +
		qualityWeightForaging*foraging)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

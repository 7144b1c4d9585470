package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end
	Population    int `csv:"population"`
	FoodCount     int `csv:"food"`
	MaxGeneration int `csv:"max_generation"`

	// Events during window
	CrossoverBirths  int `csv:"births_crossover"`
	MutationBirths   int `csv:"births_mutation"`
	Seeded           int `csv:"seeded"`
	StarvationDeaths int `csv:"deaths_starvation"`
	BoundaryDeaths   int `csv:"deaths_boundary"`
	AttackDeaths     int `csv:"deaths_attack"`
	Attacks          int `csv:"attacks"`
	Repopulations    int `csv:"repopulations"`

	// Feeding
	FoodEaten      int `csv:"food_eaten"`       // During this window
	FoodEatenRound int `csv:"food_eaten_round"` // Since the last repopulation
	FoodEatenTotal int `csv:"food_eaten_total"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Genome drift: distribution of per-agent mean |weight|
	WeightMean float64 `csv:"weight_mean"`
	WeightStd  float64 `csv:"weight_std"`
}

// Births returns the number of children born during the window.
func (s WindowStats) Births() int {
	return s.CrossoverBirths + s.MutationBirths
}

// Deaths returns the number of agents removed during the window.
func (s WindowStats) Deaths() int {
	return s.StarvationDeaths + s.BoundaryDeaths + s.AttackDeaths
}

// Summary is the mean, standard deviation and deciles of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes a Summary. Quantiles use the empirical inverse CDF.
// An empty sample yields all zeros; a single value has zero deviation.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	if n == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("population", s.Population),
		slog.Int("food", s.FoodCount),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Int("births_crossover", s.CrossoverBirths),
		slog.Int("births_mutation", s.MutationBirths),
		slog.Int("seeded", s.Seeded),
		slog.Int("deaths_starvation", s.StarvationDeaths),
		slog.Int("deaths_boundary", s.BoundaryDeaths),
		slog.Int("deaths_attack", s.AttackDeaths),
		slog.Int("attacks", s.Attacks),
		slog.Int("repopulations", s.Repopulations),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("food_eaten_round", s.FoodEatenRound),
		slog.Int("food_eaten_total", s.FoodEatenTotal),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("weight_mean", s.WeightMean),
		slog.Float64("weight_std", s.WeightStd),
	)
}

// LogStats logs the window stats to logger.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.Info("stats", "window", s)
}

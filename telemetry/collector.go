package telemetry

import "github.com/pthm-cable/artlife/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	crossoverBirths  int
	mutationBirths   int
	seeded           int
	starvationDeaths int
	boundaryDeaths   int
	attackDeaths     int
	attacks          int
	foodEaten        int
	repopulations    int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int32(windowTicks)}
}

// RecordBirth records a new agent.
func (c *Collector) RecordBirth(mode BirthMode) {
	switch mode {
	case BirthCrossover:
		c.crossoverBirths++
	case BirthMutation:
		c.mutationBirths++
	default:
		c.seeded++
	}
}

// RecordDeath records a removed agent.
func (c *Collector) RecordDeath(cause components.DeathCause) {
	switch cause {
	case components.CauseBoundary:
		c.boundaryDeaths++
	case components.CauseAttack:
		c.attackDeaths++
	default:
		c.starvationDeaths++
	}
}

// RecordAttack records a successful attack.
func (c *Collector) RecordAttack() {
	c.attacks++
}

// RecordFoodEaten records n consumed food items.
func (c *Collector) RecordFoodEaten(n int) {
	c.foodEaten += n
}

// RecordRepopulation records an extinction followed by reseeding.
func (c *Collector) RecordRepopulation() {
	c.repopulations++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the population state measured at the end of a window.
type Sample struct {
	Population     int
	FoodCount      int
	FoodEatenRound int
	FoodEatenTotal int
	MaxGeneration  int
	Energies       []float64 // One per live agent
	MeanAbsWeights []float64 // One per live agent
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	energy := Summarize(s.Energies)
	weights := Summarize(s.MeanAbsWeights)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population:    s.Population,
		FoodCount:     s.FoodCount,
		MaxGeneration: s.MaxGeneration,

		CrossoverBirths:  c.crossoverBirths,
		MutationBirths:   c.mutationBirths,
		Seeded:           c.seeded,
		StarvationDeaths: c.starvationDeaths,
		BoundaryDeaths:   c.boundaryDeaths,
		AttackDeaths:     c.attackDeaths,
		Attacks:          c.attacks,
		Repopulations:    c.repopulations,

		FoodEaten:      c.foodEaten,
		FoodEatenRound: s.FoodEatenRound,
		FoodEatenTotal: s.FoodEatenTotal,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		WeightMean: weights.Mean,
		WeightStd:  weights.Std,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.crossoverBirths = 0
	c.mutationBirths = 0
	c.seeded = 0
	c.starvationDeaths = 0
	c.boundaryDeaths = 0
	c.attackDeaths = 0
	c.attacks = 0
	c.foodEaten = 0
	c.repopulations = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

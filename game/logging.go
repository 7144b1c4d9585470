package game

import "math"

// logWorldState logs a one-line summary of the current world.
func (g *Game) logWorldState() {
	var energySum float64
	minEnergy, maxEnergy := math.Inf(1), 0.0
	var oldest int32

	for _, e := range g.agents {
		v := g.energyMap.Get(e).Value
		energySum += v
		minEnergy = min(minEnergy, v)
		maxEnergy = max(maxEnergy, v)

		if ls := g.lifetimeTracker.Get(g.orgMap.Get(e).ID); ls != nil {
			oldest = max(oldest, ls.Age(g.tick))
		}
	}

	avgEnergy := 0.0
	if n := len(g.agents); n > 0 {
		avgEnergy = energySum / float64(n)
	} else {
		minEnergy = 0
	}

	g.logger.Info("world",
		"tick", g.tick,
		"agents", len(g.agents),
		"food", len(g.foods),
		"energy_avg", avgEnergy,
		"energy_min", minEnergy,
		"energy_max", maxEnergy,
		"oldest_age", oldest,
		"max_generation", g.lifetimeTracker.MaxGeneration(),
		"history", g.history.Len(),
		"food_eaten_round", g.foodEatenRound,
		"food_eaten_total", g.foodEatenTotal,
	)
}

// LogSummary logs the world state and the final counters. Called once when
// a run ends.
func (g *Game) LogSummary() {
	g.logWorldState()
	g.logger.Info("run_finished",
		"tick", g.tick,
		"next_id", g.nextID,
		"stopped", g.Stopped(),
	)
}

package game

import "github.com/pthm-cable/artlife/telemetry"

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWindow())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats(g.logger)
		perfStats.LogStats(g.logger)
		g.logWorldState()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark(g.logger)
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			g.logger.Error("failed to write bookmark", "error", err)
		}
	}
}

// sampleWindow measures the live population for the window being flushed.
func (g *Game) sampleWindow() telemetry.Sample {
	s := telemetry.Sample{
		Population:     len(g.agents),
		FoodCount:      len(g.foods),
		FoodEatenRound: g.foodEatenRound,
		FoodEatenTotal: g.foodEatenTotal,
		MaxGeneration:  g.lifetimeTracker.MaxGeneration(),
		Energies:       make([]float64, 0, len(g.agents)),
		MeanAbsWeights: make([]float64, 0, len(g.agents)),
	}

	// Iterate the whole query so the world lock is released.
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, energy, org := query.Get()
		s.Energies = append(s.Energies, energy.Value)
		if brain, ok := g.brains[org.ID]; ok {
			s.MeanAbsWeights = append(s.MeanAbsWeights, brain.Genome().MeanAbsWeight())
		}
	}
	return s
}

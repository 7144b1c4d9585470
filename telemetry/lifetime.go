package telemetry

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int32
	Generation int // 0 for seeded agents, parent's + 1 for children
	Mode       BirthMode

	Children   int
	FoodEaten  int
	Kills      int
	PeakEnergy float64
}

// Age returns the number of ticks the agent has lived as of currentTick.
func (s *LifetimeStats) Age(currentTick int32) int32 {
	return currentTick - s.BirthTick
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint32, birthTick int32, generation int, mode BirthMode) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:  birthTick,
		Generation: generation,
		Mode:       mode,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordFood adds n consumed food items.
func (lt *LifetimeTracker) RecordFood(id uint32, n int) {
	if s := lt.stats[id]; s != nil {
		s.FoodEaten += n
	}
}

// RecordKill increments kill count.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Generation returns the agent's generation, or 0 if it is not tracked.
func (lt *LifetimeTracker) Generation(id uint32) int {
	if s := lt.stats[id]; s != nil {
		return s.Generation
	}
	return 0
}

// MaxGeneration returns the highest generation among tracked agents.
func (lt *LifetimeTracker) MaxGeneration() int {
	best := 0
	for _, s := range lt.stats {
		best = max(best, s.Generation)
	}
	return best
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

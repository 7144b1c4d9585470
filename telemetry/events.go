// Package telemetry provides windowed population statistics, event
// bookmarking, per-phase timing and CSV output for simulation runs.
package telemetry

// BirthMode records how a child's genome was produced.
type BirthMode uint8

const (
	BirthCrossover BirthMode = iota
	BirthMutation
	BirthSeed // Seeding and repopulation
)

// String returns the mode name used in logs.
func (m BirthMode) String() string {
	switch m {
	case BirthCrossover:
		return "crossover"
	case BirthMutation:
		return "mutation"
	default:
		return "seed"
	}
}

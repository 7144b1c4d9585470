// Package components defines ECS components for the simulation.
package components

// Kind identifies what a perceived entity is.
type Kind uint8

const (
	KindWall Kind = iota // Nothing seen; reported as an implicit wall
	KindAgent
	KindFood
)

// String returns the kind name used in logs and telemetry.
func (k Kind) String() string {
	switch k {
	case KindAgent:
		return "agent"
	case KindFood:
		return "food"
	default:
		return "wall"
	}
}

// DeathCause records why an agent was removed.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseBoundary
	CauseAttack
)

// String returns the cause name used in logs and telemetry.
func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseBoundary:
		return "boundary"
	case CauseAttack:
		return "attack"
	default:
		return "none"
	}
}

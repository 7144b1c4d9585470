// Package systems contains the per-agent rules of the simulation: motion,
// boundary handling, perception, sensory encoding and energy bookkeeping.
package systems

import (
	"math"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/config"
)

// Gravity returns the velocity change on body self from every other body in
// positions. Each pulls with strength force/(d²+1) scaled by the offset
// toward it, so coincident bodies exert nothing. Bodies for which skip
// returns true are ignored.
func Gravity(self int, positions []components.Position, skip func(j int) bool, force float64) (dvx, dvy float64) {
	p := positions[self]
	for j, q := range positions {
		if j == self || (skip != nil && skip(j)) {
			continue
		}
		dx := q.X - p.X
		dy := q.Y - p.Y
		f := force / (dx*dx + dy*dy + 1)
		dvx += dx * f
		dvy += dy * f
	}
	return dvx, dvy
}

// Move integrates the velocity into the position and applies the boundary
// policy, first horizontally then vertically. With bouncing enabled a crossed
// axis has its velocity reflected and damped and the position integrated
// once more along it. Move returns false when the agent crossed a wall with
// bouncing disabled and must be removed.
func Move(pos *components.Position, mot *components.Motion, b Boundary, cfg config.PhysicsConfig) bool {
	pos.X += mot.VX
	pos.Y += mot.VY

	if b.CrossedX(pos.X) {
		if !cfg.Bounce {
			return false
		}
		mot.VX = -mot.VX * cfg.BounceEffect
		pos.X += mot.VX
	}
	if b.CrossedY(pos.Y) {
		if !cfg.Bounce {
			return false
		}
		mot.VY = -mot.VY * cfg.BounceEffect
		pos.Y += mot.VY
	}
	return true
}

// Steer applies the turn and speed outputs of the controller. Heading is
// accumulated, speed is set, and the velocity is rebuilt from both.
func Steer(mot *components.Motion, turn, speed float64, cfg config.MovementConfig) {
	mot.Heading += finiteOr(turn, 0) * cfg.TurnScale
	mot.Speed = math.Abs(cfg.SpeedScale * finiteOr(speed, 0))
	SetVelocity(mot)
}

// SetVelocity rebuilds the velocity vector from heading and speed.
func SetVelocity(mot *components.Motion) {
	mot.VX = math.Cos(mot.Heading) * mot.Speed
	mot.VY = math.Sin(mot.Heading) * mot.Speed
}

// VelocityHeading returns the direction of travel, which may differ from
// the stored heading after gravity or a bounce.
func VelocityHeading(mot components.Motion) float64 {
	return math.Atan2(mot.VY, mot.VX)
}

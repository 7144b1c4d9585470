package components

import "github.com/mlange-42/ark/ecs"

// Energy tracks an agent's energy budget, clamped to [0, max].
type Energy struct {
	Value float64
}

// Color is an agent's display tag. It has no effect on the simulation and is
// inherited by children and by agents reseeded from history.
type Color struct {
	R, G, B uint8
}

// Ray is the result of one perception ray cast.
// Distance is -1 when nothing was seen; exactly one of Wall, Bug, Food is 1.
type Ray struct {
	Distance float64
	Wall     float64
	Bug      float64
	Food     float64
}

// NoHit is the ray reported when nothing covers the ray direction.
var NoHit = Ray{Distance: -1, Wall: 1}

// Ray indices within Organism.Rays.
const (
	RayLeft = iota
	RayCenter
	RayRight
	NumRays
)

// Organism bundles an agent's identity, perception and controller outputs.
type Organism struct {
	ID    uint32
	Color Color

	// Perception from the last tick
	Rays [NumRays]Ray

	// Target is the agent seen by the last ray cast, zero when that ray saw
	// none. It is a non-owning handle: the game resolves it against the
	// agents still alive in the current tick before acting on it.
	Target ecs.Entity

	// Fire is the controller's third output. It only has an effect when the
	// attack gesture is enabled.
	Fire float64
}

// Food marks an entity as a food item.
type Food struct{}

package components

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Motion holds an agent's heading state and the velocity derived from it.
// Heading is the controller's accumulated steering angle; VX, VY may point
// elsewhere after gravity or a bounce until the controller recomputes them.
type Motion struct {
	Heading float64 // radians
	Speed   float64 // non-negative scalar speed chosen by the controller
	VX, VY  float64
}

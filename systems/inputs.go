package systems

import (
	"math"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/config"
)

// EncodeInputs builds the sensory vector fed to the controller:
//
//	[0:3]   centre ray one-hot (wall, bug, food)
//	[3:6]   left ray one-hot
//	[6:9]   right ray one-hot
//	[9]     heading / 2π
//	[10]    speed / speed norm
//	[11:14] log distance of centre, left and right rays
//	[14]    energy / energy norm
//
// The result always has config.SensoryInputs entries.
func EncodeInputs(rays [components.NumRays]components.Ray, heading, speed, energy float64, cfg config.SensorsConfig) []float64 {
	in := make([]float64, 0, config.SensoryInputs)
	for _, r := range []int{components.RayCenter, components.RayLeft, components.RayRight} {
		in = append(in, rays[r].Wall, rays[r].Bug, rays[r].Food)
	}
	in = append(in,
		heading/(2*math.Pi),
		speed/cfg.SpeedNorm,
		logDistance(rays[components.RayCenter].Distance, cfg),
		logDistance(rays[components.RayLeft].Distance, cfg),
		logDistance(rays[components.RayRight].Distance, cfg),
		energy/cfg.EnergyNorm,
	)
	for i, v := range in {
		in[i] = finiteOr(v, 0)
	}
	return in
}

// logDistance compresses a ray distance. A miss reads as the no-hit
// distance and a contact as 1, so the logarithm is always defined.
func logDistance(d float64, cfg config.SensorsConfig) float64 {
	switch {
	case d < 0:
		d = cfg.NoHitDistance
	case d == 0:
		d = 1
	}
	return math.Log(d) / cfg.LogScale
}

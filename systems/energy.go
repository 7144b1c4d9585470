package systems

import (
	"math"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/config"
)

// MinLivingEnergy is the energy below which an agent dies.
const MinLivingEnergy = 1.0

// RadiusFor returns the body radius for an energy level.
func RadiusFor(energy float64, cfg config.EntityConfig) float64 {
	return cfg.BaseRadius + cfg.RadiusGrowth*math.Abs(energy)/cfg.MaxEnergy
}

// SetEnergy stores v clamped to [0, max] and keeps the radius in sync.
// A non-finite value is treated as zero.
func SetEnergy(energy *components.Energy, body *components.Body, v float64, cfg config.EntityConfig) {
	v = finiteOr(v, 0)
	if v < 0 {
		v = 0
	} else if v > cfg.MaxEnergy {
		v = cfg.MaxEnergy
	}
	energy.Value = v
	body.Radius = RadiusFor(v, cfg)
}

// MetabolicCost returns the energy drained by one tick at the given speed.
func MetabolicCost(speed float64, cfg config.EnergyConfig) float64 {
	return math.Abs(speed*cfg.MoveCost) + cfg.LivingCost
}

// Starved reports whether an agent with this energy must be removed.
func Starved(energy float64) bool {
	return energy < MinLivingEnergy
}

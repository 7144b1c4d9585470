package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a configuration cannot drive an engine.
var ErrInvalidConfig = errors.New("invalid configuration")

// SensoryInputs is the number of values produced by sensing each tick:
// three rays of (wall, bug, food, distance) plus heading, speed and energy.
const SensoryInputs = 15

// Validate checks the configuration for values the engine cannot run with.
// All problems are reported together, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	// Neural
	if c.Neural.Inputs <= 0 || c.Neural.Outputs <= 0 {
		fail("neural layer sizes must be positive (inputs=%d, outputs=%d)", c.Neural.Inputs, c.Neural.Outputs)
	}
	for i, h := range c.Neural.HiddenLayers {
		if h <= 0 {
			fail("neural.hidden_layers[%d] must be positive, got %d", i, h)
		}
	}
	if c.Neural.Outputs < 2 {
		fail("neural.outputs must be at least 2 (turn, speed), got %d", c.Neural.Outputs)
	}
	if c.Neural.Inputs-c.Neural.Outputs != SensoryInputs {
		fail("neural.inputs must equal %d sensory values + %d feedback, got %d",
			SensoryInputs, c.Neural.Outputs, c.Neural.Inputs)
	}

	// Population
	if c.Population.Initial <= 0 {
		fail("population.initial must be positive, got %d", c.Population.Initial)
	}
	if c.Population.MaxCells < c.Population.Initial {
		fail("population.max_cells (%d) is below population.initial (%d)", c.Population.MaxCells, c.Population.Initial)
	}
	if c.Population.HistorySize <= 0 {
		fail("population.history_size must be positive, got %d", c.Population.HistorySize)
	}

	// Food
	if c.Food.Count < 0 {
		fail("food.count must not be negative, got %d", c.Food.Count)
	}
	if c.Food.Radius <= 0 {
		fail("food.radius must be positive, got %g", c.Food.Radius)
	}

	// Entity
	if c.Entity.MaxEnergy <= 0 {
		fail("entity.max_energy must be positive, got %g", c.Entity.MaxEnergy)
	}
	if c.Entity.DefaultEnergy < 1 || c.Entity.DefaultEnergy > c.Entity.MaxEnergy {
		fail("entity.default_energy must be in [1, max_energy], got %g", c.Entity.DefaultEnergy)
	}
	if c.Entity.BaseRadius <= 0 || c.Entity.RadiusGrowth < 0 {
		fail("entity radius parameters must be positive (base=%g, growth=%g)", c.Entity.BaseRadius, c.Entity.RadiusGrowth)
	}

	// Probabilities
	checkProb := func(name string, v float64) {
		if v < 0 || v > 1 {
			fail("%s must be in [0, 1], got %g", name, v)
		}
	}
	checkProb("reproduction.division_suppression", c.Reproduction.DivisionSuppression)
	checkProb("reproduction.crossing_probability", c.Reproduction.CrossingProbability)

	// Costs and rates
	checkNonNeg := func(name string, v float64) {
		if v < 0 {
			fail("%s must not be negative, got %g", name, v)
		}
	}
	checkNonNeg("reproduction.division_cost", c.Reproduction.DivisionCost)
	checkNonNeg("reproduction.child_max_speed", c.Reproduction.ChildMaxSpeed)
	checkNonNeg("mutation.rate", c.Mutation.Rate)
	checkNonNeg("energy.living_cost", c.Energy.LivingCost)
	checkNonNeg("energy.move_cost", c.Energy.MoveCost)
	checkNonNeg("food.energy", c.Food.Energy)
	checkNonNeg("physics.bounce_effect", c.Physics.BounceEffect)

	// World
	if c.World.Width <= 0 || c.World.Height <= 0 {
		fail("world dimensions must be positive (%gx%g)", c.World.Width, c.World.Height)
	}
	if c.World.WallThickness < 0 || 2*c.World.WallThickness >= min(c.World.Width, c.World.Height) {
		fail("world.wall_thickness %g leaves no interior", c.World.WallThickness)
	}
	if c.Derived.SpawnExtent <= 0 {
		fail("world.spawn_extent must be positive, got %g", c.Derived.SpawnExtent)
	}
	if c.World.GridCellSize <= 0 {
		fail("world.grid_cell_size must be positive, got %g", c.World.GridCellSize)
	}

	// Sensors
	if c.Sensors.NoHitDistance <= 1 || c.Sensors.LogScale <= 0 || c.Sensors.SpeedNorm <= 0 || c.Sensors.EnergyNorm <= 0 {
		fail("sensor normalisation constants must be positive")
	}

	// Telemetry
	if c.Telemetry.StatsWindow <= 0 {
		fail("telemetry.stats_window must be positive, got %d", c.Telemetry.StatsWindow)
	}

	return errors.Join(errs...)
}

// Package config provides configuration loading for the simulation engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// A loaded Config is treated as read-only for the lifetime of a run.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Population   PopulationConfig   `yaml:"population"`
	Food         FoodConfig         `yaml:"food"`
	Entity       EntityConfig       `yaml:"entity"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Movement     MovementConfig     `yaml:"movement"`
	Energy       EnergyConfig       `yaml:"energy"`
	Neural       NeuralConfig       `yaml:"neural"`
	Sensors      SensorsConfig      `yaml:"sensors"`
	Attack       AttackConfig       `yaml:"attack"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the boundary rectangle and the spawn area.
// The boundary is centred on (CenterX, CenterY); the wall band is
// WallThickness wide and lies inside the rectangle.
type WorldConfig struct {
	CenterX       float64 `yaml:"center_x"`
	CenterY       float64 `yaml:"center_y"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	WallThickness float64 `yaml:"wall_thickness"`
	SpawnExtent   float64 `yaml:"spawn_extent"` // Spawns are uniform in centre ± this (0 = inner edge of the wall band)
	GridCellSize  float64 `yaml:"grid_cell_size"`
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial     int `yaml:"initial"`      // Seed count, also the repopulation batch size
	MaxCells    int `yaml:"max_cells"`    // Hard cap
	HistorySize int `yaml:"history_size"` // Removed-agent history capacity
}

// FoodConfig holds food item parameters.
type FoodConfig struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
	Energy float64 `yaml:"energy"` // Energy gained per item eaten
}

// EntityConfig holds agent creation parameters.
type EntityConfig struct {
	DefaultEnergy float64 `yaml:"default_energy"`
	MaxEnergy     float64 `yaml:"max_energy"`
	BaseRadius    float64 `yaml:"base_radius"`
	RadiusGrowth  float64 `yaml:"radius_growth"` // Radius = base + growth * |energy| / max
	InitialSpeed  float64 `yaml:"initial_speed"`
}

// ReproductionConfig holds division parameters.
type ReproductionConfig struct {
	DivisionThreshold   float64 `yaml:"division_threshold"`
	DivisionCost        float64 `yaml:"division_cost"`
	DivisionSuppression float64 `yaml:"division_suppression"` // Division needs a uniform draw above this
	CrossingProbability float64 `yaml:"crossing_probability"`
	ChildMaxSpeed       float64 `yaml:"child_max_speed"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate float64 `yaml:"rate"` // Uniform perturbation half-width
}

// PhysicsConfig holds gravity and boundary policy.
type PhysicsConfig struct {
	Gravity      bool    `yaml:"gravity"`
	GravityForce float64 `yaml:"gravity_force"`
	Bounce       bool    `yaml:"bounce"`
	BounceEffect float64 `yaml:"bounce_effect"`
}

// MovementConfig maps controller outputs to motion.
type MovementConfig struct {
	TurnScale  float64 `yaml:"turn_scale"`
	SpeedScale float64 `yaml:"speed_scale"`
}

// EnergyConfig holds metabolic costs.
type EnergyConfig struct {
	LivingCost float64 `yaml:"living_cost"` // Fixed drain per tick
	MoveCost   float64 `yaml:"move_cost"`   // Drain per unit of speed per tick
}

// NeuralConfig holds controller layer sizes.
// Inputs includes the recurrent feedback channel.
type NeuralConfig struct {
	Inputs       int   `yaml:"inputs"`
	HiddenLayers []int `yaml:"hidden_layers"`
	Outputs      int   `yaml:"outputs"`
}

// SensorsConfig holds ray and input-encoding parameters.
type SensorsConfig struct {
	RayOffset     float64 `yaml:"ray_offset"`      // Side rays at heading ± this (radians)
	NoHitDistance float64 `yaml:"no_hit_distance"` // Distance substituted for "sees nothing"
	LogScale      float64 `yaml:"log_scale"`       // Encoded distance = ln(d) / this
	SpeedNorm     float64 `yaml:"speed_norm"`
	EnergyNorm    float64 `yaml:"energy_norm"`
}

// AttackConfig holds the optional attack gesture driven by the fire output.
type AttackConfig struct {
	Enabled bool    `yaml:"enabled"`
	Range   float64 `yaml:"range"`
	Reward  float64 `yaml:"reward"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SensoryInputs int       // Neural.Inputs - Neural.Outputs (values produced by sensing)
	LayerSizes    []int     // inputs, hidden..., outputs
	RayOffsets    []float64 // left, centre, right
	SpawnExtent   float64   // Effective spawn half-extent
	MinX, MaxX    float64   // Boundary rectangle edges
	MinY, MaxY    float64
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
// The returned config has been validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.computeDerived()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// MustDefault is like Default but panics on error.
func MustDefault() *Config {
	cfg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("config: failed to load defaults: %v", err))
	}
	return cfg
}

// Clone returns a deep copy, so callers can derive variants (tests, the
// optimizer) without touching a config another engine is reading.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Neural.HiddenLayers = append([]int(nil), c.Neural.HiddenLayers...)
	clone.computeDerived()
	return &clone
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SensoryInputs = c.Neural.Inputs - c.Neural.Outputs

	sizes := make([]int, 0, len(c.Neural.HiddenLayers)+2)
	sizes = append(sizes, c.Neural.Inputs)
	sizes = append(sizes, c.Neural.HiddenLayers...)
	sizes = append(sizes, c.Neural.Outputs)
	c.Derived.LayerSizes = sizes

	c.Derived.RayOffsets = []float64{-c.Sensors.RayOffset, 0, c.Sensors.RayOffset}

	w := c.World
	c.Derived.MinX = w.CenterX - w.Width/2
	c.Derived.MaxX = w.CenterX + w.Width/2
	c.Derived.MinY = w.CenterY - w.Height/2
	c.Derived.MaxY = w.CenterY + w.Height/2

	// Spawn extent defaults to the inner edge of the wall band
	extent := w.SpawnExtent
	if extent == 0 {
		extent = min(w.Width, w.Height)/2 - w.WallThickness
	}
	c.Derived.SpawnExtent = extent
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Population.Initial != 70 {
		t.Errorf("population.initial = %d, want 70", cfg.Population.Initial)
	}
	if cfg.Population.MaxCells != 130 {
		t.Errorf("population.max_cells = %d, want 130", cfg.Population.MaxCells)
	}
	if cfg.Population.HistorySize != 50 {
		t.Errorf("population.history_size = %d, want 50", cfg.Population.HistorySize)
	}
	if cfg.Food.Count != 700 {
		t.Errorf("food.count = %d, want 700", cfg.Food.Count)
	}

	wantSizes := []int{18, 18, 18, 3}
	if len(cfg.Derived.LayerSizes) != len(wantSizes) {
		t.Fatalf("layer sizes = %v, want %v", cfg.Derived.LayerSizes, wantSizes)
	}
	for i, s := range wantSizes {
		if cfg.Derived.LayerSizes[i] != s {
			t.Errorf("layer %d size = %d, want %d", i, cfg.Derived.LayerSizes[i], s)
		}
	}
	if cfg.Derived.SensoryInputs != SensoryInputs {
		t.Errorf("sensory inputs = %d, want %d", cfg.Derived.SensoryInputs, SensoryInputs)
	}
	if cfg.Derived.MinX != -2000 || cfg.Derived.MaxY != 2000 {
		t.Errorf("boundary edges = (%g, %g), want (-2000, 2000)", cfg.Derived.MinX, cfg.Derived.MaxY)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("population:\n  initial: 10\nphysics:\n  bounce: true\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Population.Initial != 10 {
		t.Errorf("population.initial = %d, want 10", cfg.Population.Initial)
	}
	if !cfg.Physics.Bounce {
		t.Error("physics.bounce should be overridden to true")
	}
	// Untouched fields keep their defaults
	if cfg.Population.MaxCells != 130 {
		t.Errorf("population.max_cells = %d, want default 130", cfg.Population.MaxCells)
	}
	if cfg.Physics.BounceEffect != 0.7 {
		t.Errorf("physics.bounce_effect = %g, want default 0.7", cfg.Physics.BounceEffect)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"cap below seed count", func(c *Config) { c.Population.MaxCells = c.Population.Initial - 1 }},
		{"zero seed count", func(c *Config) { c.Population.Initial = 0 }},
		{"non-positive hidden layer", func(c *Config) { c.Neural.HiddenLayers = []int{18, 0} }},
		{"non-positive outputs", func(c *Config) { c.Neural.Outputs = 0 }},
		{"inputs without feedback", func(c *Config) { c.Neural.Inputs = 15 }},
		{"crossing probability above one", func(c *Config) { c.Reproduction.CrossingProbability = 1.5 }},
		{"negative mutation rate", func(c *Config) { c.Mutation.Rate = -0.1 }},
		{"wall band too wide", func(c *Config) { c.World.WallThickness = 2500 }},
		{"empty history", func(c *Config) { c.Population.HistorySize = 0 }},
		{"default energy below survival", func(c *Config) { c.Entity.DefaultEnergy = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MustDefault()
			tt.mutate(cfg)
			cfg.Recompute()

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := MustDefault().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := MustDefault()
	clone := cfg.Clone()

	clone.Neural.HiddenLayers[0] = 99
	clone.Population.Initial = 1

	if cfg.Neural.HiddenLayers[0] != 18 {
		t.Error("clone shares hidden layer slice with original")
	}
	if cfg.Population.Initial != 70 {
		t.Error("clone modified original population")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustDefault()
	cfg.Mutation.Rate = 0.125
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Mutation.Rate != 0.125 {
		t.Errorf("mutation.rate = %g, want 0.125", loaded.Mutation.Rate)
	}
}

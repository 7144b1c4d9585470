// Package game owns the simulation world: agent and food entities, the
// per-tick update with its commit/rollback step, repopulation after
// extinction, and the read-only snapshot exposed to callers.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/config"
	"github.com/pthm-cable/artlife/neural"
	"github.com/pthm-cable/artlife/systems"
	"github.com/pthm-cable/artlife/telemetry"
)

// ErrStopped is returned by Step after Stop has been called.
var ErrStopped = errors.New("simulation stopped")

// Options configures a Game beyond the simulation parameters.
type Options struct {
	Seed   int64
	Logger *slog.Logger // nil means slog.Default()

	// Telemetry
	OutputDir     string                      // Directory for CSV output (empty = disabled)
	LogStats      bool                        // Log each stats window
	StatsCallback func(telemetry.WindowStats) // Called on every window flush
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	rng    *rand.Rand
	logger *slog.Logger

	world *ecs.World

	// Entity mappers
	agentMapper *ecs.Map5[
		components.Position,
		components.Motion,
		components.Body,
		components.Energy,
		components.Organism,
	]
	foodMapper  *ecs.Map3[components.Position, components.Body, components.Food]
	agentFilter *ecs.Filter5[
		components.Position,
		components.Motion,
		components.Body,
		components.Energy,
		components.Organism,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	motMap    *ecs.Map1[components.Motion]
	bodyMap   *ecs.Map1[components.Body]
	energyMap *ecs.Map1[components.Energy]
	orgMap    *ecs.Map1[components.Organism]

	// Collection order of agents and food. Perception is first-match, so
	// the order is part of the simulation state and is kept here rather
	// than relying on ECS storage order.
	agents []ecs.Entity
	foods  []ecs.Entity

	// Brain storage (per agent by ID)
	brains map[uint32]*neural.Controller

	history  *History
	boundary systems.Boundary
	foodGrid *systems.FoodGrid

	// State
	tick           int32
	nextID         uint32 // 0 is never assigned
	foodEatenRound int
	foodEatenTotal int
	round          int // Repopulations so far
	stopped        atomic.Bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// New validates cfg and creates a world seeded with the initial population
// and food. The config must not be modified while the game is running.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()

	g := &Game{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger,
		world:  world,
		nextID: 1,
		agentMapper: ecs.NewMap5[
			components.Position,
			components.Motion,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		foodMapper: ecs.NewMap3[components.Position, components.Body, components.Food](world),
		agentFilter: ecs.NewFilter5[
			components.Position,
			components.Motion,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		motMap:    ecs.NewMap1[components.Motion](world),
		bodyMap:   ecs.NewMap1[components.Body](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		orgMap:    ecs.NewMap1[components.Organism](world),
		brains:    make(map[uint32]*neural.Controller),
		history:   NewHistory(cfg.Population.HistorySize),
		boundary:  systems.NewBoundary(cfg.World),
		foodGrid: systems.NewFoodGrid(
			cfg.Derived.MinX, cfg.Derived.MinY,
			cfg.Derived.MaxX, cfg.Derived.MaxY,
			cfg.World.GridCellSize,
		),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g.spawnInitialFood()
	g.spawnInitialPopulation()

	logger.Info("world_created",
		"seed", opts.Seed,
		"agents", len(g.agents),
		"food", len(g.foods),
		"max_cells", cfg.Population.MaxCells,
	)
	return g, nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Population returns the number of live agents.
func (g *Game) Population() int {
	return len(g.agents)
}

// FoodEaten returns the food eaten since the last repopulation and in total.
func (g *Game) FoodEaten() (round, total int) {
	return g.foodEatenRound, g.foodEatenTotal
}

// Round returns the number of repopulations so far. It is 0 until the
// first extinction.
func (g *Game) Round() int {
	return g.round
}

// Config returns the configuration the game was created with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Stop asks the game to stop. It is safe to call from another goroutine;
// the current tick completes and later calls to Step return ErrStopped.
func (g *Game) Stop() {
	g.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (g *Game) Stopped() bool {
	return g.stopped.Load()
}

// Close flushes and closes telemetry output.
func (g *Game) Close() error {
	return g.outputManager.Close()
}

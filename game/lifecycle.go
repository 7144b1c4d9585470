package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/neural"
	"github.com/pthm-cable/artlife/systems"
	"github.com/pthm-cable/artlife/telemetry"
)

// agentSpec describes an agent to be created.
type agentSpec struct {
	x, y       float64
	heading    float64
	speed      float64
	energy     float64
	color      components.Color
	brain      *neural.Controller
	mode       telemetry.BirthMode
	generation int
	parentID   uint32 // zero for seeded agents
}

// randomPoint draws a uniform point in the spawn square.
func (g *Game) randomPoint() (x, y float64) {
	ext := g.cfg.Derived.SpawnExtent
	x = g.cfg.World.CenterX + (g.rng.Float64()*2-1)*ext
	y = g.cfg.World.CenterY + (g.rng.Float64()*2-1)*ext
	return x, y
}

// spawnInitialFood creates the starting food items.
func (g *Game) spawnInitialFood() {
	for i := 0; i < g.cfg.Food.Count; i++ {
		x, y := g.randomPoint()
		g.foods = append(g.foods, g.newFoodEntity(x, y))
	}
}

// newFoodEntity creates a food entity. Callers own its place in g.foods.
func (g *Game) newFoodEntity(x, y float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	body := components.Body{Radius: g.cfg.Food.Radius}
	return g.foodMapper.NewEntity(&pos, &body, &components.Food{})
}

// spawnInitialPopulation creates the starting agents with fresh brains.
func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Population.Initial; i++ {
		g.spawnAgent(g.seedSpec(neural.NewRandomController(g.rng, g.cfg.Derived.LayerSizes...), systems.PickColor(g.rng)))
	}
}

// seedSpec draws position and heading for a seeded agent.
func (g *Game) seedSpec(brain *neural.Controller, color components.Color) agentSpec {
	x, y := g.randomPoint()
	return agentSpec{
		x:       x,
		y:       y,
		heading: g.rng.Float64() * 2 * math.Pi,
		speed:   g.cfg.Entity.InitialSpeed,
		energy:  g.cfg.Entity.DefaultEnergy,
		color:   color,
		brain:   brain,
		mode:    telemetry.BirthSeed,
	}
}

// spawnAgent creates an agent entity and registers its brain.
func (g *Game) spawnAgent(s agentSpec) ecs.Entity {
	id := g.nextID
	g.nextID++

	pos := components.Position{X: s.x, Y: s.y}
	mot := components.Motion{Heading: s.heading, Speed: s.speed}
	systems.SetVelocity(&mot)
	var body components.Body
	var energy components.Energy
	systems.SetEnergy(&energy, &body, s.energy, g.cfg.Entity)
	org := components.Organism{
		ID:    id,
		Color: s.color,
		Rays:  [components.NumRays]components.Ray{components.NoHit, components.NoHit, components.NoHit},
	}

	g.brains[id] = s.brain
	entity := g.agentMapper.NewEntity(&pos, &mot, &body, &energy, &org)
	g.agents = append(g.agents, entity)

	g.lifetimeTracker.Register(id, g.tick, s.generation, s.mode)
	g.lifetimeTracker.UpdateEnergy(id, energy.Value)
	g.collector.RecordBirth(s.mode)
	if s.parentID != 0 {
		g.lifetimeTracker.RecordChild(s.parentID)
	}

	return entity
}

// repopulate reseeds an extinct world. Each new agent takes a mutated copy
// of a removed agent's genome, and its colour, cycling through the history
// oldest first. With an empty history fresh random agents are created.
// The per-round food counter starts over.
func (g *Game) repopulate() {
	n := g.cfg.Population.Initial
	fromHistory := g.history.Len()

	for i := 0; i < n; i++ {
		if fromHistory == 0 {
			g.spawnAgent(g.seedSpec(neural.NewRandomController(g.rng, g.cfg.Derived.LayerSizes...), systems.PickColor(g.rng)))
			continue
		}
		entry := g.history.At(i % fromHistory)
		brain := neural.NewController(entry.Genome.Mutate(g.rng, g.cfg.Mutation.Rate))
		g.spawnAgent(g.seedSpec(brain, entry.Color))
	}

	eaten := g.foodEatenRound
	g.foodEatenRound = 0
	g.round++
	g.collector.RecordRepopulation()
	g.logger.Info("repopulated",
		"tick", g.tick,
		"round", g.round,
		"count", n,
		"history", fromHistory,
		"food_eaten_round", eaten,
	)
}

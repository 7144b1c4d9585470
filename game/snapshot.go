package game

import (
	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/systems"
)

// AgentView is the read-only state of one agent.
type AgentView struct {
	ID      uint32
	X, Y    float64
	Radius  float64
	Heading float64 // Direction of travel, from the velocity
	Energy  float64
	Color   components.Color
}

// FoodView is the read-only state of one food item.
type FoodView struct {
	X, Y   float64
	Radius float64
}

// Snapshot is a copy of the world after a tick. It shares nothing with the
// running game, so callers may keep or modify it.
type Snapshot struct {
	Tick           int32
	Agents         []AgentView // Collection order
	Food           []FoodView  // Collection order
	Population     int
	FoodEatenRound int
	FoodEatenTotal int
	Boundary       systems.Boundary
}

// Snapshot copies the current world state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:           g.tick,
		Agents:         make([]AgentView, 0, len(g.agents)),
		Food:           make([]FoodView, 0, len(g.foods)),
		Population:     len(g.agents),
		FoodEatenRound: g.foodEatenRound,
		FoodEatenTotal: g.foodEatenTotal,
		Boundary:       g.boundary,
	}

	for _, e := range g.agents {
		pos := g.posMap.Get(e)
		mot := g.motMap.Get(e)
		org := g.orgMap.Get(e)
		s.Agents = append(s.Agents, AgentView{
			ID:      org.ID,
			X:       pos.X,
			Y:       pos.Y,
			Radius:  g.bodyMap.Get(e).Radius,
			Heading: systems.VelocityHeading(*mot),
			Energy:  g.energyMap.Get(e).Value,
			Color:   org.Color,
		})
	}

	for _, e := range g.foods {
		pos := g.posMap.Get(e)
		s.Food = append(s.Food, FoodView{X: pos.X, Y: pos.Y, Radius: g.bodyMap.Get(e).Radius})
	}
	return s
}

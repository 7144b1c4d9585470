package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/neural"
	"github.com/pthm-cable/artlife/systems"
	"github.com/pthm-cable/artlife/telemetry"
)

// agentState is the working copy of one agent during a tick.
type agentState struct {
	entity ecs.Entity // zero for agents born this tick
	pos    components.Position
	mot    components.Motion
	body   components.Body
	energy components.Energy
	org    components.Organism
	brain  *neural.Controller

	alive bool
	cause components.DeathCause

	// Births only
	mode       telemetry.BirthMode
	generation int
	parentID   uint32

	// Per-tick lifetime counters
	foodEaten int
	kills     int
}

// foodState is the working copy of one food item during a tick.
type foodState struct {
	entity ecs.Entity // zero for replacements spawned this tick
	pos    components.Position
	radius float64
	eaten  bool
}

// tickState holds the pre-tick snapshot and the working collections of one
// tick. Nothing is written to the ECS world until commit, so a failed tick
// leaves the world as it was.
type tickState struct {
	pre      []components.Position // agent positions at tick start
	agents   []agentState          // same order as Game.agents
	births   []agentState          // pending, invisible until commit
	foods    []foodState           // same order as Game.foods, replacements appended
	feedback [][]float64           // controller feedback at tick start
	index    map[ecs.Entity]int    // agent entity to working index
	live     int

	foodEaten int
	attacks   int

	// Scratch buffers
	cands    []systems.Candidate
	candRef  []int // candidate to agent index, -1 for food
	nearby   []int
	partners []int
}

// remove marks agent i as removed for the rest of the tick.
func (t *tickState) remove(i int, cause components.DeathCause) {
	t.agents[i].alive = false
	t.agents[i].cause = cause
	t.live--
}

// Step advances the simulation by one tick and returns the resulting
// snapshot. If the tick fails the world is left unchanged, controller
// feedback is restored, and the error is returned. After Stop, Step
// returns ErrStopped without advancing.
func (g *Game) Step() (Snapshot, error) {
	if g.stopped.Load() {
		return Snapshot{}, ErrStopped
	}

	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	t := g.beginTick()

	for i := range t.agents {
		if err := g.updateAgent(t, i); err != nil {
			g.rollback(t)
			g.perfCollector.EndTick()
			g.logger.Error("tick_failed", "tick", g.tick, "error", err)
			return g.Snapshot(), fmt.Errorf("tick %d: %w", g.tick, err)
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseCommit)
	g.commit(t)

	if len(g.agents) == 0 {
		g.perfCollector.StartPhase(telemetry.PhaseRepopulate)
		g.repopulate()
	}
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()

	return g.Snapshot(), nil
}

// beginTick copies agents and food out of the ECS world and rebuilds the
// food grid.
func (g *Game) beginTick() *tickState {
	n := len(g.agents)
	t := &tickState{
		pre:      make([]components.Position, n),
		agents:   make([]agentState, n),
		foods:    make([]foodState, len(g.foods), len(g.foods)+16),
		feedback: make([][]float64, n),
		index:    make(map[ecs.Entity]int, n),
		live:     n,
	}

	for i, e := range g.agents {
		org := g.orgMap.Get(e)
		brain := g.brains[org.ID]
		t.agents[i] = agentState{
			entity: e,
			pos:    *g.posMap.Get(e),
			mot:    *g.motMap.Get(e),
			body:   *g.bodyMap.Get(e),
			energy: *g.energyMap.Get(e),
			org:    *org,
			brain:  brain,
			alive:  true,
		}
		t.pre[i] = t.agents[i].pos
		t.feedback[i] = brain.Feedback()
		t.index[e] = i
	}

	g.foodGrid.Clear()
	for k, e := range g.foods {
		pos := *g.posMap.Get(e)
		t.foods[k] = foodState{entity: e, pos: pos, radius: g.bodyMap.Get(e).Radius}
		g.foodGrid.Insert(k, pos.X, pos.Y)
	}
	return t
}

// updateAgent runs one agent's turn: starvation check, gravity, movement
// and boundary, feeding, division, perception, decision and metabolism.
func (g *Game) updateAgent(t *tickState, i int) error {
	a := &t.agents[i]
	if !a.alive {
		return nil
	}
	cfg := g.cfg
	perf := g.perfCollector

	perf.StartPhase(telemetry.PhaseMove)
	if systems.Starved(a.energy.Value) {
		t.remove(i, components.CauseStarvation)
		return nil
	}

	if cfg.Physics.Gravity {
		dvx, dvy := systems.Gravity(i, t.pre, func(j int) bool { return !t.agents[j].alive }, cfg.Physics.GravityForce)
		a.mot.VX += dvx
		a.mot.VY += dvy
	}

	if !systems.Move(&a.pos, &a.mot, g.boundary, cfg.Physics) {
		t.remove(i, components.CauseBoundary)
		return nil
	}

	perf.StartPhase(telemetry.PhaseEat)
	g.eat(t, i)

	perf.StartPhase(telemetry.PhaseDivide)
	if err := g.divide(t, i); err != nil {
		return err
	}

	perf.StartPhase(telemetry.PhasePerceive)
	g.perceive(t, i)

	perf.StartPhase(telemetry.PhaseDecide)
	speed := math.Hypot(a.mot.VX, a.mot.VY)
	out := a.brain.Think(systems.EncodeInputs(a.org.Rays, a.mot.Heading, speed, a.energy.Value, cfg.Sensors))
	if len(out) < 2 {
		return fmt.Errorf("agent %d: controller produced %d outputs, need at least 2", a.org.ID, len(out))
	}
	if len(out) > 2 {
		a.org.Fire = finite(out[2])
	}

	if cfg.Attack.Enabled && g.attack(t, i) {
		return nil
	}

	systems.Steer(&a.mot, out[0], out[1], cfg.Movement)
	cost := systems.MetabolicCost(a.mot.Speed, cfg.Energy)
	systems.SetEnergy(&a.energy, &a.body, a.energy.Value-cost, cfg.Entity)

	if systems.Starved(a.energy.Value) {
		t.remove(i, components.CauseStarvation)
	}
	return nil
}

// eat consumes every live food item overlapping agent i. Each eaten item is
// replaced by a new one at a random position, appended to the collection;
// replacements are not considered by the same agent this tick.
func (g *Game) eat(t *tickState, i int) {
	a := &t.agents[i]
	reach := g.cfg.Entity.BaseRadius + g.cfg.Entity.RadiusGrowth + g.cfg.Food.Radius
	t.nearby = g.foodGrid.QueryInto(t.nearby[:0], a.pos.X, a.pos.Y, reach)

	for _, k := range t.nearby {
		f := t.foods[k]
		if f.eaten || !systems.Overlaps(a.pos.X, a.pos.Y, a.body.Radius, f.pos.X, f.pos.Y, f.radius) {
			continue
		}

		systems.SetEnergy(&a.energy, &a.body, a.energy.Value+g.cfg.Food.Energy, g.cfg.Entity)
		a.foodEaten++
		t.foodEaten++

		t.foods[k].eaten = true
		g.foodGrid.Remove(k, f.pos.X, f.pos.Y)

		x, y := g.randomPoint()
		t.foods = append(t.foods, foodState{pos: components.Position{X: x, Y: y}, radius: g.cfg.Food.Radius})
		g.foodGrid.Insert(len(t.foods)-1, x, y)
	}
}

// divide lets agent i produce a child if it has the energy, passes the
// suppression draw, and the population is below the cap. The child joins
// the pending births.
func (g *Game) divide(t *tickState, i int) error {
	a := &t.agents[i]
	rc := g.cfg.Reproduction
	if a.energy.Value < rc.DivisionThreshold ||
		g.rng.Float64() <= rc.DivisionSuppression ||
		t.live+len(t.births) >= g.cfg.Population.MaxCells {
		return nil
	}

	heading := g.rng.Float64() * 2 * math.Pi
	speed := g.rng.Float64() * rc.ChildMaxSpeed

	genome, mode, err := g.childGenome(t, i)
	if err != nil {
		return err
	}

	child := agentState{
		pos:        a.pos,
		mot:        components.Motion{Heading: heading, Speed: speed},
		org:        components.Organism{Color: a.org.Color},
		brain:      neural.NewController(genome),
		alive:      true,
		mode:       mode,
		generation: g.lifetimeTracker.Generation(a.org.ID) + 1,
		parentID:   a.org.ID,
	}
	systems.SetEnergy(&child.energy, &child.body, g.cfg.Entity.DefaultEnergy, g.cfg.Entity)
	t.births = append(t.births, child)

	systems.SetEnergy(&a.energy, &a.body, a.energy.Value-rc.DivisionCost, g.cfg.Entity)
	return nil
}

// childGenome crosses agent i with a uniformly chosen other live agent of
// the pre-tick population, or mutates its genome when crossing is not drawn
// or no partner exists.
func (g *Game) childGenome(t *tickState, i int) (*neural.Genome, telemetry.BirthMode, error) {
	parent := t.agents[i].brain.Genome()

	if g.rng.Float64() < g.cfg.Reproduction.CrossingProbability {
		t.partners = t.partners[:0]
		for j := range t.agents {
			if j != i && t.agents[j].alive {
				t.partners = append(t.partners, j)
			}
		}
		if len(t.partners) > 0 {
			p := t.partners[g.rng.Intn(len(t.partners))]
			child, err := neural.Crossover(g.rng, parent, t.agents[p].brain.Genome())
			if err != nil {
				return nil, 0, fmt.Errorf("crossing agents %d and %d: %w", t.agents[i].org.ID, t.agents[p].org.ID, err)
			}
			return child, telemetry.BirthCrossover, nil
		}
	}

	return parent.Mutate(g.rng, g.cfg.Mutation.Rate), telemetry.BirthMutation, nil
}

// perceive casts agent i's three rays around its direction of travel.
// Candidates are the live agents in collection order followed by the live
// food. Rays are cast left, right, then centre, and each overwrites the
// target, so the centre ray decides it.
func (g *Game) perceive(t *tickState, i int) {
	a := &t.agents[i]

	t.cands = t.cands[:0]
	t.candRef = t.candRef[:0]
	self := -1
	for j := range t.agents {
		b := &t.agents[j]
		if !b.alive {
			continue
		}
		if j == i {
			self = len(t.cands)
		}
		t.cands = append(t.cands, systems.Candidate{Kind: components.KindAgent, X: b.pos.X, Y: b.pos.Y, Radius: b.body.Radius})
		t.candRef = append(t.candRef, j)
	}
	for k := range t.foods {
		f := &t.foods[k]
		if f.eaten {
			continue
		}
		t.cands = append(t.cands, systems.Candidate{Kind: components.KindFood, X: f.pos.X, Y: f.pos.Y, Radius: f.radius})
		t.candRef = append(t.candRef, -1)
	}

	heading := systems.VelocityHeading(a.mot)
	offsets := g.cfg.Derived.RayOffsets
	for _, r := range [...]int{components.RayLeft, components.RayRight, components.RayCenter} {
		s := systems.Sense(a.pos.X, a.pos.Y, heading+offsets[r], t.cands, self)
		a.org.Rays[r] = s.Ray
		a.org.Target = ecs.Entity{}
		if s.Index >= 0 && t.candRef[s.Index] >= 0 {
			a.org.Target = t.agents[t.candRef[s.Index]].entity
		}
	}
}

// attack resolves the fire output of agent i. When the centre ray touches
// a live agent that is still the target, that agent is removed and the
// attacker gains the reward and ends its turn. Returns true on a kill.
func (g *Game) attack(t *tickState, i int) bool {
	a := &t.agents[i]
	centre := a.org.Rays[components.RayCenter]
	if a.org.Fire < 0 || centre.Bug != 1 || centre.Distance >= g.cfg.Attack.Range {
		return false
	}
	if a.org.Target == (ecs.Entity{}) {
		return false
	}
	j, ok := t.index[a.org.Target]
	if !ok || !t.agents[j].alive {
		return false
	}

	t.remove(j, components.CauseAttack)
	systems.SetEnergy(&a.energy, &a.body, a.energy.Value+g.cfg.Attack.Reward, g.cfg.Entity)
	a.kills++
	t.attacks++
	return true
}

// rollback restores the controller state touched by a failed tick.
func (g *Game) rollback(t *tickState) {
	for i := range t.agents {
		t.agents[i].brain.SetFeedback(t.feedback[i])
	}
}

// commit writes the working collections back to the ECS world: removed
// agents go to the history, survivors are updated in place, eaten food is
// replaced and pending births are created.
func (g *Game) commit(t *tickState) {
	survivors := g.agents[:0]
	for i := range t.agents {
		a := &t.agents[i]
		id := a.org.ID

		if !a.alive {
			g.history.Push(HistoryEntry{
				ID:     id,
				Genome: a.brain.Genome(),
				Color:  a.org.Color,
				Cause:  a.cause,
				Tick:   g.tick,
			})
			g.world.RemoveEntity(a.entity)
			delete(g.brains, id)
			g.lifetimeTracker.Remove(id)
			g.collector.RecordDeath(a.cause)
			continue
		}

		*g.posMap.Get(a.entity) = a.pos
		*g.motMap.Get(a.entity) = a.mot
		*g.bodyMap.Get(a.entity) = a.body
		*g.energyMap.Get(a.entity) = a.energy
		*g.orgMap.Get(a.entity) = a.org

		g.lifetimeTracker.RecordFood(id, a.foodEaten)
		g.lifetimeTracker.UpdateEnergy(id, a.energy.Value)
		for k := 0; k < a.kills; k++ {
			g.lifetimeTracker.RecordKill(id)
		}
		survivors = append(survivors, a.entity)
	}
	g.agents = survivors

	foods := g.foods[:0]
	for k := range t.foods {
		f := &t.foods[k]
		if f.eaten {
			if f.entity != (ecs.Entity{}) {
				g.world.RemoveEntity(f.entity)
			}
			continue
		}
		if f.entity == (ecs.Entity{}) {
			f.entity = g.newFoodEntity(f.pos.X, f.pos.Y)
		}
		foods = append(foods, f.entity)
	}
	g.foods = foods

	for i := range t.births {
		b := &t.births[i]
		g.spawnAgent(agentSpec{
			x:          b.pos.X,
			y:          b.pos.Y,
			heading:    b.mot.Heading,
			speed:      b.mot.Speed,
			energy:     b.energy.Value,
			color:      b.org.Color,
			brain:      b.brain,
			mode:       b.mode,
			generation: b.generation,
			parentID:   b.parentID,
		})
	}

	g.foodEatenRound += t.foodEaten
	g.foodEatenTotal += t.foodEaten
	g.collector.RecordFoodEaten(t.foodEaten)
	for k := 0; k < t.attacks; k++ {
		g.collector.RecordAttack()
	}
}

// finite returns v, or 0 if v is NaN or infinite.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

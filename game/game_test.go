package game

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/config"
	"github.com/pthm-cable/artlife/neural"
	"github.com/pthm-cable/artlife/telemetry"
)

// smallConfig returns a config for a small, fast world.
func smallConfig() *config.Config {
	cfg := config.MustDefault()
	cfg.Population.Initial = 10
	cfg.Population.MaxCells = 20
	cfg.Food.Count = 60
	cfg.Telemetry.StatsWindow = 5
	cfg.Recompute()
	return cfg
}

// pairConfig returns a world of two agents with free living, no food and
// bouncing walls, so only division changes the population.
func pairConfig() *config.Config {
	cfg := config.MustDefault()
	cfg.Population.Initial = 2
	cfg.Population.MaxCells = 3
	cfg.Food.Count = 0
	cfg.Energy.LivingCost = 0
	cfg.Energy.MoveCost = 0
	cfg.Physics.Bounce = true
	cfg.Reproduction.DivisionThreshold = 50
	cfg.Reproduction.DivisionCost = 18
	cfg.Reproduction.DivisionSuppression = 0
	cfg.Reproduction.CrossingProbability = 1
	cfg.Recompute()
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func setEnergy(g *Game, e int, v float64) {
	g.energyMap.Get(g.agents[e]).Value = v
}

func TestNewSeedsWorld(t *testing.T) {
	cfg := smallConfig()
	g := newTestGame(t, cfg, Options{Seed: 1})

	s := g.Snapshot()
	if s.Population != cfg.Population.Initial || len(s.Agents) != cfg.Population.Initial {
		t.Errorf("population = %d (%d views), want %d", s.Population, len(s.Agents), cfg.Population.Initial)
	}
	if len(s.Food) != cfg.Food.Count {
		t.Errorf("food = %d, want %d", len(s.Food), cfg.Food.Count)
	}
	for _, a := range s.Agents {
		if !s.Boundary.Contains(a.X, a.Y) {
			t.Errorf("agent %d spawned in a wall at (%g, %g)", a.ID, a.X, a.Y)
		}
		if a.Energy != cfg.Entity.DefaultEnergy {
			t.Errorf("agent %d energy = %g, want %g", a.ID, a.Energy, cfg.Entity.DefaultEnergy)
		}
		if a.ID == 0 {
			t.Error("agent ID 0 assigned")
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Population.MaxCells = cfg.Population.Initial - 1

	_, err := New(cfg, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("got error %v, want ErrInvalidConfig", err)
	}
}

func TestStepDeterministic(t *testing.T) {
	cfg := smallConfig()
	a := newTestGame(t, cfg, Options{Seed: 42})
	b := newTestGame(t, cfg, Options{Seed: 42})

	for i := 0; i < 60; i++ {
		sa, errA := a.Step()
		sb, errB := b.Step()
		if errA != nil || errB != nil {
			t.Fatalf("tick %d: step errors %v, %v", i, errA, errB)
		}
		if !reflect.DeepEqual(sa, sb) {
			t.Fatalf("tick %d: snapshots diverged for the same seed", i)
		}
	}
}

func TestPopulationNeverExceedsCap(t *testing.T) {
	cfg := smallConfig()
	cfg.Reproduction.DivisionThreshold = 5
	cfg.Reproduction.DivisionCost = 1
	cfg.Reproduction.DivisionSuppression = 0
	g := newTestGame(t, cfg, Options{Seed: 7})

	reached := false
	for i := 0; i < 100; i++ {
		s, err := g.Step()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if s.Population > cfg.Population.MaxCells {
			t.Fatalf("tick %d: population %d exceeds cap %d", i, s.Population, cfg.Population.MaxCells)
		}
		if s.Population == cfg.Population.MaxCells {
			reached = true
		}
	}
	if !reached {
		t.Error("population never reached the cap with free division")
	}
}

func TestDivisionCrossesTwoParents(t *testing.T) {
	cfg := pairConfig()
	g := newTestGame(t, cfg, Options{Seed: 3})
	setEnergy(g, 0, 60)

	parentA := g.orgMap.Get(g.agents[0]).ID
	parentB := g.orgMap.Get(g.agents[1]).ID
	genomeA := g.brains[parentA].Genome()
	genomeB := g.brains[parentB].Genome()

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != 3 {
		t.Fatalf("population = %d, want 3", s.Population)
	}

	parent, child := s.Agents[0], s.Agents[2]
	if parent.Energy != 42 {
		t.Errorf("parent energy = %g, want 60 - 18", parent.Energy)
	}
	if child.Energy != cfg.Entity.DefaultEnergy {
		t.Errorf("child energy = %g, want %g", child.Energy, cfg.Entity.DefaultEnergy)
	}
	if child.X != parent.X || child.Y != parent.Y {
		t.Errorf("child at (%g, %g), want parent position (%g, %g)", child.X, child.Y, parent.X, parent.Y)
	}
	if child.Color != parent.Color {
		t.Errorf("child colour %v, want parent colour %v", child.Color, parent.Color)
	}

	ls := g.lifetimeTracker.Get(child.ID)
	if ls == nil || ls.Mode != telemetry.BirthCrossover || ls.Generation != 1 {
		t.Fatalf("child lifetime = %+v, want crossover birth of generation 1", ls)
	}
	if n := g.lifetimeTracker.Get(parentA).Children; n != 1 {
		t.Errorf("parent children = %d, want 1", n)
	}

	checkCrossed(t, g.brains[child.ID].Genome(), genomeA, genomeB)
}

// checkCrossed fails unless every weight of child comes from a or b and
// both parents contribute.
func checkCrossed(t *testing.T, child, a, b *neural.Genome) {
	t.Helper()
	var fromA, fromB int
	for l := range child.Layers {
		r, c := child.Layers[l].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				switch child.Layers[l].At(i, j) {
				case a.Layers[l].At(i, j):
					fromA++
				case b.Layers[l].At(i, j):
					fromB++
				default:
					t.Fatalf("layer %d (%d,%d) comes from neither parent", l, i, j)
				}
			}
		}
	}
	if fromA == 0 || fromB == 0 {
		t.Errorf("child took %d weights from A and %d from B, want both parents", fromA, fromB)
	}
}

func TestDivisionAtThresholdBothParents(t *testing.T) {
	cfg := pairConfig()
	cfg.Population.MaxCells = 10
	g := newTestGame(t, cfg, Options{Seed: 13})

	threshold := cfg.Reproduction.DivisionThreshold
	setEnergy(g, 0, threshold)
	setEnergy(g, 1, threshold)
	genomeA := g.brains[g.orgMap.Get(g.agents[0]).ID].Genome()
	genomeB := g.brains[g.orgMap.Get(g.agents[1]).ID].Genome()

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != 4 {
		t.Fatalf("population = %d, want 4", s.Population)
	}

	want := threshold - cfg.Reproduction.DivisionCost
	for i := 0; i < 2; i++ {
		if s.Agents[i].Energy != want {
			t.Errorf("parent %d energy = %g, want %g", i, s.Agents[i].Energy, want)
		}
	}
	for i := 2; i < 4; i++ {
		child := s.Agents[i]
		if ls := g.lifetimeTracker.Get(child.ID); ls == nil || ls.Mode != telemetry.BirthCrossover {
			t.Errorf("child %d lifetime = %+v, want crossover birth", i, ls)
		}
		checkCrossed(t, g.brains[child.ID].Genome(), genomeA, genomeB)
	}
}

// duelGame places agent 0 at the origin heading along +x with a zeroed
// genome, so every output (fire included) is 0, and agent 1 dead ahead.
func duelGame(t *testing.T, attack bool, windows *[]telemetry.WindowStats) *Game {
	t.Helper()
	cfg := pairConfig()
	cfg.Attack.Enabled = attack
	cfg.Attack.Range = 1e9
	cfg.Telemetry.StatsWindow = 1
	g := newTestGame(t, cfg, Options{
		Seed:          17,
		StatsCallback: func(s telemetry.WindowStats) { *windows = append(*windows, s) },
	})

	hunter, prey := g.agents[0], g.agents[1]
	for _, w := range g.brains[g.orgMap.Get(hunter).ID].Genome().Layers {
		w.Zero()
	}
	*g.posMap.Get(hunter) = components.Position{X: 0, Y: 0}
	*g.motMap.Get(hunter) = components.Motion{Speed: 1, VX: 1}
	*g.posMap.Get(prey) = components.Position{X: 50, Y: 0}
	*g.motMap.Get(prey) = components.Motion{}
	return g
}

func TestAttackRemovesTargetAhead(t *testing.T) {
	var windows []telemetry.WindowStats
	g := duelGame(t, true, &windows)
	hunterID := g.orgMap.Get(g.agents[0]).ID
	preyID := g.orgMap.Get(g.agents[1]).ID

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != 1 || s.Agents[0].ID != hunterID {
		t.Fatalf("population = %d, want only the attacker left", s.Population)
	}
	if want := g.cfg.Entity.MaxEnergy; s.Agents[0].Energy != want {
		t.Errorf("attacker energy = %g, want reward clamped to %g", s.Agents[0].Energy, want)
	}
	// The turn ends at the kill, so steering never zeroed the velocity.
	if mot := g.motMap.Get(g.agents[0]); mot.VX != 1 || mot.Speed != 1 {
		t.Errorf("attacker motion = %+v, want unchanged after the kill", *mot)
	}

	h := g.history.At(g.history.Len() - 1)
	if h.ID != preyID || h.Cause != components.CauseAttack {
		t.Errorf("history entry = id %d cause %v, want id %d cause attack", h.ID, h.Cause, preyID)
	}
	if ls := g.lifetimeTracker.Get(hunterID); ls == nil || ls.Kills != 1 {
		t.Errorf("attacker lifetime = %+v, want 1 kill", ls)
	}
	if len(windows) != 1 || windows[0].Attacks != 1 || windows[0].AttackDeaths != 1 {
		t.Errorf("window stats = %+v, want one attack and one attack death", windows)
	}
}

func TestAttackDisabledIgnoresFire(t *testing.T) {
	var windows []telemetry.WindowStats
	g := duelGame(t, false, &windows)

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != 2 {
		t.Fatalf("population = %d, want 2 with attacks disabled", s.Population)
	}
	if s.Agents[0].Energy != g.cfg.Entity.DefaultEnergy {
		t.Errorf("agent energy = %g, want %g", s.Agents[0].Energy, g.cfg.Entity.DefaultEnergy)
	}
	if len(windows) != 1 || windows[0].Attacks != 0 {
		t.Errorf("window stats = %+v, want no attacks", windows)
	}
}

func TestDivisionWithoutPartnerMutates(t *testing.T) {
	cfg := pairConfig()
	cfg.Population.Initial = 1
	cfg.Population.MaxCells = 2
	g := newTestGame(t, cfg, Options{Seed: 3})
	setEnergy(g, 0, 60)

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != 2 {
		t.Fatalf("population = %d, want 2", s.Population)
	}
	if ls := g.lifetimeTracker.Get(s.Agents[1].ID); ls == nil || ls.Mode != telemetry.BirthMutation {
		t.Errorf("lone parent child lifetime = %+v, want mutation birth", ls)
	}
}

func TestBoundaryRemovesAgent(t *testing.T) {
	cfg := smallConfig()
	g := newTestGame(t, cfg, Options{Seed: 5})

	e := g.agents[0]
	id := g.orgMap.Get(e).ID
	pos := g.posMap.Get(e)
	pos.X, pos.Y = cfg.Derived.MaxX-cfg.World.WallThickness-5, 0
	mot := g.motMap.Get(e)
	mot.VX, mot.VY = 10, 0

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	for _, a := range s.Agents {
		if a.ID == id {
			t.Fatal("agent that crossed the wall is still alive")
		}
	}

	found := false
	for i := 0; i < g.history.Len(); i++ {
		if h := g.history.At(i); h.ID == id {
			found = true
			if h.Cause != components.CauseBoundary {
				t.Errorf("history cause = %v, want boundary", h.Cause)
			}
		}
	}
	if !found {
		t.Error("removed agent missing from history")
	}
}

func TestBounceKeepsAgent(t *testing.T) {
	cfg := smallConfig()
	cfg.Physics.Bounce = true
	g := newTestGame(t, cfg, Options{Seed: 5})

	e := g.agents[0]
	id := g.orgMap.Get(e).ID
	pos := g.posMap.Get(e)
	pos.X, pos.Y = cfg.Derived.MaxX-cfg.World.WallThickness-5, 0
	g.motMap.Get(e).VX = 10

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Agents[0].ID != id {
		t.Fatal("bouncing agent was removed")
	}
	if want := cfg.Derived.MaxX - cfg.World.WallThickness + 5 - 7; s.Agents[0].X != want {
		t.Errorf("x after bounce = %g, want %g", s.Agents[0].X, want)
	}
}

func TestExtinctionRepopulatesFromHistory(t *testing.T) {
	cfg := smallConfig()
	g := newTestGame(t, cfg, Options{Seed: 9})
	for i := range g.agents {
		setEnergy(g, i, 0.5)
	}
	g.foodEatenRound = 12
	g.foodEatenTotal = 30

	s, err := g.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if s.Population != cfg.Population.Initial {
		t.Fatalf("population after repopulation = %d, want %d", s.Population, cfg.Population.Initial)
	}
	if g.Round() != 1 {
		t.Errorf("Round() = %d, want 1", g.Round())
	}
	if s.FoodEatenRound != 0 {
		t.Errorf("food eaten this round = %d, want reset to 0", s.FoodEatenRound)
	}
	if s.FoodEatenTotal != 30 {
		t.Errorf("food eaten total = %d, want 30", s.FoodEatenTotal)
	}
	if g.history.Len() != cfg.Population.Initial {
		t.Fatalf("history holds %d entries, want %d", g.history.Len(), cfg.Population.Initial)
	}
	for i, a := range s.Agents {
		h := g.history.At(i % g.history.Len())
		if a.Color != h.Color {
			t.Errorf("agent %d colour %v, want history colour %v", i, a.Color, h.Color)
		}
		if h.Cause != components.CauseStarvation {
			t.Errorf("history entry %d cause = %v, want starvation", i, h.Cause)
		}
	}
}

func TestStepRollsBackOnError(t *testing.T) {
	cfg := pairConfig()
	g := newTestGame(t, cfg, Options{Seed: 11})

	// Agent 0 thinks with a genome that cannot be crossed with agent 1's.
	idA := g.orgMap.Get(g.agents[0]).ID
	g.brains[idA].SetGenome(neural.NewGenome(rand.New(rand.NewSource(1)), 18, 12, 3))
	setEnergy(g, 1, 60)

	before := g.Snapshot()
	feedback := g.brains[idA].Feedback()

	_, err := g.Step()
	if !errors.Is(err, neural.ErrShapeMismatch) {
		t.Fatalf("got error %v, want ErrShapeMismatch", err)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d after failed step, want 0", g.Tick())
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("failed step changed the world")
	}
	if got := g.brains[idA].Feedback(); !reflect.DeepEqual(got, feedback) {
		t.Errorf("feedback = %v after rollback, want %v", got, feedback)
	}
}

func TestStopEndsStepping(t *testing.T) {
	g := newTestGame(t, smallConfig(), Options{Seed: 1})
	if _, err := g.Step(); err != nil {
		t.Fatal(err)
	}

	g.Stop()
	if !g.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
	if _, err := g.Step(); !errors.Is(err, ErrStopped) {
		t.Errorf("got error %v, want ErrStopped", err)
	}
	if g.Tick() != 1 {
		t.Errorf("tick = %d, want 1", g.Tick())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := newTestGame(t, smallConfig(), Options{Seed: 1})
	s := g.Snapshot()
	s.Agents[0].X = 1e9
	s.Food[0].Radius = 0

	again := g.Snapshot()
	if again.Agents[0].X == 1e9 || again.Food[0].Radius == 0 {
		t.Error("snapshot shares storage with the game")
	}
}

func TestTelemetryWindows(t *testing.T) {
	cfg := smallConfig()
	dir := t.TempDir()

	var windows []telemetry.WindowStats
	g := newTestGame(t, cfg, Options{
		Seed:          2,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 10; i++ {
		if _, err := g.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[0].WindowEndTick != 5 || windows[1].WindowEndTick != 10 {
		t.Errorf("window ends = %d, %d, want 5, 10", windows[0].WindowEndTick, windows[1].WindowEndTick)
	}
	if windows[0].Seeded < cfg.Population.Initial {
		t.Errorf("first window seeded = %d, want at least %d", windows[0].Seeded, cfg.Population.Initial)
	}

	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

package telemetry

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed part of a simulation tick. The per-agent phases are
// entered once per agent, so their totals add up over the population.
type Phase uint8

const (
	PhaseSnapshot   Phase = iota // copy agents and food out of the world
	PhaseMove                    // starvation check, gravity, integration, walls
	PhaseEat                     // food overlap and replacement
	PhaseDivide                  // division and child genomes
	PhasePerceive                // candidate list and three rays
	PhaseDecide                  // controller, attack, steering, metabolism
	PhaseCommit                  // write back, removals, births
	PhaseRepopulate              // reseeding after extinction
	PhaseTelemetry               // window flush and output
	NumPhases
)

var phaseNames = [NumPhases]string{
	"snapshot", "move", "eat", "divide", "perceive", "decide", "commit", "repopulate", "telemetry",
}

// String returns the phase name used in logs and CSV columns.
func (p Phase) String() string {
	if p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfCollector times tick phases over a rolling window of ticks.
type PerfCollector struct {
	ticks  []time.Duration            // ring of tick durations
	phases [][NumPhases]time.Duration // ring of per-phase totals
	next   int
	count  int

	current    [NumPhases]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ticks:  make([]time.Duration, windowSize),
		phases: make([][NumPhases]time.Duration, windowSize),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = [NumPhases]time.Duration{}
	p.inPhase = false
}

// StartPhase charges the time since the previous call to the previous phase
// and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	if p.inPhase {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.phase = phase
	p.inPhase = true
}

// EndTick closes the open phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.inPhase {
		p.current[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}

	p.ticks[p.next] = now.Sub(p.tickStart)
	p.phases[p.next] = p.current
	p.next = (p.next + 1) % len(p.ticks)
	p.count = min(p.count+1, len(p.ticks))
}

// PerfStats summarises the ticks in the window.
type PerfStats struct {
	Ticks int

	AvgTick time.Duration
	P50Tick time.Duration
	P90Tick time.Duration
	MaxTick time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // share of the average tick

	TicksPerSecond float64
}

// Stats computes the window summary. An empty window gives zero stats.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.count}
	if p.count == 0 {
		return s
	}

	// Only the first count slots are filled until the ring wraps, and order
	// does not matter for the summary.
	durations := make([]float64, p.count)
	var phaseSum [NumPhases]time.Duration
	for i := 0; i < p.count; i++ {
		durations[i] = float64(p.ticks[i])
		for ph, d := range p.phases[i] {
			phaseSum[ph] += d
		}
	}
	slices.Sort(durations)

	avg := stat.Mean(durations, nil)
	s.AvgTick = time.Duration(avg)
	s.P50Tick = time.Duration(stat.Quantile(0.5, stat.Empirical, durations, nil))
	s.P90Tick = time.Duration(stat.Quantile(0.9, stat.Empirical, durations, nil))
	s.MaxTick = time.Duration(durations[len(durations)-1])

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / time.Duration(p.count)
		if avg > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / avg * 100
		}
	}
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}
	return s
}

// LogStats logs the summary to logger. Phases under 0.1% are left out.
func (s PerfStats) LogStats(logger *slog.Logger) {
	attrs := []any{
		"ticks", s.Ticks,
		"avg_tick_us", s.AvgTick.Microseconds(),
		"p90_tick_us", s.P90Tick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", math.Round(pct*10)/10)
		}
	}
	logger.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p50_tick_us", s.P50Tick.Microseconds()),
		slog.Int64("p90_tick_us", s.P90Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	P50TickUS     int64   `csv:"p50_tick_us"`
	P90TickUS     int64   `csv:"p90_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	SnapshotPct   float64 `csv:"snapshot_pct"`
	MovePct       float64 `csv:"move_pct"`
	EatPct        float64 `csv:"eat_pct"`
	DividePct     float64 `csv:"divide_pct"`
	PerceivePct   float64 `csv:"perceive_pct"`
	DecidePct     float64 `csv:"decide_pct"`
	CommitPct     float64 `csv:"commit_pct"`
	RepopulatePct float64 `csv:"repopulate_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTick.Microseconds(),
		P50TickUS:     s.P50Tick.Microseconds(),
		P90TickUS:     s.P90Tick.Microseconds(),
		MaxTickUS:     s.MaxTick.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		SnapshotPct:   s.PhasePct[PhaseSnapshot],
		MovePct:       s.PhasePct[PhaseMove],
		EatPct:        s.PhasePct[PhaseEat],
		DividePct:     s.PhasePct[PhaseDivide],
		PerceivePct:   s.PhasePct[PhasePerceive],
		DecidePct:     s.PhasePct[PhaseDecide],
		CommitPct:     s.PhasePct[PhaseCommit],
		RepopulatePct: s.PhasePct[PhaseRepopulate],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}

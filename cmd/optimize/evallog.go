package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// evalRecord is one row of optimize_log.csv, holding the clamped values
// actually used.
type evalRecord struct {
	Eval                int     `csv:"eval"`
	Fitness             float64 `csv:"fitness"`
	Quality             float64 `csv:"quality"`
	MutationRate        float64 `csv:"mutation_rate"`
	CrossingProbability float64 `csv:"crossing_probability"`
	DivisionSuppression float64 `csv:"division_suppression"`
	DivisionThreshold   float64 `csv:"division_threshold"`
	FoodEnergy          float64 `csv:"food_energy"`
}

func newEvalRecord(eval int, fitness, quality float64, v []float64) evalRecord {
	return evalRecord{
		Eval:                eval,
		Fitness:             fitness,
		Quality:             quality,
		MutationRate:        v[0],
		CrossingProbability: v[1],
		DivisionSuppression: v[2],
		DivisionThreshold:   v[3],
		FoodEnergy:          v[4],
	}
}

// evalLog tracks the best evaluation so far and appends every evaluation to
// a CSV log. Fitness is minimised.
type evalLog struct {
	csv      io.Writer
	progress io.Writer
	maxEvals int
	start    time.Time

	count       int
	bestFitness float64
	bestParams  []float64
}

func newEvalLog(csv, progress io.Writer, maxEvals int) *evalLog {
	return &evalLog{
		csv:         csv,
		progress:    progress,
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: 1e9,
	}
}

// record notes one evaluation of params. The CSV header is written with the
// first row only.
func (l *evalLog) record(fitness, quality float64, params []float64) error {
	l.count++
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.bestParams = params
	}

	rows := []evalRecord{newEvalRecord(l.count, fitness, quality, params)}
	var err error
	if l.count == 1 {
		err = gocsv.Marshal(rows, l.csv)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, l.csv)
	}
	if err != nil {
		return fmt.Errorf("write eval %d: %w", l.count, err)
	}

	elapsed := l.elapsed()
	remaining := time.Duration(l.maxEvals-l.count) * (elapsed / time.Duration(l.count))
	fmt.Fprintf(l.progress, "Eval %d/%d: survived=%.0f ticks quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
		l.count, l.maxEvals, survivalTicks(fitness, quality), quality, l.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
	return nil
}

func (l *evalLog) elapsed() time.Duration { return time.Since(l.start) }

// survivalTicks undoes the quality bonus folded into a fitness value.
func survivalTicks(fitness, quality float64) float64 {
	return -fitness / (1.0 + 0.2*quality)
}

// formatDuration formats d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

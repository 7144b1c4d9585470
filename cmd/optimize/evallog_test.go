package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestEvalLogTracksBestAndWritesHeaderOnce(t *testing.T) {
	var csv, progress bytes.Buffer
	l := newEvalLog(&csv, &progress, 3)

	a := []float64{0.1, 0.5, 0.2, 50, 10}
	b := []float64{0.2, 0.6, 0.3, 60, 12}
	for _, e := range []struct {
		fitness float64
		params  []float64
	}{
		{-100, a},
		{-300, b},
		{-200, a},
	} {
		if err := l.record(e.fitness, 0, e.params); err != nil {
			t.Fatal(err)
		}
	}

	if l.count != 3 || l.bestFitness != -300 || l.bestParams[3] != 60 {
		t.Errorf("count=%d best=%v params=%v, want 3, -300, b", l.count, l.bestFitness, l.bestParams)
	}

	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv has %d lines, want header + 3:\n%s", len(lines), csv.String())
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,quality") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(csv.String(), "eval,") != 1 {
		t.Error("header written more than once")
	}
	if !strings.Contains(progress.String(), "Eval 3/3: survived=200 ticks") {
		t.Errorf("progress missing last eval:\n%s", progress.String())
	}
}

func TestSurvivalTicksUndoesQualityBonus(t *testing.T) {
	r := &runResult{survivalTicks: 1000}
	if got := survivalTicks(computeFitness(r, 0.5), 0.5); got < 999.999 || got > 1000.001 {
		t.Errorf("survivalTicks = %v, want 1000", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{65 * time.Second, "1m05s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{1499 * time.Millisecond, "0m01s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCmaPopulation(t *testing.T) {
	if got := cmaPopulation(0, 5); got != 11 {
		t.Errorf("auto population for dim 5 = %d, want 11", got)
	}
	if got := cmaPopulation(20, 5); got != 20 {
		t.Errorf("explicit population = %d, want 20", got)
	}
}

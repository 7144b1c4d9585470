// Package neural provides the fixed-topology recurrent controller that drives
// each agent, and the genetic operators over its weights.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when two genomes with different layer shapes
// are crossed. It indicates a configuration bug, not a transient condition.
var ErrShapeMismatch = errors.New("genome shape mismatch")

// Genome is the full set of weights of a controller.
// Layers[i] maps layer i to layer i+1 and has shape fan_in x fan_out.
// A genome is owned by one controller at a time; Mutate and Crossover
// always allocate new matrices.
type Genome struct {
	Layers []*mat.Dense
}

// NewGenome creates a randomly initialized genome for the given layer sizes
// (inputs, hidden..., outputs). Each weight is uniform in
// [-1/sqrt(fan_in), 1/sqrt(fan_in)].
func NewGenome(rng *rand.Rand, sizes ...int) *Genome {
	g := &Genome{Layers: make([]*mat.Dense, 0, len(sizes)-1)}
	for i := 0; i+1 < len(sizes); i++ {
		g.Layers = append(g.Layers, randomLayer(rng, sizes[i], sizes[i+1]))
	}
	return g
}

// randomLayer builds a fan_in x fan_out matrix with uniform weights.
func randomLayer(rng *rand.Rand, fanIn, fanOut int) *mat.Dense {
	limit := 1.0 / math.Sqrt(float64(fanIn))
	data := make([]float64, fanIn*fanOut)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(fanIn, fanOut, data)
}

// Clone creates a deep copy of the genome.
func (g *Genome) Clone() *Genome {
	clone := &Genome{Layers: make([]*mat.Dense, len(g.Layers))}
	for i, w := range g.Layers {
		clone.Layers[i] = mat.DenseCopyOf(w)
	}
	return clone
}

// Mutate returns an independent copy where every weight is perturbed by a
// uniform sample in [-rate, rate]. Values are not clamped.
func (g *Genome) Mutate(rng *rand.Rand, rate float64) *Genome {
	child := &Genome{Layers: make([]*mat.Dense, len(g.Layers))}
	for i, w := range g.Layers {
		r, c := w.Dims()
		m := mat.NewDense(r, c, nil)
		m.Apply(func(_, _ int, v float64) float64 {
			return v + (rng.Float64()*2-1)*rate
		}, w)
		child.Layers[i] = m
	}
	return child
}

// Crossover builds a child genome by picking every weight from a or b with
// equal probability. Layer counts and shapes must match.
func Crossover(rng *rand.Rand, a, b *Genome) (*Genome, error) {
	if err := checkShapes(a, b); err != nil {
		return nil, err
	}

	child := &Genome{Layers: make([]*mat.Dense, len(a.Layers))}
	for l := range a.Layers {
		wa, wb := a.Layers[l], b.Layers[l]
		r, c := wa.Dims()
		m := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if rng.Float64() < 0.5 {
					m.Set(i, j, wa.At(i, j))
				} else {
					m.Set(i, j, wb.At(i, j))
				}
			}
		}
		child.Layers[l] = m
	}
	return child, nil
}

// checkShapes reports ErrShapeMismatch if a and b differ in layer count or shape.
func checkShapes(a, b *Genome) error {
	if len(a.Layers) != len(b.Layers) {
		return fmt.Errorf("%w: %d layers vs %d", ErrShapeMismatch, len(a.Layers), len(b.Layers))
	}
	for l := range a.Layers {
		ar, ac := a.Layers[l].Dims()
		br, bc := b.Layers[l].Dims()
		if ar != br || ac != bc {
			return fmt.Errorf("%w: layer %d is %dx%d vs %dx%d", ErrShapeMismatch, l, ar, ac, br, bc)
		}
	}
	return nil
}

// Sizes returns the layer sizes (inputs, hidden..., outputs) of the genome.
func (g *Genome) Sizes() []int {
	if len(g.Layers) == 0 {
		return nil
	}
	sizes := make([]int, 0, len(g.Layers)+1)
	r, _ := g.Layers[0].Dims()
	sizes = append(sizes, r)
	for _, w := range g.Layers {
		_, c := w.Dims()
		sizes = append(sizes, c)
	}
	return sizes
}

// Equal reports whether two genomes have identical shapes and weights.
func Equal(a, b *Genome) bool {
	if checkShapes(a, b) != nil {
		return false
	}
	for l := range a.Layers {
		if !mat.Equal(a.Layers[l], b.Layers[l]) {
			return false
		}
	}
	return true
}

// WeightCount returns the total number of weights.
func (g *Genome) WeightCount() int {
	n := 0
	for _, w := range g.Layers {
		r, c := w.Dims()
		n += r * c
	}
	return n
}

// MeanAbsWeight returns the mean absolute weight, used by telemetry to track
// drift away from the initialization range.
func (g *Genome) MeanAbsWeight() float64 {
	n := g.WeightCount()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, w := range g.Layers {
		r, c := w.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				sum += math.Abs(w.At(i, j))
			}
		}
	}
	return sum / float64(n)
}

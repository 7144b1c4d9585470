package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Controller is a feedforward network whose previous output is fed back as
// part of its next input. Every layer is a dense linear map followed by tanh,
// including the output layer, so outputs are bounded to [-1, 1].
type Controller struct {
	genome   *Genome
	feedback []float64
}

// NewController wraps a genome. The feedback vector starts at zero.
func NewController(g *Genome) *Controller {
	return &Controller{
		genome:   g,
		feedback: make([]float64, outputSize(g)),
	}
}

// NewRandomController creates a controller with a freshly initialized genome.
func NewRandomController(rng *rand.Rand, sizes ...int) *Controller {
	return NewController(NewGenome(rng, sizes...))
}

// outputSize returns the width of the last layer.
func outputSize(g *Genome) int {
	if len(g.Layers) == 0 {
		return 0
	}
	_, c := g.Layers[len(g.Layers)-1].Dims()
	return c
}

// Think evaluates the network on the sensory inputs concatenated with the
// previous outputs, stores the new outputs as feedback, and returns them.
// It panics if the input length does not match the genome, the same way
// gonum panics on a dimension mismatch.
func (c *Controller) Think(sensory []float64) []float64 {
	in := make([]float64, 0, len(sensory)+len(c.feedback))
	in = append(in, sensory...)
	in = append(in, c.feedback...)

	if want, _ := c.genome.Layers[0].Dims(); len(in) != want {
		panic(fmt.Sprintf("neural: got %d inputs (%d sensory + %d feedback), genome expects %d",
			len(in), len(sensory), len(c.feedback), want))
	}

	x := mat.NewVecDense(len(in), in)
	for _, w := range c.genome.Layers {
		_, cols := w.Dims()
		y := mat.NewVecDense(cols, nil)
		y.MulVec(w.T(), x)
		for i := 0; i < cols; i++ {
			y.SetVec(i, math.Tanh(y.AtVec(i)))
		}
		x = y
	}

	out := make([]float64, x.Len())
	for i := range out {
		out[i] = x.AtVec(i)
	}
	copy(c.feedback, out)
	return out
}

// Genome returns the controller's genome. Callers must not modify it.
func (c *Controller) Genome() *Genome {
	return c.genome
}

// SetGenome replaces the genome. The feedback vector is kept unless the new
// genome has a different output width, in which case it is reset to zero.
func (c *Controller) SetGenome(g *Genome) {
	c.genome = g
	if n := outputSize(g); n != len(c.feedback) {
		c.feedback = make([]float64, n)
	}
}

// Feedback returns a copy of the last outputs.
func (c *Controller) Feedback() []float64 {
	out := make([]float64, len(c.feedback))
	copy(out, c.feedback)
	return out
}

// SetFeedback overwrites the feedback vector (used to roll back a tick).
func (c *Controller) SetFeedback(v []float64) {
	copy(c.feedback, v)
}

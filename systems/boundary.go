package systems

import "github.com/pthm-cable/artlife/config"

// Boundary is the axis-aligned world rectangle. Its walls are bands of width
// Thickness lying inside the rectangle; a point inside a band has crossed
// that wall.
type Boundary struct {
	CenterX, CenterY float64
	Width, Height    float64
	Thickness        float64
}

// NewBoundary builds the boundary described by the world config.
func NewBoundary(w config.WorldConfig) Boundary {
	return Boundary{
		CenterX:   w.CenterX,
		CenterY:   w.CenterY,
		Width:     w.Width,
		Height:    w.Height,
		Thickness: w.WallThickness,
	}
}

// Left reports whether x is inside the left wall band or beyond it.
func (b Boundary) Left(x float64) bool {
	return b.CenterX-b.Width/2+b.Thickness > x
}

// Right reports whether x is inside the right wall band or beyond it.
func (b Boundary) Right(x float64) bool {
	return b.CenterX+b.Width/2-b.Thickness < x
}

// Top reports whether y is inside the top (max-y) wall band or beyond it.
func (b Boundary) Top(y float64) bool {
	return b.CenterY+b.Height/2-b.Thickness < y
}

// Bottom reports whether y is inside the bottom (min-y) wall band or beyond it.
func (b Boundary) Bottom(y float64) bool {
	return b.CenterY-b.Height/2+b.Thickness > y
}

// CrossedX reports whether x has crossed the left or right wall.
func (b Boundary) CrossedX(x float64) bool {
	return b.Left(x) || b.Right(x)
}

// CrossedY reports whether y has crossed the top or bottom wall.
func (b Boundary) CrossedY(y float64) bool {
	return b.Top(y) || b.Bottom(y)
}

// Contains reports whether the point is clear of every wall band.
func (b Boundary) Contains(x, y float64) bool {
	return !b.CrossedX(x) && !b.CrossedY(y)
}

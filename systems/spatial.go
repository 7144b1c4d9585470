package systems

import (
	"math"
	"slices"
)

// FoodGrid buckets food items by position so an agent only tests the items
// near it. Items are identified by their index in the caller's food list.
type FoodGrid struct {
	cellSize float64
	minX     float64
	minY     float64
	cols     int
	rows     int
	cells    [][]int
}

// NewFoodGrid creates a grid covering the rectangle [minX, maxX] x [minY, maxY].
// Points outside it are clamped into the border cells.
func NewFoodGrid(minX, minY, maxX, maxY, cellSize float64) *FoodGrid {
	cols := int((maxX-minX)/cellSize) + 1
	rows := int((maxY-minY)/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &FoodGrid{
		cellSize: cellSize,
		minX:     minX,
		minY:     minY,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all items from the grid.
func (g *FoodGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds item id at the given position.
func (g *FoodGrid) Insert(id int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], id)
}

// Remove deletes item id, which must have been inserted at (x, y).
func (g *FoodGrid) Remove(id int, x, y float64) {
	idx := g.cellIndex(x, y)
	cell := g.cells[idx]
	if i := slices.Index(cell, id); i >= 0 {
		g.cells[idx] = slices.Delete(cell, i, i+1)
	}
}

// QueryInto appends to dst the ids of every item whose cell overlaps the
// square of half-width radius around (x, y), in ascending id order.
// Callers still need an exact overlap test.
func (g *FoodGrid) QueryInto(dst []int, x, y, radius float64) []int {
	start := len(dst)
	c0, r0 := g.cellCoords(x-radius, y-radius)
	c1, r1 := g.cellCoords(x+radius, y+radius)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			dst = append(dst, g.cells[r*g.cols+c]...)
		}
	}
	slices.Sort(dst[start:])
	return dst
}

// cellCoords returns the clamped column and row for a position.
func (g *FoodGrid) cellCoords(x, y float64) (int, int) {
	col := int(math.Floor((x - g.minX) / g.cellSize))
	row := int(math.Floor((y - g.minY) / g.cellSize))
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.rows-1)
}

// cellIndex returns the flat cell index for a position.
func (g *FoodGrid) cellIndex(x, y float64) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}

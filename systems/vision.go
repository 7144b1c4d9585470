package systems

import (
	"math"

	"github.com/pthm-cable/artlife/components"
)

// Candidate is an entity a ray may hit.
type Candidate struct {
	Kind   components.Kind
	X, Y   float64
	Radius float64
}

// Sighting is the result of casting one ray.
type Sighting struct {
	Ray   components.Ray
	Index int // Candidate index of the hit, -1 when only the wall is seen
}

// Sense casts a ray from (x, y) along heading and returns the first
// candidate, in slice order, whose angular half-width contains the ray.
// Candidates are not sorted by distance. The candidate at index skip (the
// observer itself) is ignored; pass -1 to consider all of them.
func Sense(x, y, heading float64, candidates []Candidate, skip int) Sighting {
	for i, c := range candidates {
		if i == skip {
			continue
		}
		dist := distance(x, y, c.X, c.Y)
		bearing := math.Atan2(c.Y-y, c.X-x)
		diff := angleBetween(heading, bearing)

		// sin(diff/2) is zero only for a dead-ahead hit.
		s := math.Sin(diff / 2)
		if s > 0 && dist >= c.Radius/(2*s) {
			continue
		}

		ray := components.Ray{Distance: dist}
		switch c.Kind {
		case components.KindAgent:
			ray.Bug = 1
		case components.KindFood:
			ray.Food = 1
		default:
			ray.Wall = 1
		}
		return Sighting{Ray: ray, Index: i}
	}
	return Sighting{Ray: components.NoHit, Index: -1}
}

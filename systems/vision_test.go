package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/artlife/components"
)

func TestSenseEmptyWorld(t *testing.T) {
	got := Sense(0, 0, 0, nil, -1)
	if got.Ray != components.NoHit {
		t.Errorf("got %+v, want %+v", got.Ray, components.NoHit)
	}
	if got.Index != -1 {
		t.Errorf("index = %d, want -1", got.Index)
	}
}

func TestSenseDeadAhead(t *testing.T) {
	food := []Candidate{{Kind: components.KindFood, X: 100, Y: 0, Radius: 7}}

	got := Sense(0, 0, 0, food, -1)
	if math.Abs(got.Ray.Distance-100) > 1e-9 {
		t.Errorf("distance = %f, want 100", got.Ray.Distance)
	}
	if got.Ray.Wall != 0 || got.Ray.Bug != 0 || got.Ray.Food != 1 {
		t.Errorf("one-hot = (%g,%g,%g), want (0,0,1)", got.Ray.Wall, got.Ray.Bug, got.Ray.Food)
	}
	if got.Index != 0 {
		t.Errorf("index = %d, want 0", got.Index)
	}
}

func TestSenseAngularWidth(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		x, y    float64
		radius  float64
		want    bool
	}{
		{"dead ahead", 0, 100, 0, 7, true},
		{"slightly off axis", 0.03, 100, 0, 7, true},
		{"outside half-width", 0.2, 100, 0, 7, false},
		{"behind", math.Pi, 100, 0, 7, false},
		{"large body close by", 0.5, 10, 0, 7, true},
		{"wrap-around heading", 2*math.Pi + 0.01, 100, 0, 7, true},
		{"coincident", 1.3, 0, 0, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := []Candidate{{Kind: components.KindAgent, X: tt.x, Y: tt.y, Radius: tt.radius}}
			got := Sense(0, 0, tt.heading, c, -1)
			if (got.Index == 0) != tt.want {
				t.Errorf("hit = %v, want %v (ray %+v)", got.Index == 0, tt.want, got.Ray)
			}
		})
	}
}

func TestSenseFirstMatchNotNearest(t *testing.T) {
	candidates := []Candidate{
		{Kind: components.KindFood, X: 500, Y: 0, Radius: 7},
		{Kind: components.KindAgent, X: 50, Y: 0, Radius: 7},
	}
	got := Sense(0, 0, 0, candidates, -1)
	if got.Index != 0 {
		t.Errorf("index = %d, want the first covering candidate 0", got.Index)
	}
	if got.Ray.Food != 1 || got.Ray.Distance != 500 {
		t.Errorf("got %+v, want far food", got.Ray)
	}
}

func TestSenseSkipsObserver(t *testing.T) {
	candidates := []Candidate{
		{Kind: components.KindAgent, X: 0, Y: 0, Radius: 7},
		{Kind: components.KindAgent, X: 40, Y: 0, Radius: 7},
	}
	got := Sense(0, 0, 0, candidates, 0)
	if got.Index != 1 {
		t.Errorf("index = %d, want 1", got.Index)
	}
	if got.Ray.Bug != 1 {
		t.Errorf("expected a bug hit, got %+v", got.Ray)
	}
}

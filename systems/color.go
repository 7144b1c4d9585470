package systems

import (
	"math/rand"

	"github.com/pthm-cable/artlife/components"
)

// PickColor draws a random colour that is neither too dark nor too pale:
// the channel sum lies in [255, 510].
func PickColor(rng *rand.Rand) components.Color {
	for {
		r, g, b := rng.Intn(255), rng.Intn(255), rng.Intn(255)
		if sum := r + g + b; sum >= 255 && sum <= 2*255 {
			return components.Color{R: uint8(r), G: uint8(g), B: uint8(b)}
		}
	}
}

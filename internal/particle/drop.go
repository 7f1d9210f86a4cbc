// Package particle models rain drops: short-lived point sources whose
// influence on nearby points falls off with distance and decays over time.
package particle

import (
	"math"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Drop is one particle. Origin is planar; point Z is ignored.
type Drop struct {
	X, Y     float64
	Color    render.Color
	Spread   float64    // distance exponent; larger is a tighter drop
	FadeRate [3]float64 // per-channel fraction kept per second, each in (0,1)
	Spawned  float64    // spawn time in engine seconds

	fade     [3]float64
	peak     float64
	observed bool
	expired  bool
}

// NewDrop returns a drop at full strength as of spawned.
func NewDrop(x, y float64, c render.Color, spread float64, fade [3]float64, spawned float64) *Drop {
	return &Drop{
		X: x, Y: y,
		Color:    c,
		Spread:   spread,
		FadeRate: fade,
		Spawned:  spawned,
		fade:     [3]float64{1, 1, 1},
	}
}

// Tick closes the previous evaluation pass and opens the next one at time
// now. If the brightest channel the drop emitted onto any point during the
// previous pass was below floor, the drop expires for good.
func (d *Drop) Tick(now, floor float64) {
	if d.expired {
		return
	}
	if d.observed && d.peak < floor {
		d.expired = true
		return
	}
	age := now - d.Spawned
	if age < 0 {
		age = 0
	}
	for c := range d.fade {
		d.fade[c] = math.Pow(d.FadeRate[c], age)
	}
	d.peak = 0
	d.observed = false
}

// Influence returns the drop's contribution at distance dist:
// color * 1/max(dist^spread, minDenom) * fade, per channel. It also records
// the peak emitted intensity for the current pass.
func (d *Drop) Influence(dist, minDenom float64) render.Color {
	if d.expired {
		return render.Color{}
	}
	w := 1 / math.Max(math.Pow(dist, d.Spread), minDenom)
	out := render.Color{
		R: d.Color.R * w * d.fade[0],
		G: d.Color.G * w * d.fade[1],
		B: d.Color.B * w * d.fade[2],
	}
	if m := out.Max(); m > d.peak {
		d.peak = m
	}
	d.observed = true
	return out
}

// InfluenceAt is Influence for a point at (x, y).
func (d *Drop) InfluenceAt(x, y, minDenom float64) render.Color {
	return d.Influence(render.Dist2(d.X, d.Y, x, y), minDenom)
}

func (d *Drop) Expired() bool { return d.expired }

// Peak is the brightest channel emitted so far in the current pass.
func (d *Drop) Peak() float64 { return d.peak }

// Fade returns the current per-channel decay factors.
func (d *Drop) Fade() [3]float64 { return d.fade }

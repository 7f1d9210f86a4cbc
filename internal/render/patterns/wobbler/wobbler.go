// Package wobbler renders a soft band of light per strand that swings back
// and forth, with each color channel trailing the others.
package wobbler

import (
	"math"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// orderings are the channel phase offsets (in units of WobblerSpread)
// the pattern cycles through, one per switch.
var orderings = [3][3]float64{
	{-1, 0, 1},
	{0, 1, -1},
	{1, -1, 0},
}

// Renderer state is the current channel ordering and when it last changed.
// Params:
//   - "WobblerPeriod" seconds per envelope cycle (default 20)
//   - "WobblerSpeed" band swings per second (default 0.25)
//   - "WobblerLanePhase" phase lag between strands, in cycles (default 0.13)
//   - "WobblerSpread" channel phase lag, in cycles (default 0.08)
//   - "WobblerWidth" band half-width in slots (default 1.5)
//   - "WobblerMinDist" smallest distance used as a divisor (default 0.25)
//   - "WobblerTrough" envelope level under which a switch may happen (default 0.05)
//   - "WobblerMinDwell" seconds between switches (default 10)
//   - "WobblerGamma" (default 2.2)
type Renderer struct {
	name    string
	laneLen int

	order      int
	lastSwitch float64
	init       bool
}

func New(name string, laneLen int) *Renderer {
	if laneLen <= 0 {
		laneLen = 1
	}
	return &Renderer{name: name, laneLen: laneLen}
}

func (r *Renderer) Name() string { return r.name }

// Order is the index of the active channel ordering.
func (r *Renderer) Order() int { return r.order }

func (r *Renderer) Render(dst []render.Color, _ []render.Vec3, t float64, u *render.Uniforms) {
	period := u.Param("WobblerPeriod", 20)
	env := render.Cos(t, 0, period, 0, 1)
	if !r.init {
		r.lastSwitch = t
		r.init = true
	}
	if env < u.Param("WobblerTrough", 0.05) && t-r.lastSwitch >= u.Param("WobblerMinDwell", 10) {
		r.order = (r.order + 1) % len(orderings)
		r.lastSwitch = t
	}

	speed := u.Param("WobblerSpeed", 0.25)
	lanePhase := u.Param("WobblerLanePhase", 0.13)
	spread := u.Param("WobblerSpread", 0.08)
	width := u.Param("WobblerWidth", 1.5)
	minDist := u.Param("WobblerMinDist", 0.25)
	gamma := u.Param("WobblerGamma", 2.2)

	L := r.laneLen
	mid := float64(L-1) / 2
	offs := orderings[r.order]
	for i := range dst {
		lane, pos := i/L, float64(i%L)
		var c render.Color
		for ch := 0; ch < 3; ch++ {
			phase := t*speed + float64(lane)*lanePhase + offs[ch]*spread
			center := mid + mid*env*math.Cos(phase*math.Pi*2)
			c.Set(ch, 255*Intensity(math.Abs(pos-center), width, minDist, gamma))
		}
		dst[i] = c
	}
}

// Intensity is width/dist capped at 1, with dist floored at minDist, then
// raised to gamma.
func Intensity(dist, width, minDist, gamma float64) float64 {
	if minDist <= 0 {
		minDist = 1e-6
	}
	v := render.Clamp(width/math.Max(dist, minDist), 0, 1)
	return math.Pow(v, gamma)
}

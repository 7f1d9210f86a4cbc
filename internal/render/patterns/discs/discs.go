// Package discs renders concentric bands of color that drift slowly along
// every strand at once.
package discs

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Renderer keeps one smoothed color per lane slot; lane slot j is shared
// by every point whose index is j modulo the strand length.
// Params:
//   - "DiscsShiftS" seconds between palette changes (default 8)
//   - "DiscsFadeStep" per-frame approach toward the new palette (default 0.05)
//   - "DiscsSpeed" lane slots advanced per second (default 1.5)
//   - "DiscsMinBand" narrowest band in slots (default 1)
type Renderer struct {
	name    string
	laneLen int
	rng     *rand.Rand

	lane   []render.Color // smoothed, what gets sampled
	target []render.Color // latest palette bands
	scratch []render.Color

	offset    float64
	prevT     float64
	lastShift float64
	init      bool
}

func New(name string, laneLen int, rng *rand.Rand) *Renderer {
	if laneLen <= 0 {
		laneLen = 1
	}
	return &Renderer{
		name:    name,
		laneLen: laneLen,
		rng:     rng,
		lane:    make([]render.Color, laneLen),
		target:  make([]render.Color, laneLen),
		scratch: make([]render.Color, laneLen),
	}
}

func (r *Renderer) Name() string { return r.name }

// Lane exposes the smoothed lane colors.
func (r *Renderer) Lane() []render.Color { return r.lane }

// Target exposes the current palette bands.
func (r *Renderer) Target() []render.Color { return r.target }

func (r *Renderer) Render(dst []render.Color, _ []render.Vec3, t float64, u *render.Uniforms) {
	shiftS := u.Param("DiscsShiftS", 8)
	if !r.init {
		r.Regenerate(int(u.Param("DiscsMinBand", 1)))
		r.prevT = t
		r.lastShift = t
		r.init = true
	}
	if t-r.lastShift >= shiftS {
		r.Regenerate(int(u.Param("DiscsMinBand", 1)))
		r.lastShift = t
	}

	dt := t - r.prevT
	if dt < 0 {
		dt = 0
	}
	r.prevT = t
	r.offset = math.Mod(r.offset+dt*u.Param("DiscsSpeed", 1.5), float64(r.laneLen))

	r.smooth(u.Param("DiscsFadeStep", 0.05))

	L := r.laneLen
	base := int(math.Floor(r.offset))
	frac := r.offset - float64(base)
	for i := range dst {
		j := (i%L + base) % L
		dst[i] = render.Lerp(r.lane[j], r.lane[(j+1)%L], frac)
	}
}

// smooth fades every lane slot toward the 5-wide circular average of the
// palette around it.
func (r *Renderer) smooth(step float64) {
	L := r.laneLen
	for j := 0; j < L; j++ {
		var sum render.Color
		for k := -2; k <= 2; k++ {
			sum = sum.Add(r.target[((j+k)%L+L)%L])
		}
		r.scratch[j] = sum.Scale(1.0 / 5)
	}
	for j := range r.lane {
		r.lane[j] = render.FadeDownTo(r.lane[j], r.scratch[j], step)
	}
}

// Regenerate lays out a new palette: bands of random hue and random width,
// mirrored about the lane center so they read as concentric rings.
func (r *Renderer) Regenerate(minBand int) {
	L := r.laneLen
	if minBand < 1 {
		minBand = 1
	}
	half := (L + 1) / 2
	maxBand := half / 3
	if maxBand < minBand {
		maxBand = minBand
	}
	for pos := 0; pos < half; {
		w := minBand + r.rng.Intn(maxBand-minBand+1)
		if pos+w > half {
			w = half - pos
		}
		c := randomColor(r.rng)
		for k := 0; k < w; k++ {
			// center outward
			r.target[half-1-(pos+k)] = c
			r.target[L-half+(pos+k)] = c
		}
		pos += w
	}
}

func randomColor(rng *rand.Rand) render.Color {
	c := colorful.Hsv(rng.Float64()*360, 0.8+rng.Float64()*0.2, 1)
	rr, gg, bb := c.Clamped().RGB255()
	return render.Color{R: float64(rr), G: float64(gg), B: float64(bb)}
}

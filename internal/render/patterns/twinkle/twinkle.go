// Package twinkle renders points that flash briefly in one of a few palette
// colors, with flashes gated by a slow wave that travels along the strand.
package twinkle

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Swatch is one palette entry and its share of the points.
type Swatch struct {
	Color  render.Color
	Weight float64
}

// Palette is the weighted set of twinkle colors.
type Palette []Swatch

// HexPalette builds a palette from "#rrggbb" strings. Bad hex codes are
// returned as an error.
func HexPalette(hexes []string, weights []float64) (Palette, error) {
	p := make(Palette, 0, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		rr, gg, bb := c.RGB255()
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		p = append(p, Swatch{Color: render.Color{R: float64(rr), G: float64(gg), B: float64(bb)}, Weight: w})
	}
	return p, nil
}

func mustPalette(hexes []string, weights []float64) Palette {
	p, err := HexPalette(hexes, weights)
	if err != nil {
		panic(err)
	}
	return p
}

// Pick returns the palette index for v in [0,1) by cumulative weight.
func (p Palette) Pick(v float64) int {
	total := 0.0
	for _, s := range p {
		total += s.Weight
	}
	acc := 0.0
	for i, s := range p {
		acc += s.Weight / total
		if v < acc {
			return i
		}
	}
	return len(p) - 1
}

// Renderer holds each point's fixed palette slot and phase. When base is
// set it is rendered first and the twinkles are added on top.
// Params:
//   - "TwinkleRate" flashes per second per point (default 0.35)
//   - "TwinklePower" odd exponent that sharpens each flash (default 9)
//   - "TwinkleWavePeriod" traveling wave length in strand fractions (default 0.5)
//   - "TwinkleWaveSpeed" strand fractions per second (default 0.05)
//   - "TwinkleWavePower" (default 4)
type Renderer struct {
	name    string
	palette Palette
	base    render.Pattern
	rng     *rand.Rand

	pick  []int
	phase []float64
}

func New(name string, palette Palette, base render.Pattern, rng *rand.Rand) *Renderer {
	return &Renderer{name: name, palette: palette, base: base, rng: rng}
}

func (r *Renderer) Name() string { return r.name }

// Picks exposes the per-point palette slots.
func (r *Renderer) Picks() []int { return r.pick }

func (r *Renderer) seed(n int) {
	r.pick = make([]int, n)
	r.phase = make([]float64, n)
	for i := 0; i < n; i++ {
		r.pick[i] = r.palette.Pick(r.rng.Float64())
		r.phase[i] = r.rng.Float64()
	}
}

func (r *Renderer) Render(dst []render.Color, pts []render.Vec3, t float64, u *render.Uniforms) {
	n := len(dst)
	if len(r.pick) != n {
		r.seed(n)
	}
	if r.base != nil {
		r.base.Render(dst, pts, t, u)
	} else {
		for i := range dst {
			dst[i] = render.Color{}
		}
	}
	if len(r.palette) == 0 {
		return
	}

	rate := u.Param("TwinkleRate", 0.35)
	pow := u.Param("TwinklePower", 9)
	wPeriod := u.Param("TwinkleWavePeriod", 0.5)
	wSpeed := u.Param("TwinkleWaveSpeed", 0.05)
	wPow := u.Param("TwinkleWavePower", 4)

	for i := range dst {
		pct := float64(i) / float64(n)
		wave := math.Pow(render.Cos(pct-t*wSpeed, 0, wPeriod, 0, 1), wPow)
		env := Envelope(r.phase[i], t, rate, pow) * wave
		dst[i] = dst[i].Add(r.palette[r.pick[i]].Color.Scale(env))
	}
}

// Envelope is a single point's flash level in [0,1]: a sawtooth from the
// point's phase folded into a triangle, stretched to [-1,1], sharpened by an
// odd power and clamped so only the top of each cycle lights up.
func Envelope(phase, t, rate, pow float64) float64 {
	saw := phase + t*rate
	saw -= math.Floor(saw)
	tri := 1 - math.Abs(2*saw-1)
	v := render.Remap(tri, 0, 1, -1, 1)
	v = math.Copysign(math.Pow(math.Abs(v), pow), v)
	return render.Clamp(v, 0, 1)
}

var (
	// SparkleWeights and SailorMoonWeights split points 50/35/15.
	SparkleWeights    = []float64{0.5, 0.35, 0.15}
	SailorMoonWeights = []float64{0.5, 0.35, 0.15}

	SparkleHex    = []string{"#fff4e0", "#ffd27a", "#ffb3d9"}
	SailorMoonHex = []string{"#ff5fa2", "#ffd84d", "#5a8cff"}
)

// NewSparkle twinkles warm whites over base.
func NewSparkle(name string, base render.Pattern, rng *rand.Rand) *Renderer {
	p := mustPalette(SparkleHex, SparkleWeights)
	return New(name, p, base, rng)
}

// NewSailorMoon twinkles pink, gold and blue on black.
func NewSailorMoon(name string, rng *rand.Rand) *Renderer {
	p := mustPalette(SailorMoonHex, SailorMoonWeights)
	return New(name, p, nil, rng)
}

// Package rain renders drops landing on a soft warm-white field.
package rain

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-spatialeds/internal/particle"
	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

var (
	// WarmWhite is the spawn highlight, on the 0..255 scale.
	WarmWhite = render.Color{R: 214, G: 255, B: 170}
	// SoftWarmWhite is the ambient floor every point rests at.
	SoftWarmWhite = WarmWhite.Scale(0.6)
)

// Renderer owns the drop population and the per-point colors it blends.
// Params:
//   - "RainFadeStep" fraction of the gap to the target closed per frame (default 0.08)
//   - "RainHighlightEvery" mean seconds between highlights (default 0.05)
//   - "RainHighlightSD" std deviation of the highlight color (default 20)
//   - "RainMaxDrops", "RainSpawnChance", "RainFloor", "RainMinDenom" particle tuning
//   - "RainGamma" output curve (default 2.2)
type Renderer struct {
	name  string
	rng   *rand.Rand
	sys   *particle.System
	gamma *render.Gamma

	pixels        []render.Color
	nextHighlight float64
	init          bool
}

func New(name string, rng *rand.Rand) *Renderer {
	return &Renderer{name: name, rng: rng}
}

func (r *Renderer) Name() string  { return r.name }
func (r *Renderer) Spatial() bool { return true }

// System exposes the drop population.
func (r *Renderer) System() *particle.System { return r.sys }

func (r *Renderer) setup(pts []render.Vec3, n int, u *render.Uniforms) {
	cfg := particle.DefaultConfig()
	cfg.MaxDrops = int(u.Param("RainMaxDrops", float64(cfg.MaxDrops)))
	cfg.SpawnChance = u.Param("RainSpawnChance", cfg.SpawnChance)
	cfg.Floor = u.Param("RainFloor", cfg.Floor)
	cfg.MinDenom = u.Param("RainMinDenom", cfg.MinDenom)
	if len(pts) > 0 {
		cfg.MinX, cfg.MaxX = math.Inf(1), math.Inf(-1)
		cfg.MinY, cfg.MaxY = math.Inf(1), math.Inf(-1)
		for _, p := range pts[:n] {
			cfg.MinX, cfg.MaxX = math.Min(cfg.MinX, p.X), math.Max(cfg.MaxX, p.X)
			cfg.MinY, cfg.MaxY = math.Min(cfg.MinY, p.Y), math.Max(cfg.MaxY, p.Y)
		}
	}
	r.sys = particle.NewSystem(cfg, r.rng)
	r.gamma = render.NewGamma(u.Param("RainGamma", 2.2))
	r.pixels = make([]render.Color, n)
	for i := range r.pixels {
		r.pixels[i] = SoftWarmWhite
	}
	r.init = true
}

func (r *Renderer) Render(dst []render.Color, pts []render.Vec3, t float64, u *render.Uniforms) {
	n := len(dst)
	if !r.init || len(r.pixels) != n {
		r.setup(pts, n, u)
	}
	step := u.Param("RainFadeStep", 0.08)

	r.sys.Tick(t)
	for i := range dst {
		p := pts[i]
		target := r.sys.Accumulate(p.X, p.Y)
		target = render.ClampBetween(target, SoftWarmWhite, render.Color{R: 255, G: 255, B: 255})
		r.pixels[i] = render.FadeDownTo(r.pixels[i], target, step)
	}

	if t >= r.nextHighlight && n > 0 {
		r.highlight(u)
		avg := u.Param("RainHighlightEvery", 0.05)
		r.nextHighlight = t + math.Abs(r.rng.NormFloat64()*avg/2+avg)
	}

	for i := range dst {
		dst[i] = r.gamma.Color(r.pixels[i])
	}
}

// highlight forces one random point to a warm-white flash, never dimmer
// than it already is.
func (r *Renderer) highlight(u *render.Uniforms) {
	sd := u.Param("RainHighlightSD", 20)
	i := r.rng.Intn(len(r.pixels))
	c := render.Color{
		R: WarmWhite.R + r.rng.NormFloat64()*sd,
		G: WarmWhite.G + r.rng.NormFloat64()*sd,
		B: WarmWhite.B + r.rng.NormFloat64()*sd,
	}
	r.pixels[i] = render.ClampBetween(c, r.pixels[i], render.Color{R: 255, G: 255, B: 255})
}

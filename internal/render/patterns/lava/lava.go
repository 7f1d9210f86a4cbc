// Package lava renders slow blobs of blue and orange that move through the
// 3D layout like a lava lamp.
package lava

import (
	"math"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Renderer is stateless; all motion comes from t.
// Params:
//   - "LavaScale" spatial frequency applied to coordinates (default 0.8)
//   - "LavaSpeed" time multiplier (default 0.05)
//   - "LavaFeedback" strength of the cross-axis perturbation (default 0.8)
//   - "LavaContrast" (default 1.8)
//   - "LavaMaskScale" spatial frequency of the blackout mask (default 0.35)
//   - "LavaMaskCenter", "LavaMaskWidth" pass band of the mask sum (default 0, 1.2)
//   - "LavaGreenBias" how far green is pulled toward (r+b)/2 (default 0.7)
type Renderer struct {
	name string
}

func New(name string) *Renderer { return &Renderer{name: name} }

func (r *Renderer) Name() string  { return r.name }
func (r *Renderer) Spatial() bool { return true }

func (r *Renderer) Render(dst []render.Color, pts []render.Vec3, t float64, u *render.Uniforms) {
	p := params{
		scale:      u.Param("LavaScale", 0.8),
		speed:      u.Param("LavaSpeed", 0.05),
		feedback:   u.Param("LavaFeedback", 0.8),
		contrast:   u.Param("LavaContrast", 1.8),
		maskScale:  u.Param("LavaMaskScale", 0.35),
		maskCenter: u.Param("LavaMaskCenter", 0),
		maskWidth:  u.Param("LavaMaskWidth", 1.2),
		greenBias:  render.Clamp(u.Param("LavaGreenBias", 0.7), 0, 1),
	}
	for i := range dst {
		dst[i] = p.shade(pts[i], t)
	}
}

type params struct {
	scale, speed, feedback, contrast float64
	maskScale, maskCenter, maskWidth float64
	greenBias                        float64
}

func (p params) shade(pt render.Vec3, t float64) render.Color {
	ts := t * p.speed
	x := pt.X*p.scale + ts*0.9
	y := pt.Y*p.scale - ts*0.7
	z := pt.Z*p.scale + ts*1.3

	// each axis nudged by the other two
	x += p.feedback * math.Cos(y*1.7+ts*0.5) * math.Cos(z*0.9)
	y += p.feedback * math.Cos(z*1.3-ts*0.3) * math.Cos(x*1.1)
	z += p.feedback * math.Cos(x*1.5+ts*0.2) * math.Cos(y*0.7)

	// permute axes
	x, y, z = y, z, x

	rr := render.Cos(x, 0, 1, 0, 1)
	gg := render.Cos(y, 1.0/3, 1, 0, 1)
	bb := render.Cos(z, 2.0/3, 1, 0, 1)

	rr = render.Clamp(render.Contrast(rr, 0.5, p.contrast), 0, 1)
	gg = render.Clamp(render.Contrast(gg, 0.5, p.contrast), 0, 1)
	bb = render.Clamp(render.Contrast(bb, 0.5, p.contrast), 0, 1)

	m := Mask(pt, ts, p.maskScale, p.maskCenter, p.maskWidth)

	gg = gg*(1-p.greenBias) + (rr+bb)/2*p.greenBias

	return render.Color{R: rr * m * 255, G: gg * m * 255, B: bb * m * 255}
}

// Mask is a lower-frequency triple-cosine field. It is 1 at center and
// falls linearly to 0 at center±width; outside that band the point is black.
func Mask(pt render.Vec3, ts, scale, center, width float64) float64 {
	if width <= 0 {
		return 1
	}
	s := math.Cos(pt.X*scale+ts*0.4) + math.Cos(pt.Y*scale-ts*0.6) + math.Cos(pt.Z*scale+ts*0.5)
	return render.Clamp(1-math.Abs(s-center)/width, 0, 1)
}

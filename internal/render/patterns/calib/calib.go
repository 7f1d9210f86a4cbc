// Package calib holds wiring checks: patterns that light points in a known
// order so a layout file can be verified against the physical install.
package calib

import (
	"math"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

type Kind string

const (
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	PlaneZ     Kind = "plane_z"
)

// Kinds lists every check in cycle order.
var Kinds = []Kind{IndexSweep, RGBTest, PlaneZ}

// Renderer steps through its check on a fixed cadence and loops forever.
// Params:
//   - "CalibStepS" seconds per step (default 0.1 for the sweep, 1 otherwise)
//   - "CalibPlaneWidth" thickness of the Z slab (default 0.5)
type Renderer struct {
	kind Kind
}

func New(kind Kind) *Renderer { return &Renderer{kind: kind} }

func (r *Renderer) Name() string { return string(r.kind) }

func (r *Renderer) Spatial() bool { return r.kind == PlaneZ }

func (r *Renderer) Render(dst []render.Color, pts []render.Vec3, t float64, u *render.Uniforms) {
	for i := range dst {
		dst[i] = render.Color{}
	}
	n := len(dst)
	if n == 0 {
		return
	}
	def := 1.0
	if r.kind == IndexSweep {
		def = 0.1
	}
	stepS := u.Param("CalibStepS", def)
	if stepS <= 0 {
		stepS = def
	}
	step := int(math.Floor(t / stepS))

	switch r.kind {
	case IndexSweep:
		dst[step%n] = render.Color{R: 255, G: 255, B: 255}
	case RGBTest:
		var c render.Color
		c.Set(step%3, 255)
		for i := range dst {
			dst[i] = c
		}
	case PlaneZ:
		zs := planes(pts[:n])
		z := zs[step%len(zs)]
		w := u.Param("CalibPlaneWidth", 0.5)
		for i := range dst {
			if math.Abs(pts[i].Z-z) <= w {
				dst[i] = render.Color{G: 255, B: 255} // cyan
			}
		}
	}
}

// planes returns the distinct Z values in first-seen order.
func planes(pts []render.Vec3) []float64 {
	seen := map[float64]bool{}
	var zs []float64
	for _, p := range pts {
		if !seen[p.Z] {
			seen[p.Z] = true
			zs = append(zs, p.Z)
		}
	}
	return zs
}

package render

import (
	"errors"
	"fmt"
)

// Vec3 is a point coordinate as read from the layout.
type Vec3 struct{ X, Y, Z float64 }

// Color holds three unclamped channels on a 0..255 scale.
type Color struct{ R, G, B float64 }

// Scale returns c with every channel multiplied by s.
func (c Color) Scale(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }

// Add returns the channel-wise sum.
func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

// Mul returns the channel-wise product.
func (c Color) Mul(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }

// Max returns the largest channel.
func (c Color) Max() float64 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

// At returns channel i (0=R, 1=G, 2=B).
func (c Color) At(i int) float64 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// Set assigns channel i (0=R, 1=G, 2=B).
func (c *Color) Set(i int, v float64) {
	switch i {
	case 0:
		c.R = v
	case 1:
		c.G = v
	default:
		c.B = v
	}
}

// Uniforms carries the tuning constants shared with every pattern.
// Params are numeric overrides read from config; Bools are switches.
type Uniforms struct {
	Brightness float64
	Params     map[string]float64
	Bools      map[string]bool
}

// Param reads a numeric tuning constant, falling back to def.
func (u *Uniforms) Param(key string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[key]; ok {
		return v
	}
	return def
}

// Bool reads a switch; missing keys are false.
func (u *Uniforms) Bool(key string) bool {
	if u == nil || u.Bools == nil {
		return false
	}
	return u.Bools[key]
}

// Pattern is one procedural generator. Implementations keep their own
// persistent state and must only touch that state inside Render.
// Render writes exactly one color per point into dst.
type Pattern interface {
	Name() string
	Render(dst []Color, pts []Vec3, t float64, u *Uniforms)
}

// Spatial is implemented by patterns that read point coordinates and
// therefore need one coordinate per point.
type Spatial interface {
	Spatial() bool
}

// IsSpatial reports whether p declares itself spatial.
func IsSpatial(p Pattern) bool {
	s, ok := p.(Spatial)
	return ok && s.Spatial()
}

var ErrUnknownPattern = errors.New("unknown pattern")

// Registry is the ordered lookup table of patterns. The index of a pattern
// is its position in the trigger cycle.
type Registry struct {
	order []Pattern
	m     map[string]int
}

func NewRegistry() *Registry { return &Registry{m: map[string]int{}} }

// Register appends rr to the cycle. Registering a name twice replaces the
// earlier pattern in place.
func (r *Registry) Register(rr Pattern) {
	if rr == nil {
		return
	}
	if i, ok := r.m[rr.Name()]; ok {
		r.order[i] = rr
		return
	}
	r.m[rr.Name()] = len(r.order)
	r.order = append(r.order, rr)
}

func (r *Registry) Get(name string) (Pattern, bool) {
	i, ok := r.m[name]
	if !ok {
		return nil, false
	}
	return r.order[i], true
}

// Index returns the cycle position of name.
func (r *Registry) Index(name string) (int, error) {
	i, ok := r.m[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
	}
	return i, nil
}

func (r *Registry) At(i int) Pattern { return r.order[i] }

func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, p.Name())
	}
	return out
}

// Subset returns a registry holding only the named patterns, in the given order.
func (r *Registry) Subset(names []string) (*Registry, error) {
	out := NewRegistry()
	for _, n := range names {
		p, ok := r.Get(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, n)
		}
		out.Register(p)
	}
	return out, nil
}

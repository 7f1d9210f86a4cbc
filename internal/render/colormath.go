package render

import "math"

// Cos is a cosine wave with configurable period, phase offset and output
// range. At x=offset*period it returns maxx.
func Cos(x, offset, period, minn, maxx float64) float64 {
	v := math.Cos((x/period-offset)*math.Pi*2)/2 + 0.5
	return v*(maxx-minn) + minn
}

// Remap linearly maps x from [oldMin,oldMax] to [newMin,newMax]. No clamping.
func Remap(x, oldMin, oldMax, newMin, newMax float64) float64 {
	if oldMax == oldMin {
		return newMin
	}
	u := (x - oldMin) / (oldMax - oldMin)
	return u*(newMax-newMin) + newMin
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Contrast stretches x away from center by mult.
func Contrast(x, center, mult float64) float64 {
	return (x-center)*mult + center
}

// ClampColor clamps every channel into [lo,hi].
func ClampColor(c Color, lo, hi float64) Color {
	return Color{Clamp(c.R, lo, hi), Clamp(c.G, lo, hi), Clamp(c.B, lo, hi)}
}

// ClampBetween clamps each channel of c between the matching channels of lo and hi.
func ClampBetween(c, lo, hi Color) Color {
	return Color{Clamp(c.R, lo.R, hi.R), Clamp(c.G, lo.G, hi.G), Clamp(c.B, lo.B, hi.B)}
}

// FadeDownTo moves from toward to by a fraction step of the remaining
// distance (a one-pole low-pass). step is clamped to [0,1] so the result
// never passes the target.
func FadeDownTo(from, to Color, step float64) Color {
	step = Clamp(step, 0, 1)
	return Color{
		R: from.R - (from.R-to.R)*step,
		G: from.G - (from.G-to.G)*step,
		B: from.B - (from.B-to.B)*step,
	}
}

// Lerp blends a toward b by f in [0,1].
func Lerp(a, b Color, f float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
	}
}

// Gamma is a precomputed 0..255 correction curve.
type Gamma struct {
	exp   float64
	table [256]float64
}

// NewGamma builds the curve out = 255*(in/255)^exp. exp <= 0 means 1.
func NewGamma(exp float64) *Gamma {
	if exp <= 0 {
		exp = 1
	}
	g := &Gamma{exp: exp}
	for i := range g.table {
		g.table[i] = 255 * math.Pow(float64(i)/255, exp)
	}
	return g
}

// Exp is the exponent the curve was built with.
func (g *Gamma) Exp() float64 { return g.exp }

// Apply corrects one channel, interpolating between table entries.
func (g *Gamma) Apply(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	i := int(v)
	f := v - float64(i)
	if i >= 255 {
		return g.table[255]
	}
	return g.table[i] + (g.table[i+1]-g.table[i])*f
}

// Color corrects all three channels.
func (g *Gamma) Color(c Color) Color {
	return Color{g.Apply(c.R), g.Apply(c.G), g.Apply(c.B)}
}

// Dist2 is the planar distance between two points, ignoring Z.
func Dist2(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

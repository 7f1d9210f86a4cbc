// Package waves renders the rainbow plaid: three out-of-phase cosine waves,
// one per channel, masked by drifting diagonal black stripes.
package waves

import (
	"math"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Speeds are wave periods in scaled seconds per channel; the sign sets direction.
type Speeds struct{ R, G, B float64 }

var (
	Chill = Speeds{29, -13, 19}
	Dance = Speeds{1.4, -2.6, 3.8}
)

// Renderer is stateless apart from its speeds.
// Params:
//   - "WavesFreq" cycles per strand (default 24)
//   - "WavesTimeScale" (default 5)
//   - "WavesJitterMul", "WavesJitterMod" scramble for the stripes (default 77, 37)
//
// Bools:
//   - "NoStripes" forces the stripe mask to 1
type Renderer struct {
	name   string
	speeds Speeds
}

func New(name string, s Speeds) *Renderer {
	return &Renderer{name: name, speeds: s}
}

func (r *Renderer) Name() string { return r.name }

func (r *Renderer) Render(dst []render.Color, _ []render.Vec3, t float64, u *render.Uniforms) {
	freq := u.Param("WavesFreq", 24)
	jMul := u.Param("WavesJitterMul", 77)
	jMod := u.Param("WavesJitterMod", 37)
	noStripes := u.Bool("NoStripes")
	ts := t * u.Param("WavesTimeScale", 5)

	n := float64(len(dst))
	pulse := render.Cos(ts, 0.9, 60, -0.5, 3)
	for i := range dst {
		pct := float64(i) / n
		mask := 1.0
		if !noStripes {
			mask = Stripes(pct, ts, jMul, jMod, pulse)
		}
		dst[i] = render.Color{
			R: mask * channel(ts, r.speeds.R, pct, freq),
			G: mask * channel(ts, r.speeds.G, pct, freq),
			B: mask * channel(ts, r.speeds.B, pct, freq),
		}
	}
}

// Stripes is the black-stripe mask in [0,1] for position pct at scaled time ts.
func Stripes(pct, ts, jMul, jMod, pulse float64) float64 {
	jittered := math.Mod(pct*jMul, jMod)
	s := render.Cos(jittered, ts*0.05, 1, -1.5, 1.5)
	return render.Clamp(s+pulse, 0, 1)
}

func channel(ts, speed, pct, freq float64) float64 {
	if speed == 0 {
		speed = 1
	}
	v := render.Remap(math.Cos((ts/speed+pct*freq)*math.Pi*2), -1, 1, 0, 256)
	// the crest maps to 256; keep channels inside [0,256)
	return math.Min(v, channelMax)
}

var channelMax = math.Nextafter(256, 0)

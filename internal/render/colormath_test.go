package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFadeDownToNeverOvershoots(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		old := Color{rng.Float64() * 1023, rng.Float64() * 1023, rng.Float64() * 1023}
		target := Color{rng.Float64() * 1023, rng.Float64() * 1023, rng.Float64() * 1023}
		step := rng.Float64()*0.98 + 0.01

		cur := old
		for k := 0; k < 20; k++ {
			next := FadeDownTo(cur, target, step)
			for c := 0; c < 3; c++ {
				before := math.Abs(cur.At(c) - target.At(c))
				after := math.Abs(next.At(c) - target.At(c))
				assert.LessOrEqual(t, after, before+1e-9)
				// same side of the target as before
				assert.GreaterOrEqual(t, (cur.At(c)-target.At(c))*(next.At(c)-target.At(c)), -1e-9)
			}
			cur = next
		}
	}
}

func TestFadeDownToStepBounds(t *testing.T) {
	from := Color{100, 100, 100}
	to := Color{0, 50, 200}
	assert.Equal(t, from, FadeDownTo(from, to, 0))
	assert.Equal(t, to, FadeDownTo(from, to, 1))
	assert.Equal(t, to, FadeDownTo(from, to, 3), "step above 1 is clamped")
}

func TestCosRange(t *testing.T) {
	for x := -5.0; x < 5; x += 0.01 {
		v := Cos(x, 0.3, 1.7, -1.5, 1.5)
		assert.GreaterOrEqual(t, v, -1.5-1e-9)
		assert.LessOrEqual(t, v, 1.5+1e-9)
	}
	assert.InDelta(t, 3.0, Cos(0.9*60, 0.9, 60, -0.5, 3), 1e-9, "peak at x = offset*period")
}

func TestRemapAndClamp(t *testing.T) {
	assert.InDelta(t, 128, Remap(0, -1, 1, 0, 256), 1e-9)
	assert.InDelta(t, 0, Remap(-1, -1, 1, 0, 256), 1e-9)
	assert.Equal(t, 0.0, Remap(3, 2, 2, 0, 1), "degenerate source range")
	assert.Equal(t, 1.0, Clamp(4, 0, 1))
	assert.Equal(t, 0.0, Clamp(-4, 0, 1))
	assert.InDelta(t, 0.9, Contrast(0.7, 0.5, 2), 1e-9)
}

func TestGammaCurve(t *testing.T) {
	g := NewGamma(2.2)
	assert.Equal(t, 0.0, g.Apply(0))
	assert.Equal(t, 255.0, g.Apply(255))
	assert.Equal(t, 255.0, g.Apply(400))
	assert.Less(t, g.Apply(128), 128.0)
	prev := -1.0
	for v := 0.0; v <= 255; v += 0.5 {
		cur := g.Apply(v)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 1.0, NewGamma(0).Exp())
}

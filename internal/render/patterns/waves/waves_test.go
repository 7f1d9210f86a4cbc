package waves

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

func TestChannelsStayInRemapBounds(t *testing.T) {
	r := New("chill", Chill)
	u := &render.Uniforms{Bools: map[string]bool{"NoStripes": true}}
	dst := make([]render.Color, 200)
	for _, tm := range []float64{0, 0.013, 1, 7.77, 123.4, 9999} {
		r.Render(dst, nil, tm, u)
		for i, c := range dst {
			for ch := 0; ch < 3; ch++ {
				v := c.At(ch)
				assert.GreaterOrEqual(t, v, 0.0, "i=%d t=%v", i, tm)
				assert.Less(t, v, 256.0, "i=%d t=%v", i, tm)
			}
		}
	}
}

func TestCrestStaysBelowUpperBound(t *testing.T) {
	// at t=0 every 25th point of 200 sits on a crest of all three waves
	r := New("chill", Chill)
	dst := make([]render.Color, 200)
	r.Render(dst, nil, 0, &render.Uniforms{Bools: map[string]bool{"NoStripes": true}})
	for i := 0; i < len(dst); i += 25 {
		for ch := 0; ch < 3; ch++ {
			assert.Less(t, dst[i].At(ch), 256.0, "i=%d", i)
			assert.InDelta(t, 256.0, dst[i].At(ch), 1e-9, "i=%d", i)
		}
	}
}

func TestStripesBlackOutSomePoints(t *testing.T) {
	r := New("dance", Dance)
	dst := make([]render.Color, 800)
	// pulse at its minimum (-0.5) leaves most of the stripe wave below zero
	r.Render(dst, nil, 0.9*60/5+30/5, &render.Uniforms{})
	black := 0
	for _, c := range dst {
		if c == (render.Color{}) {
			black++
		}
	}
	assert.Greater(t, black, 0)
	assert.Less(t, black, len(dst))
}

func TestStripesMaskRange(t *testing.T) {
	for pct := 0.0; pct < 1; pct += 0.01 {
		for ts := 0.0; ts < 100; ts += 3.3 {
			m := Stripes(pct, ts, 77, 37, render.Cos(ts, 0.9, 60, -0.5, 3))
			assert.GreaterOrEqual(t, m, 0.0)
			assert.LessOrEqual(t, m, 1.0)
		}
	}
}

func TestChannelsDecoupled(t *testing.T) {
	r := New("chill", Chill)
	u := &render.Uniforms{Bools: map[string]bool{"NoStripes": true}}
	a := make([]render.Color, 50)
	b := make([]render.Color, 50)
	r.Render(a, nil, 0, u)
	r.Render(b, nil, 3, u)
	// every channel moves, and not in lockstep
	dr := b[0].R - a[0].R
	dg := b[0].G - a[0].G
	db := b[0].B - a[0].B
	assert.NotEqual(t, dr, dg)
	assert.NotEqual(t, dg, db)
}

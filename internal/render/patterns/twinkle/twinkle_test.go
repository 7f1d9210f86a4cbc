package twinkle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

type flat struct{ c render.Color }

func (f flat) Name() string { return "flat" }
func (f flat) Render(dst []render.Color, _ []render.Vec3, _ float64, _ *render.Uniforms) {
	for i := range dst {
		dst[i] = f.c
	}
}

func TestEnvelopeShape(t *testing.T) {
	// peak mid-cycle, dark for most of it
	assert.InDelta(t, 1, Envelope(0.5, 0, 1, 9), 1e-12)
	assert.Equal(t, 0.0, Envelope(0, 0, 1, 9))
	assert.Equal(t, 0.0, Envelope(0.2, 0, 1, 9), "lower half of the triangle is clamped off")
	assert.Less(t, Envelope(0.7, 0, 1, 9), Envelope(0.6, 0, 1, 9))
	assert.InDelta(t, Envelope(0.3, 0, 1, 9), Envelope(0.1, 0.2, 1, 9), 1e-12, "time shifts the phase")
	for x := 0.0; x < 3; x += 0.01 {
		v := Envelope(0.37, x, 0.8, 9)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestPaletteWeights(t *testing.T) {
	p, err := HexPalette(SailorMoonHex, SailorMoonWeights)
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, 0, p.Pick(0.1))
	assert.Equal(t, 1, p.Pick(0.6))
	assert.Equal(t, 2, p.Pick(0.9))
	assert.Equal(t, 2, p.Pick(0.9999999))

	_, err = HexPalette([]string{"nope"}, nil)
	assert.Error(t, err)
}

func TestBuiltinPalettesParse(t *testing.T) {
	assert.Len(t, NewSparkle("sparkle", nil, rand.New(rand.NewSource(1))).palette, len(SparkleHex))
	assert.Len(t, NewSailorMoon("sailormoon", rand.New(rand.NewSource(1))).palette, len(SailorMoonHex))
	assert.Panics(t, func() { mustPalette([]string{"#ff5fa2", "#zzzzzz"}, nil) })
}

func TestPicksFixedAndRoughlyWeighted(t *testing.T) {
	r := NewSailorMoon("sailormoon", rand.New(rand.NewSource(9)))
	dst := make([]render.Color, 2000)
	r.Render(dst, nil, 0, &render.Uniforms{})
	picks := append([]int(nil), r.Picks()...)
	r.Render(dst, nil, 5, &render.Uniforms{})
	assert.Equal(t, picks, r.Picks(), "palette slots are chosen once")

	counts := map[int]int{}
	for _, p := range picks {
		counts[p]++
	}
	assert.InDelta(t, 1000, counts[0], 120)
	assert.InDelta(t, 700, counts[1], 120)
	assert.InDelta(t, 300, counts[2], 120)
}

func TestSailorMoonStaysWithinPalette(t *testing.T) {
	r := NewSailorMoon("sailormoon", rand.New(rand.NewSource(2)))
	dst := make([]render.Color, 300)
	lit := 0
	for f := 0; f < 120; f++ {
		r.Render(dst, nil, float64(f)/10, &render.Uniforms{})
		for i, c := range dst {
			sw := r.palette[r.Picks()[i]].Color
			assert.LessOrEqual(t, c.R, sw.R+1e-9)
			assert.LessOrEqual(t, c.G, sw.G+1e-9)
			assert.LessOrEqual(t, c.B, sw.B+1e-9)
			if c.Max() > 0 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 0)
}

func TestSparkleAddsOverBase(t *testing.T) {
	base := flat{render.Color{R: 10, G: 20, B: 30}}
	r := NewSparkle("sparkle", base, rand.New(rand.NewSource(4)))
	dst := make([]render.Color, 200)
	r.Render(dst, nil, 1, &render.Uniforms{})
	for _, c := range dst {
		assert.GreaterOrEqual(t, c.R, 10.0)
		assert.GreaterOrEqual(t, c.G, 20.0)
		assert.GreaterOrEqual(t, c.B, 30.0)
	}
}

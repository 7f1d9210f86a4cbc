package particle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

var white = render.Color{R: 255, G: 255, B: 255}

func TestInfluenceFalloff(t *testing.T) {
	const minDenom = 0.05
	for _, spread := range []float64{0.5, 1, 2, 3.5} {
		d := NewDrop(0, 0, white, spread, [3]float64{0.9, 0.9, 0.9}, 0)
		d.Tick(0, 0)
		prev := d.Influence(0, minDenom)
		assert.InDelta(t, 255/minDenom, prev.R, 1e-6, "zero distance hits the denominator floor")
		for dist := 0.5; dist < 20; dist += 0.25 {
			cur := d.Influence(dist, minDenom)
			assert.Less(t, cur.R, prev.R, "spread %v dist %v", spread, dist)
			assert.LessOrEqual(t, cur.R, 255/minDenom)
			prev = cur
		}
	}
}

func TestFadeFollowsElapsedSeconds(t *testing.T) {
	d := NewDrop(0, 0, white, 1, [3]float64{0.5, 0.25, 0.9}, 10)
	d.Tick(12, 0)
	f := d.Fade()
	assert.InDelta(t, 0.25, f[0], 1e-12)
	assert.InDelta(t, 0.0625, f[1], 1e-12)
	assert.InDelta(t, 0.81, f[2], 1e-12)

	d.Tick(9, 0)
	assert.Equal(t, [3]float64{1, 1, 1}, d.Fade(), "negative age is treated as zero")
}

func TestDropExpiresBelowFloor(t *testing.T) {
	const floor = 12.0
	d := NewDrop(0, 0, white, 1, [3]float64{0.5, 0.5, 0.5}, 0)
	expiredAt := -1
	for s := 0; s < 20; s++ {
		d.Tick(float64(s), floor)
		if d.Expired() {
			expiredAt = s
			break
		}
		d.Influence(1, 0.05) // peak = 255 * 0.5^s
	}
	// 255*0.5^4 = 15.9 >= floor, 255*0.5^5 = 7.97 < floor, noticed on the next tick.
	assert.Equal(t, 6, expiredAt)
	assert.Equal(t, render.Color{}, d.Influence(0, 0.05))

	d.Tick(100, 0)
	assert.True(t, d.Expired(), "expiry is permanent")
}

func TestUnobservedDropDoesNotExpire(t *testing.T) {
	d := NewDrop(0, 0, white, 1, [3]float64{0.1, 0.1, 0.1}, 0)
	d.Tick(0, 12)
	d.Tick(50, 12)
	assert.False(t, d.Expired(), "no evaluation pass means no peak to judge")
}

func TestSystemRespectsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDrops = 3
	cfg.SpawnChance = 1
	s := NewSystem(cfg, rand.New(rand.NewSource(1)))
	for i := 0; i < 10; i++ {
		s.Tick(float64(i) / 60)
		assert.LessOrEqual(t, len(s.Drops()), 3)
	}
	assert.Equal(t, 3, s.Live())
	assert.False(t, s.Spawn(NewDrop(0, 0, white, 1, [3]float64{0.5, 0.5, 0.5}, 0)))
}

func TestSystemRemovesExpiredNextTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnChance = 0
	cfg.Floor = 12
	s := NewSystem(cfg, rand.New(rand.NewSource(1)))
	require.True(t, s.Spawn(NewDrop(0, 0, white, 1, [3]float64{0.5, 0.5, 0.5}, 0)))

	sec := 0
	for ; sec < 20; sec++ {
		s.Tick(float64(sec))
		if s.Live() == 0 {
			break
		}
		s.Accumulate(1, 0)
	}
	assert.Len(t, s.Drops(), 1, "expired drop is still present on the tick it expired")
	s.Tick(float64(sec + 1))
	assert.Empty(t, s.Drops())
}

func TestSystemDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnChance = 0.5
	a := NewSystem(cfg, rand.New(rand.NewSource(42)))
	b := NewSystem(cfg, rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		now := float64(i) / 60
		a.Tick(now)
		b.Tick(now)
		assert.Equal(t, a.Accumulate(0.3, -0.2), b.Accumulate(0.3, -0.2))
	}
	require.Equal(t, len(a.Drops()), len(b.Drops()))
	for i := range a.Drops() {
		assert.Equal(t, *a.Drops()[i], *b.Drops()[i])
	}
}

func TestSpawnedDropsStayInBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDrops = 1000
	cfg.SpawnChance = 1
	cfg.MinX, cfg.MaxX, cfg.MinY, cfg.MaxY = 2, 3, -5, -4
	s := NewSystem(cfg, rand.New(rand.NewSource(3)))
	for i := 0; i < 100; i++ {
		s.Tick(0)
	}
	for _, d := range s.Drops() {
		assert.True(t, d.X >= 2 && d.X <= 3)
		assert.True(t, d.Y >= -5 && d.Y <= -4)
		assert.True(t, d.Spread >= cfg.SpreadMin && d.Spread <= cfg.SpreadMax)
		for _, f := range d.FadeRate {
			assert.True(t, f > 0 && f < 1)
		}
		assert.GreaterOrEqual(t, d.Color.R, cfg.WhiteMin)
	}
}

func TestClosestPointGetsMostInfluence(t *testing.T) {
	pts := []render.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}}
	cfg := DefaultConfig()
	cfg.SpawnChance = 0
	s := NewSystem(cfg, rand.New(rand.NewSource(0)))
	require.True(t, s.Spawn(NewDrop(0, 0, white, 1, [3]float64{0.9, 0.9, 0.9}, 0)))
	s.Tick(1)

	acc := make([]render.Color, len(pts))
	for i, p := range pts {
		acc[i] = s.Accumulate(p.X, p.Y)
	}
	assert.Greater(t, acc[0].R, acc[3].R)
	assert.InDelta(t, acc[1].R, acc[2].R, 1e-9, "equidistant points match")
	assert.Greater(t, acc[1].R, acc[3].R)
}

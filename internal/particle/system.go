package particle

import (
	"math/rand"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Config bounds the particle population and the randomized drop properties.
type Config struct {
	MaxDrops    int     // live drop cap (K)
	SpawnChance float64 // per-tick spawn probability

	SpreadMin, SpreadMax float64 // distance exponent range
	FadeMin, FadeMax     float64 // per-channel decay-per-second range, inside (0,1)
	WhiteMin             float64 // lowest channel value of a spawned near-white color

	Floor    float64 // a drop whose peak falls below this expires
	MinDenom float64 // falloff denominator floor

	// spawn area
	MinX, MaxX, MinY, MaxY float64
}

// DefaultConfig is tuned for layouts roughly a few units across.
func DefaultConfig() Config {
	return Config{
		MaxDrops:    6,
		SpawnChance: 0.03,
		SpreadMin:   1.0,
		SpreadMax:   2.5,
		FadeMin:     0.35,
		FadeMax:     0.75,
		WhiteMin:    200,
		Floor:       12,
		MinDenom:    0.05,
		MinX:        -1,
		MaxX:        1,
		MinY:        -1,
		MaxY:        1,
	}
}

// System owns the live drops. It is not safe for concurrent use.
type System struct {
	Cfg   Config
	rng   *rand.Rand
	drops []*Drop
}

// NewSystem uses rng for every random decision so runs are reproducible.
func NewSystem(cfg Config, rng *rand.Rand) *System {
	if cfg.MinDenom <= 0 {
		cfg.MinDenom = 1e-3
	}
	return &System{Cfg: cfg, rng: rng}
}

// Tick removes drops found expired on the previous tick, maybe spawns one,
// then ticks every live drop at time now.
func (s *System) Tick(now float64) {
	live := s.drops[:0]
	for _, d := range s.drops {
		if !d.Expired() {
			live = append(live, d)
		}
	}
	for i := len(live); i < len(s.drops); i++ {
		s.drops[i] = nil
	}
	s.drops = live

	if len(s.drops) < s.Cfg.MaxDrops && s.rng.Float64() < s.Cfg.SpawnChance {
		s.drops = append(s.drops, s.randomDrop(now))
	}
	for _, d := range s.drops {
		d.Tick(now, s.Cfg.Floor)
	}
}

// Spawn adds d if the population is below MaxDrops.
func (s *System) Spawn(d *Drop) bool {
	if len(s.drops) >= s.Cfg.MaxDrops {
		return false
	}
	s.drops = append(s.drops, d)
	return true
}

// Accumulate sums every live drop's influence at (x, y).
func (s *System) Accumulate(x, y float64) render.Color {
	var sum render.Color
	for _, d := range s.drops {
		sum = sum.Add(d.InfluenceAt(x, y, s.Cfg.MinDenom))
	}
	return sum
}

// Live counts drops that have not expired.
func (s *System) Live() int {
	n := 0
	for _, d := range s.drops {
		if !d.Expired() {
			n++
		}
	}
	return n
}

// Drops exposes the current set, including any expired this tick.
func (s *System) Drops() []*Drop { return s.drops }

func (s *System) randomDrop(now float64) *Drop {
	c := s.Cfg
	x := c.MinX + s.rng.Float64()*(c.MaxX-c.MinX)
	y := c.MinY + s.rng.Float64()*(c.MaxY-c.MinY)
	spread := c.SpreadMin + s.rng.Float64()*(c.SpreadMax-c.SpreadMin)
	col := render.Color{
		R: c.WhiteMin + s.rng.Float64()*(255-c.WhiteMin),
		G: c.WhiteMin + s.rng.Float64()*(255-c.WhiteMin),
		B: c.WhiteMin + s.rng.Float64()*(255-c.WhiteMin),
	}
	var fade [3]float64
	for i := range fade {
		fade[i] = c.FadeMin + s.rng.Float64()*(c.FadeMax-c.FadeMin)
	}
	return NewDrop(x, y, col, spread, fade, now)
}

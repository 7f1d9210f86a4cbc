package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-spatialeds/internal/trigger"
)

const DefaultFPS = 60

var ErrTooFewCoords = errors.New("layout has fewer coordinates than points")

// EngineConfig is everything the frame clock needs. All of it is read once.
type EngineConfig struct {
	Points   int
	Coords   []Vec3
	Registry *Registry
	Driver   Driver
	Trigger  trigger.Listener
	Uniforms *Uniforms
	FPS      int
	Start    int
	XFadeS   float64
}

// Engine is the frame clock. It owns the frame buffers and every pattern's
// state; nothing else writes them.
type Engine struct {
	N    int
	Pts  []Vec3
	Reg  *Registry
	Drv  Driver
	Trig trigger.Listener
	U    *Uniforms
	FPS  int

	// active is the cycle index shown (or being faded to); prev is the
	// pattern being faded out, or -1.
	active    int
	prev      int
	xfadeS    float64
	fadeStart float64

	// framebuffers
	BufA []Color // active
	BufB []Color // previous (during crossfade)
	Out  []Color // mixed + post

	post PostPipeline
	rep  Reporter

	t0    time.Time
	now   func() time.Time
	frame uint64

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		TotalMS  float64
	}

	// OnFrame, if set, runs after every hand-off with the frame number.
	OnFrame func(frame uint64, pattern string)
}

// NewEngine validates cfg and allocates buffers. Spatial patterns need one
// coordinate per point; a shorter layout is an error here, before any frame.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Points <= 0 {
		return nil, errors.New("point count must be positive")
	}
	if cfg.Registry == nil || cfg.Registry.Len() == 0 {
		return nil, errors.New("no patterns registered")
	}
	if cfg.Start < 0 || cfg.Start >= cfg.Registry.Len() {
		return nil, fmt.Errorf("start pattern %d out of range [0,%d)", cfg.Start, cfg.Registry.Len())
	}
	for _, p := range cfg.Registry.order {
		if IsSpatial(p) && len(cfg.Coords) < cfg.Points {
			return nil, fmt.Errorf("%w: pattern %s needs %d, layout has %d",
				ErrTooFewCoords, p.Name(), cfg.Points, len(cfg.Coords))
		}
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	u := cfg.Uniforms
	if u == nil {
		u = &Uniforms{}
	}
	trig := cfg.Trigger
	if trig == nil {
		trig = trigger.Never{}
	}
	n := cfg.Points
	e := &Engine{
		N:      n,
		Pts:    cfg.Coords,
		Reg:    cfg.Registry,
		Drv:    cfg.Driver,
		Trig:   trig,
		U:      u,
		FPS:    fps,
		active: cfg.Start,
		prev:   -1,
		xfadeS: cfg.XFadeS,
		BufA:   make([]Color, n),
		BufB:   make([]Color, n),
		Out:    make([]Color, n),
		post:   DefaultPost(),
		now:    time.Now,
	}
	e.t0 = e.now()
	return e, nil
}

func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// Now returns seconds since engine start.
func (e *Engine) Now() float64 {
	return e.now().Sub(e.t0).Seconds()
}

// Active is the current cycle index.
func (e *Engine) Active() int { return e.active }

// ActiveName is the name of the current pattern.
func (e *Engine) ActiveName() string { return e.Reg.At(e.active).Name() }

// Frame is the number of frames handed off so far.
func (e *Engine) Frame() uint64 { return e.frame }

// Advance moves to the next pattern in the cycle. With a crossfade
// configured the old pattern keeps rendering until the fade completes; a
// second advance mid-fade drops the pattern being faded out.
func (e *Engine) Advance(t float64) {
	from := e.active
	e.active = (e.active + 1) % e.Reg.Len()
	if e.xfadeS > 0 && from != e.active {
		e.prev = from
		e.fadeStart = t
	}
	log.Info().Str("pattern", e.ActiveName()).Int("index", e.active).Msg("pattern switched")
}

// Step runs one frame at time t (seconds): poll the trigger, render the
// active pattern, post-process, hand off.
func (e *Engine) Step(t float64) error {
	start := time.Now()
	if e.Trig.Poll() {
		e.Advance(t)
	}

	e.Reg.At(e.active).Render(e.BufA, e.Pts, t, e.U)

	if e.prev >= 0 {
		alpha := (t - e.fadeStart) / e.xfadeS
		if alpha >= 1 {
			e.prev = -1
			copy(e.Out, e.BufA)
		} else {
			e.Reg.At(e.prev).Render(e.BufB, e.Pts, t, e.U)
			Mix(e.Out, e.BufB, e.BufA, alpha)
		}
	} else {
		copy(e.Out, e.BufA)
	}

	if e.post.Brightness != nil {
		e.post.Brightness(e.Out, e.U)
	}
	// the limiter budgets what the sink can show, so it sees clamped values
	Clamp255(e.Out)
	if e.post.Limiter != nil {
		e.post.Limiter(e.Out, e.U)
	}
	Clamp255(e.Out)
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0

	var err error
	if e.Drv != nil {
		err = e.Drv.Write(e.Out)
		e.rep.Report("output", err)
	}
	e.frame++
	if e.OnFrame != nil {
		e.OnFrame(e.frame, e.ActiveName())
	}
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return err
}

// Run drives Step at the configured rate until ctx is done. Pacing is a
// plain sleep for whatever is left of the frame budget; drift is not
// compensated. Sink errors never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	budget := time.Second / time.Duration(e.FPS)
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	log.Info().Int("fps", e.FPS).Int("points", e.N).Str("pattern", e.ActiveName()).Msg("frame loop starting")
	for {
		frameStart := e.now()
		_ = e.Step(e.Now())

		wait := budget - e.now().Sub(frameStart)
		if wait < 0 {
			log.Debug().Float64("total_ms", e.Last.TotalMS).Msg("frame over budget")
			wait = 0
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

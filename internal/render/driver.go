package render

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Driver abstracts the output sink (OPC, SPI, preview, etc.).
// buf is only valid for the duration of the call.
type Driver interface {
	Write(buf []Color) error
}

// Closer is implemented by drivers holding a connection or device.
type Closer interface {
	Close() error
}

// Fanout writes every frame to each driver in turn and joins their errors.
type Fanout []Driver

func (f Fanout) Write(buf []Color) error {
	var errs []error
	for _, d := range f {
		if err := d.Write(buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, d := range f {
		if c, ok := d.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Async hands frames to a background writer through a one-slot mailbox so
// Write never waits on I/O. A frame that arrives while the previous one is
// still pending replaces it.
type Async struct {
	drv  Driver
	name string

	mu      sync.Mutex
	pending []Color
	has     bool
	wake    chan struct{}
	done    chan struct{}
	closed  bool

	rep Reporter
}

// NewAsync starts the background writer for drv.
func NewAsync(name string, drv Driver) *Async {
	a := &Async{
		drv:  drv,
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Write(buf []Color) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return errors.New("async driver closed")
	}
	a.pending = append(a.pending[:0], buf...)
	a.has = true
	select {
	case a.wake <- struct{}{}:
	default:
	}
	a.mu.Unlock()
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	var frame []Color
	for range a.wake {
		a.mu.Lock()
		if !a.has {
			a.mu.Unlock()
			continue
		}
		frame = append(frame[:0], a.pending...)
		a.has = false
		a.mu.Unlock()

		a.rep.Report(a.name, a.drv.Write(frame))
	}
}

// Close stops the writer and closes the wrapped driver if it can be closed.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()
	<-a.done
	if c, ok := a.drv.(Closer); ok {
		return c.Close()
	}
	return nil
}

// Reporter logs the first failure of a run of sink errors at warn level and
// the rest at debug, then logs once more when the sink recovers.
type Reporter struct {
	failing bool
	count   int
}

func (r *Reporter) Report(name string, err error) {
	if err == nil {
		if r.failing {
			log.Info().Str("sink", name).Int("failed_frames", r.count).Msg("sink recovered")
		}
		r.failing = false
		r.count = 0
		return
	}
	r.count++
	if !r.failing {
		r.failing = true
		log.Warn().Err(err).Str("sink", name).Msg("sink write failed; continuing")
		return
	}
	log.Debug().Err(err).Str("sink", name).Int("failed_frames", r.count).Msg("sink write failed")
}

// Failing reports whether the last write failed.
func (r *Reporter) Failing() bool { return r.failing }

// Package trigger provides non-blocking "advance pattern" signal sources.
//
// Every Listener is polled once per frame from the frame loop and must
// return immediately. A signal's payload is never inspected.
package trigger

import (
	"sync/atomic"
	"time"
)

// Listener is polled once per frame. Poll must not block; absence of a
// signal (or an unavailable source) reports false.
type Listener interface {
	Poll() bool
}

// Chan is a Listener fed by Fire from any goroutine. Signals fired while a
// previous one is still unread collapse into one.
type Chan struct {
	c chan struct{}
}

func NewChan() *Chan { return &Chan{c: make(chan struct{}, 1)} }

// Fire queues a signal without blocking.
func (c *Chan) Fire() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

func (c *Chan) Poll() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}

// Any polls each listener in order and reports the first signal found.
// Listeners after the one that fired are left for the next frame.
type Any []Listener

func (a Any) Poll() bool {
	for _, l := range a {
		if l != nil && l.Poll() {
			return true
		}
	}
	return false
}

// Never is a Listener that never fires.
type Never struct{}

func (Never) Poll() bool { return false }

// Interval fires once every Every, measured from construction or the last
// firing. It drives automatic cycling when no external trigger is present.
type Interval struct {
	Every time.Duration
	now   func() time.Time
	next  atomic.Int64
}

func NewInterval(every time.Duration) *Interval {
	return newInterval(every, time.Now)
}

func newInterval(every time.Duration, now func() time.Time) *Interval {
	i := &Interval{Every: every, now: now}
	i.next.Store(now().Add(every).UnixNano())
	return i
}

func (i *Interval) Poll() bool {
	if i.Every <= 0 {
		return false
	}
	t := i.now()
	if t.UnixNano() < i.next.Load() {
		return false
	}
	i.next.Store(t.Add(i.Every).UnixNano())
	return true
}

// Reset restarts the interval from now, e.g. after a manual trigger.
func (i *Interval) Reset() {
	i.next.Store(i.now().Add(i.Every).UnixNano())
}

// Package opc sends frames to an Open Pixel Control server such as a
// fadecandy or gl_server.
package opc

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	gopc "github.com/kellydunn/go-opc"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// MaxPoints is the largest frame one OPC message can carry.
const MaxPoints = math.MaxUint16 / 3

var (
	ErrNotConnected = errors.New("opc: not connected")
	ErrFrameTooLong = errors.New("opc: frame too long")
)

// Sink writes every frame as one set-pixel-colors message on Channel.
// A failed dial or send drops the connection; Write dials again at most
// once per RetryEvery.
type Sink struct {
	Addr       string
	Channel    uint8
	RetryEvery time.Duration

	mu        sync.Mutex
	client    *gopc.Client
	connected bool
	nextDial  time.Time
	now       func() time.Time
}

func New(addr string, channel uint8) *Sink {
	return &Sink{Addr: addr, Channel: channel, RetryEvery: time.Second, now: time.Now}
}

// Connect makes the first connection attempt. Failure is not fatal: later
// writes keep retrying.
func (s *Sink) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dial()
}

func (s *Sink) dial() error {
	s.client = gopc.NewClient()
	if err := s.client.Connect("tcp", s.Addr); err != nil {
		s.connected = false
		s.nextDial = s.now().Add(s.RetryEvery)
		return fmt.Errorf("opc connect %s: %w", s.Addr, err)
	}
	s.connected = true
	return nil
}

// Connected reports whether the last dial or send succeeded.
func (s *Sink) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Sink) Write(buf []render.Color) error {
	if len(buf) > MaxPoints {
		return fmt.Errorf("%w: %d points", ErrFrameTooLong, len(buf))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		if s.now().Before(s.nextDial) {
			return ErrNotConnected
		}
		if err := s.dial(); err != nil {
			return err
		}
	}

	m := gopc.NewMessage(s.Channel)
	m.SetLength(uint16(len(buf) * 3))
	for i, c := range buf {
		m.SetPixelColor(i, channel(c.R), channel(c.G), channel(c.B))
	}
	if err := s.client.Send(m); err != nil {
		s.drop()
		return fmt.Errorf("opc send %s: %w", s.Addr, err)
	}
	return nil
}

func (s *Sink) drop() {
	if s.client != nil && s.client.Conn != nil {
		_ = s.client.Conn.Close()
	}
	s.connected = false
	s.nextDial = s.now().Add(s.RetryEvery)
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		s.drop()
	}
	return nil
}

func channel(v float64) uint8 {
	return uint8(math.Round(render.Clamp(v, 0, 255)))
}

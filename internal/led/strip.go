// Package led drives a WS281x strip over SPI, or draws the strip on the
// console when no SPI port is present.
package led

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// DefaultFreq is the NRZ bit clock for WS2812 class parts.
const DefaultFreq = 2500 * physic.KiloHertz

// Strip is a render.Driver backed by a display.Drawer: an nrzled device on
// real hardware, a console screen otherwise.
type Strip struct {
	SPI bool

	mu     sync.Mutex
	drawer display.Drawer
	port   io.Closer
	img    *image.NRGBA
}

// Open initialises the host, opens the named SPI port ("" for the first
// one) and binds an nrzled encoder for n pixels. When no port is found the
// strip falls back to the console.
func Open(port string, n int, freq physic.Frequency) (*Strip, error) {
	if n <= 0 {
		return nil, fmt.Errorf("led: invalid pixel count %d", n)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("no SPI port, printing at the console")
		return NewConsole(n), nil
	}
	s, err := NewSPI(p, n, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI binds an nrzled encoder to an already open port. The strip takes
// ownership of p.
func NewSPI(p spi.PortCloser, n int, freq physic.Frequency) (*Strip, error) {
	if freq <= 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("led: clear: %w", err)
	}
	s := New(d, n)
	s.SPI = true
	s.port = p
	return s, nil
}

// NewConsole draws n pixels on the terminal.
func NewConsole(n int) *Strip {
	return New(screen.New(n), n)
}

// New wraps any drawer.
func New(d display.Drawer, n int) *Strip {
	return &Strip{drawer: d, img: image.NewNRGBA(image.Rect(0, 0, n, 1))}
}

func (s *Strip) Write(buf []render.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.img.Bounds().Dx()
	for i := 0; i < w; i++ {
		var c render.Color
		if i < len(buf) {
			c = buf[i]
		}
		s.img.SetNRGBA(i, 0, color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255})
	}
	return s.drawer.Draw(s.drawer.Bounds(), s.img, image.Point{})
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
		s.port = nil
	}
	return err
}

func to8(v float64) uint8 {
	return uint8(render.Clamp(v, 0, 255) + 0.5)
}

package fake

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

// Summary is the per-frame digest the fake driver prints.
type Summary struct {
	Frame int
	Avg   render.Color
	First render.Color
	Peak  float64
}

func (s Summary) String() string {
	return fmt.Sprintf("[frame %04d] avg=(%.2f,%.2f,%.2f) first=(%.2f,%.2f,%.2f) peak=%.2f",
		s.Frame, s.Avg.R, s.Avg.G, s.Avg.B, s.First.R, s.First.G, s.First.B, s.Peak)
}

// Summarize digests one frame.
func Summarize(frame int, buf []render.Color) Summary {
	s := Summary{Frame: frame}
	if len(buf) == 0 {
		return s
	}
	var sum render.Color
	for _, c := range buf {
		sum = sum.Add(c)
		if m := c.Max(); m > s.Peak {
			s.Peak = m
		}
	}
	s.Avg = sum.Scale(1 / float64(len(buf)))
	s.First = buf[0]
	return s
}

// Driver prints a compact summary of each frame (first point & avg), useful
// for headless runs. Every nth frame is printed; Every <= 1 prints all.
type Driver struct {
	Out   io.Writer
	Every int

	mu    sync.Mutex
	count int
	last  []render.Color
}

func (d *Driver) Write(buf []render.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	d.last = append(d.last[:0], buf...)
	if d.Every > 1 && d.count%d.Every != 0 {
		return nil
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, Summarize(d.count, buf))
	return err
}

// Count is the number of frames written so far.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Last returns a copy of the most recent frame.
func (d *Driver) Last() []render.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]render.Color(nil), d.last...)
}

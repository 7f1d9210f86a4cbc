// Package layout is the coordinate store: one immutable 3D position per point.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

var ErrTooFewPoints = errors.New("layout has too few points")

// Store is an ordered, read-only sequence of point coordinates. Index i of
// the store is index i of every frame buffer.
type Store struct {
	pts []render.Vec3
}

// NewStore copies pts.
func NewStore(pts []render.Vec3) *Store {
	return &Store{pts: append([]render.Vec3(nil), pts...)}
}

func (s *Store) Len() int { return len(s.pts) }

func (s *Store) At(i int) render.Vec3 { return s.pts[i] }

// Points returns the backing slice. Callers must not modify it.
func (s *Store) Points() []render.Vec3 { return s.pts }

// Require fails unless the store holds at least n points.
func (s *Store) Require(n int) error {
	if len(s.pts) < n {
		return fmt.Errorf("%w: need %d, have %d", ErrTooFewPoints, n, len(s.pts))
	}
	return nil
}

// Bounds is the axis-aligned box around every point.
type Bounds struct{ Min, Max render.Vec3 }

// Bounds returns the box around the store. An empty store has a zero box.
func (s *Store) Bounds() Bounds {
	if len(s.pts) == 0 {
		return Bounds{}
	}
	b := Bounds{
		Min: render.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: render.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range s.pts {
		b.Min.X, b.Max.X = math.Min(b.Min.X, p.X), math.Max(b.Max.X, p.X)
		b.Min.Y, b.Max.Y = math.Min(b.Min.Y, p.Y), math.Max(b.Max.Y, p.Y)
		b.Min.Z, b.Max.Z = math.Min(b.Min.Z, p.Z), math.Max(b.Max.Z, p.Z)
	}
	return b
}

// record is one entry of an Open Pixel Control style layout file.
type record struct {
	Point []float64 `json:"point"`
}

// Load reads a JSON layout file: an array of objects, each optionally
// carrying "point": [x, y, z]. Entries without a point are skipped.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return s, nil
}

// Decode parses the layout JSON from r.
func Decode(r io.Reader) (*Store, error) {
	var recs []record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	pts := make([]render.Vec3, 0, len(recs))
	for i, rec := range recs {
		if rec.Point == nil {
			continue
		}
		if len(rec.Point) != 3 {
			return nil, fmt.Errorf("entry %d: point has %d components, want 3", i, len(rec.Point))
		}
		pts = append(pts, render.Vec3{X: rec.Point[0], Y: rec.Point[1], Z: rec.Point[2]})
	}
	return &Store{pts: pts}, nil
}

// Save writes the store in the format Load reads.
func (s *Store) Save(path string) error {
	recs := make([]record, len(s.pts))
	for i, p := range s.pts {
		recs[i] = record{Point: []float64{p.X, p.Y, p.Z}}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

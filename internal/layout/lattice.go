package layout

import "github.com/coreman2200/funtimes-spatialeds/internal/render"

type Dim struct{ X, Y, Z int }

// Serpentine holds panel/row flip behaviors of the physical wiring.
type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

// Lattice describes a regular grid of strands: X points per strand, Y
// strands per panel, Z panels, Pitch apart.
type Lattice struct {
	Dim   Dim
	Order Serpentine
	Pitch float64
}

// Index maps x,y,z -> linear point index (0..N-1) following the wiring order.
func (l Lattice) Index(x, y, z int) int {
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Dim.Y - 1 - y
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l Lattice) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}

// Store builds the coordinate store for the lattice: the point at wiring
// index Index(x,y,z) sits at (x,y,z)*Pitch.
func (l Lattice) Store() *Store {
	pitch := l.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	pts := make([]render.Vec3, l.Count())
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				pts[l.Index(x, y, z)] = render.Vec3{
					X: float64(x) * pitch,
					Y: float64(y) * pitch,
					Z: float64(z) * pitch,
				}
			}
		}
	}
	return &Store{pts: pts}
}

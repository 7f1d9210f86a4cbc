package led

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

type recDrawer struct {
	bounds image.Rectangle
	last   *image.NRGBA
	halted bool
}

func (r *recDrawer) String() string          { return "rec" }
func (r *recDrawer) ColorModel() color.Model { return color.NRGBAModel }
func (r *recDrawer) Bounds() image.Rectangle { return r.bounds }

func (r *recDrawer) Halt() error {
	r.halted = true
	return nil
}

func (r *recDrawer) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	img := image.NewNRGBA(src.Bounds())
	for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
		img.Set(x, 0, src.At(x, 0))
	}
	r.last = img
	return nil
}

func TestWritePacksAndPads(t *testing.T) {
	d := &recDrawer{bounds: image.Rect(0, 0, 3, 1)}
	s := New(d, 3)
	require.NoError(t, s.Write([]render.Color{{R: 300, G: 127.6, B: -1}, {G: 255}}))
	require.NotNil(t, d.last)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 0, A: 255}, d.last.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, d.last.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{A: 255}, d.last.NRGBAAt(2, 0), "missing points are dark")

	require.NoError(t, s.Close())
	assert.True(t, d.halted)
}

func TestSPIEncodesFrames(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&out), 4, 0)
	require.NoError(t, err)
	assert.True(t, s.SPI)

	out.Reset()
	require.NoError(t, s.Write(make([]render.Color, 4)))
	dark := append([]byte(nil), out.Bytes()...)
	require.NotEmpty(t, dark)

	out.Reset()
	require.NoError(t, s.Write([]render.Color{{R: 255, G: 255, B: 255}, {}, {}, {}}))
	assert.NotEqual(t, dark, out.Bytes())

	require.NoError(t, s.Close())
}

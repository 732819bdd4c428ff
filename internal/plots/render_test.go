package plots

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
	"github.com/greenelab/biovectors/internal/testutil"
)

type figureFunc func(c draw.Canvas)

func (f figureFunc) Draw(c draw.Canvas) { f(c) }

func TestRender(t *testing.T) {
	fig := figureFunc(func(c draw.Canvas) {
		c.SetColor(color.Black)
		c.Fill(c.Rectangle.Path())
	})
	c, err := Render(fig, 2*vg.Inch, vg.Inch, 50, nil)
	require.NoError(t, err)

	b := c.Image().Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 50, b.Dy())
	_, _, _, a := c.Image().At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestRender_RecoversPanics(t *testing.T) {
	fig := figureFunc(func(draw.Canvas) { panic("bad plotter") })
	_, err := Render(fig, vg.Inch, vg.Inch, 50, color.White)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad plotter")
}

func TestSavePNG_TransparentBackground(t *testing.T) {
	defer monitoring.Mute()()

	mfs := fsutil.NewMemoryFileSystem()
	fig := figureFunc(func(draw.Canvas) {})
	require.NoError(t, SavePNG(mfs, "blank.png", fig, vg.Inch, vg.Inch, 40, nil))

	data, err := mfs.ReadFile("blank.png")
	require.NoError(t, err)
	img := testutil.DecodePNG(t, data)
	_, _, _, a := img.At(5, 5).RGBA()
	assert.Zero(t, a)
}

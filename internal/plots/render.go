package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
)

// Figure is anything that draws itself onto a canvas. *plot.Plot is a
// Figure, as are the composite figures built in this package.
type Figure interface {
	Draw(c draw.Canvas)
}

// Render draws fig onto a w×h raster canvas at dpi. A nil bg leaves the
// canvas transparent. gonum/plot reports bad plotter state by panicking;
// Render turns those panics into errors.
func Render(fig Figure, w, h vg.Length, dpi int, bg color.Color) (c *vgimg.Canvas, err error) {
	if bg == nil {
		bg = color.Transparent
	}
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("render figure: %v", r)
		}
	}()
	c = vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(bg))
	fig.Draw(draw.New(c))
	return c, nil
}

// SavePNG renders fig and writes it to path on fsys as a PNG.
func SavePNG(fsys fsutil.FileSystem, path string, fig Figure, w, h vg.Length, dpi int, bg color.Color) error {
	c, err := Render(fig, w, h, dpi, bg)
	if err != nil {
		return err
	}
	if _, err := fsutil.WriteTo(fsys, path, vgimg.PngCanvas{Canvas: c}); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

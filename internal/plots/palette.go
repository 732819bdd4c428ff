package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/greenelab/biovectors/internal/config"
)

// viridisStops are the control points of the viridis colour map, dark to light.
var viridisStops = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// naGrey fills heatmap cells that are NA or fall outside the colour limits.
var naGrey = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}

// heatmapColors is the number of discrete colours a heatmap palette uses.
const heatmapColors = 256

// Viridis returns a viridis colour map scaled to [min, max].
// Each call returns a fresh map since SetMin/SetMax mutate it.
func Viridis(min, max float64) (palette.ColorMap, error) {
	if !(min < max) {
		return nil, fmt.Errorf("viridis: invalid limits [%g, %g]", min, max)
	}
	stops := make([]color.Color, len(viridisStops))
	for i, hex := range viridisStops {
		c, err := config.ParseHexColor(hex)
		if err != nil {
			return nil, err
		}
		stops[i] = c
	}
	cm, err := moreland.NewLuminance(stops)
	if err != nil {
		return nil, fmt.Errorf("viridis: %w", err)
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return cm, nil
}

// textColorFor returns the cell label colour for v: black on the light end
// of the map, white on the dark end and for NaN.
func textColorFor(v, threshold float64) color.Color {
	if v >= threshold {
		return color.Black
	}
	return color.White
}

package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixturesAreRectangular(t *testing.T) {
	for name, tsv := range map[string]string{"distance": DistanceTSV, "timeline": TimelineTSV, "lonely year": LonelyYearTSV} {
		t.Run(name, func(t *testing.T) {
			lines := strings.Split(strings.TrimSpace(tsv), "\n")
			require.Greater(t, len(lines), 1)
			cols := len(strings.Split(lines[0], "\t"))
			for i, l := range lines {
				assert.Len(t, strings.Split(l, "\t"), cols, "line %d", i)
			}
		})
	}
}

func TestDecodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	got := DecodePNG(t, buf.Bytes())
	assert.Equal(t, 4, got.Bounds().Dx())

	w, h := PNGSize(t, buf.Bytes())
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
}

func TestDecodeGIF(t *testing.T) {
	frame := image.NewPaletted(image.Rect(0, 0, 2, 2), palette.Plan9)
	anim := &gif.GIF{Image: []*image.Paletted{frame, frame}, Delay: []int{300, 300}}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))

	got := DecodeGIF(t, buf.Bytes())
	assert.Len(t, got.Image, 2)
	assert.Equal(t, []int{300, 300}, got.Delay)
}

// Package testutil provides shared test fixtures and image assertions.
//
// Fixtures are plain TSV text so any package can load them through its own
// reader without an import cycle.
package testutil

import (
	"bytes"
	"image"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// Token is the main token of the fixtures.
const Token = "pandemic"

// DistanceTSV is a distance frame for two tokens. For Token, 2002→2000
// has no row, z_local_dist of 2000→2001 is out of the [-3,3] limits and
// 2001→2002 carries an NA global distance.
const DistanceTSV = `token	year_origin	year_compared	global_dist	local_dist	z_global_dist	z_local_dist
pandemic	2000	2000	0.00	0.00	-1.50	-1.20
pandemic	2000	2001	0.42	0.31	0.80	3.40
pandemic	2000	2002	0.75	0.64	2.10	1.90
pandemic	2001	2000	0.42	0.31	0.80	0.50
pandemic	2001	2001	0.00	0.00	-1.50	-1.20
pandemic	2001	2002	NA	0.71	1.20	2.30
pandemic	2002	2001	0.55	0.48	1.30	1.10
pandemic	2002	2002	0.00	0.00	-1.50	-1.20
virus	2000	2001	0.20	0.10	-0.30	-0.80
virus	2001	2000	0.20	0.10	-0.30	-0.80
`

// TimelineTSV is a timeline frame for Token over three years. The main
// rows come first; 2002 has a single neighbour.
const TimelineTSV = `token	year	label	umap_dim1	umap_dim2
pandemic	2000	main	0.25	1.10
pandemic	2001	main	1.40	0.90
pandemic	2002	main	2.60	-0.30
epidemic	2000	neighbor	0.35	1.20
influenza	2000	neighbor	-0.70	1.00
outbreak	2000	neighbor	0.10	0.80
coronavirus	2001	neighbor	1.50	0.70
epidemic	2001	neighbor	1.30	1.00
quarantine	2001	neighbor	3.20	0.40
covid	2002	neighbor	2.70	-0.20
`

// LonelyYearTSV extends TimelineTSV with a main row for 2003 that has no
// neighbours.
const LonelyYearTSV = TimelineTSV + "pandemic\t2003\tmain\t3.00\t0.10\n"

// TimelineYears are the years of TimelineTSV in ascending order.
var TimelineYears = []string{"2000", "2001", "2002"}

// DecodePNG fails the test unless data is a non-empty PNG image.
func DecodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	require.NotEmpty(t, data, "png is empty")
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "decode png")
	require.False(t, img.Bounds().Empty(), "png has no pixels")
	return img
}

// DecodeGIF fails the test unless data is an animated gif with frames.
func DecodeGIF(t *testing.T, data []byte) *gif.GIF {
	t.Helper()
	require.NotEmpty(t, data, "gif is empty")
	g, err := gif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err, "decode gif")
	require.NotEmpty(t, g.Image, "gif has no frames")
	return g
}

// PNGSize returns the pixel size of an encoded PNG.
func PNGSize(t *testing.T, data []byte) (w, h int) {
	t.Helper()
	b := DecodePNG(t, data).Bounds()
	return b.Dx(), b.Dy()
}

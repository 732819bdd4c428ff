package plots

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot/vg"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
)

// PlotWordcloudNeighborsGIF renders one word cloud per year into
// pieceFolder as <idx>.png, idx counting years in ascending order, then
// assembles those pieces into an animated gif at filename that loops
// forever. Empty pieceFolder and filename fall back to the configured
// pieces folder and DefaultNeighborsGIF.
func PlotWordcloudNeighborsGIF(df dataframe.DataFrame, pieceFolder, filename string, cfg *config.PlotConfig, fsys fsutil.FileSystem) error {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	if pieceFolder == "" {
		pieceFolder = cfg.GetGIFPiecesDir()
	}
	if filename == "" {
		filename = DefaultNeighborsGIF
	}
	defer monitoring.Timed("wordcloud gif " + filename)()

	if err := fsys.MkdirAll(pieceFolder, 0o755); err != nil {
		return fmt.Errorf("create piece folder: %w", err)
	}

	_, clouds, err := neighborClouds(df, cfg)
	if err != nil {
		return err
	}

	w, h := cfg.GetWordcloudSize()
	width, height := vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch
	pieces := make([]string, 0, len(clouds))
	for idx, yc := range clouds {
		p := newCloudPlot("Year: "+yc.Year, vg.Points(frameTitleSize), yc.Cloud)
		path := filepath.Join(pieceFolder, fmt.Sprintf("%d.png", idx))
		if err := SavePNG(fsys, path, p, width, height, cfg.GetWordcloudDPI(), nil); err != nil {
			return fmt.Errorf("gif piece %s: %w", yc.Year, err)
		}
		pieces = append(pieces, path)
	}

	anim, err := AssembleGIF(fsys, pieces, cfg.GetGIFFrameDelay())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	if _, err := fsutil.WriteTo(fsys, filename, &buf); err != nil {
		return fmt.Errorf("save gif: %w", err)
	}
	monitoring.Logf("wrote %s (%d frames)", filename, len(anim.Image))
	return nil
}

// AssembleGIF reads the PNG pieces in order and returns them as frames of
// a looping animation, each shown for delay. Frames are flattened onto
// white, scaled to the size of the first piece and given their own
// palette (see framePalette).
func AssembleGIF(fsys fsutil.FileSystem, pieces []string, delay time.Duration) (*gif.GIF, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("assemble gif: no pieces")
	}
	centis := int(delay / (10 * time.Millisecond))
	anim := &gif.GIF{LoopCount: 0}

	var bounds image.Rectangle
	for i, path := range pieces {
		img, err := readPNG(fsys, path)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			bounds = image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy())
		}

		flat := image.NewRGBA(bounds)
		xdraw.Draw(flat, bounds, image.White, image.Point{}, xdraw.Src)
		if img.Bounds().Size() == bounds.Size() {
			xdraw.Draw(flat, bounds, img, img.Bounds().Min, xdraw.Over)
		} else {
			xdraw.ApproxBiLinear.Scale(flat, bounds, img, img.Bounds(), xdraw.Over, nil)
		}

		pal, exact := framePalette(flat)
		frame := image.NewPaletted(bounds, pal)
		if exact {
			xdraw.Draw(frame, bounds, flat, image.Point{}, xdraw.Src)
		} else {
			xdraw.FloydSteinberg.Draw(frame, bounds, flat, image.Point{})
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, centis)
	}
	return anim, nil
}

// maxGIFColors is the size of a gif colour table.
const maxGIFColors = 256

// framePalette returns a palette for img. A frame with at most
// maxGIFColors distinct colours keeps every one of them and exact is true.
// Otherwise colours are grouped into RGB555 buckets and each of the most
// populated buckets is represented by its most frequent colour, so the
// dominant colours survive unchanged and the rest are dithered.
func framePalette(img *image.RGBA) (pal color.Palette, exact bool) {
	counts := make(map[color.RGBA]int)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[img.RGBAAt(x, y)]++
		}
	}
	if len(counts) <= maxGIFColors {
		return mostFrequent(counts, maxGIFColors), true
	}

	type bucket struct {
		best        color.RGBA
		bestN, size int
	}
	buckets := make(map[uint16]*bucket)
	for c, n := range counts {
		key := uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.size += n
		if n > bk.bestN || (n == bk.bestN && packRGBA(c) < packRGBA(bk.best)) {
			bk.best, bk.bestN = c, n
		}
	}
	reps := make(map[color.RGBA]int, len(buckets))
	for _, bk := range buckets {
		reps[bk.best] = bk.size
	}
	return mostFrequent(reps, maxGIFColors), false
}

// mostFrequent returns up to n colours by descending count. Ties are broken
// by colour value so palettes are stable between runs.
func mostFrequent(counts map[color.RGBA]int, n int) color.Palette {
	cols := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		cols = append(cols, c)
	}
	slices.SortFunc(cols, func(a, b color.RGBA) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(packRGBA(a), packRGBA(b))
	})
	if len(cols) > n {
		cols = cols[:n]
	}
	pal := make(color.Palette, len(cols))
	for i, c := range cols {
		pal[i] = c
	}
	return pal
}

func packRGBA(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func readPNG(fsys fsutil.FileSystem, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open piece: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode piece %s: %w", path, err)
	}
	return img, nil
}

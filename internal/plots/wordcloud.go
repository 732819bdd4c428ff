package plots

import (
	"cmp"
	"image/color"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/monitoring"
)

// cloudFont is the typeface word clouds are set in.
var cloudFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

// Word is a word and its weight in a cloud. Heavier words are drawn larger.
type Word struct {
	Text   string
	Weight float64
}

// PlacedWord is a word positioned by WordCloud.Layout. Coordinates are
// relative to the lower left corner of the layout area.
type PlacedWord struct {
	Word
	Size     vg.Length
	Vertical bool
	// Center is the anchor the word is drawn around.
	Center vg.Point
	// Box is the area the word occupies, margin excluded.
	Box vg.Rectangle
}

// WordCloud is a plot.Plotter that lays out weighted words without overlap
// and fills the data area with them. Layout is deterministic for a given
// Seed and area size.
type WordCloud struct {
	Words []Word

	Color      color.Color
	Background color.Color
	Font       font.Font

	// MaxFontSize is the size of the heaviest word. Zero means 40% of the
	// layout height.
	MaxFontSize vg.Length
	// MinFontSize is the smallest size a word may shrink to before it is
	// dropped.
	MinFontSize vg.Length
	// FontStep is how much a word shrinks each time it does not fit.
	FontStep vg.Length

	// PreferHorizontal is the share of words drawn horizontally.
	PreferHorizontal float64
	// RelativeScaling in [0,1] is how much a word's size follows its
	// weight relative to the previous word. Zero keeps sizes equal.
	RelativeScaling float64
	Seed            uint64

	// Margin is kept clear around each word.
	Margin vg.Length
}

// NewWordCloud returns a WordCloud for words styled from cfg.
func NewWordCloud(words []Word, cfg *config.PlotConfig) *WordCloud {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	return &WordCloud{
		Words:            words,
		Color:            cfg.GetWordcloudColor(),
		Background:       cfg.GetWordcloudBackground(),
		Font:             cloudFont,
		MaxFontSize:      vg.Points(cfg.GetWordcloudMaxFontSizePt()),
		MinFontSize:      vg.Points(cfg.GetWordcloudMinFontSizePt()),
		FontStep:         vg.Points(cfg.GetWordcloudFontStepPt()),
		PreferHorizontal: cfg.GetWordcloudPreferHorizontal(),
		RelativeScaling:  cfg.GetWordcloudRelativeScaling(),
		Seed:             cfg.GetWordcloudRandomSeed(),
		Margin:           vg.Points(2),
	}
}

// Plot implements plot.Plotter.
func (wc *WordCloud) Plot(c draw.Canvas, _ *plot.Plot) {
	if wc.Background != nil {
		c.SetColor(wc.Background)
		c.Fill(c.Rectangle.Path())
	}
	size := c.Size()
	for _, pw := range wc.Layout(size.X, size.Y) {
		c.FillText(wc.style(pw.Size, pw.Vertical), c.Min.Add(pw.Center), pw.Text)
	}
}

// DataRange implements plot.DataRanger. The cloud ignores data
// coordinates and fills whatever area it is given.
func (wc *WordCloud) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, 0, 1
}

func (wc *WordCloud) style(size vg.Length, vertical bool) text.Style {
	sty := text.Style{
		Color:   wc.Color,
		Font:    font.From(wc.Font, size),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
	if sty.Color == nil {
		sty.Color = color.Black
	}
	if vertical {
		sty.Rotation = math.Pi / 2
	}
	return sty
}

// sortedWords returns the drawable words by descending weight, ties by text.
func (wc *WordCloud) sortedWords() []Word {
	words := make([]Word, 0, len(wc.Words))
	for _, w := range wc.Words {
		if w.Text == "" || !(w.Weight > 0) {
			continue
		}
		words = append(words, w)
	}
	slices.SortStableFunc(words, func(a, b Word) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return words
}

// Layout places the words inside a w×h area. The heaviest word is placed
// first. Each later word starts from the previous word's size scaled by
// their weight ratio, then walks a spiral out from the centre until it
// finds a free spot. A word that does not fit is first tried in the other
// orientation, then shrunk by FontStep. Once a word would shrink below
// MinFontSize it and every lighter word are dropped.
func (wc *WordCloud) Layout(w, h vg.Length) []PlacedWord {
	words := wc.sortedWords()
	if len(words) == 0 || w <= 0 || h <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(wc.Seed, wc.Seed^0x9e3779b97f4a7c15))
	step := max(wc.FontStep, vg.Points(0.5))
	minSize := max(wc.MinFontSize, vg.Points(1))

	size := wc.MaxFontSize
	if size <= 0 {
		size = h * 0.4
	}
	size = vg.Length(math.Round(float64(size)))

	maxWeight := words[0].Weight
	lastRel := 1.0
	placed := make([]PlacedWord, 0, len(words))
	for i, word := range words {
		rel := word.Weight / maxWeight
		if i > 0 {
			rs := wc.RelativeScaling
			size = vg.Length(math.Round((rs*rel/lastRel + (1 - rs)) * float64(size)))
		}

		vertical := rng.Float64() >= wc.PreferHorizontal
		triedOther := false
		var (
			pw PlacedWord
			ok bool
		)
		for size >= minSize {
			if pw, ok = wc.place(word, size, vertical, w, h, placed, rng); ok {
				break
			}
			if !triedOther && wc.PreferHorizontal < 1 {
				vertical = !vertical
				triedOther = true
				continue
			}
			size -= step
			vertical = false
		}
		if !ok {
			for _, dropped := range words[i:] {
				monitoring.Logf("wordcloud: dropped %q, no room at or above %.1fpt", dropped.Text, float64(minSize))
			}
			break
		}
		placed = append(placed, pw)
		lastRel = rel
	}
	return placed
}

// place searches an Archimedean spiral from the centre of the area for a
// spot where word fits without touching any placed word.
func (wc *WordCloud) place(word Word, size vg.Length, vertical bool, w, h vg.Length, placed []PlacedWord, rng *rand.Rand) (PlacedWord, bool) {
	sty := wc.style(size, vertical)
	rect := sty.Rectangle(word.Text)
	bs := rect.Size()
	if bs.X+2*wc.Margin > w || bs.Y+2*wc.Margin > h {
		return PlacedWord{}, false
	}

	spacing := max(vg.Points(2), min(w, h)/60)
	a := float64(spacing) / (2 * math.Pi)
	maxR := math.Hypot(float64(w), float64(h)) / 2
	theta0 := rng.Float64() * 2 * math.Pi
	center := vg.Point{X: w / 2, Y: h / 2}

	for theta := 0.0; ; {
		r := a * theta
		if r > maxR {
			return PlacedWord{}, false
		}
		pt := center.Add(vg.Point{
			X: vg.Length(r * math.Cos(theta+theta0)),
			Y: vg.Length(r * math.Sin(theta+theta0)),
		})
		box := rect.Add(pt)
		if fits(box, wc.Margin, w, h, placed) {
			return PlacedWord{Word: word, Size: size, Vertical: vertical, Center: pt, Box: box}, true
		}
		theta += float64(spacing) / max(r, float64(spacing))
	}
}

func fits(box vg.Rectangle, margin, w, h vg.Length, placed []PlacedWord) bool {
	if box.Min.X-margin < 0 || box.Min.Y-margin < 0 || box.Max.X+margin > w || box.Max.Y+margin > h {
		return false
	}
	for _, p := range placed {
		if overlaps(box, p.Box, margin) {
			return false
		}
	}
	return true
}

// overlaps reports whether a and b come closer than margin.
func overlaps(a, b vg.Rectangle, margin vg.Length) bool {
	return a.Min.X-margin < b.Max.X && b.Min.X < a.Max.X+margin &&
		a.Min.Y-margin < b.Max.Y && b.Min.Y < a.Max.Y+margin
}

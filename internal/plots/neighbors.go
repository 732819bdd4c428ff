package plots

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
)

// Default output names of the word-cloud helpers.
const (
	DefaultNeighborsPNG = "token_neighbors.png"
	DefaultNeighborsGIF = "token_neighbors.gif"
)

const (
	gridTitleSize  = 20
	frameTitleSize = 22
	tilePad        = 8
)

// yearCloud is the neighbour cloud of one year.
type yearCloud struct {
	Year  string
	Cloud *WordCloud
}

// neighborClouds returns the upper-cased token of the frame and one word
// cloud per year, years ascending. Every neighbour of a year weighs 1; a
// year without neighbours is an ErrEmptySelection.
func neighborClouds(df dataframe.DataFrame, cfg *config.PlotConfig) (string, []yearCloud, error) {
	if err := frames.RequireColumns(df, frames.ColToken, frames.ColYear, frames.ColLabel); err != nil {
		return "", nil, err
	}
	if df.Nrow() == 0 {
		return "", nil, fmt.Errorf("neighbour clouds: %w", frames.ErrEmptySelection)
	}
	tokens, _ := frames.Strings(df, frames.ColToken)
	years, err := frames.SortedUnique(df, frames.ColYear)
	if err != nil {
		return "", nil, err
	}

	clouds := make([]yearCloud, 0, len(years))
	for _, year := range years {
		nb, err := frames.Neighbors(df, year)
		if err != nil {
			return "", nil, fmt.Errorf("neighbours of %s: %w", year, err)
		}
		names, _ := frames.Strings(nb, frames.ColToken)
		seen := make(map[string]bool, len(names))
		words := make([]Word, 0, len(names))
		for _, n := range names {
			if seen[n] {
				continue
			}
			seen[n] = true
			words = append(words, Word{Text: n, Weight: 1})
		}
		if len(words) == 0 {
			return "", nil, fmt.Errorf("neighbours of %s: %w", year, frames.ErrEmptySelection)
		}
		clouds = append(clouds, yearCloud{Year: year, Cloud: NewWordCloud(words, cfg)})
	}
	return strings.ToUpper(tokens[0]), clouds, nil
}

// newCloudPlot wraps a word cloud in a titled plot with hidden axes.
// The plot background is left transparent, the cloud paints its own.
func newCloudPlot(title string, titleSize vg.Length, wc *WordCloud) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = nil
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = titleSize
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.Add(wc)
	return p
}

// CloudGrid draws word-cloud plots in a grid under a centred super title.
// Nil entries leave their tile empty.
type CloudGrid struct {
	Title      string
	TitleStyle text.Style
	Plots      [][]*plot.Plot
}

// Draw implements Figure.
func (g *CloudGrid) Draw(c draw.Canvas) {
	if g.Title != "" {
		descent := g.TitleStyle.FontExtents().Descent
		c.FillText(g.TitleStyle, vg.Point{X: c.Center().X, Y: c.Max.Y + descent}, g.Title)
		c.Max.Y -= g.TitleStyle.Rectangle(g.Title).Size().Y + tilePad
	}
	if len(g.Plots) == 0 || len(g.Plots[0]) == 0 {
		return
	}
	tiles := draw.Tiles{
		Rows: len(g.Plots),
		Cols: len(g.Plots[0]),
		PadX: tilePad,
		PadY: tilePad,
	}
	canvases := plot.Align(g.Plots, tiles, c)
	for j, row := range g.Plots {
		for i, p := range row {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
}

// newCloudGrid lays out one titled cloud per year, perRow to a row.
func newCloudGrid(token string, clouds []yearCloud, perRow int) *CloudGrid {
	rows := int(math.Ceil(float64(len(clouds)) / float64(perRow)))
	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, perRow)
	}
	for i, yc := range clouds {
		grid[i/perRow][i%perRow] = newCloudPlot(yc.Year, vg.Points(12), yc.Cloud)
	}
	return &CloudGrid{
		Title: token + " Neighbors",
		TitleStyle: text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, vg.Points(gridTitleSize)),
			XAlign:  text.XCenter,
			YAlign:  text.YTop,
			Handler: plot.DefaultTextHandler,
		},
		Plots: grid,
	}
}

// PlotWordcloudNeighbors draws the neighbours of every year as a grid of
// word clouds and writes it as a PNG with a transparent background.
// numPlotsPerRow <= 0 falls back to the configured count and filename ""
// to DefaultNeighborsPNG.
func PlotWordcloudNeighbors(df dataframe.DataFrame, numPlotsPerRow int, filename string, cfg *config.PlotConfig, fsys fsutil.FileSystem) error {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	if numPlotsPerRow <= 0 {
		numPlotsPerRow = cfg.GetPlotsPerRow()
	}
	if filename == "" {
		filename = DefaultNeighborsPNG
	}
	defer monitoring.Timed("wordcloud grid " + filename)()

	token, clouds, err := neighborClouds(df, cfg)
	if err != nil {
		return err
	}
	fig := newCloudGrid(token, clouds, numPlotsPerRow)

	w, h := cfg.GetWordcloudSize()
	if err := SavePNG(fsys, filename, fig, vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, cfg.GetWordcloudDPI(), nil); err != nil {
		return fmt.Errorf("wordcloud grid: %w", err)
	}
	return nil
}

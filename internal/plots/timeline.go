package plots

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/fsutil"
)

// Year labels sit slightly right of and below their point, in data units.
const (
	timelineNudgeX = 0.04
	timelineNudgeY = -0.01
)

// PlotTokenTimeline plots the 2D projection of a token across years. Only
// the main rows are drawn; each point is labelled with its year. The x
// limits span the whole frame, neighbours included, so timelines of
// different tokens drawn from one projection line up.
func PlotTokenTimeline(df dataframe.DataFrame, cfg *config.PlotConfig) (*plot.Plot, error) {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	if err := frames.RequireColumns(df, frames.ColToken, frames.ColYear, frames.ColLabel, frames.ColDim1, frames.ColDim2); err != nil {
		return nil, err
	}
	mainRows, err := frames.WhereEquals(df, frames.ColLabel, frames.LabelMain)
	if err != nil {
		return nil, err
	}
	if mainRows.Nrow() == 0 {
		return nil, fmt.Errorf("timeline: no %q rows: %w", frames.LabelMain, frames.ErrEmptySelection)
	}

	tokens, _ := frames.Strings(mainRows, frames.ColToken)
	years, _ := frames.Strings(mainRows, frames.ColYear)
	xs, _ := frames.Floats(mainRows, frames.ColDim1)
	ys, _ := frames.Floats(mainRows, frames.ColDim2)

	pts := make(plotter.XYs, 0, len(xs))
	lblPts := make(plotter.XYs, 0, len(xs))
	labels := make([]string, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
		lblPts = append(lblPts, plotter.XY{X: xs[i] + timelineNudgeX, Y: ys[i] + timelineNudgeY})
		labels = append(labels, years[i])
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("timeline: no projected %q rows: %w", frames.LabelMain, frames.ErrEmptySelection)
	}

	p := plot.New()
	p.Title.Text = strings.ToUpper(tokens[0]) + " Timeline"
	p.BackgroundColor = color.White
	p.X.Label.Text = frames.ColDim1
	p.Y.Label.Text = frames.ColDim2
	p.X.LineStyle.Width = 0
	p.Y.LineStyle.Width = 0

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("timeline scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1)
	p.Add(scatter)

	lbls, err := newYearLabels(lblPts, labels, vg.Points(cfg.GetTimelineLabelSizePt()))
	if err != nil {
		return nil, err
	}
	p.Add(lbls)

	all, err := frames.Floats(df, frames.ColDim1)
	if err != nil {
		return nil, err
	}
	all = finite(all)
	if len(all) > 0 {
		p.X.Min = math.Floor(floats.Min(all))
		p.X.Max = math.Ceil(floats.Max(all))
	}
	return p, nil
}

// newYearLabels returns left-aligned labels whose baseline sits on pts.
func newYearLabels(pts plotter.XYs, labels []string, size vg.Length) (*plotter.Labels, error) {
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("timeline labels: %w", err)
	}
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  text.XLeft,
		YAlign:  text.YBottom,
		Handler: plot.DefaultTextHandler,
	}
	for i := range lbls.TextStyle {
		lbls.TextStyle[i] = sty
	}
	lbls.Offset = vg.Point{Y: baselineOffset(sty)}
	return lbls, nil
}

// baselineOffset moves single-line text aligned with text.YBottom so its
// baseline lands on the anchor. The plain handler draws such text with
// the baseline Size-Ascent above the anchor.
func baselineOffset(sty text.Style) vg.Length {
	return sty.FontExtents().Ascent - sty.Font.Size
}

// SaveTimeline renders p at the configured timeline size and writes it as
// a PNG to path.
func SaveTimeline(fsys fsutil.FileSystem, path string, p *plot.Plot, cfg *config.PlotConfig) error {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	w, h := cfg.GetTimelineSize()
	return SavePNG(fsys, path, p, vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, cfg.GetTimelineDPI(), color.White)
}

func finite(vals []float64) []float64 {
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

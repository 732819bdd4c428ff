package plots

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/fsutil"
)

// distanceMetric describes one of the four distance heatmaps.
type distanceMetric struct {
	column    string
	title     string // format string, %s is the token
	legend    string
	min, max  float64
	threshold float64 // cell text turns black at or above this value
	suffix    string
}

var (
	globalMetric = distanceMetric{
		column: frames.ColGlobalDist, title: "Global Distance for '%s'", legend: "Global Dist",
		min: 0, max: 1, threshold: 0.7, suffix: "_global.png",
	}
	localMetric = distanceMetric{
		column: frames.ColLocalDist, title: "Local Distance for '%s'", legend: "Local Dist",
		min: 0, max: 1, threshold: 0.7, suffix: "_local.png",
	}
	zGlobalMetric = distanceMetric{
		column: frames.ColZGlobalDist, title: "Z-score Global Distance for '%s'", legend: "Z(Global Dist)",
		min: -3, max: 3, threshold: 2, suffix: "_z_global.png",
	}
	zLocalMetric = distanceMetric{
		column: frames.ColZLocalDist, title: "Z-score Local Distance for '%s'", legend: "Z(Local Dist)",
		min: -3, max: 3, threshold: 2, suffix: "_z_local.png",
	}
)

// legendWidth is the strip on the right of a heatmap that holds the colour bar.
const legendWidth = 1.5 * vg.Inch

// distanceGrid adapts a year-by-year value matrix to plotter.GridXYZ.
// Rows are compared years, columns origin years. Cells that have no row in
// the frame hold NaN.
type distanceGrid struct {
	m *mat.Dense
}

func (g distanceGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g distanceGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g distanceGrid) X(c int) float64    { return float64(c) }
func (g distanceGrid) Y(r int) float64    { return float64(r) }

// naGrid marks the cells that have a row in the frame but no value. Those
// cells are 0, every other cell is NaN.
type naGrid struct {
	distanceGrid
	present [][]bool
}

func (g naGrid) Z(c, r int) float64 {
	if g.present[r][c] && math.IsNaN(g.m.At(r, c)) {
		return 0
	}
	return math.NaN()
}

// naPalette is the single colour of NA cells.
type naPalette struct{}

func (naPalette) Colors() []color.Color { return []color.Color{naGrey} }

// Heatmap is a year-by-year distance heatmap and its colour bar legend.
type Heatmap struct {
	Plot   *plot.Plot
	Legend *plot.Plot
	// Cells holds the value printed on each present cell.
	Cells *plotter.Labels

	// OriginYears and ComparedYears label the x and y axes, ascending.
	OriginYears   []string
	ComparedYears []string
	// Values holds the cell values, rows by compared year and columns by
	// origin year. Absent and NA cells are NaN.
	Values *mat.Dense

	present [][]bool
}

// Draw draws the heatmap with its legend on the right.
func (h *Heatmap) Draw(c draw.Canvas) {
	lw := legendWidth
	if w := c.Size().X; lw > w/2 {
		lw = w / 2
	}
	h.Plot.Draw(draw.Crop(c, 0, -lw, 0, 0))
	h.Legend.Draw(draw.Crop(c, c.Size().X-lw, 0, 0, 0))
}

// At returns the value at (originYear, comparedYear) and whether that
// cell had a row in the frame. A present cell is NaN when its value was NA.
func (h *Heatmap) At(originYear, comparedYear string) (float64, bool) {
	c := indexOf(h.OriginYears, originYear)
	r := indexOf(h.ComparedYears, comparedYear)
	if c < 0 || r < 0 {
		return math.NaN(), false
	}
	return h.Values.At(r, c), h.present[r][c]
}

// DistancePlots holds the four distance heatmaps of one token.
type DistancePlots struct {
	Token   string
	Global  *Heatmap
	Local   *Heatmap
	ZGlobal *Heatmap
	ZLocal  *Heatmap

	Width, Height vg.Length
	DPI           int
}

// SaveAll writes the four heatmaps into dir as <prefix>_global.png,
// <prefix>_local.png, <prefix>_z_global.png and <prefix>_z_local.png.
// The written paths are returned in that order.
func (d *DistancePlots) SaveAll(fsys fsutil.FileSystem, dir, prefix string) ([]string, error) {
	if prefix == "" {
		prefix = d.Token
	}
	figs := []struct {
		hm     *Heatmap
		suffix string
	}{
		{d.Global, globalMetric.suffix},
		{d.Local, localMetric.suffix},
		{d.ZGlobal, zGlobalMetric.suffix},
		{d.ZLocal, zLocalMetric.suffix},
	}
	paths := make([]string, 0, len(figs))
	for _, f := range figs {
		path, err := fsutil.JoinWithin(dir, prefix+f.suffix)
		if err != nil {
			return paths, err
		}
		if err := SavePNG(fsys, path, f.hm, d.Width, d.Height, d.DPI, color.White); err != nil {
			return paths, fmt.Errorf("save %s heatmap: %w", f.suffix, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// PlotLocalGlobalDistances builds the global, local and z-scored distance
// heatmaps of token from a distance frame. Years of origin run along the x
// axis and compared years along the y axis.
func PlotLocalGlobalDistances(df dataframe.DataFrame, token string, cfg *config.PlotConfig) (*DistancePlots, error) {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	if err := frames.RequireColumns(df,
		frames.ColToken, frames.ColYearOrigin, frames.ColYearCompared,
		frames.ColGlobalDist, frames.ColLocalDist, frames.ColZGlobalDist, frames.ColZLocalDist,
	); err != nil {
		return nil, err
	}
	sel, err := frames.ForToken(df, token)
	if err != nil {
		return nil, err
	}

	origins, err := frames.SortedUnique(sel, frames.ColYearOrigin)
	if err != nil {
		return nil, err
	}
	compared, err := frames.SortedUnique(sel, frames.ColYearCompared)
	if err != nil {
		return nil, err
	}
	originCol, _ := frames.Strings(sel, frames.ColYearOrigin)
	comparedCol, _ := frames.Strings(sel, frames.ColYearCompared)

	w, h := cfg.GetHeatmapSize()
	out := &DistancePlots{
		Token:  token,
		Width:  vg.Length(w) * vg.Inch,
		Height: vg.Length(h) * vg.Inch,
		DPI:    cfg.GetHeatmapDPI(),
	}
	textSize := vg.Points(cfg.GetHeatmapTextSizePt())

	build := func(m distanceMetric) (*Heatmap, error) {
		vals, err := frames.Floats(sel, m.column)
		if err != nil {
			return nil, err
		}
		grid := mat.NewDense(len(compared), len(origins), nil)
		present := make([][]bool, len(compared))
		for r := range len(compared) {
			present[r] = make([]bool, len(origins))
			for c := range len(origins) {
				grid.Set(r, c, math.NaN())
			}
		}
		for i, v := range vals {
			r, c := indexOf(compared, comparedCol[i]), indexOf(origins, originCol[i])
			grid.Set(r, c, v)
			present[r][c] = true
		}
		hm, err := newHeatmap(grid, present, origins, compared, fmt.Sprintf(m.title, token), m, textSize)
		if err != nil {
			return nil, fmt.Errorf("%s heatmap: %w", m.column, err)
		}
		return hm, nil
	}

	if out.Global, err = build(globalMetric); err != nil {
		return nil, err
	}
	if out.Local, err = build(localMetric); err != nil {
		return nil, err
	}
	if out.ZGlobal, err = build(zGlobalMetric); err != nil {
		return nil, err
	}
	if out.ZLocal, err = build(zLocalMetric); err != nil {
		return nil, err
	}
	return out, nil
}

// newHeatmap draws grid with the metric's colour map. Cells without a row
// stay blank; NA cells and values outside the limits are NA grey and NA
// cells are labelled "nan".
func newHeatmap(grid *mat.Dense, present [][]bool, origins, compared []string, title string, m distanceMetric, textSize vg.Length) (*Heatmap, error) {
	cm, err := Viridis(m.min, m.max)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = textSize * 1.2
	p.X.Label.Text = "Year Start"
	p.Y.Label.Text = "Year End"
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Label.TextStyle.Font.Size = textSize
		ax.Tick.Label.Font.Size = textSize
	}

	hm := plotter.NewHeatMap(distanceGrid{m: grid}, cm.Palette(heatmapColors))
	hm.Min, hm.Max = m.min, m.max
	hm.Underflow = naGrey
	hm.Overflow = naGrey
	hm.NaN = nil
	p.Add(hm)

	na := plotter.NewHeatMap(naGrid{distanceGrid: distanceGrid{m: grid}, present: present}, naPalette{})
	na.Min, na.Max = -1, 1
	na.NaN = nil
	p.Add(na)

	var (
		xys    plotter.XYs
		labels []string
		styles []text.Style
	)
	rows, cols := grid.Dims()
	for r := range rows {
		for c := range cols {
			if !present[r][c] {
				continue
			}
			v := grid.At(r, c)
			label := fmt.Sprintf("%.2f", v)
			if math.IsNaN(v) {
				label = "nan"
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, label)
			styles = append(styles, text.Style{
				Color:   textColorFor(v, m.threshold),
				Font:    font.From(plot.DefaultFont, textSize),
				XAlign:  text.XCenter,
				YAlign:  text.YCenter,
				Handler: plot.DefaultTextHandler,
			})
		}
	}
	var cells *plotter.Labels
	if len(xys) > 0 {
		cells, err = plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("cell labels: %w", err)
		}
		cells.TextStyle = styles
		p.Add(cells)
	}

	p.NominalX(origins...)
	p.NominalY(compared...)

	legend := plot.New()
	legend.Title.Text = m.legend
	legend.Title.TextStyle.Font.Size = textSize
	legend.Y.Tick.Label.Font.Size = textSize
	legend.HideX()
	legend.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	return &Heatmap{
		Plot:          p,
		Legend:        legend,
		Cells:         cells,
		OriginYears:   origins,
		ComparedYears: compared,
		Values:        grid,
		present:       present,
	}, nil
}

func indexOf(vals []string, v string) int {
	for i, s := range vals {
		if s == v {
			return i
		}
	}
	return -1
}

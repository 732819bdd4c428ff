package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultConfigPath is the path to the canonical plotting defaults file.
const DefaultConfigPath = "config/plotting.defaults.json"

// PlotConfig holds the knobs of the plotting helpers. Every field is
// optional; the Get* methods fall back to the values the charts were
// designed around, so an empty config renders the stock figures.
type PlotConfig struct {
	// Distance heatmaps
	HeatmapWidthIn    *float64 `json:"heatmap_width_in,omitempty"`
	HeatmapHeightIn   *float64 `json:"heatmap_height_in,omitempty"`
	HeatmapTextSizePt *float64 `json:"heatmap_text_size_pt,omitempty"`
	HeatmapDPI        *int     `json:"heatmap_dpi,omitempty"`

	// Projection timeline
	TimelineWidthIn     *float64 `json:"timeline_width_in,omitempty"`
	TimelineHeightIn    *float64 `json:"timeline_height_in,omitempty"`
	TimelineLabelSizePt *float64 `json:"timeline_label_size_pt,omitempty"`
	TimelineDPI         *int     `json:"timeline_dpi,omitempty"`

	// Word clouds
	WordcloudWidthIn        *float64 `json:"wordcloud_width_in,omitempty"`
	WordcloudHeightIn       *float64 `json:"wordcloud_height_in,omitempty"`
	WordcloudDPI            *int     `json:"wordcloud_dpi,omitempty"`
	WordcloudColor          *string  `json:"wordcloud_color,omitempty"`      // "#rrggbb"
	WordcloudBackground     *string  `json:"wordcloud_background,omitempty"` // "#rrggbb"
	WordcloudMaxFontSizePt  *float64 `json:"wordcloud_max_font_size_pt,omitempty"`
	WordcloudMinFontSizePt  *float64 `json:"wordcloud_min_font_size_pt,omitempty"`
	WordcloudFontStepPt     *float64 `json:"wordcloud_font_step_pt,omitempty"`
	WordcloudPreferHoriz    *float64 `json:"wordcloud_prefer_horizontal,omitempty"`
	WordcloudRandomSeed     *uint64  `json:"wordcloud_random_seed,omitempty"`
	WordcloudRelativeScaler *float64 `json:"wordcloud_relative_scaling,omitempty"`
	PlotsPerRow             *int     `json:"plots_per_row,omitempty"`

	// Animated gif
	GIFFrameDelay *string `json:"gif_frame_delay,omitempty"` // duration string like "3s"
	GIFPiecesDir  *string `json:"gif_pieces_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// EmptyPlotConfig returns a PlotConfig with all fields set to nil.
func EmptyPlotConfig() *PlotConfig {
	return &PlotConfig{}
}

// LoadPlotConfig loads a PlotConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
// Fields omitted from the JSON keep their defaults, so partial configs
// are safe.
func LoadPlotConfig(path string) (*PlotConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlotConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PlotConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadPlotConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *PlotConfig) Validate() error {
	positive := map[string]*float64{
		"heatmap_width_in":     c.HeatmapWidthIn,
		"heatmap_height_in":    c.HeatmapHeightIn,
		"heatmap_text_size_pt": c.HeatmapTextSizePt,
		"timeline_width_in":    c.TimelineWidthIn,
		"timeline_height_in":   c.TimelineHeightIn,
		"wordcloud_width_in":   c.WordcloudWidthIn,
		"wordcloud_height_in":  c.WordcloudHeightIn,
		"wordcloud_font_step":  c.WordcloudFontStepPt,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	if c.TimelineLabelSizePt != nil && *c.TimelineLabelSizePt <= 0 {
		return fmt.Errorf("timeline_label_size_pt must be positive, got %f", *c.TimelineLabelSizePt)
	}

	if c.HeatmapDPI != nil && *c.HeatmapDPI <= 0 {
		return fmt.Errorf("heatmap_dpi must be positive, got %d", *c.HeatmapDPI)
	}
	if c.TimelineDPI != nil && *c.TimelineDPI <= 0 {
		return fmt.Errorf("timeline_dpi must be positive, got %d", *c.TimelineDPI)
	}
	if c.WordcloudDPI != nil && *c.WordcloudDPI <= 0 {
		return fmt.Errorf("wordcloud_dpi must be positive, got %d", *c.WordcloudDPI)
	}

	if c.WordcloudColor != nil {
		if _, err := ParseHexColor(*c.WordcloudColor); err != nil {
			return fmt.Errorf("invalid wordcloud_color: %w", err)
		}
	}
	if c.WordcloudBackground != nil {
		if _, err := ParseHexColor(*c.WordcloudBackground); err != nil {
			return fmt.Errorf("invalid wordcloud_background: %w", err)
		}
	}

	if c.WordcloudMinFontSizePt != nil && *c.WordcloudMinFontSizePt <= 0 {
		return fmt.Errorf("wordcloud_min_font_size_pt must be positive, got %f", *c.WordcloudMinFontSizePt)
	}
	if c.WordcloudMaxFontSizePt != nil && *c.WordcloudMaxFontSizePt < 0 {
		return fmt.Errorf("wordcloud_max_font_size_pt must be non-negative, got %f", *c.WordcloudMaxFontSizePt)
	}
	if c.WordcloudMaxFontSizePt != nil && *c.WordcloudMaxFontSizePt > 0 &&
		*c.WordcloudMaxFontSizePt < c.GetWordcloudMinFontSizePt() {
		return fmt.Errorf("wordcloud_max_font_size_pt (%f) is below the minimum font size (%f)",
			*c.WordcloudMaxFontSizePt, c.GetWordcloudMinFontSizePt())
	}

	if c.WordcloudPreferHoriz != nil {
		if *c.WordcloudPreferHoriz < 0 || *c.WordcloudPreferHoriz > 1 {
			return fmt.Errorf("wordcloud_prefer_horizontal must be between 0 and 1, got %f", *c.WordcloudPreferHoriz)
		}
	}
	if c.WordcloudRelativeScaler != nil {
		if *c.WordcloudRelativeScaler < 0 || *c.WordcloudRelativeScaler > 1 {
			return fmt.Errorf("wordcloud_relative_scaling must be between 0 and 1, got %f", *c.WordcloudRelativeScaler)
		}
	}

	if c.PlotsPerRow != nil && *c.PlotsPerRow < 1 {
		return fmt.Errorf("plots_per_row must be at least 1, got %d", *c.PlotsPerRow)
	}

	if c.GIFFrameDelay != nil && *c.GIFFrameDelay != "" {
		d, err := time.ParseDuration(*c.GIFFrameDelay)
		if err != nil {
			return fmt.Errorf("invalid gif_frame_delay '%s': %w", *c.GIFFrameDelay, err)
		}
		if d < 10*time.Millisecond {
			return fmt.Errorf("gif_frame_delay must be at least 10ms, got %s", d)
		}
	}

	return nil
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// GetHeatmapSize returns the heatmap figure size in inches (default 10x8).
func (c *PlotConfig) GetHeatmapSize() (w, h float64) {
	return getFloat(c.HeatmapWidthIn, 10), getFloat(c.HeatmapHeightIn, 8)
}

// GetHeatmapTextSizePt returns the heatmap text size (default 11pt).
func (c *PlotConfig) GetHeatmapTextSizePt() float64 {
	return getFloat(c.HeatmapTextSizePt, 11)
}

// GetHeatmapDPI returns the raster resolution used when saving heatmaps.
func (c *PlotConfig) GetHeatmapDPI() int {
	return getInt(c.HeatmapDPI, 100)
}

// GetTimelineSize returns the timeline figure size in inches (default 6.4x4.8).
func (c *PlotConfig) GetTimelineSize() (w, h float64) {
	return getFloat(c.TimelineWidthIn, 6.4), getFloat(c.TimelineHeightIn, 4.8)
}

// GetTimelineLabelSizePt returns the year label size on the timeline.
func (c *PlotConfig) GetTimelineLabelSizePt() float64 {
	return getFloat(c.TimelineLabelSizePt, 8)
}

// GetTimelineDPI returns the raster resolution used when saving the
// timeline (default 100, so the stock figure is 640x480).
func (c *PlotConfig) GetTimelineDPI() int {
	return getInt(c.TimelineDPI, 100)
}

// GetWordcloudSize returns the word-cloud figure size in inches (default 10x10).
func (c *PlotConfig) GetWordcloudSize() (w, h float64) {
	return getFloat(c.WordcloudWidthIn, 10), getFloat(c.WordcloudHeightIn, 10)
}

// GetWordcloudDPI returns the word-cloud raster resolution (default 75).
func (c *PlotConfig) GetWordcloudDPI() int {
	return getInt(c.WordcloudDPI, 75)
}

// GetWordcloudColor returns the word colour, RGB(43,140,190) by default.
func (c *PlotConfig) GetWordcloudColor() color.RGBA {
	def := color.RGBA{R: 43, G: 140, B: 190, A: 255}
	if c.WordcloudColor == nil {
		return def
	}
	col, err := ParseHexColor(*c.WordcloudColor)
	if err != nil {
		return def
	}
	return col
}

// GetWordcloudBackground returns the cloud background, white by default.
func (c *PlotConfig) GetWordcloudBackground() color.RGBA {
	def := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if c.WordcloudBackground == nil {
		return def
	}
	col, err := ParseHexColor(*c.WordcloudBackground)
	if err != nil {
		return def
	}
	return col
}

// GetWordcloudMaxFontSizePt returns the starting font size. Zero means
// derive it from the canvas height.
func (c *PlotConfig) GetWordcloudMaxFontSizePt() float64 {
	return getFloat(c.WordcloudMaxFontSizePt, 0)
}

// GetWordcloudMinFontSizePt returns the smallest font a word may shrink to.
func (c *PlotConfig) GetWordcloudMinFontSizePt() float64 {
	return getFloat(c.WordcloudMinFontSizePt, 4)
}

// GetWordcloudFontStepPt returns how much a word shrinks per failed fit.
func (c *PlotConfig) GetWordcloudFontStepPt() float64 {
	return getFloat(c.WordcloudFontStepPt, 1)
}

// GetWordcloudPreferHorizontal returns the share of horizontal words.
func (c *PlotConfig) GetWordcloudPreferHorizontal() float64 {
	return getFloat(c.WordcloudPreferHoriz, 0.9)
}

// GetWordcloudRelativeScaling returns how strongly weight drives font size.
func (c *PlotConfig) GetWordcloudRelativeScaling() float64 {
	return getFloat(c.WordcloudRelativeScaler, 0.5)
}

// GetWordcloudRandomSeed returns the layout seed.
func (c *PlotConfig) GetWordcloudRandomSeed() uint64 {
	if c.WordcloudRandomSeed == nil {
		return 1
	}
	return *c.WordcloudRandomSeed
}

// GetPlotsPerRow returns the number of clouds per grid row (default 3).
func (c *PlotConfig) GetPlotsPerRow() int {
	return getInt(c.PlotsPerRow, 3)
}

// GetGIFFrameDelay parses and returns GIFFrameDelay (default 3s).
func (c *PlotConfig) GetGIFFrameDelay() time.Duration {
	if c.GIFFrameDelay == nil || *c.GIFFrameDelay == "" {
		return 3 * time.Second
	}
	d, err := time.ParseDuration(*c.GIFFrameDelay)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// GetGIFPiecesDir returns the folder that holds per-year gif frames.
func (c *PlotConfig) GetGIFPiecesDir() string {
	if c.GIFPiecesDir == nil || *c.GIFPiecesDir == "" {
		return "output/gif_pieces"
	}
	return *c.GIFPiecesDir
}

package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyPlotConfigDefaults(t *testing.T) {
	cfg := EmptyPlotConfig()

	w, h := cfg.GetHeatmapSize()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 8.0, h)
	assert.Equal(t, 11.0, cfg.GetHeatmapTextSizePt())
	assert.Equal(t, 8.0, cfg.GetTimelineLabelSizePt())
	assert.Equal(t, 100, cfg.GetTimelineDPI())

	w, h = cfg.GetWordcloudSize()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 10.0, h)
	assert.Equal(t, 75, cfg.GetWordcloudDPI())
	assert.Equal(t, color.RGBA{R: 43, G: 140, B: 190, A: 255}, cfg.GetWordcloudColor())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, cfg.GetWordcloudBackground())
	assert.Equal(t, 0.9, cfg.GetWordcloudPreferHorizontal())
	assert.Equal(t, 3, cfg.GetPlotsPerRow())
	assert.Equal(t, 3*time.Second, cfg.GetGIFFrameDelay())
	assert.Equal(t, "output/gif_pieces", cfg.GetGIFPiecesDir())
}

func TestMustLoadDefaultConfigMatchesGetters(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	empty := EmptyPlotConfig()

	// The defaults file and the in-code fallbacks must agree.
	assert.Equal(t, empty.GetWordcloudColor(), cfg.GetWordcloudColor())
	assert.Equal(t, empty.GetGIFFrameDelay(), cfg.GetGIFFrameDelay())
	assert.Equal(t, empty.GetPlotsPerRow(), cfg.GetPlotsPerRow())
	assert.Equal(t, empty.GetWordcloudDPI(), cfg.GetWordcloudDPI())
	assert.Equal(t, empty.GetHeatmapDPI(), cfg.GetHeatmapDPI())
	assert.Equal(t, empty.GetTimelineDPI(), cfg.GetTimelineDPI())
	ew, eh := empty.GetTimelineSize()
	cw, ch := cfg.GetTimelineSize()
	assert.Equal(t, ew, cw)
	assert.Equal(t, eh, ch)
}

func TestLoadPlotConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "plotting.json")

	testJSON := `{
  "wordcloud_color": "#ff0000",
  "plots_per_row": 4,
  "gif_frame_delay": "500ms",
  "wordcloud_random_seed": 42
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := LoadPlotConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.GetWordcloudColor())
	assert.Equal(t, 4, cfg.GetPlotsPerRow())
	assert.Equal(t, 500*time.Millisecond, cfg.GetGIFFrameDelay())
	assert.Equal(t, uint64(42), cfg.GetWordcloudRandomSeed())
	// Omitted fields keep their defaults.
	assert.Equal(t, 75, cfg.GetWordcloudDPI())
}

func TestLoadPlotConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadPlotConfig("/nonexistent/path/to/config.json")
	assert.Error(t, err, "missing file")

	yamlPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("{}"), 0644))
	_, err = LoadPlotConfig(yamlPath)
	assert.ErrorContains(t, err, ".json extension")

	badJSON := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"plots_per_row": "three"`), 0644))
	_, err = LoadPlotConfig(badJSON)
	assert.ErrorContains(t, err, "parse config JSON")

	invalid := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"plots_per_row": 0}`), 0644))
	_, err = LoadPlotConfig(invalid)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *PlotConfig
		wantErr bool
	}{
		{name: "empty config is valid", cfg: &PlotConfig{}},
		{name: "bad colour", cfg: &PlotConfig{WordcloudColor: ptrString("blue")}, wantErr: true},
		{name: "short hex colour", cfg: &PlotConfig{WordcloudBackground: ptrString("#fff")}},
		{name: "prefer horizontal too high", cfg: &PlotConfig{WordcloudPreferHoriz: ptrFloat64(1.5)}, wantErr: true},
		{name: "relative scaling negative", cfg: &PlotConfig{WordcloudRelativeScaler: ptrFloat64(-0.1)}, wantErr: true},
		{name: "zero width", cfg: &PlotConfig{HeatmapWidthIn: ptrFloat64(0)}, wantErr: true},
		{name: "negative dpi", cfg: &PlotConfig{WordcloudDPI: ptrInt(-1)}, wantErr: true},
		{name: "zero timeline dpi", cfg: &PlotConfig{TimelineDPI: ptrInt(0)}, wantErr: true},
		{name: "max font below min", cfg: &PlotConfig{WordcloudMaxFontSizePt: ptrFloat64(2)}, wantErr: true},
		{name: "auto max font", cfg: &PlotConfig{WordcloudMaxFontSizePt: ptrFloat64(0)}},
		{name: "unparseable delay", cfg: &PlotConfig{GIFFrameDelay: ptrString("soon")}, wantErr: true},
		{name: "delay below gif resolution", cfg: &PlotConfig{GIFFrameDelay: ptrString("1ms")}, wantErr: true},
		{name: "seed", cfg: &PlotConfig{WordcloudRandomSeed: ptrUint64(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	col, err := ParseHexColor("#2b8cbe")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 43, G: 140, B: 190, A: 255}, col)

	col, err = ParseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, col)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

package plots

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
	"github.com/greenelab/biovectors/internal/testutil"
)

func TestNeighborClouds(t *testing.T) {
	defer monitoring.Mute()()

	token, clouds, err := neighborClouds(timelineFrame(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "PANDEMIC", token)
	require.Len(t, clouds, 3)

	years := make([]string, len(clouds))
	for i, c := range clouds {
		years[i] = c.Year
	}
	assert.Equal(t, testutil.TimelineYears, years)

	assert.ElementsMatch(t, []Word{
		{Text: "epidemic", Weight: 1},
		{Text: "influenza", Weight: 1},
		{Text: "outbreak", Weight: 1},
	}, clouds[0].Cloud.Words)
	assert.Len(t, clouds[1].Cloud.Words, 3)
	assert.Equal(t, []Word{{Text: "covid", Weight: 1}}, clouds[2].Cloud.Words)

	_, _, err = neighborClouds(lonelyYearFrame(t), nil)
	assert.True(t, errors.Is(err, frames.ErrEmptySelection), "got %v", err)
	assert.ErrorContains(t, err, "2003")
}

func TestNewCloudGrid(t *testing.T) {
	defer monitoring.Mute()()

	token, clouds, err := neighborClouds(timelineFrame(t), nil)
	require.NoError(t, err)

	grid := newCloudGrid(token, clouds, 2)
	assert.Equal(t, "PANDEMIC Neighbors", grid.Title)
	require.Len(t, grid.Plots, 2)
	require.Len(t, grid.Plots[1], 2)
	assert.Equal(t, "2000", grid.Plots[0][0].Title.Text)
	assert.Equal(t, "2002", grid.Plots[1][0].Title.Text)
	assert.Nil(t, grid.Plots[1][1])

	assert.Len(t, newCloudGrid(token, clouds, 3).Plots, 1)
}

func TestPlotWordcloudNeighbors(t *testing.T) {
	defer monitoring.Mute()()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, PlotWordcloudNeighbors(timelineFrame(t), 0, "out/neighbors.png", nil, mfs))

	data, err := mfs.ReadFile("out/neighbors.png")
	require.NoError(t, err)
	img := testutil.DecodePNG(t, data)
	assert.Equal(t, 750, img.Bounds().Dx())
	assert.Equal(t, 750, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "figure background around the title is transparent")
}

func TestPlotWordcloudNeighbors_DefaultFilename(t *testing.T) {
	defer monitoring.Mute()()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, PlotWordcloudNeighbors(timelineFrame(t), 3, "", nil, mfs))
	assert.True(t, mfs.Exists(DefaultNeighborsPNG))
}

func TestPlotWordcloudNeighbors_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	err := PlotWordcloudNeighbors(timelineFrame(t).Drop(frames.ColLabel), 3, "", nil, mfs)
	assert.True(t, errors.Is(err, frames.ErrMissingColumn), "got %v", err)
	assert.Empty(t, mfs.Files())

	err = PlotWordcloudNeighbors(lonelyYearFrame(t), 3, "", nil, mfs)
	assert.True(t, errors.Is(err, frames.ErrEmptySelection), "got %v", err)
	assert.Empty(t, mfs.Files())
}

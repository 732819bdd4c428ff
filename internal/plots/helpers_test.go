package plots

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"

	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/testutil"
)

func distanceFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df, err := frames.ReadTSV(strings.NewReader(testutil.DistanceTSV))
	require.NoError(t, err)
	return df
}

func timelineFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df, err := frames.ReadTSV(strings.NewReader(testutil.TimelineTSV))
	require.NoError(t, err)
	return df
}

func lonelyYearFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df, err := frames.ReadTSV(strings.NewReader(testutil.LonelyYearTSV))
	require.NoError(t, err)
	return df
}

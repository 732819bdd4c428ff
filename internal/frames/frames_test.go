package frames

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/testutil"
)

func TestReadTSV(t *testing.T) {
	df, err := ReadTSV(strings.NewReader(testutil.DistanceTSV))
	require.NoError(t, err)
	assert.Equal(t, 10, df.Nrow())
	assert.Equal(t, []string{
		ColToken, ColYearOrigin, ColYearCompared,
		ColGlobalDist, ColLocalDist, ColZGlobalDist, ColZLocalDist,
	}, df.Names())

	origins, err := Strings(df, ColYearOrigin)
	require.NoError(t, err)
	assert.Equal(t, "2000", origins[0])

	global, err := Floats(df, ColGlobalDist)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, global[1], 1e-9)
	assert.True(t, math.IsNaN(global[5]), "NA reads as NaN")
}

func TestReadCSV(t *testing.T) {
	csv := "token,year,label,umap_dim1,umap_dim2\npandemic,2000,main,0.5,1.5\n"
	df, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())

	dims, err := Floats(df, ColDim2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, dims)
}

func TestReadFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("in/timeline.tsv", []byte(testutil.TimelineTSV), 0o644))
	require.NoError(t, mfs.WriteFile("in/timeline.csv", []byte("token,year\npandemic,2000\n"), 0o644))
	require.NoError(t, mfs.WriteFile("in/timeline.parquet", []byte("x"), 0o644))

	df, err := ReadFile(mfs, "in/timeline.tsv")
	require.NoError(t, err)
	assert.Equal(t, 10, df.Nrow())

	df, err = ReadFile(mfs, "in/timeline.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())

	_, err = ReadFile(mfs, "in/timeline.parquet")
	assert.ErrorContains(t, err, "unsupported frame extension")

	_, err = ReadFile(mfs, "in/missing.tsv")
	assert.Error(t, err)
}

func TestForToken(t *testing.T) {
	df, err := ReadTSV(strings.NewReader(testutil.DistanceTSV))
	require.NoError(t, err)

	sel, err := ForToken(df, "virus")
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Nrow())

	_, err = ForToken(df, "nonexistent")
	assert.True(t, errors.Is(err, ErrEmptySelection))

	_, err = ForToken(df.Drop(ColToken), "virus")
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestNeighbors(t *testing.T) {
	df, err := ReadTSV(strings.NewReader(testutil.TimelineTSV))
	require.NoError(t, err)

	nb, err := Neighbors(df, "2001")
	require.NoError(t, err)
	words, err := Strings(nb, ColToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"coronavirus", "epidemic", "quarantine"}, words)

	nb, err = Neighbors(df, "1999")
	require.NoError(t, err)
	assert.Zero(t, nb.Nrow())
}

func TestSortedUnique(t *testing.T) {
	df, err := ReadTSV(strings.NewReader(testutil.TimelineTSV))
	require.NoError(t, err)

	years, err := SortedUnique(df, ColYear)
	require.NoError(t, err)
	assert.Equal(t, testutil.TimelineYears, years)

	_, err = SortedUnique(df, "decade")
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestSortYears(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric", []string{"2010", "999", "2000"}, []string{"999", "2000", "2010"}},
		{"lexicographic", []string{"2000-2004", "1995-1999", "2005+"}, []string{"1995-1999", "2000-2004", "2005+"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortYears(tt.in)
			if diff := cmp.Diff(tt.want, tt.in); diff != "" {
				t.Errorf("SortYears mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "frames.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE timeline (
		tok TEXT NOT NULL,
		yr INTEGER NOT NULL,
		label TEXT NOT NULL,
		x REAL,
		y REAL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO timeline VALUES
		('pandemic', 2001, 'main', 1.4, 0.9),
		('pandemic', 2000, 'main', 0.25, 1.1),
		('epidemic', 2000, 'neighbor', NULL, 1.2)`)
	require.NoError(t, err)
	return db
}

func TestLoadSQLite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	df, err := LoadSQLite(ctx, db, `SELECT tok AS token, yr AS year, label,
		x AS umap_dim1, y AS umap_dim2 FROM timeline ORDER BY yr, label`)
	require.NoError(t, err)
	require.NoError(t, RequireColumns(df, ColToken, ColYear, ColLabel, ColDim1, ColDim2))

	years, err := Strings(df, ColYear)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"2000", "2000", "2001"}, years); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}

	xs, err := Floats(df, ColDim1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, xs[0], 1e-9)
	assert.True(t, math.IsNaN(xs[1]), "NULL reads as NaN")

	_, err = LoadSQLite(ctx, db, `SELECT tok AS token FROM timeline WHERE yr = ?`, 1999)
	assert.True(t, errors.Is(err, ErrEmptySelection))

	_, err = LoadSQLite(ctx, db, `SELECT * FROM nope`)
	assert.Error(t, err)
}

// Package frames loads and queries the tabular input consumed by the
// plotting helpers.
//
// Two frame shapes are used. A distance frame has one row per token,
// origin year and compared year, carrying the global/local distance and
// their z-scores. A timeline frame has one row per token, year and
// neighbour, carrying the 2D projection coordinates and a label telling
// the main token apart from its neighbours.
package frames

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/greenelab/biovectors/internal/fsutil"
)

// Column names shared by both frame shapes.
const (
	ColToken = "token"
	ColYear  = "year"
	ColLabel = "label"

	ColYearOrigin   = "year_origin"
	ColYearCompared = "year_compared"
	ColGlobalDist   = "global_dist"
	ColLocalDist    = "local_dist"
	ColZGlobalDist  = "z_global_dist"
	ColZLocalDist   = "z_local_dist"

	ColDim1 = "umap_dim1"
	ColDim2 = "umap_dim2"
)

// Label values in a timeline frame.
const (
	LabelMain     = "main"
	LabelNeighbor = "neighbor"
)

var (
	// ErrMissingColumn is returned when a frame lacks a column an operation needs.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptySelection is returned when a filter leaves no rows to plot.
	ErrEmptySelection = errors.New("empty selection")
)

// columnTypes pins identity columns to strings so years such as "2005"
// compare and sort the same way whether they came from a TSV or SQLite.
var columnTypes = map[string]series.Type{
	ColToken:        series.String,
	ColYear:         series.String,
	ColLabel:        series.String,
	ColYearOrigin:   series.String,
	ColYearCompared: series.String,
	ColGlobalDist:   series.Float,
	ColLocalDist:    series.Float,
	ColZGlobalDist:  series.Float,
	ColZLocalDist:   series.Float,
	ColDim1:         series.Float,
	ColDim2:         series.Float,
}

func loadOptions(extra ...dataframe.LoadOption) []dataframe.LoadOption {
	opts := []dataframe.LoadOption{
		dataframe.WithTypes(columnTypes),
		dataframe.NaNValues([]string{"NA", "NaN", "nan", "<nil>", ""}),
	}
	return append(opts, extra...)
}

// ReadTSV reads a tab separated frame with a header row.
func ReadTSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, loadOptions(dataframe.WithDelimiter('\t'), dataframe.WithLazyQuotes(true))...)
	if df.Err != nil {
		return df, fmt.Errorf("read tsv: %w", df.Err)
	}
	return df, nil
}

// ReadCSV reads a comma separated frame with a header row.
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

// ReadFile reads a frame from path, choosing the delimiter from the file
// extension (.tsv/.txt are tab separated, .csv is comma separated).
func ReadFile(fsys fsutil.FileSystem, path string) (dataframe.DataFrame, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".tsv", ".txt":
		return ReadTSV(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported frame extension %q", ext)
	}
}

// LoadSQLite runs query against db and returns the result set as a frame.
// Column names come from the query, so aliases can map stored columns onto
// the names the plotting helpers expect.
func LoadSQLite(ctx context.Context, db *sql.DB, query string, args ...any) (dataframe.DataFrame, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("query frame: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("query columns: %w", err)
	}

	records := [][]string{cols}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("scan row: %w", err)
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				rec[i] = v.String
			} else {
				rec[i] = "NA"
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("iterate rows: %w", err)
	}
	if len(records) == 1 {
		return dataframe.DataFrame{}, fmt.Errorf("query frame: %w", ErrEmptySelection)
	}

	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("load records: %w", df.Err)
	}
	return df, nil
}

package frames

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// RequireColumns returns ErrMissingColumn naming the first column of names
// that df does not carry.
func RequireColumns(df dataframe.DataFrame, names ...string) error {
	if df.Err != nil {
		return df.Err
	}
	have := df.Names()
	for _, n := range names {
		if !slices.Contains(have, n) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, n)
		}
	}
	return nil
}

// WhereEquals keeps the rows whose column col renders as value.
// Comparison is on the string form so int and string columns behave alike.
func WhereEquals(df dataframe.DataFrame, col, value string) (dataframe.DataFrame, error) {
	if err := RequireColumns(df, col); err != nil {
		return df, err
	}
	out := df.Filter(dataframe.F{
		Colname:    col,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool { return el.String() == value },
	})
	if out.Err != nil {
		return out, fmt.Errorf("filter %s==%q: %w", col, value, out.Err)
	}
	return out, nil
}

// ForToken keeps the rows for token. An empty result is ErrEmptySelection.
func ForToken(df dataframe.DataFrame, token string) (dataframe.DataFrame, error) {
	out, err := WhereEquals(df, ColToken, token)
	if err != nil {
		return out, err
	}
	if out.Nrow() == 0 {
		return out, fmt.Errorf("token %q: %w", token, ErrEmptySelection)
	}
	return out, nil
}

// Neighbors keeps the neighbour rows of year. Zero rows is not an error:
// a year may simply have no recorded neighbours.
func Neighbors(df dataframe.DataFrame, year string) (dataframe.DataFrame, error) {
	out, err := WhereEquals(df, ColLabel, LabelNeighbor)
	if err != nil {
		return out, err
	}
	return WhereEquals(out, ColYear, year)
}

// Strings returns column col as strings.
func Strings(df dataframe.DataFrame, col string) ([]string, error) {
	if err := RequireColumns(df, col); err != nil {
		return nil, err
	}
	return df.Col(col).Records(), nil
}

// Floats returns column col as float64 values. Non numeric cells become NaN.
func Floats(df dataframe.DataFrame, col string) ([]float64, error) {
	if err := RequireColumns(df, col); err != nil {
		return nil, err
	}
	return df.Col(col).Float(), nil
}

// SortedUnique returns the distinct values of col in ascending order.
// When every value parses as a number the order is numeric, otherwise
// lexicographic.
func SortedUnique(df dataframe.DataFrame, col string) ([]string, error) {
	vals, err := Strings(df, col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortYears(out)
	return out, nil
}

// SortYears sorts year labels in place, numerically when possible.
func SortYears(years []string) {
	numeric := true
	nums := make(map[string]float64, len(years))
	for _, y := range years {
		f, err := strconv.ParseFloat(y, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[y] = f
	}
	if !numeric {
		sort.Strings(years)
		return
	}
	sort.SliceStable(years, func(i, j int) bool { return nums[years[i]] < nums[years[j]] })
}

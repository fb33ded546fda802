package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Statistic names in the order they appear in a Description.
var Statistics = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q1    float64
	Q2    float64
	Q3    float64
	Max   float64
}

// Get returns the value of a named statistic (one of Statistics).
func (c ColumnStats) Get(name string) float64 {
	switch name {
	case "count":
		return float64(c.Count)
	case "mean":
		return c.Mean
	case "std":
		return c.Std
	case "min":
		return c.Min
	case "25%":
		return c.Q1
	case "50%":
		return c.Q2
	case "75%":
		return c.Q3
	case "max":
		return c.Max
	}
	return math.NaN()
}

// Description is a statistics table: one column per numeric field.
type Description struct {
	Columns []ColumnStats
}

// Describe computes count/mean/std/min/quartiles/max for every numeric column,
// skipping missing cells.
func Describe(ds *dataset.Dataset) *Description {
	names := ds.NumericColumns()
	out := &Description{Columns: make([]ColumnStats, len(names))}
	for i, name := range names {
		out.Columns[i] = describeColumn(name, ds.Present(i))
	}
	return out
}

func describeColumn(name string, vals []float64) ColumnStats {
	nan := math.NaN()
	cs := ColumnStats{Name: name, Count: len(vals), Mean: nan, Std: nan, Min: nan, Q1: nan, Q2: nan, Q3: nan, Max: nan}
	if len(vals) == 0 {
		return cs
	}
	mean, std := meanStd(vals)
	cs.Mean = mean
	cs.Std = std
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	cs.Min = sorted[0]
	cs.Max = sorted[len(sorted)-1]
	cs.Q1 = quantile(sorted, 0.25)
	cs.Q2 = quantile(sorted, 0.5)
	cs.Q3 = quantile(sorted, 0.75)
	return cs
}

// meanStd returns the mean and sample (n-1) standard deviation; std is NaN below two values.
func meanStd(vals []float64) (float64, float64) {
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], math.NaN()
	}
	// constant columns must come out with exactly zero spread
	if isConstant(vals) {
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func isConstant(vals []float64) bool {
	if len(vals) < 2 {
		return true
	}
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

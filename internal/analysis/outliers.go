package analysis

import (
	"math"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
)

// Outliers is the z-score analysis of a dataset.
//
// Rows is the canonical report shape: every record with |z| above Threshold in any numeric
// field, in file order. Z and Flags keep the full per-cell tables so the cell-filtered view
// (see Cells) can be derived from the same value.
type Outliers struct {
	Threshold float64
	Columns   []string
	Means     []float64
	Stds      []float64
	// Z[i][j] is the z-score of record i, column j; NaN when undefined.
	Z     [][]float64
	Flags [][]bool
	Rows  []OutlierRow
}

// OutlierRow is a flagged record with its 0-based position in the file.
type OutlierRow struct {
	Index  int
	Values []float64
	Label  string
	// Columns lists the numeric columns whose |z| exceeded the threshold.
	Columns []string
}

// OutlierCell is one extreme value.
type OutlierCell struct {
	Index  int
	Column string
	Value  float64
	Z      float64
}

// DetectOutliers flags records whose absolute z-score exceeds threshold in any numeric column.
// z uses the column mean and sample standard deviation. A column with zero variance, or fewer
// than two present values, has NaN z-scores and never flags; missing cells never flag.
func DetectOutliers(ds *dataset.Dataset, threshold float64) *Outliers {
	cols := ds.NumericColumns()
	out := &Outliers{
		Threshold: threshold,
		Columns:   cols,
		Means:     make([]float64, len(cols)),
		Stds:      make([]float64, len(cols)),
		Z:         make([][]float64, ds.Len()),
		Flags:     make([][]bool, ds.Len()),
	}
	for j := range cols {
		out.Means[j], out.Stds[j] = meanStd(ds.Present(j))
	}
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		z := make([]float64, len(cols))
		flags := make([]bool, len(cols))
		var hit []string
		for j := range cols {
			z[j] = zScore(rec, j, out.Means[j], out.Stds[j])
			if !math.IsNaN(z[j]) && math.Abs(z[j]) > threshold {
				flags[j] = true
				hit = append(hit, cols[j])
			}
		}
		out.Z[i] = z
		out.Flags[i] = flags
		if len(hit) > 0 {
			label, _ := rec.Label()
			out.Rows = append(out.Rows, OutlierRow{Index: i, Values: rec.Values(), Label: label, Columns: hit})
		}
	}
	return out
}

func zScore(rec dataset.Record, j int, mean, std float64) float64 {
	v, ok := rec.Value(j)
	if !ok || math.IsNaN(std) || std == 0 {
		return math.NaN()
	}
	return (v - mean) / std
}

// Cells returns only the extreme cells, ordered by record then column.
func (o *Outliers) Cells() []OutlierCell {
	var out []OutlierCell
	for _, row := range o.Rows {
		for j, flagged := range o.Flags[row.Index] {
			if !flagged {
				continue
			}
			out = append(out, OutlierCell{Index: row.Index, Column: o.Columns[j], Value: row.Values[j], Z: o.Z[row.Index][j]})
		}
	}
	return out
}

// Count returns the number of flagged records.
func (o *Outliers) Count() int { return len(o.Rows) }

package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	sym     *mat.SymDense
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes Pearson r for every pair of numeric columns over the records where both
// values are present. The diagonal is 1. Pairs with fewer than two observations or zero
// variance are NaN.
func Correlate(ds *dataset.Dataset) *CorrMatrix {
	cols := ds.NumericColumns()
	n := len(cols)
	data := make([][]float64, n)
	for j := range cols {
		data[j] = ds.Column(j)
	}
	sym := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		sym.SetSym(a, a, 1)
		for b := a + 1; b < n; b++ {
			sym.SetSym(a, b, pearson(data[a], data[b]))
		}
	}
	return &CorrMatrix{Columns: cols, sym: sym}
}

func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	// clamp rounding noise
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Size returns the number of columns.
func (c *CorrMatrix) Size() int { return len(c.Columns) }

// At returns r for columns i and j.
func (c *CorrMatrix) At(i, j int) float64 { return c.sym.At(i, j) }

// TopPairs lists off-diagonal pairs ordered by |r| descending, skipping undefined ones.
// limit <= 0 returns all pairs.
func (c *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := c.Size()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := c.sym.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: c.Columns[i], B: c.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

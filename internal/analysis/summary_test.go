package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const irisPath = "../dataset/testdata/iris.data"

func loadIris(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(irisPath, dataset.IrisSchema(), dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

// singleColumn builds a dataset with one numeric column "x" and label "k".
func singleColumn(t *testing.T, vals ...float64) *dataset.Dataset {
	t.Helper()
	schema := dataset.Schema{Columns: []string{"x", "k"}, Label: "k"}
	recs := make([]dataset.Record, len(vals))
	for i, v := range vals {
		recs[i] = dataset.NewRecord([]float64{v}, "c")
	}
	ds, err := dataset.New("mem", schema, recs)
	require.NoError(t, err)
	return ds
}

func TestSummarize_Iris(t *testing.T) {
	sum, err := Summarize(loadIris(t), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 150, sum.Records)

	require.Len(t, sum.Classes, 3)
	want := []string{"Iris-setosa", "Iris-versicolor", "Iris-virginica"}
	for i, c := range sum.Classes {
		assert.Equal(t, want[i], c.Value)
		assert.Equal(t, 50, c.Count, c.Value)
	}

	require.Len(t, sum.Missing, 5)
	assert.Equal(t, "species", sum.Missing[4].Name)
	for _, m := range sum.Missing {
		assert.Zero(t, m.Count, m.Name)
	}
}

func TestDescribe_IrisMatchesKnownValues(t *testing.T) {
	d := Describe(loadIris(t))
	require.Len(t, d.Columns, 4)
	// count mean std min 25% 50% 75% max
	expect := map[string][]float64{
		"sepal_length": {150, 5.843333, 0.828066, 4.3, 5.1, 5.8, 6.4, 7.9},
		"sepal_width":  {150, 3.054000, 0.433594, 2.0, 2.8, 3.0, 3.3, 4.4},
		"petal_length": {150, 3.758667, 1.764420, 1.0, 1.6, 4.35, 5.1, 6.9},
		"petal_width":  {150, 1.198667, 0.763161, 0.1, 0.3, 1.3, 1.8, 2.5},
	}
	for _, c := range d.Columns {
		exp, ok := expect[c.Name]
		require.True(t, ok, "unexpected column %q", c.Name)
		for i, name := range Statistics {
			assert.InDelta(t, exp[i], c.Get(name), 1e-6, "%s %s", c.Name, name)
		}
	}
}

func TestDescribe_EmptyAndSingleValue(t *testing.T) {
	cs := describeColumn("x", nil)
	assert.Zero(t, cs.Count)
	assert.True(t, math.IsNaN(cs.Mean))
	assert.True(t, math.IsNaN(cs.Max))

	cs = describeColumn("x", []float64{2.5})
	assert.Equal(t, 1, cs.Count)
	assert.Equal(t, 2.5, cs.Mean)
	assert.True(t, math.IsNaN(cs.Std), "std of one value is undefined")
	assert.Equal(t, 2.5, cs.Q2)
}

func TestDetectOutliers_IrisRowFilter(t *testing.T) {
	o := DetectOutliers(loadIris(t), DefaultOutlierThreshold)
	require.Equal(t, 1, o.Count(), "rows: %#v", o.Rows)

	row := o.Rows[0]
	assert.Equal(t, 15, row.Index)
	assert.Equal(t, "Iris-setosa", row.Label)
	require.Len(t, row.Values, 4)
	assert.Equal(t, 4.4, row.Values[1])
	assert.Equal(t, []string{"sepal_width"}, row.Columns)

	cells := o.Cells()
	require.Len(t, cells, 1)
	assert.Equal(t, "sepal_width", cells[0].Column)
	assert.InDelta(t, 3.104284, cells[0].Z, 1e-5)
}

func TestDetectOutliers_SingleExtremeValue(t *testing.T) {
	vals := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		vals = append(vals, 1)
	}
	vals = append(vals, 100)
	o := DetectOutliers(singleColumn(t, vals...), DefaultOutlierThreshold)
	require.Equal(t, 1, o.Count())
	assert.Equal(t, 20, o.Rows[0].Index)
}

func TestDetectOutliers_SixValueExampleNeedsLowerThreshold(t *testing.T) {
	ds := singleColumn(t, 1, 1, 1, 1, 1, 100)
	// with the sample std the largest reachable |z| for n=6 is 5/sqrt(6) ≈ 2.04
	assert.Zero(t, DetectOutliers(ds, 3.0).Count())

	o := DetectOutliers(ds, 2.0)
	require.Equal(t, 1, o.Count())
	assert.Equal(t, 5, o.Rows[0].Index)
	assert.InDelta(t, 17.5, o.Means[0], 1e-9)
	assert.InDelta(t, 82.5/math.Sqrt(1633.5), o.Z[5][0], 1e-9)
}

func TestDetectOutliers_ZeroVarianceNeverFlags(t *testing.T) {
	o := DetectOutliers(singleColumn(t, 0.1, 0.1, 0.1, 0.1), 0.5)
	assert.Zero(t, o.Count())
	assert.Equal(t, 0.0, o.Stds[0], "std must be exactly 0")
	for i, z := range o.Z {
		assert.True(t, math.IsNaN(z[0]), "z[%d] = %v", i, z[0])
	}
}

func TestCorrelate_IrisSymmetricUnitDiagonal(t *testing.T) {
	c := Correlate(loadIris(t))
	require.Equal(t, 4, c.Size())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1.0, c.At(i, i), "diag %d", i)
		for j := 0; j < 4; j++ {
			assert.Equal(t, c.At(i, j), c.At(j, i), "asymmetric at %d,%d", i, j)
		}
	}
	assert.InDelta(t, 0.871754, c.At(0, 2), 1e-6, "sepal_length~petal_length")
	assert.InDelta(t, -0.109369, c.At(0, 1), 1e-6, "sepal_length~sepal_width")

	top := c.TopPairs(1)
	require.Len(t, top, 1)
	assert.Equal(t, "petal_length", top[0].A)
	assert.Equal(t, "petal_width", top[0].B)
	assert.InDelta(t, 0.962757, top[0].R, 1e-6)
	assert.Len(t, c.TopPairs(0), 6)
}

func TestCorrelate_ConstantColumnIsNaNOffDiagonal(t *testing.T) {
	schema := dataset.Schema{Columns: []string{"x", "y", "k"}, Label: "k"}
	recs := []dataset.Record{
		dataset.NewRecord([]float64{1, 5}, "a"),
		dataset.NewRecord([]float64{2, 5}, "a"),
		dataset.NewRecord([]float64{3, 5}, "b"),
	}
	ds, err := dataset.New("const", schema, recs)
	require.NoError(t, err)

	c := Correlate(ds)
	assert.True(t, math.IsNaN(c.At(0, 1)))
	assert.Equal(t, 1.0, c.At(1, 1))
	assert.Empty(t, c.TopPairs(0), "undefined pairs are skipped")
}

func TestClassDistribution_OrderAndSum(t *testing.T) {
	schema := dataset.Schema{Columns: []string{"x", "k"}, Label: "k"}
	labels := []string{"b", "a", "c", "a", "c", "b", "d"}
	recs := make([]dataset.Record, len(labels))
	for i, l := range labels {
		recs[i] = dataset.NewRecord([]float64{float64(i)}, l)
	}
	ds, err := dataset.New("labels", schema, recs)
	require.NoError(t, err)

	var parts []string
	total := 0
	for _, c := range ClassDistribution(ds) {
		parts = append(parts, c.Value)
		total += c.Count
	}
	// b, a, c tie at 2 and keep first-seen order
	assert.Equal(t, []string{"b", "a", "c", "d"}, parts)
	assert.Equal(t, len(labels), total)
}

func TestMissingCounts_AllowMissing(t *testing.T) {
	in := "5.1,,1.4,0.2,Iris-setosa\n4.9,3.0,NA,0.2,\n4.8,,1.5,0.3,Iris-setosa\n"
	opt := dataset.DefaultOptions()
	opt.AllowMissing = true
	ds, err := dataset.Read(strings.NewReader(in), "gaps", dataset.IrisSchema(), opt)
	require.NoError(t, err)

	var got []int
	for _, c := range MissingCounts(ds) {
		got = append(got, c.Count)
	}
	assert.Equal(t, []int{0, 2, 1, 0, 1}, got)

	d := Describe(ds)
	assert.Equal(t, 1, d.Columns[1].Count)
	assert.Equal(t, 2, d.Columns[2].Count)
}

func TestSummarize_EmptyDataset(t *testing.T) {
	ds, err := dataset.New("empty", dataset.IrisSchema(), nil)
	require.NoError(t, err)

	_, err = Summarize(ds, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/tabstat-cli/internal/analysis"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// set2 approximates the ColorBrewer Set2 palette.
var set2 = []color.Color{
	color.RGBA{R: 102, G: 194, B: 165, A: 255},
	color.RGBA{R: 252, G: 141, B: 98, A: 255},
	color.RGBA{R: 141, G: 160, B: 203, A: 255},
	color.RGBA{R: 231, G: 138, B: 195, A: 255},
	color.RGBA{R: 166, G: 216, B: 84, A: 255},
	color.RGBA{R: 255, G: 217, B: 47, A: 255},
	color.RGBA{R: 229, G: 196, B: 148, A: 255},
	color.RGBA{R: 179, G: 179, B: 179, A: 255},
}

func classColor(i int) color.Color { return plotutil.Color(i) }

func fade(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

// title upper-cases the first letter: "sepal_length" -> "Sepal_length".
func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// binCount uses Sturges' rule.
func binCount(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// classHistograms builds one density histogram per class over shared bin edges so the
// classes line up on the same axis.
func classHistograms(ds *dataset.Dataset, col int) ([]*plotter.Histogram, []string) {
	all := ds.Present(col)
	if len(all) == 0 {
		return nil, nil
	}
	lo, hi := all[0], all[0]
	for _, v := range all {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	nb := binCount(len(all))
	width := (hi - lo) / float64(nb)
	groups := ds.ByClass(col)
	var hists []*plotter.Histogram
	var names []string
	for k, class := range ds.Classes() {
		vals := groups[class]
		if len(vals) == 0 {
			continue
		}
		bins := make([]plotter.HistogramBin, nb)
		for b := range bins {
			bins[b].Min = lo + float64(b)*width
			bins[b].Max = lo + float64(b+1)*width
		}
		for _, v := range vals {
			b := int((v - lo) / width)
			if b >= nb {
				b = nb - 1
			}
			if b < 0 {
				b = 0
			}
			bins[b].Weight++
		}
		h := &plotter.Histogram{
			Bins:      bins,
			Width:     width,
			FillColor: fade(classColor(k), 60),
			LineStyle: plotter.DefaultLineStyle,
		}
		h.LineStyle.Color = classColor(k)
		h.Normalize(1)
		hists = append(hists, h)
		names = append(names, class)
	}
	return hists, names
}

func distributionPlot(ds *dataset.Dataset, col int) *plot.Plot {
	name := ds.NumericColumns()[col]
	p := plot.New()
	p.Title.Text = title(name) + " Distribution"
	p.X.Label.Text = name
	p.Y.Label.Text = "Density"
	p.Legend.Top = true
	hists, names := classHistograms(ds, col)
	for i, h := range hists {
		p.Add(h)
		p.Legend.Add(names[i], h)
	}
	return p
}

func scatterMatrix(ds *dataset.Dataset) [][]*plot.Plot {
	cols := ds.NumericColumns()
	n := len(cols)
	classes := ds.Classes()
	labels := ds.Labels()
	data := make([][]float64, n)
	for j := range cols {
		data[j] = ds.Column(j)
	}
	plots := make([][]*plot.Plot, n)
	for row := 0; row < n; row++ {
		plots[row] = make([]*plot.Plot, n)
		for c := 0; c < n; c++ {
			p := plot.New()
			if row == n-1 {
				p.X.Label.Text = cols[c]
			}
			if c == 0 {
				p.Y.Label.Text = cols[row]
			}
			if row == c {
				hists, _ := classHistograms(ds, c)
				for _, h := range hists {
					p.Add(h)
				}
				plots[row][c] = p
				continue
			}
			for k, class := range classes {
				var xys plotter.XYs
				for i := range labels {
					if labels[i] != class || math.IsNaN(data[c][i]) || math.IsNaN(data[row][i]) {
						continue
					}
					xys = append(xys, plotter.XY{X: data[c][i], Y: data[row][i]})
				}
				if len(xys) == 0 {
					continue
				}
				s, err := plotter.NewScatter(xys)
				if err != nil {
					continue
				}
				s.GlyphStyle.Color = classColor(k)
				s.GlyphStyle.Radius = vg.Points(1.5)
				s.GlyphStyle.Shape = draw.CircleGlyph{}
				p.Add(s)
				if row == 0 && c == n-1 {
					p.Legend.Add(class, s)
				}
			}
			if row == 0 && c == n-1 {
				p.Legend.Top = true
			}
			plots[row][c] = p
		}
	}
	return plots
}

func boxPlot(ds *dataset.Dataset) (*plot.Plot, error) {
	cols := ds.NumericColumns()
	p := plot.New()
	p.Title.Text = "Box plot of each feature in the dataset"
	names := make([]string, 0, len(cols))
	for i, name := range cols {
		vals := ds.Present(i)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", name, err)
		}
		b.Horizontal = true
		b.FillColor = set2[i%len(set2)]
		p.Add(b)
		names = append(names, name)
	}
	p.NominalY(names...)
	return p, nil
}

func violinPlot(ds *dataset.Dataset, col int) (*plot.Plot, error) {
	name := ds.NumericColumns()[col]
	p := plot.New()
	p.Title.Text = "Violin Plot of " + title(name)
	p.X.Label.Text = ds.Schema().Label
	p.Y.Label.Text = name
	classes := ds.Classes()
	groups := ds.ByClass(col)
	for k, class := range classes {
		outline := violinOutline(groups[class], float64(k), 0.4)
		if outline == nil {
			continue
		}
		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return nil, err
		}
		poly.Color = fade(classColor(k), 160)
		poly.LineStyle.Color = classColor(k)
		p.Add(poly)
	}
	p.NominalX(classes...)
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first column on top.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int)   { return g.m.Size(), g.m.Size() }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(g.m.Size()-1-r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func heatmapPlot(corr *analysis.CorrMatrix) (*plot.Plot, error) {
	n := corr.Size()
	if n == 0 {
		return nil, fmt.Errorf("no numeric columns to correlate")
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: corr}, cmap.Palette(255))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = "Correlation heatmap"
	p.Add(hm)

	var xys plotter.XYs
	var text []string
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := corr.At(n-1-r, c)
			label := "NaN"
			if !math.IsNaN(v) {
				label = strconv.FormatFloat(v, 'f', 2, 64)
			}
			xys = append(xys, plotter.XY{X: float64(c) - 0.15, Y: float64(r)})
			text = append(text, label)
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	names := corr.Columns
	reversed := make([]string, n)
	for i, name := range names {
		reversed[n-1-i] = name
	}
	p.NominalX(names...)
	p.NominalY(reversed...)
	return p, nil
}

// summaryGrid lays out one row per numeric column: histogram left, per-class box plots right.
func summaryGrid(ds *dataset.Dataset) ([][]*plot.Plot, error) {
	cols := ds.NumericColumns()
	classes := ds.Classes()
	rows := make([][]*plot.Plot, len(cols))
	for i, name := range cols {
		left := distributionPlot(ds, i)

		right := plot.New()
		right.Title.Text = "Box Plot of " + title(name)
		right.X.Label.Text = ds.Schema().Label
		right.Y.Label.Text = name
		groups := ds.ByClass(i)
		for k, class := range classes {
			vals := groups[class]
			if len(vals) == 0 {
				continue
			}
			b, err := plotter.NewBoxPlot(vg.Points(40), float64(k), plotter.Values(vals))
			if err != nil {
				return nil, fmt.Errorf("box %s/%s: %w", name, class, err)
			}
			b.FillColor = fade(classColor(k), 120)
			right.Add(b)
		}
		right.NominalX(classes...)
		rows[i] = []*plot.Plot{left, right}
	}
	return rows, nil
}

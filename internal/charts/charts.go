// Package charts renders the exploratory chart catalog for a dataset with gonum/plot.
package charts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/analysis"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options controls where and how charts are written.
type Options struct {
	// Dir is the output directory; created if missing.
	Dir string
	// Format is the image extension: "png" (default) or "jpg".
	Format string
	// Violins adds one violin chart per numeric column.
	Violins bool
	// Workers bounds concurrent rendering; <= 0 means 4.
	Workers int
}

// Renderer draws the chart catalog.
type Renderer struct {
	opt Options
	log logrus.FieldLogger
}

// New returns a Renderer. A nil logger discards output.
func New(opt Options, log logrus.FieldLogger) (*Renderer, error) {
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opt.Format), "."))
	switch format {
	case "":
		format = "png"
	case "png":
	case "jpg", "jpeg":
		format = "jpg"
	default:
		return nil, fmt.Errorf("unsupported image format %q (use png or jpg)", opt.Format)
	}
	opt.Format = format
	if opt.Dir == "" {
		opt.Dir = "."
	}
	if opt.Workers <= 0 {
		opt.Workers = 4
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Renderer{opt: opt, log: log}, nil
}

type chart struct {
	name   string
	render func() ([]byte, error)
}

// catalog builds the chart list; corr is only dereferenced when the heatmap renders.
func (r *Renderer) catalog(ds *dataset.Dataset, corr *analysis.CorrMatrix) []chart {
	ext := r.opt.Format
	cols := ds.NumericColumns()
	var charts []chart
	for i, col := range cols {
		charts = append(charts, chart{
			name:   fmt.Sprintf("%s_distribution.%s", col, ext),
			render: func() ([]byte, error) { return r.single(distributionPlot(ds, i), 10*vg.Inch, 6*vg.Inch) },
		})
	}
	charts = append(charts,
		chart{name: "scatterplot." + ext, render: func() ([]byte, error) { return r.grid(scatterMatrix(ds), 3*vg.Inch) }},
		chart{name: "boxplot." + ext, render: func() ([]byte, error) {
			p, err := boxPlot(ds)
			if err != nil {
				return nil, err
			}
			return r.single(p, 12*vg.Inch, 8*vg.Inch)
		}},
	)
	if r.opt.Violins {
		for i, col := range cols {
			charts = append(charts, chart{
				name: fmt.Sprintf("violin_plot_%s.%s", col, ext),
				render: func() ([]byte, error) {
					p, err := violinPlot(ds, i)
					if err != nil {
						return nil, err
					}
					return r.single(p, 10*vg.Inch, 6*vg.Inch)
				},
			})
		}
	}
	charts = append(charts,
		chart{name: "correlation_heatmap." + ext, render: func() ([]byte, error) {
			p, err := heatmapPlot(corr)
			if err != nil {
				return nil, err
			}
			return r.single(p, 10*vg.Inch, 8*vg.Inch)
		}},
		chart{name: "summary_visualization." + ext, render: func() ([]byte, error) {
			plots, err := summaryGrid(ds)
			if err != nil {
				return nil, err
			}
			return r.gridSized(plots, 16*vg.Inch, vg.Length(len(plots))*6*vg.Inch)
		}},
	)
	return charts
}

// Render writes every chart for ds into the output directory and returns the written paths
// in catalog order. corr may be nil, in which case it is computed from ds.
func (r *Renderer) Render(ctx context.Context, ds *dataset.Dataset, corr *analysis.CorrMatrix) ([]string, error) {
	if ds.Len() == 0 {
		return nil, analysis.ErrEmptyDataset
	}
	if err := utils.EnsureDir(r.opt.Dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if corr == nil {
		corr = analysis.Correlate(ds)
	}
	charts := r.catalog(ds, corr)
	paths := make([]string, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opt.Workers)
	for i, c := range charts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := c.render()
			if err != nil {
				return fmt.Errorf("render %s: %w", c.name, err)
			}
			path := filepath.Join(r.opt.Dir, c.name)
			if err := utils.SafeWriteFile(path, b); err != nil {
				return fmt.Errorf("save %s: %w", c.name, err)
			}
			r.log.WithField("chart", c.name).Debug("chart written")
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *Renderer) single(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, r.opt.Format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// grid draws a square-tiled figure with cell x cell tiles.
func (r *Renderer) grid(plots [][]*plot.Plot, cell vg.Length) ([]byte, error) {
	if len(plots) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	return r.gridSized(plots, vg.Length(len(plots[0]))*cell, vg.Length(len(plots))*cell)
}

func (r *Renderer) gridSized(plots [][]*plot.Plot, w, h vg.Length) ([]byte, error) {
	if len(plots) == 0 || len(plots[0]) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 2,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}
	var buf bytes.Buffer
	var err error
	switch r.opt.Format {
	case "jpg":
		_, err = vgimg.JpegCanvas{Canvas: img}.WriteTo(&buf)
	default:
		_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(&buf)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

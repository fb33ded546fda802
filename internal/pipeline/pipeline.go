// Package pipeline runs the fetch, load, summarize, report and chart stages in order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/analysis"
	"github.com/KaramelBytes/tabstat-cli/internal/charts"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/fetch"
	"github.com/KaramelBytes/tabstat-cli/internal/report"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// show opens rendered charts; swapped in tests.
var show = charts.Show

// Config selects the input, the outputs and which stages run.
type Config struct {
	InputPath  string
	OutputDir  string
	ReportName string

	// URL is downloaded to InputPath when Fetch is set or InputPath does not exist.
	URL   string
	Fetch bool
	HTTP  fetch.Options

	Schema       dataset.Schema // zero value means the Iris schema
	Delimiter    rune
	AllowMissing bool
	Threshold    float64

	SkipReport bool
	Header     bool

	SkipPlots bool
	Violins   bool
	Display   bool
	Format    string
	Workers   int
}

// Result is what a successful run produced.
type Result struct {
	RunID      string
	InputPath  string
	ReportPath string
	Report     string
	Charts     []string
	Dataset    *dataset.Dataset
	Summary    *analysis.Summary
}

// Runner executes a Config.
type Runner struct {
	cfg Config
	log logrus.FieldLogger
	out io.Writer
	now func() time.Time
}

// New returns a Runner that logs to log and prints confirmations to out. Nil values discard.
func New(cfg Config, log logrus.FieldLogger, out io.Writer) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if out == nil {
		out = io.Discard
	}
	if len(cfg.Schema.Columns) == 0 {
		cfg.Schema = dataset.IrisSchema()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.ReportName == "" {
		cfg.ReportName = "summary_report.txt"
	}
	return &Runner{cfg: cfg, log: log, out: out, now: time.Now}
}

// Run executes every enabled stage. The first failing stage aborts the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), InputPath: r.cfg.InputPath}
	log := r.log.WithField("run_id", res.RunID)
	log.WithField("input", r.cfg.InputPath).Info("run started")

	if r.needsFetch() {
		if err := r.fetch(ctx, log.WithField("stage", "fetch")); err != nil {
			return nil, err
		}
	}

	ds, err := r.load(log.WithField("stage", "load"))
	if err != nil {
		return nil, err
	}
	res.Dataset = ds

	sumLog := log.WithField("stage", "summarize")
	sum, err := analysis.Summarize(ds, analysis.Options{OutlierThreshold: r.cfg.Threshold})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	res.Summary = sum
	fields := logrus.Fields{"outliers": sum.Outliers.Count(), "classes": len(sum.Classes)}
	if top := sum.Correlation.TopPairs(1); len(top) > 0 {
		fields["top_pair"] = fmt.Sprintf("%s/%s=%.3f", top[0].A, top[0].B, top[0].R)
	}
	sumLog.WithFields(fields).Info("summary computed")

	if !r.cfg.SkipReport {
		text, path, err := r.writeReport(ds, sum, res.RunID, log.WithField("stage", "report"))
		if err != nil {
			return nil, err
		}
		res.Report, res.ReportPath = text, path
		fmt.Fprintf(r.out, "✓ Summary report saved to %s\n", path)
	}

	if !r.cfg.SkipPlots {
		paths, err := r.plot(ctx, ds, sum.Correlation, log.WithField("stage", "plot"))
		if err != nil {
			return nil, err
		}
		res.Charts = paths
		fmt.Fprintf(r.out, "✓ %d visualizations saved to %s\n", len(paths), r.cfg.OutputDir)
		if r.cfg.Display {
			if err := show(paths); err != nil {
				log.WithField("stage", "display").Warnf("could not open charts: %v", err)
				fmt.Fprintf(r.out, "⚠ Warning: %v\n", err)
			}
		}
	}

	log.Info("run finished")
	return res, nil
}

func (r *Runner) needsFetch() bool {
	if r.cfg.URL == "" {
		return false
	}
	return r.cfg.Fetch || !utils.FileExists(r.cfg.InputPath)
}

func (r *Runner) fetch(ctx context.Context, log *logrus.Entry) error {
	opt := r.cfg.HTTP
	opt.Logger = log
	n, err := fetch.New(opt).Download(ctx, r.cfg.URL, r.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("fetch stage: %w", err)
	}
	log.WithFields(logrus.Fields{"url": r.cfg.URL, "bytes": n}).Info("dataset downloaded")
	fmt.Fprintf(r.out, "✓ Downloaded %d bytes to %s\n", n, r.cfg.InputPath)
	return nil
}

func (r *Runner) load(log *logrus.Entry) (*dataset.Dataset, error) {
	opt := dataset.DefaultOptions()
	if r.cfg.Delimiter != 0 {
		opt.Delimiter = r.cfg.Delimiter
	}
	opt.AllowMissing = r.cfg.AllowMissing
	ds, err := dataset.Load(r.cfg.InputPath, r.cfg.Schema, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.cfg.InputPath, err)
	}
	log.WithFields(logrus.Fields{"records": ds.Len(), "columns": len(r.cfg.Schema.Columns)}).Info("dataset loaded")
	return ds, nil
}

func (r *Runner) writeReport(ds *dataset.Dataset, sum *analysis.Summary, runID string, log *logrus.Entry) (string, string, error) {
	text := report.Render(ds, sum, report.Options{
		Header:      r.cfg.Header,
		RunID:       runID,
		GeneratedAt: r.now(),
	})
	path := filepath.Join(r.cfg.OutputDir, r.cfg.ReportName)
	if err := report.Write(path, text); err != nil {
		return "", "", err
	}
	log.WithField("path", path).Info("report written")
	return text, path, nil
}

func (r *Runner) plot(ctx context.Context, ds *dataset.Dataset, corr *analysis.CorrMatrix, log *logrus.Entry) ([]string, error) {
	rd, err := charts.New(charts.Options{
		Dir:     r.cfg.OutputDir,
		Format:  r.cfg.Format,
		Violins: r.cfg.Violins,
		Workers: r.cfg.Workers,
	}, log)
	if err != nil {
		return nil, err
	}
	paths, err := rd.Render(ctx, ds, corr)
	if err != nil {
		return nil, fmt.Errorf("charts: %w", err)
	}
	log.WithField("count", len(paths)).Info("charts written")
	return paths, nil
}

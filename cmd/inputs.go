package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

// inputFlags are the dataset-shape flags shared by analyze, plot and run.
type inputFlags struct {
	columns      string
	label        string
	delimiter    string
	allowMissing bool
	outputDir    string
}

func (in *inputFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&in.columns, "columns", "", "comma-separated column names in file order (default Iris schema)")
	c.Flags().StringVar(&in.label, "label", "", "label column name (default: last column)")
	c.Flags().StringVar(&in.delimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab'")
	c.Flags().BoolVar(&in.allowMissing, "allow-missing", false, "treat empty/NA fields as missing instead of failing (overrides config)")
	c.Flags().StringVarP(&in.outputDir, "output-dir", "o", "", "directory for the report and charts (overrides config)")
}

func (in *inputFlags) schema() (dataset.Schema, error) {
	if strings.TrimSpace(in.columns) == "" {
		s := dataset.IrisSchema()
		if in.label != "" && in.label != s.Label {
			return dataset.Schema{}, fmt.Errorf("--label %q requires --columns", in.label)
		}
		return s, nil
	}
	var cols []string
	for _, c := range strings.Split(in.columns, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}
	label := in.label
	if label == "" {
		label = cols[len(cols)-1]
	}
	s := dataset.Schema{Columns: cols, Label: label}
	if err := s.Validate(); err != nil {
		return dataset.Schema{}, err
	}
	return s, nil
}

func parseDelimiter(v string) (rune, error) {
	switch v {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", v)
	}
}

// baseConfig fills a pipeline config from the loaded configuration and the shared flags.
func (in *inputFlags) baseConfig(c *cobra.Command, input string) (pipeline.Config, error) {
	schema, err := in.schema()
	if err != nil {
		return pipeline.Config{}, err
	}
	delim, err := parseDelimiter(in.delimiter)
	if err != nil {
		return pipeline.Config{}, err
	}
	pc := pipeline.Config{
		InputPath:    cfg.InputPath,
		OutputDir:    cfg.OutputDir,
		ReportName:   cfg.ReportName,
		URL:          cfg.DatasetURL,
		HTTP:         httpOptions(),
		Schema:       schema,
		Delimiter:    delim,
		AllowMissing: cfg.AllowMissing,
		Threshold:    cfg.OutlierThreshold,
		Violins:      cfg.ViolinPlots,
		Display:      cfg.Display,
		Format:       cfg.ImageFormat,
		Workers:      cfg.PlotWorkers,
	}
	if input != "" {
		pc.InputPath = input
	}
	if c.Flags().Changed("allow-missing") {
		pc.AllowMissing = in.allowMissing
	}
	if in.outputDir != "" {
		pc.OutputDir = in.outputDir
	}
	return pc, nil
}

func runPipeline(c *cobra.Command, pc pipeline.Config) (*pipeline.Result, error) {
	return pipeline.New(pc, log, c.OutOrStdout()).Run(c.Context())
}

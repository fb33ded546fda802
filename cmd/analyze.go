package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	anaInputs    inputFlags
	anaReport    string
	anaThreshold float64
	anaHeader    bool
	anaPrint     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize a labeled dataset into a plain-text report",
	Long: `Load a headerless delimited file and write a report with descriptive statistics, missing
value counts, z-score outliers, the Pearson correlation matrix and class counts.

The file defaults to input_path from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input string
		if len(args) == 1 {
			input = args[0]
		}
		pc, err := anaInputs.baseConfig(cmd, input)
		if err != nil {
			return err
		}
		// analyze never downloads; use fetch or run for that
		pc.URL = ""
		pc.SkipPlots = true
		pc.Header = anaHeader
		if anaReport != "" {
			pc.ReportName = anaReport
		}
		if cmd.Flags().Changed("threshold") {
			if anaThreshold <= 0 {
				return fmt.Errorf("--threshold must be positive")
			}
			pc.Threshold = anaThreshold
		}
		res, err := runPipeline(cmd, pc)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if n := res.Summary.Outliers.Count(); n > 0 {
			fmt.Fprintf(out, "⚠ %d record(s) beyond %.4g standard deviations\n", n, res.Summary.Outliers.Threshold)
		}
		if anaPrint {
			fmt.Fprint(out, "\n"+res.Report)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInputs.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaReport, "report", "", "report file name inside the output directory (overrides config)")
	analyzeCmd.Flags().Float64Var(&anaThreshold, "threshold", 3.0, "|z| above which a value is an outlier (overrides config)")
	analyzeCmd.Flags().BoolVar(&anaHeader, "header", false, "prefix the report with source, run ID and timestamp")
	analyzeCmd.Flags().BoolVar(&anaPrint, "print", false, "also print the report to stdout")
}

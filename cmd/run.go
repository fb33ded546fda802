package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runInputs    inputFlags
	runCharts    chartFlags
	runFetch     bool
	runURL       string
	runInput     string
	runReport    string
	runThreshold float64
	runSkipPlots bool
	runHeader    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch (if needed), summarize and plot in one pass",
	Long: `Run every stage in order: download the dataset when --fetch is set or the input file is
missing, load it, write the summary report and render the charts. The first failing stage stops
the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := runInputs.baseConfig(cmd, runInput)
		if err != nil {
			return err
		}
		pc.Fetch = runFetch
		if runURL != "" {
			pc.URL = runURL
		}
		if runReport != "" {
			pc.ReportName = runReport
		}
		if cmd.Flags().Changed("threshold") {
			if runThreshold <= 0 {
				return fmt.Errorf("--threshold must be positive")
			}
			pc.Threshold = runThreshold
		}
		pc.SkipPlots = runSkipPlots
		pc.Header = runHeader
		runCharts.apply(cmd, &pc)

		res, err := runPipeline(cmd, pc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Run %s complete: %d records, %d classes, %d outlier record(s)\n",
			res.RunID, res.Summary.Records, len(res.Summary.Classes), res.Summary.Outliers.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runInputs.register(runCmd)
	runCharts.register(runCmd)
	runCmd.Flags().BoolVar(&runFetch, "fetch", false, "download the dataset even if the input file exists")
	runCmd.Flags().StringVar(&runURL, "url", "", "dataset URL (overrides config)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "local dataset path (overrides config)")
	runCmd.Flags().StringVar(&runReport, "report", "", "report file name inside the output directory (overrides config)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 3.0, "|z| above which a value is an outlier (overrides config)")
	runCmd.Flags().BoolVar(&runSkipPlots, "skip-plots", false, "write the report only")
	runCmd.Flags().BoolVar(&runHeader, "header", false, "prefix the report with source, run ID and timestamp")
}

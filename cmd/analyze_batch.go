package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	abInputs    inputFlags
	abThreshold float64
	abHeader    bool
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Summarize several files that share a schema, one report each",
	Long: `Expand each argument as a glob, then write <name>_summary.txt per file into the output
directory. A name collision gets a numeric suffix instead of overwriting another report from the
same batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		base, err := abInputs.baseConfig(cmd, "")
		if err != nil {
			return err
		}
		base.URL = ""
		base.SkipPlots = true
		base.Header = abHeader
		if cmd.Flags().Changed("threshold") {
			if abThreshold <= 0 {
				return fmt.Errorf("--threshold must be positive")
			}
			base.Threshold = abThreshold
		}

		out := cmd.OutOrStdout()
		if abQuiet {
			out = io.Discard
		}
		used := map[string]bool{}
		total := len(files)
		for i, path := range files {
			fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			pc := base
			pc.InputPath = path
			pc.ReportName = batchReportName(path, used)
			if _, err := pipeline.New(pc, log, out).Run(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

// expandInputs globs every argument, keeps literal paths that exist, and returns a sorted,
// de-duplicated list.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func batchReportName(path string, used map[string]bool) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := stem + "_summary.txt"
	for idx := 2; used[name]; idx++ {
		name = fmt.Sprintf("%s__%d_summary.txt", stem, idx)
	}
	used[name] = true
	return name
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInputs.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().Float64Var(&abThreshold, "threshold", 3.0, "|z| above which a value is an outlier (overrides config)")
	analyzeBatchCmd.Flags().BoolVar(&abHeader, "header", false, "prefix each report with source, run ID and timestamp")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

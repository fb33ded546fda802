package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

// chartFlags are the rendering flags shared by plot and run.
type chartFlags struct {
	format    string
	noViolins bool
	show      bool
	workers   int
}

func (cf *chartFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&cf.format, "format", "png", "image format: png | jpg (overrides config)")
	c.Flags().BoolVar(&cf.noViolins, "no-violins", false, "skip the per-column violin plots")
	c.Flags().BoolVar(&cf.show, "show", false, "open every chart with the system image viewer")
	c.Flags().IntVar(&cf.workers, "workers", 4, "charts rendered concurrently (overrides config)")
}

// apply lets explicitly set chart flags win over configuration.
func (cf *chartFlags) apply(c *cobra.Command, pc *pipeline.Config) {
	if c.Flags().Changed("format") {
		pc.Format = cf.format
	}
	if c.Flags().Changed("no-violins") {
		pc.Violins = !cf.noViolins
	}
	if c.Flags().Changed("show") {
		pc.Display = cf.show
	}
	if c.Flags().Changed("workers") && cf.workers > 0 {
		pc.Workers = cf.workers
	}
}

var (
	pltInputs inputFlags
	pltCharts chartFlags
)

var plotCmd = &cobra.Command{
	Use:   "plot [file]",
	Short: "Render the chart catalog for a labeled dataset",
	Long: `Render per-column distributions, a scatter matrix, box plots, optional violin plots, a
correlation heatmap and a summary grid into the output directory. Existing images are overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input string
		if len(args) == 1 {
			input = args[0]
		}
		pc, err := pltInputs.baseConfig(cmd, input)
		if err != nil {
			return err
		}
		pc.URL = ""
		pc.SkipReport = true
		pltCharts.apply(cmd, &pc)
		res, err := runPipeline(cmd, pc)
		if err != nil {
			return err
		}
		if debug {
			for _, p := range res.Charts {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	pltInputs.register(plotCmd)
	pltCharts.register(plotCmd)
}

package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabstat-cli/internal/fetch"
	"github.com/spf13/cobra"
)

var (
	fetchURL    string
	fetchOutput string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset file",
	Long:  `Download the dataset with a plain GET and store the body verbatim. Network errors, 429 and 5xx responses are retried with backoff.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := cfg.DatasetURL
		if fetchURL != "" {
			url = fetchURL
		}
		if url == "" {
			url = fetch.DefaultURL
		}
		path := cfg.InputPath
		if fetchOutput != "" {
			path = fetchOutput
		}
		if path == "" {
			return fmt.Errorf("no output path: pass --output or set input_path")
		}
		n, err := fetch.New(httpOptions()).Download(cmd.Context(), url, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Downloaded %d bytes to %s\n", n, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "dataset URL (overrides config)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "destination file (overrides config input_path)")
}

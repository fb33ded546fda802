package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tabstat-cli/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		for _, key := range cfgpkg.Keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, configValue(cfg, key))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "dataset_url":
			cfg.DatasetURL = val
		case "input_path":
			cfg.InputPath = val
		case "output_dir":
			cfg.OutputDir = val
		case "report_name":
			cfg.ReportName = val
		case "outlier_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for outlier_threshold: %v", val)
			}
			cfg.OutlierThreshold = f
		case "allow_missing", "violin_plots", "display":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			switch key {
			case "allow_missing":
				cfg.AllowMissing = b
			case "violin_plots":
				cfg.ViolinPlots = b
			default:
				cfg.Display = b
			}
		case "image_format":
			switch strings.ToLower(val) {
			case "png":
				cfg.ImageFormat = "png"
			case "jpg", "jpeg":
				cfg.ImageFormat = "jpg"
			default:
				return fmt.Errorf("invalid image_format: %s (use png or jpg)", val)
			}
		case "plot_workers", "http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			switch key {
			case "plot_workers":
				cfg.PlotWorkers = i
			case "http_timeout_sec":
				cfg.HTTPTimeoutSec = i
			case "retry_max_attempts":
				cfg.RetryMaxAttempts = i
			case "retry_base_delay_ms":
				cfg.RetryBaseDelayMs = i
			default:
				cfg.RetryMaxDelayMs = i
			}
		case "log_level":
			if _, err := logrus.ParseLevel(val); err != nil {
				return err
			}
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "dataset_url":
		return c.DatasetURL
	case "input_path":
		return c.InputPath
	case "output_dir":
		return c.OutputDir
	case "report_name":
		return c.ReportName
	case "outlier_threshold":
		return strconv.FormatFloat(c.OutlierThreshold, 'f', -1, 64)
	case "allow_missing":
		return strconv.FormatBool(c.AllowMissing)
	case "image_format":
		return c.ImageFormat
	case "violin_plots":
		return strconv.FormatBool(c.ViolinPlots)
	case "display":
		return strconv.FormatBool(c.Display)
	case "plot_workers":
		return strconv.Itoa(c.PlotWorkers)
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return strconv.Itoa(c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return strconv.Itoa(c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return strconv.Itoa(c.RetryMaxDelayMs)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

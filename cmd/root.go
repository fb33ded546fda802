package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/tabstat-cli/internal/config"
	"github.com/KaramelBytes/tabstat-cli/internal/fetch"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global

	// log receives structured diagnostics on stderr; user-facing status lines go to stdout.
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "tabstat",
	Short: "tabstat: summary statistics and charts for labeled tabular datasets",
	Long: `tabstat downloads a labeled, headerless CSV dataset (the UCI Iris data by default), writes a
plain-text summary report (descriptive statistics, missing values, z-score outliers, correlations and
class counts) and renders a catalog of exploratory charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max download attempts on network errors, 429 and 5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	configureLogger()
}

func configureLogger() {
	log.SetOutput(os.Stderr)
	level := logrus.InfoLevel
	if cfg.LogLevel != "" {
		if l, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			level = l
		} else {
			fmt.Fprintf(os.Stderr, "⚠ Warning: unknown log_level %q, using info\n", cfg.LogLevel)
		}
	}
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func httpOptions() fetch.Options {
	return fetch.Options{
		Timeout:          time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryBaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		RetryMaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
		Logger:           log,
	}
}

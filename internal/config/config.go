// Package config layers tabstat settings from defaults, ~/.tabstat/config.yaml, a local .env file
// and TABSTAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "TABSTAT"

// Global configuration structure.
type Global struct {
	DatasetURL       string  `mapstructure:"dataset_url" yaml:"dataset_url"`
	InputPath        string  `mapstructure:"input_path" yaml:"input_path"`
	OutputDir        string  `mapstructure:"output_dir" yaml:"output_dir"`
	ReportName       string  `mapstructure:"report_name" yaml:"report_name"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	AllowMissing     bool    `mapstructure:"allow_missing" yaml:"allow_missing"`

	// Charts
	ImageFormat string `mapstructure:"image_format" yaml:"image_format"`
	ViolinPlots bool   `mapstructure:"violin_plots" yaml:"violin_plots"`
	Display     bool   `mapstructure:"display" yaml:"display"`
	PlotWorkers int    `mapstructure:"plot_workers" yaml:"plot_workers"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"dataset_url", "input_path", "output_dir", "report_name", "outlier_threshold", "allow_missing",
	"image_format", "violin_plots", "display", "plot_workers",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"log_level", "log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset_url", "https://archive.ics.uci.edu/ml/machine-learning-databases/iris/iris.data")
	v.SetDefault("input_path", "iris.data")
	v.SetDefault("output_dir", ".")
	v.SetDefault("report_name", "summary_report.txt")
	v.SetDefault("outlier_threshold", 3.0)
	v.SetDefault("allow_missing", false)
	v.SetDefault("image_format", "png")
	v.SetDefault("violin_plots", true)
	v.SetDefault("display", false)
	v.SetDefault("plot_workers", 4)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Dir returns ~/.tabstat.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabstat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
// A .env file in the working directory is read first; it never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://archive.ics.uci.edu/ml/machine-learning-databases/iris/iris.data", c.DatasetURL)
	assert.Equal(t, "iris.data", c.InputPath)
	assert.Equal(t, "summary_report.txt", c.ReportName)
	assert.Equal(t, 3.0, c.OutlierThreshold)
	assert.Equal(t, "png", c.ImageFormat)
	assert.True(t, c.ViolinPlots)
	assert.False(t, c.Display)
	assert.Equal(t, 60, c.HTTPTimeoutSec)
	assert.Equal(t, 3, c.RetryMaxAttempts)
	assert.Equal(t, 500, c.RetryBaseDelayMs)
	assert.Equal(t, 4000, c.RetryMaxDelayMs)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".tabstat")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("output_dir: from-file\noutlier_threshold: 2.5\nimage_format: jpg\n"), 0o644))
	t.Setenv("TABSTAT_OUTPUT_DIR", "from-env")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.OutputDir)
	assert.Equal(t, 2.5, c.OutlierThreshold)
	assert.Equal(t, "jpg", c.ImageFormat)
}

func TestSaveAndLoad_ExplicitFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")

	c, err := Load(path)
	require.NoError(t, err, "a missing explicit file falls back to defaults")
	c.ReportName = "iris_report.txt"
	c.ViolinPlots = false
	c.PlotWorkers = 2
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "iris_report.txt", again.ReportName)
	assert.False(t, again.ViolinPlots)
	assert.Equal(t, 2, again.PlotWorkers)
}

func TestSave_DefaultLocation(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, Save(&Global{OutputDir: "out"}, ""))
	_, err := os.Stat(filepath.Join(home, ".tabstat", "config.yaml"))
	assert.NoError(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	isolateHome(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("TABSTAT_REPORT_NAME=dotenv.txt\n"), 0o644))
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("TABSTAT_REPORT_NAME")
	})

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv.txt", c.ReportName)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/fetch"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const irisFixture = "../dataset/testdata/iris.data"

func copyIris(t *testing.T, dir string) string {
	t.Helper()
	b, err := os.ReadFile(irisFixture)
	require.NoError(t, err)
	path := filepath.Join(dir, "iris.data")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func fastHTTP() fetch.Options {
	return fetch.Options{
		Timeout:          5 * time.Second,
		RetryMaxAttempts: 2,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    2 * time.Millisecond,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := copyIris(t, dir)
	out := filepath.Join(dir, "out")
	logger, hook := test.NewNullLogger()
	var stdout bytes.Buffer

	res, err := New(Config{
		InputPath: input,
		OutputDir: out,
		Header:    true,
		Violins:   false,
		Format:    "png",
	}, logger, &stdout).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Summary.Classes, 3)
	for _, c := range res.Summary.Classes {
		assert.Equal(t, 50, c.Count, c.Value)
	}
	assert.Equal(t, 150, res.Dataset.Len())
	assert.NotEmpty(t, res.RunID)

	text, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "summary_report.txt"), res.ReportPath)
	assert.Contains(t, string(text), "Run: "+res.RunID)
	assert.Contains(t, string(text), "Descriptive Statistics:")

	assert.Len(t, res.Charts, 8)
	for _, p := range res.Charts {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
	assert.Contains(t, stdout.String(), "✓ Summary report saved to")
	assert.Contains(t, stdout.String(), "✓ 8 visualizations saved to")

	stages := map[string]bool{}
	for _, e := range hook.AllEntries() {
		assert.Equal(t, res.RunID, e.Data["run_id"])
		if s, ok := e.Data["stage"].(string); ok {
			stages[s] = true
		}
		if e.Message == "summary computed" {
			assert.Equal(t, "petal_length/petal_width=0.963", e.Data["top_pair"])
			assert.Equal(t, 1, e.Data["outliers"])
		}
	}
	for _, s := range []string{"load", "summarize", "report", "plot"} {
		assert.True(t, stages[s], "no log entry for stage %s", s)
	}
}

func TestRun_FetchesMissingInput(t *testing.T) {
	body, err := os.ReadFile(irisFixture)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "data", "iris.data")
	var stdout bytes.Buffer
	res, err := New(Config{
		InputPath: input,
		OutputDir: dir,
		URL:       srv.URL,
		HTTP:      fastHTTP(),
		SkipPlots: true,
	}, nil, &stdout).Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, 150, res.Summary.Records)
	assert.Empty(t, res.Charts)
	assert.True(t, strings.HasPrefix(stdout.String(), "✓ Downloaded"))
}

func TestRun_FetchFailureAbortsLaterStages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := New(Config{
		InputPath: filepath.Join(dir, "iris.data"),
		OutputDir: dir,
		URL:       srv.URL,
		Fetch:     true,
		HTTP:      fastHTTP(),
	}, nil, nil).Run(context.Background())

	var serr *fetch.StatusError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, 1, strings.Count(err.Error(), srv.URL), "url repeated in %q", err)
	assert.True(t, strings.HasPrefix(err.Error(), "fetch stage: fetch "+srv.URL+": "), err.Error())
	assert.NoFileExists(t, filepath.Join(dir, "summary_report.txt"))
}

func TestRun_MalformedInputAborts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.data")
	require.NoError(t, os.WriteFile(input, []byte("5.1,3.5,1.4,0.2,Iris-setosa\n4.9,3.0,1.4,Iris-setosa\n"), 0o644))

	_, err := New(Config{InputPath: input, OutputDir: dir}, nil, nil).Run(context.Background())
	var perr *dataset.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 2, perr.Line)
	assert.NoFileExists(t, filepath.Join(dir, "summary_report.txt"))
}

func TestRun_InfiniteValueAborts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "inf.data")
	require.NoError(t, os.WriteFile(input, []byte("5.1,3.5,1.4,0.2,Iris-setosa\n4.9,3.0,Infinity,0.2,Iris-setosa\n"), 0o644))

	_, err := New(Config{InputPath: input, OutputDir: dir, AllowMissing: true}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, dataset.ErrNonFinite)
	assert.NoFileExists(t, filepath.Join(dir, "summary_report.txt"))
}

func TestRun_MissingInputWithoutURL(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{InputPath: filepath.Join(dir, "nope.data"), OutputDir: dir}, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun_DisplayFailureIsAWarning(t *testing.T) {
	dir := t.TempDir()
	input := copyIris(t, dir)
	logger, hook := test.NewNullLogger()
	var stdout bytes.Buffer

	var shown []string
	orig := show
	t.Cleanup(func() { show = orig })
	show = func(paths []string) error {
		shown = paths
		return errors.New("no viewer")
	}

	res, err := New(Config{
		InputPath:  input,
		OutputDir:  dir,
		SkipReport: true,
		Display:    true,
	}, logger, &stdout).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.ReportPath)
	assert.Equal(t, res.Charts, shown)
	assert.Contains(t, stdout.String(), "⚠ Warning: no viewer")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["stage"] == "display" {
			warned = true
		}
	}
	assert.True(t, warned)
}

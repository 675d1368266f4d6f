package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, perfPath string) string {
	t.Helper()
	cfg := "logging:\n  level: error\nperformance:\n  path: " + perfPath + "\nreport:\n  output_path: " + filepath.Join(dir, "out.png") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRunWithSyntheticFallback(t *testing.T) {
	t.Setenv("BLS_API_KEY", "")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, filepath.Join(dir, "missing.csv"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Regression of performance on index (15 aligned rows)")
	assert.Contains(t, stdout.String(), "Plot saved to "+filepath.Join(dir, "out.png"))
	assert.Contains(t, stderr.String(), "using synthetic performance data")

	f, err := os.Open(filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestRunWithFileAndOutFlag(t *testing.T) {
	t.Setenv("BLS_API_KEY", "")
	dir := t.TempDir()
	perf := filepath.Join(dir, "perf.csv")
	require.NoError(t, os.WriteFile(perf, []byte("date,value\n2021-01-01,10\n2021-06-01,12\n2021-12-01,15\n"), 0o644))
	cfgPath := writeConfig(t, dir, filepath.Join(dir, "unused.csv"))
	out := filepath.Join(dir, "custom.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-performance", perf, "-out", out}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "(3 aligned rows)")
	assert.FileExists(t, out)
}

func TestRunLiveWithoutKeyUsesSample(t *testing.T) {
	t.Setenv("BLS_API_KEY", "")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, filepath.Join(dir, "missing.csv"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-live"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "BLS_API_KEY not set")
}

func TestRunFailsOnBadInput(t *testing.T) {
	t.Setenv("BLS_API_KEY", "")
	dir := t.TempDir()
	perf := filepath.Join(dir, "perf.csv")
	require.NoError(t, os.WriteFile(perf, []byte("date,value\n2021-01-01,abc\n"), 0o644))
	cfgPath := writeConfig(t, dir, perf)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "error:")
	assert.Contains(t, stderr.String(), "not a number")
	assert.Empty(t, stdout.String())
	assert.NoFileExists(t, filepath.Join(dir, "out.png"))
}

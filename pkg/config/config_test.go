package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "CUUR0000SA0", cfg.Provider.SeriesID)
	assert.Equal(t, 2, cfg.Pipeline.MinRows)
	assert.Equal(t, "division_performance.csv", cfg.Performance.Path)
	assert.True(t, cfg.Performance.SyntheticFallback)
	assert.Equal(t, "cpi_vs_division.png", cfg.Report.OutputPath)
	assert.Equal(t, 4, cfg.Report.Decimals)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.Kafka.Brokers)
	assert.False(t, cfg.HasAPIKey())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
environment: test
server:
  port: 9090
pipeline:
  min_rows: 5
performance:
  synthetic_fallback: false
report:
  decimals: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Pipeline.MinRows)
	assert.False(t, cfg.Performance.SyntheticFallback)
	assert.Equal(t, 2, cfg.Report.Decimals)
	// untouched sections keep their defaults
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "min rows below two", yaml: "pipeline:\n  min_rows: 1\n"},
		{name: "bad log level", yaml: "logging:\n  level: loud\n"},
		{name: "inverted years", yaml: "provider:\n  start_year: 2024\n  end_year: 2020\n"},
		{name: "events without brokers", yaml: "events:\n  enabled: true\n  kafka:\n    brokers: []\n"},
		{name: "malformed yaml", yaml: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("BLS_API_KEY", "secret-key")
	t.Setenv("CPIREG_PORT", "9191")
	t.Setenv("CPIREG_LOG_LEVEL", "DEBUG")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadWithEnv("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, "secret-key", cfg.Provider.APIKey)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Kafka.Brokers)
	assert.False(t, cfg.Cache.Redis.Enabled)
}

func TestLoadWithEnvReadsDotEnv(t *testing.T) {
	t.Setenv("BLS_API_KEY", "")
	require.NoError(t, os.Unsetenv("BLS_API_KEY"))
	envFile := writeFile(t, ".env", "BLS_API_KEY=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("BLS_API_KEY") })

	cfg, err := LoadWithEnv("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Provider.APIKey)
}

func TestLoadWithEnvBadPort(t *testing.T) {
	t.Setenv("CPIREG_PORT", "eighty")
	_, err := LoadWithEnv("", filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "x", cfg.Engine.Variable)
	assert.Equal(t, 20, cfg.Engine.MaxPasses)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SYMDIFF_PORT", "9090")
	t.Setenv("SYMDIFF_VARIABLE", "t")
	t.Setenv("SYMDIFF_SECOND_DERIVATIVE", "true")
	t.Setenv("SYMDIFF_LOG_LEVEL", "debug")
	t.Setenv("SYMDIFF_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "t", cfg.Engine.Variable)
	assert.True(t, cfg.Engine.SecondDerivative)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("SYMDIFF_MAX_PASSES", "many")
	_, err := Load()
	assert.Error(t, err)

	assert.Equal(t, Default(), LoadOrDefault())
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symdiff.yaml")
	data := `
server:
  port: "7000"
engine:
  variable: y
  max_passes: 5
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "y", cfg.Engine.Variable)
	assert.Equal(t, 5, cfg.Engine.MaxPasses)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symdiff.toml")
	data := `
[server]
host = "127.0.0.1"

[engine]
second_derivative = true
sample_workers = 4

[rate_limit]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.True(t, cfg.Engine.SecondDerivative)
	assert.Equal(t, 4, cfg.Engine.SampleWorkers)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "symdiff.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1"), 0o600))
	_, err = LoadFile(ini)
	assert.ErrorContains(t, err, "unsupported config format")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport ="), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("engine:\n  variable: e\n"), 0o600))
	_, err = LoadFile(invalid)
	assert.ErrorContains(t, err, "engine.variable")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "0"
	cfg.Engine.Variable = "xy"
	cfg.Engine.MaxPasses = 0
	cfg.Engine.SampleWorkers = -1
	cfg.Logging.Level = "loud"
	cfg.RateLimit.RequestsPerSecond = 0
	cfg.RateLimit.Burst = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 7)
}

func TestValidate_IgnoresRateLimitWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	assert.NoError(t, cfg.Validate())
}

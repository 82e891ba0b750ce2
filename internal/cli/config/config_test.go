package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "xdevs", cfg.Telemetry.ServiceName)
	assert.Equal(t, 0.0, cfg.Simulation.TStart)
	assert.Equal(t, 100.0, cfg.Simulation.TStop)
}

func TestLoadReadsXdevsYAML(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	content := "log_level: debug\nsimulation:\n  t_stop: 42\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xdevs.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 42.0, cfg.Simulation.TStop)
}

func TestValidateRejectsBackwardsWindow(t *testing.T) {
	cfg := &Config{
		LogLevel:   "info",
		Telemetry:  TelemetryConfig{ServiceName: "xdevs"},
		Simulation: SimulationConfig{TStart: 10, TStop: 5},
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestWatcherReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path := filepath.Join(dir, "xdevs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  max_jitter: 0s\n"), 0o644))

	w, err := NewWatcher(nil)
	require.NoError(t, err)

	reloaded := make(chan *Config, 1)
	w.Watch(func(cfg *Config) { reloaded <- cfg })

	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  max_jitter: 5s\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "5s", cfg.Simulation.MaxJitter)
	case <-time.After(2 * time.Second):
		t.Fatal("config change was not observed within the timeout")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := &Config{
		LogLevel:   "info",
		Telemetry:  TelemetryConfig{ServiceName: "xdevs"},
		Simulation: SimulationConfig{TStart: 0, TStop: 100},
	}
	require.NoError(t, cfg.Validate())
}

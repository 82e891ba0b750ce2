package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/internal/cli/config"
)

func newTestConfig() *config.Config {
	return &config.Config{
		LogLevel:   "info",
		Telemetry:  config.TelemetryConfig{Enabled: false, ServiceName: "xdevs-test"},
		Simulation: config.SimulationConfig{TStart: 0, TStop: 10},
	}
}

func TestRootCommandStructure(t *testing.T) {
	cmd := NewRootCommand(newTestConfig(), zap.NewNop(), "test", "abc123", "2026-01-01")
	require.NotNil(t, cmd)

	assert.Equal(t, "xdevs", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.True(t, cmd.HasSubCommands())

	for _, name := range []string{"run", "config", "version"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "expected subcommand %q", name)
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := NewRootCommand(newTestConfig(), zap.NewNop(), "test", "abc123", "2026-01-01")
	flags := cmd.PersistentFlags()
	require.NotNil(t, flags)

	for _, name := range []string{"config", "log-level", "no-color", "verbose"} {
		assert.NotNil(t, flags.Lookup(name), "expected persistent flag %q", name)
	}
}

func TestRootCommandVersionCommandRuns(t *testing.T) {
	cmd := NewRootCommand(newTestConfig(), zap.NewNop(), "1.0.0", "abc123", "2026-01-01")
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
}

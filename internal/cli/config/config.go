// Package config loads the xdevs CLI's layered configuration: flags
// override environment variables (XDEVS_*), which override an
// xdevs.yaml file, which override the defaults set here.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config represents the CLI configuration.
type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	ConfigFile string           `mapstructure:"config_file"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// TelemetryConfig controls whether CLI runs record Prometheus metrics.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// SimulationConfig holds the defaults `xdevs run` falls back to when a
// flag isn't given explicitly.
type SimulationConfig struct {
	TimeScale string  `mapstructure:"time_scale"` // parsed with time.ParseDuration; wall time per virtual-time unit
	MaxJitter string  `mapstructure:"max_jitter"` // parsed with time.ParseDuration; 0 disables jitter detection
	TStart    float64 `mapstructure:"t_start"`
	TStop     float64 `mapstructure:"t_stop"`
}

// newViper builds a Viper instance pointed at the search path and
// defaults xdevs.yaml is loaded from, shared by Load and NewWatcher so
// a Watcher built afterwards watches the same file Load resolved.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("xdevs")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.xdevs")
	v.AddConfigPath("/etc/xdevs")

	v.SetEnvPrefix("XDEVS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from environment variables, an xdevs.yaml
// file, and the defaults below, in that priority order. Command-line
// flags are not consulted here: `xdevs run` uses the loaded values as
// its flag defaults, so an explicitly given flag overrides them.
func Load() (*Config, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.service_name", "xdevs")

	v.SetDefault("simulation.time_scale", "1s")
	v.SetDefault("simulation.max_jitter", "0s")
	v.SetDefault("simulation.t_start", 0.0)
	v.SetDefault("simulation.t_stop", 100.0)
}

// Watcher hot-reloads xdevs.yaml via Viper's fsnotify-backed file
// watch, grounded on the teacher's EnhancedConfig.WatchConfig/
// OnConfigChange. Unlike Load, a Watcher is long-lived: it is built
// once and kept alive for as long as a caller wants to react to config
// file edits, which is why it carries its own Viper instance rather
// than reusing Load's one-shot result.
type Watcher struct {
	v      *viper.Viper
	logger *zap.Logger
}

// NewWatcher builds a Watcher against the same search path and defaults
// Load uses. logger may be nil. The config file is parsed once up front
// so the watcher's own Unmarshal baseline matches Load's.
func NewWatcher(logger *zap.Logger) (*Watcher, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{v: v, logger: logger}, nil
}

// Watch starts watching the resolved xdevs.yaml for changes and calls
// onChange with the freshly reloaded Config each time the file is
// rewritten. A change that fails to unmarshal is logged and dropped,
// leaving the previously delivered Config in effect; onChange is never
// called with a half-applied configuration.
func (w *Watcher) Watch(onChange func(*Config)) {
	w.v.WatchConfig()
	w.v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := w.v.Unmarshal(&cfg); err != nil {
			w.logger.Warn("config reload failed, keeping previous configuration",
				zap.String("file", e.Name), zap.Error(err))
			return
		}
		w.logger.Info("config reloaded", zap.String("file", e.Name))
		onChange(&cfg)
	})
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("log_level", c.LogLevel)
	v.Set("telemetry.enabled", c.Telemetry.Enabled)
	v.Set("telemetry.service_name", c.Telemetry.ServiceName)
	v.Set("simulation.time_scale", c.Simulation.TimeScale)
	v.Set("simulation.max_jitter", c.Simulation.MaxJitter)
	v.Set("simulation.t_start", c.Simulation.TStart)
	v.Set("simulation.t_stop", c.Simulation.TStop)

	return v.WriteConfig()
}

// Validate checks that the configuration is complete enough to run.
func (c *Config) Validate() error {
	if c.LogLevel == "" {
		return fmt.Errorf("log_level is required")
	}
	if c.Telemetry.ServiceName == "" {
		return fmt.Errorf("telemetry.service_name is required")
	}
	if c.Simulation.TStop <= c.Simulation.TStart {
		return fmt.Errorf("simulation.t_stop must be greater than simulation.t_start")
	}
	return nil
}

package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iscar-ucm/xdevs-go/internal/cli/config"
)

// NewConfigCommand creates the configuration management command.
func NewConfigCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings:
  • View current configuration
  • Set a configuration value and persist it to xdevs.yaml
  • Validate configuration`,
	}

	configCmd.AddCommand(newConfigViewCommand(cfg, logger))
	configCmd.AddCommand(newConfigSetCommand(cfg, logger))
	configCmd.AddCommand(newConfigValidateCommand(cfg, logger))

	return configCmd
}

func newConfigViewCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			color.Cyan("Current Configuration:")
			fmt.Println(string(data))
			return nil
		},
	}

	return cmd
}

// configKeys lists the settings newConfigSetCommand accepts, each
// with a setter that mutates cfg in place.
var configKeys = map[string]func(cfg *config.Config, value string) error{
	"log_level": func(cfg *config.Config, value string) error {
		cfg.LogLevel = value
		return nil
	},
	"simulation.t_start": func(cfg *config.Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("simulation.t_start: %w", err)
		}
		cfg.Simulation.TStart = v
		return nil
	},
	"simulation.t_stop": func(cfg *config.Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("simulation.t_stop: %w", err)
		}
		cfg.Simulation.TStop = v
		return nil
	},
	"simulation.time_scale": func(cfg *config.Config, value string) error {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("simulation.time_scale: %w", err)
		}
		cfg.Simulation.TimeScale = value
		return nil
	},
	"simulation.max_jitter": func(cfg *config.Config, value string) error {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("simulation.max_jitter: %w", err)
		}
		cfg.Simulation.MaxJitter = value
		return nil
	},
}

func newConfigSetCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value and persist it to a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("specify key and value")
			}

			setter, ok := configKeys[args[0]]
			if !ok {
				return fmt.Errorf("unknown config key %q", args[0])
			}
			if err := setter(cfg, args[1]); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("saving config to %s: %w", path, err)
			}

			color.Green("✓ Configuration updated: %s = %s (saved to %s)", args[0], args[1], path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "xdevs.yaml", "config file to write")

	return cmd
}

func newConfigValidateCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				color.Red("✗ Configuration validation failed: %v", err)
				os.Exit(1)
			}

			color.Green("✓ Configuration is valid")
			return nil
		},
	}

	return cmd
}

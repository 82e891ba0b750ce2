package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/internal/cli/commands"
	"github.com/iscar-ucm/xdevs-go/internal/cli/config"
	"github.com/iscar-ucm/xdevs-go/internal/cli/telemetry"
)

type startTimeKey struct{}

// NewRootCommand creates the root command for the xdevs CLI.
func NewRootCommand(cfg *config.Config, logger *zap.Logger, version, commit, date string) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "xdevs",
		Short: "xdevs - Parallel DEVS discrete-event simulation CLI",
		Long: color.New(color.FgCyan, color.Bold).Sprint(`
╔═══════════════════════════════════════════════════════════════╗
║                       xdevs CLI                              ║
║        Parallel DEVS discrete-event simulation kernel         ║
╚═══════════════════════════════════════════════════════════════╝

Drive atomic and coupled DEVS models virtual-time or real-time,
and inspect the resulting run report.
`),
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.WithValue(cmd.Context(), startTimeKey{}, time.Now())
			cmd.SetContext(ctx)

			logger.Info("command started",
				zap.String("command", cmd.CommandPath()),
				zap.Strings("args", args),
			)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			start, ok := cmd.Context().Value(startTimeKey{}).(time.Time)
			if !ok {
				start = time.Now()
			}
			duration := time.Since(start)

			telemetry.RecordCommandExecution(cmd.Context(), cmd.CommandPath(), duration, nil)

			logger.Info("command completed",
				zap.String("command", cmd.CommandPath()),
				zap.Duration("duration", duration),
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.xdevs/xdevs.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	rootCmd.AddCommand(commands.NewRunCommand(cfg, logger))
	rootCmd.AddCommand(commands.NewConfigCommand(cfg, logger))
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))

	return rootCmd
}

// Package telemetry records per-command Prometheus metrics and tags
// each CLI invocation with a run ID. Metrics are kept in-process,
// reachable through Gather, and are not served over HTTP.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/internal/cli/config"
)

// Metrics holds the Prometheus instruments a CLI run updates.
type Metrics struct {
	commandCount *prometheus.CounterVec
	errorCount   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	registry     *prometheus.Registry
}

var (
	logger  *zap.Logger
	metrics *Metrics
	runID   string
)

// Init initializes telemetry for the CLI and returns a shutdown
// function. When cfg.Enabled is false it returns a no-op shutdown.
func Init(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return nil, err
	}

	runID = uuid.NewString()

	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		commandCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "xdevs",
			Name:        "command_total",
			Help:        "Number of CLI command invocations.",
			ConstLabels: prometheus.Labels{"run_id": runID},
		}, []string{"command"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "xdevs",
			Name:        "command_errors_total",
			Help:        "Number of CLI command invocations that returned an error.",
			ConstLabels: prometheus.Labels{"run_id": runID},
		}, []string{"command"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "xdevs",
			Name:        "command_duration_seconds",
			Help:        "CLI command execution time.",
			ConstLabels: prometheus.Labels{"run_id": runID},
		}, []string{"command"}),
	}
	registry.MustRegister(m.commandCount, m.errorCount, m.duration)
	metrics = m

	logger.Info("telemetry initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("run_id", runID),
	)

	return func(context.Context) error {
		if logger != nil {
			return logger.Sync()
		}
		return nil
	}, nil
}

// RecordCommandExecution records metrics for one command execution.
func RecordCommandExecution(ctx context.Context, command string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	metrics.commandCount.WithLabelValues(command).Inc()
	metrics.duration.WithLabelValues(command).Observe(duration.Seconds())

	if err != nil {
		metrics.errorCount.WithLabelValues(command).Inc()
		if logger != nil {
			logger.Error("command execution failed",
				zap.String("command", command),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		}
		return
	}

	if logger != nil {
		logger.Info("command executed successfully",
			zap.String("command", command),
			zap.Duration("duration", duration),
		)
	}
}

// Gather returns the current metric families for in-process inspection.
// `xdevs run` does not include them in its report, in any format.
func Gather() ([]*prometheus.MetricFamily, error) {
	if metrics == nil {
		return nil, nil
	}
	return metrics.registry.Gather()
}

// RunID returns the UUID tagging the current CLI invocation, or the
// empty string if telemetry was never initialized.
func RunID() string {
	return runID
}

// GetLogger returns the telemetry logger.
func GetLogger() *zap.Logger {
	return logger
}

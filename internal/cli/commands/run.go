package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iscar-ucm/xdevs-go/devs"
	"github.com/iscar-ucm/xdevs-go/devs/pacer"
	"github.com/iscar-ucm/xdevs-go/internal/cli/config"
	"github.com/iscar-ucm/xdevs-go/internal/cli/telemetry"
	"github.com/iscar-ucm/xdevs-go/models/bloom"
	"github.com/iscar-ucm/xdevs-go/models/gpt"
)

// NewRunCommand creates the `run` command, which drives one of the
// bundled models from t-start to t-stop, virtual-time or real-time,
// and prints a run report.
func NewRunCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var (
		modelName     string
		period        float64
		service       float64
		tStart        float64
		tStop         float64
		realtime      bool
		timeScale     time.Duration
		maxJitter     time.Duration
		watchConfig   bool
		inputPath     string
		output        string
		lat, lon      float64
		size          float64
		liveResetRate float64
		format        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation model and print its report",
		Long: `Drive one of the bundled models from --t-start to --t-stop and
print a report of the run:

  gpt   generator/processor/transducer network, flat coupling
  efp   the same network, nested one level (generator+transducer, then +processor)
  bloom algal-bloom model driven by a CSV feed of driving variables`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tStop <= tStart {
				return fmt.Errorf("--t-stop must be greater than --t-start")
			}

			runCfg := runConfig{
				tStart: tStart, tStop: tStop,
				realtime: realtime, timeScale: timeScale, maxJitter: maxJitter, watchConfig: watchConfig,
				period: period, service: service,
				inputPath: inputPath, outputPath: output,
				lat: lat, lon: lon, size: size,
				liveResetRate: liveResetRate,
				logger:        logger,
			}

			start := time.Now()
			report, err := runModel(cmd.Context(), modelName, runCfg)
			if report.Model == "" {
				report.Model = modelName
			}
			report.RunID = telemetry.RunID()
			report.Elapsed = time.Since(start)
			if err != nil {
				report.Notes = err.Error()
				_ = printReport(report, format)
				return err
			}

			return printReport(report, format)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "gpt", "model to run: gpt, efp, bloom")
	cmd.Flags().Float64Var(&period, "period", 1.0, "generator period (gpt/efp)")
	cmd.Flags().Float64Var(&service, "service", 1.5, "processor service time (gpt/efp)")
	cmd.Flags().Float64Var(&tStart, "t-start", cfg.Simulation.TStart, "simulation start time")
	cmd.Flags().Float64Var(&tStop, "t-stop", cfg.Simulation.TStop, "simulation stop time (transducer observation window for gpt/efp)")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "drive the model in real (wall-clock) time instead of as fast as possible")
	defaultTimeScale, err := time.ParseDuration(cfg.Simulation.TimeScale)
	if err != nil {
		defaultTimeScale = time.Second
	}
	defaultMaxJitter, err := time.ParseDuration(cfg.Simulation.MaxJitter)
	if err != nil {
		defaultMaxJitter = 0
	}
	cmd.Flags().DurationVar(&timeScale, "time-scale", defaultTimeScale, "wall time per virtual-time unit, when --realtime is set")
	cmd.Flags().DurationVar(&maxJitter, "max-jitter", defaultMaxJitter, "abort the run if wall-clock drift exceeds this, when --realtime is set (0 disables)")
	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "hot-reload simulation.max_jitter from xdevs.yaml while --realtime is running")
	cmd.Flags().StringVar(&inputPath, "input", "", "driving-variable CSV path (bloom)")
	cmd.Flags().StringVar(&output, "output", "bloom-output.csv", "output CSV path (bloom)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "initial bloom latitude (bloom)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "initial bloom longitude (bloom)")
	cmd.Flags().Float64Var(&size, "size", 0, "initial bloom size (bloom)")
	cmd.Flags().Float64Var(&liveResetRate, "live-reset-rate", 0, "inject extra RESET commands into the bloom model at this rate (events/sec) while --realtime is running (0 disables)")
	cmd.Flags().StringVar(&format, "format", "table", "report format: table, json, yaml")

	return cmd
}

type runConfig struct {
	tStart, tStop         float64
	realtime              bool
	timeScale, maxJitter  time.Duration
	watchConfig           bool
	period, service       float64
	inputPath, outputPath string
	lat, lon, size        float64
	liveResetRate         float64
	logger                *zap.Logger
}

func runModel(ctx context.Context, modelName string, rc runConfig) (RunReport, error) {
	switch modelName {
	case "gpt":
		return runGPT(rc)
	case "efp":
		return runEFP(rc)
	case "bloom":
		return runBloom(rc)
	default:
		return RunReport{}, fmt.Errorf("unknown model %q: expected gpt, efp or bloom", modelName)
	}
}

func (rc runConfig) mode() string {
	if rc.realtime {
		return "realtime"
	}
	return "virtual"
}

// simulate drives model from t-start to t-stop, virtual-time or
// real-time depending on rc.realtime. hook, if non-nil, overrides the
// real-time wait strategy (e.g. a WaitEvent hook racing a live input
// injector); it is ignored in virtual-time mode.
func (rc runConfig) simulate(model devs.Simulator, hook pacer.Hook) (float64, time.Duration, error) {
	if !rc.realtime {
		t, err := devs.Simulate(model, rc.tStart, rc.tStop, &devs.Config{Logger: rc.logger})
		return t, 0, err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" running real-time from t=%.2f to t=%.2f ...", rc.tStart, rc.tStop)
	s.Start()
	defer s.Stop()

	pacerCfg := &pacer.Config{
		TimeScale: rc.timeScale,
		MaxJitter: rc.maxJitter,
		Logger:    rc.logger,
		Hook:      hook,
	}

	if rc.watchConfig {
		watcher, err := config.NewWatcher(rc.logger)
		if err != nil {
			return 0, 0, fmt.Errorf("--watch-config: %w", err)
		}
		updates := make(chan time.Duration, 1)
		watcher.Watch(func(cfg *config.Config) {
			d, err := time.ParseDuration(cfg.Simulation.MaxJitter)
			if err != nil {
				rc.logger.Warn("ignoring reloaded simulation.max_jitter", zap.Error(err))
				return
			}
			select {
			case updates <- d:
			default:
				<-updates
				updates <- d
			}
		})
		pacerCfg.MaxJitterUpdates = updates
	}

	t, drift, err := pacer.Run(model, rc.tStart, rc.tStop, pacerCfg)
	return t, drift, err
}

func runGPT(rc runConfig) (RunReport, error) {
	g := gpt.NewGPT(rc.period, rc.service, rc.tStop)
	t, drift, err := rc.simulate(g, nil)

	report := RunReport{Model: "gpt", Mode: rc.mode(), TStart: rc.tStart, TStop: rc.tStop, TReached: t, MaxDrift: drift}
	if err != nil {
		return report, err
	}

	rep := g.Report()
	report.NGenerated = &rep.NGenerated
	report.NProcessed = &rep.NProcessed
	acceptance, throughput := rep.Acceptance(), rep.Throughput(rc.tStop)
	report.Acceptance = &acceptance
	report.Throughput = &throughput
	return report, nil
}

func runEFP(rc runConfig) (RunReport, error) {
	e := gpt.NewEFP(rc.period, rc.service, rc.tStop)
	t, drift, err := rc.simulate(e, nil)

	report := RunReport{Model: "efp", Mode: rc.mode(), TStart: rc.tStart, TStop: rc.tStop, TReached: t, MaxDrift: drift}
	if err != nil {
		return report, err
	}

	rep := e.Report()
	report.NGenerated = &rep.NGenerated
	report.NProcessed = &rep.NProcessed
	acceptance, throughput := rep.Acceptance(), rep.Throughput(rc.tStop)
	report.Acceptance = &acceptance
	report.Throughput = &throughput
	return report, nil
}

func runBloom(rc runConfig) (RunReport, error) {
	if rc.inputPath == "" {
		return RunReport{Model: "bloom", Mode: rc.mode()}, fmt.Errorf("--input is required for the bloom model")
	}

	sys, err := bloom.NewSystem("cli-run", rc.lat, rc.lon, rc.size, rc.inputPath, rc.outputPath)
	if err != nil {
		return RunReport{Model: "bloom", Mode: rc.mode()}, err
	}

	var hook pacer.Hook
	if rc.realtime && rc.liveResetRate > 0 {
		events := make(chan func())
		limiter := pacer.NewInputLimiter(events, rc.liveResetRate, 1)
		hook = pacer.NewWaitEvent(rc.timeScale, events)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			for {
				err := limiter.Inject(ctx, func() {
					if err := sys.Model.In.Cmd.AddValue("RESET"); err != nil {
						rc.logger.Warn("dropped live RESET command", zap.Error(err))
					}
				})
				if err != nil {
					return
				}
			}
		}()
	}

	t, drift, simErr := rc.simulate(sys, hook)
	closeErr := bloom.Close(sys.Feed)

	report := RunReport{
		Model: "bloom", Mode: rc.mode(), TStart: rc.tStart, TStop: rc.tStop, TReached: t, MaxDrift: drift,
		Notes: fmt.Sprintf("%d driving-variable rows read, output written to %s", bloom.RowsRead(sys.Feed), rc.outputPath),
	}

	if simErr != nil {
		return report, simErr
	}
	return report, closeErr
}

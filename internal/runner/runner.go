// Package runner wires a resolved configuration into one complete check:
// probing, aggregation, export and the console report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/catalog"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/config"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/influx"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/orchestrator"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/summary"
)

// Result is what a finished run produced.
type Result struct {
	Outcomes    []client.CallOutcome
	Statistics  []summary.MethodStatistic
	CSVPath     string
	JSONPath    string
	Interrupted bool
}

type Runner struct {
	cfg       *config.Config
	endpoints []client.Endpoint
	methods   []client.Method
	logger    logrus.FieldLogger
	writer    *summary.Writer
	animate   bool
	dialer    client.Dialer
}

type Option func(*Runner)

// WithAnimation turns the live spinner on or off.
func WithAnimation(animate bool) Option {
	return func(r *Runner) { r.animate = animate }
}

func WithDialer(d client.Dialer) Option {
	return func(r *Runner) { r.dialer = d }
}

func New(cfg *config.Config, endpoints []client.Endpoint, methods []client.Method, logger logrus.FieldLogger, opts ...Option) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Runner{
		cfg:       cfg,
		endpoints: endpoints,
		methods:   methods,
		logger:    logger,
		writer:    summary.NewWriter(cfg.Output),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run probes every endpoint and reports the results. An interrupted run still
// aggregates and exports whatever was recorded. Failing to write the CSV is an
// error; every other export problem is only a warning.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	mode, err := orchestrator.ParseMode(r.cfg.Mode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := influx.RunID(start)

	// Export outlives the run context so an interrupted run still reaches InfluxDB.
	metrics, err := influx.NewClient(context.WithoutCancel(ctx), r.cfg.Influx.Export(), runID, r.logger)
	if err != nil {
		cli.Warnf("InfluxDB export disabled: %v", err)
	}

	cli.PrintPlan(cli.Plan{
		Endpoints:   r.endpoints,
		MethodCount: len(r.methods),
		Repetitions: r.cfg.Repetitions,
		Mode:        string(mode),
		Exhaustive:  r.cfg.Exhaustive,
		StrictIDs:   r.cfg.StrictIDs,
		Output:      r.writer.CSVPath(),
		Influx:      metrics != nil,
	})

	dispatcher := client.NewDispatcher(client.Options{
		HTTPTimeout: r.cfg.HTTPTimeoutDuration,
		WSTimeout:   r.cfg.WSTimeoutDuration,
		StrictIDs:   r.cfg.StrictIDs,
		PoolSize:    r.cfg.Workers,
		Dialer:      r.dialer,
		Logger:      r.logger,
	})

	var policy orchestrator.AbortPolicy = orchestrator.FirstProbePolicy{}
	if r.cfg.Exhaustive {
		policy = orchestrator.ExhaustivePolicy{}
	}

	progress := cli.NewProgressSpinner(r.animate, r.cfg.Repetitions)
	orch := orchestrator.New(dispatcher, orchestrator.Config{
		Repetitions: r.cfg.Repetitions,
		Throttle:    r.cfg.ThrottleDuration,
		Mode:        mode,
		Workers:     r.cfg.Workers,
		Policy:      policy,
	}, orchestrator.WithObserver(progress), orchestrator.WithLogger(r.logger))

	cli.Section("Testing endpoints")
	progress.Start(len(r.endpoints))
	outcomes, runErr := orch.Run(ctx, r.endpoints, r.methods)
	progress.Stop()

	result := &Result{Outcomes: outcomes}
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("run failed: %w", runErr)
		}
		result.Interrupted = true
		cli.Warnf("Interrupted, reporting %d recorded calls", len(outcomes))
	}

	result.Statistics = summary.Aggregate(outcomes)

	if result.CSVPath, err = r.writer.ExportCSV(result.Statistics); err != nil {
		return result, err
	}
	cli.Successf("Results saved to %s", result.CSVPath)

	meta := summary.RunMeta{
		RunID:       runID,
		SessionID:   uuid.NewString(),
		Timestamp:   start.UTC(),
		DurationMs:  time.Since(start).Milliseconds(),
		Repetitions: r.cfg.Repetitions,
		Mode:        string(mode),
		Interrupted: result.Interrupted,
		Endpoints:   r.endpoints,
		Methods:     catalog.Names(r.methods),
	}
	if result.JSONPath, err = r.writer.ExportJSON(summary.NewReport(meta, result.Statistics)); err != nil {
		cli.Warnf("Failed to export JSON report: %v", err)
	} else {
		cli.Infof("Report: %s", result.JSONPath)
	}

	summary.PrintStatistics(result.Statistics)
	summary.PrintIssues(result.Statistics)
	printOverall(outcomes)

	if metrics != nil {
		metrics.WriteOutcomes(outcomes)
		metrics.WriteStatistics(result.Statistics)
		metrics.WriteRunMeta(meta)
		if err = metrics.Close(); err != nil {
			cli.Warnf("%v", err)
		}
		if failed := metrics.Failures(); failed > 0 {
			cli.Warnf("InfluxDB export incomplete: %d batches failed (run: %s)", failed, runID)
		} else {
			cli.Infof("Exported metrics to InfluxDB (run: %s)", runID)
		}
	}

	cli.Blank()
	cli.Infof("Finished in %s", cli.FormatDuration(time.Since(start)))

	return result, nil
}

func printOverall(outcomes []client.CallOutcome) {
	if len(outcomes) == 0 {
		return
	}
	ok := 0
	for _, out := range outcomes {
		if out.Success {
			ok++
		}
	}
	cli.Blank()
	cli.Infof("Overall success rate %s (%d/%d calls)", cli.FormatRate(float64(ok)/float64(len(outcomes))), ok, len(outcomes))
}

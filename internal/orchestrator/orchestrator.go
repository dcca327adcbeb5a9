package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

const (
	DefaultRepetitions = 10
	DefaultThrottle    = 100 * time.Millisecond
	DefaultWorkers     = 4
)

type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeConcurrent Mode = "concurrent"
)

func ParseMode(value string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return ModeSequential, nil
	case ModeSequential, ModeConcurrent:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want sequential or concurrent)", value)
	}
}

// Dispatcher performs single attempts and owns the connections they use.
type Dispatcher interface {
	Dispatch(ctx context.Context, ep client.Endpoint, m client.Method) client.CallOutcome
	Close() error
}

type Config struct {
	Repetitions int
	Throttle    time.Duration
	Mode        Mode
	Workers     int
	Policy      AbortPolicy
}

type Option func(*Orchestrator)

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator drives every (endpoint, method, attempt) of a run through a
// Dispatcher. An Orchestrator runs once: Run closes the dispatcher.
type Orchestrator struct {
	dispatcher Dispatcher
	cfg        Config
	observer   Observer
	logger     logrus.FieldLogger
}

func New(d Dispatcher, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Repetitions < 1 {
		cfg.Repetitions = 1
	}
	if cfg.Throttle < 0 {
		cfg.Throttle = 0
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSequential
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Policy == nil {
		cfg.Policy = FirstProbePolicy{}
	}

	o := &Orchestrator{
		dispatcher: d,
		cfg:        cfg,
		observer:   nopObserver{},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run tests endpoints in order and returns every recorded outcome in issue
// order. On cancellation it returns what was recorded so far along with the
// context error. The dispatcher is closed on every return path.
func (o *Orchestrator) Run(ctx context.Context, endpoints []client.Endpoint, methods []client.Method) (outcomes []client.CallOutcome, err error) {
	defer func() {
		if closeErr := o.dispatcher.Close(); closeErr != nil {
			o.logger.WithError(closeErr).Warn("failed to release connections")
		}
	}()

	for i, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		o.observer.EndpointStarted(ep, i, len(endpoints))
		o.logger.WithFields(logrus.Fields{
			"endpoint":  ep.Name,
			"address":   ep.Address,
			"transport": ep.Kind().String(),
		}).Debug("testing endpoint")

		var epOutcomes []client.CallOutcome
		if o.cfg.Mode == ModeConcurrent {
			epOutcomes, err = o.runEndpointConcurrent(ctx, ep, methods)
		} else {
			epOutcomes, err = o.runEndpoint(ctx, ep, methods)
		}
		outcomes = append(outcomes, epOutcomes...)
		if err != nil {
			return outcomes, err
		}
	}

	return outcomes, nil
}

func (o *Orchestrator) runEndpoint(ctx context.Context, ep client.Endpoint, methods []client.Method) ([]client.CallOutcome, error) {
	var outcomes []client.CallOutcome
	for mi, m := range methods {
		attempts, err := o.runMethod(ctx, ep, mi, m)
		outcomes = append(outcomes, attempts...)
		o.observer.MethodFinished(ep, m, mi, len(methods), attempts)
		if err != nil {
			return outcomes, err
		}

		if o.cfg.Policy.SkipEndpoint(ep, mi, attempts) {
			o.skip(ep, len(methods)-mi-1)
			break
		}
	}
	return outcomes, nil
}

func (o *Orchestrator) runMethod(ctx context.Context, ep client.Endpoint, mi int, m client.Method) ([]client.CallOutcome, error) {
	attempts := make([]client.CallOutcome, 0, o.cfg.Repetitions)
	for attempt := range o.cfg.Repetitions {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		out := o.dispatcher.Dispatch(ctx, ep, m)
		out.Attempt = attempt
		attempts = append(attempts, out)

		if o.cfg.Policy.StopMethod(ep, mi, attempt, out) {
			o.logger.WithFields(logrus.Fields{
				"endpoint": ep.Name,
				"method":   m.Name,
				"error":    out.Error,
			}).Debug("first probe failed, not repeating method")
			break
		}

		if err := o.pause(ctx); err != nil {
			return attempts, err
		}
	}
	return attempts, nil
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.Throttle <= 0 {
		return nil
	}
	timer := time.NewTimer(o.cfg.Throttle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) skip(ep client.Endpoint, remaining int) {
	o.observer.EndpointSkipped(ep, remaining)
	o.logger.WithFields(logrus.Fields{
		"endpoint":  ep.Name,
		"remaining": remaining,
	}).Debug("first method never succeeded, skipping endpoint")
}

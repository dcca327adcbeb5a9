package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport performs one JSON-RPC request/response cycle against an address.
type Transport interface {
	Call(ctx context.Context, address string, req Request) (Response, error)
	Close() error
}

type Options struct {
	HTTPTimeout time.Duration
	WSTimeout   time.Duration
	StrictIDs   bool
	PoolSize    int
	Dialer      Dialer
	Logger      logrus.FieldLogger
}

type DispatcherOption func(*Dispatcher)

// WithTransport replaces the transport used for kind.
func WithTransport(kind TransportKind, t Transport) DispatcherOption {
	return func(d *Dispatcher) {
		d.transports[kind] = t
	}
}

// Dispatcher routes each call to the transport matching the endpoint kind and
// turns every result into a CallOutcome.
type Dispatcher struct {
	transports map[TransportKind]Transport
	logger     logrus.FieldLogger
	closeOnce  sync.Once
	closeErr   error
}

func NewDispatcher(opts Options, overrides ...DispatcherOption) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	wsTimeout := opts.WSTimeout
	if wsTimeout <= 0 {
		wsTimeout = DefaultWebSocketTimeout
	}
	registryOpts := []RegistryOption{WithRegistryLogger(logger)}
	if opts.Dialer != nil {
		registryOpts = append(registryOpts, WithDialer(opts.Dialer))
	}
	registry := NewRegistry(wsTimeout, registryOpts...)

	d := &Dispatcher{
		transports: map[TransportKind]Transport{
			TransportHTTP:       NewHTTPTransport(opts.HTTPTimeout, opts.PoolSize),
			TransportPersistent: NewWebSocketTransport(registry, wsTimeout, opts.StrictIDs, logger),
		},
		logger: logger,
	}
	for _, opt := range overrides {
		opt(d)
	}
	return d
}

// Dispatch performs exactly one attempt. Transport failures never escape:
// they become an unsuccessful outcome with zero latency and the error text.
func (d *Dispatcher) Dispatch(ctx context.Context, ep Endpoint, m Method) CallOutcome {
	out := CallOutcome{
		EndpointName:    ep.Name,
		EndpointAddress: ep.Address,
		MethodName:      m.Name,
		Timestamp:       time.Now().UTC(),
	}

	t, ok := d.transports[ep.Kind()]
	if !ok {
		out.Error = fmt.Errorf("%w: no transport registered for %s", ErrConfig, ep.Kind()).Error()
		return out
	}

	resp, err := t.Call(ctx, ep.Address, NewRequest(m))
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"endpoint": ep.Name,
			"method":   m.Name,
		}).WithError(err).Debug("call failed")
		out.Error = err.Error()
		return out
	}

	out.Success = resp.Success
	out.LatencyMs = durationMs(resp.Latency)
	out.Error = resp.ErrorMessage
	return out
}

// Close releases every transport. Only the first call has any effect.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		var errs []error
		for _, kind := range []TransportKind{TransportHTTP, TransportPersistent} {
			t, ok := d.transports[kind]
			if !ok {
				continue
			}
			if err := t.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s transport: %w", kind, err))
			}
		}
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}

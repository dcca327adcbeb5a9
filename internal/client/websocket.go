package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultWebSocketTimeout = 15 * time.Second

	closeFrameTimeout = time.Second
)

// Dialer opens WebSocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Conn is one pooled WebSocket connection. Only one request may be in flight
// on a connection at a time.
type Conn struct {
	mu      sync.Mutex
	ws      *websocket.Conn
	address string
	nextID  uint64
	closed  bool
}

func (c *Conn) Address() string {
	return c.address
}

func (c *Conn) close() {
	if c.closed {
		return
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeFrameTimeout))
	_ = c.ws.Close()
}

// Registry holds at most one live connection per address for the lifetime of
// a run.
type Registry struct {
	mu      sync.Mutex
	dialer  Dialer
	conns   map[string]*Conn
	dials   int
	dialing singleflight.Group
	logger  logrus.FieldLogger
}

type RegistryOption func(*Registry)

func WithDialer(d Dialer) RegistryOption {
	return func(r *Registry) {
		r.dialer = d
	}
}

func WithRegistryLogger(logger logrus.FieldLogger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(handshakeTimeout time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		conns:  make(map[string]*Conn),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the pooled connection for address, dialing it on first use.
// Concurrent callers for one address share a single handshake; handshakes to
// different addresses run in parallel.
func (r *Registry) Acquire(ctx context.Context, address string) (*Conn, error) {
	if err := validateSocketAddress(address); err != nil {
		return nil, err
	}

	if c := r.lookup(address); c != nil {
		return c, nil
	}

	ch := r.dialing.DoChan(address, func() (any, error) {
		if c := r.lookup(address); c != nil {
			return c, nil
		}
		return r.dial(ctx, address)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Conn), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w: %v", ErrWebSocket, ErrConnection, ctx.Err())
	}
}

func (r *Registry) lookup(address string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[address]
}

func (r *Registry) dial(ctx context.Context, address string) (*Conn, error) {
	r.mu.Lock()
	r.dials++
	r.mu.Unlock()

	ws, resp, err := r.dialer.DialContext(ctx, address, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		r.logger.WithFields(logrus.Fields{"address": address}).WithError(err).Debug("websocket dial failed")
		return nil, fmt.Errorf("%w: %w: %v", ErrWebSocket, ErrConnection, err)
	}

	c := &Conn{ws: ws, address: address, nextID: DefaultRequestID}
	r.mu.Lock()
	r.conns[address] = c
	r.mu.Unlock()
	r.logger.WithField("address", address).Debug("websocket connected")
	return c, nil
}

// Discard closes c and forgets it, so the next Acquire for its address dials
// again. Entries that have already been replaced are left alone.
func (r *Registry) Discard(c *Conn) {
	r.mu.Lock()
	if current, ok := r.conns[c.address]; ok && current == c {
		delete(r.conns, c.address)
	}
	r.mu.Unlock()

	c.close()
	r.logger.WithField("address", c.address).Debug("websocket discarded")
}

// CloseAll sends a close frame on every tracked connection and drops them.
// Failures are ignored.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for address, c := range conns {
		c.mu.Lock()
		c.close()
		c.mu.Unlock()
		r.logger.WithField("address", address).Debug("websocket closed")
	}
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Dials reports how many handshakes the registry has attempted.
func (r *Registry) Dials() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dials
}

func validateSocketAddress(address string) error {
	u, err := url.Parse(address)
	if err != nil {
		return fmt.Errorf("%w: invalid websocket address %q: %v", ErrConfig, address, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "ws" && scheme != "wss" {
		return fmt.Errorf("%w: websocket address %q must use ws:// or wss://", ErrConfig, address)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: websocket address %q has no host", ErrConfig, address)
	}
	return nil
}

// WebSocketTransport sends requests over pooled connections and treats the
// next text frame as the response. With strictIDs it stamps a fresh id on
// every request and skips every frame that is not a reply carrying that id.
type WebSocketTransport struct {
	registry  *Registry
	timeout   time.Duration
	strictIDs bool
	logger    logrus.FieldLogger
}

func NewWebSocketTransport(registry *Registry, timeout time.Duration, strictIDs bool, logger logrus.FieldLogger) *WebSocketTransport {
	if timeout <= 0 {
		timeout = DefaultWebSocketTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WebSocketTransport{
		registry:  registry,
		timeout:   timeout,
		strictIDs: strictIDs,
		logger:    logger,
	}
}

func (t *WebSocketTransport) Registry() *Registry {
	return t.registry
}

func (t *WebSocketTransport) Call(ctx context.Context, address string, req Request) (Response, error) {
	for {
		c, err := t.registry.Acquire(ctx, address)
		if err != nil {
			return Response{}, err
		}

		c.mu.Lock()
		if c.closed {
			// Discarded by another caller while we waited.
			c.mu.Unlock()
			continue
		}
		resp, err := t.roundTrip(ctx, c, req)
		c.mu.Unlock()
		return resp, err
	}
}

func (t *WebSocketTransport) roundTrip(ctx context.Context, c *Conn, req Request) (Response, error) {
	if t.strictIDs {
		req.ID = c.nextID
		c.nextID++
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: failed to marshal request: %v", ErrJSONRPC, err)
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.ws.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		t.registry.Discard(c)
		return Response{}, fmt.Errorf("%w: failed to set write deadline: %v", ErrWebSocket, err)
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		t.registry.Discard(c)
		return Response{}, fmt.Errorf("%w: failed to set read deadline: %v", ErrWebSocket, err)
	}

	start := time.Now()
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.registry.Discard(c)
		return Response{}, fmt.Errorf("%w: failed to send request: %v", ErrWebSocket, err)
	}

	for {
		msgType, data, err := c.ws.ReadMessage()
		latency := time.Since(start)
		if err != nil {
			t.registry.Discard(c)
			return Response{}, classifyReadError(ctx, err)
		}
		if msgType != websocket.TextMessage {
			if t.strictIDs {
				t.skipFrame(c, req.ID, fmt.Sprintf("frame type %d", msgType))
				continue
			}
			return Response{}, fmt.Errorf("%w: unexpected non-text frame (type %d)", ErrWebSocket, msgType)
		}

		resp, id, err := decodeResponse(data, latency)
		if err != nil {
			if t.strictIDs {
				t.skipFrame(c, req.ID, "unparseable frame")
				continue
			}
			return Response{}, err
		}
		if t.strictIDs && !idMatches(id, req.ID) {
			t.skipFrame(c, req.ID, "id "+string(id))
			continue
		}
		return resp, nil
	}
}

func (t *WebSocketTransport) skipFrame(c *Conn, want uint64, got string) {
	t.logger.WithFields(logrus.Fields{
		"address": c.address,
		"want_id": want,
		"got":     got,
	}).Debug("skipping uncorrelated frame")
}

func classifyReadError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, ctxErr)
		}
		return fmt.Errorf("%w: %v", ErrWebSocket, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: no response within deadline", ErrTimeout)
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return fmt.Errorf("%w: connection closed", ErrWebSocket)
	}
	return fmt.Errorf("%w: connection closed: %v", ErrWebSocket, err)
}

func (t *WebSocketTransport) Close() error {
	t.registry.CloseAll()
	return nil
}

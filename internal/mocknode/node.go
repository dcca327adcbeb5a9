// Package mocknode is a small JSON-RPC node double. It answers the methods
// the checker knows over HTTP and WebSocket and can be told to slow down,
// fail, stay silent or send binary frames per method.
package mocknode

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const maxRequestSize = 1 << 20

type Options struct {
	// Latency is added before every response.
	Latency time.Duration
	// Failing methods answer with a JSON-RPC error object.
	Failing []string
	// Silent methods are never answered.
	Silent []string
	// Binary methods are answered with a binary WebSocket frame.
	Binary []string
	// LogRequests enables chi's request logger.
	LogRequests bool
	Logger      logrus.FieldLogger
}

type Node struct {
	router   *chi.Mux
	upgrader websocket.Upgrader
	opts     Options
	logger   logrus.FieldLogger

	failing map[string]bool
	silent  map[string]bool
	binary  map[string]bool

	calls       atomic.Int64
	connections atomic.Int64
	open        atomic.Int64
}

func New(opts Options) *Node {
	n := &Node{
		opts:    opts,
		logger:  opts.Logger,
		failing: toSet(opts.Failing),
		silent:  toSet(opts.Silent),
		binary:  toSet(opts.Binary),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if n.logger == nil {
		n.logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	if opts.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Post("/", n.handleHTTP)
	r.Get("/ws", n.handleWebSocket)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	})

	n.router = r
	return n
}

func (n *Node) Handler() http.Handler {
	return n.router
}

// Calls counts every JSON-RPC request received over either transport.
func (n *Node) Calls() int64 {
	return n.calls.Load()
}

// Connections counts WebSocket upgrades since start.
func (n *Node) Connections() int64 {
	return n.connections.Load()
}

// OpenConnections counts WebSocket connections not yet closed.
func (n *Node) OpenConnections() int64 {
	return n.open.Load()
}

func (n *Node) handleHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, codeInvalidRequest, "failed to read request"))
		return
	}

	resp, ok := n.respond(body)
	if !ok {
		<-r.Context().Done()
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (n *Node) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	n.connections.Add(1)
	n.open.Add(1)
	defer func() {
		n.open.Add(-1)
		_ = conn.Close()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				n.logger.WithError(err).Debug("websocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp, ok := n.respond(data)
		if !ok {
			continue
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			return
		}
		frame := websocket.TextMessage
		if n.binary[resp.method] {
			frame = websocket.BinaryMessage
		}
		if err = conn.WriteMessage(frame, payload); err != nil {
			return
		}
	}
}

type reply struct {
	rpcResponse
	method string
}

func (r reply) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.rpcResponse)
}

// respond builds the answer to one request body. The second result is false
// when the method is configured to stay silent.
func (n *Node) respond(body []byte) (reply, bool) {
	n.calls.Add(1)

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return reply{rpcResponse: errorResponse(nil, codeParseError, "Parse error")}, true
	}
	if req.Method == "" {
		return reply{rpcResponse: errorResponse(req.ID, codeInvalidRequest, "Invalid Request")}, true
	}

	if n.opts.Latency > 0 {
		time.Sleep(n.opts.Latency)
	}

	if n.silent[req.Method] {
		return reply{}, false
	}

	out := reply{method: req.Method}
	switch result, ok := resultFor(req.Method); {
	case n.failing[req.Method]:
		out.rpcResponse = errorResponse(req.ID, codeServerError, "execution reverted")
	case !ok:
		out.rpcResponse = errorResponse(req.ID, codeMethodNotFound, "the method "+req.Method+" does not exist/is not available")
	default:
		out.rpcResponse = resultResponse(req.ID, result)
	}
	return out, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const DefaultHTTPTimeout = 10 * time.Second

// newPooledTransport creates a keep-alive transport sized for the number of
// concurrent callers.
func newPooledTransport(poolSize int) *http.Transport {
	if poolSize < 1 {
		poolSize = 1
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        poolSize * 2,
		MaxIdleConnsPerHost: poolSize * 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// HTTPTransport posts one JSON-RPC request per call. Connections are pooled
// by the underlying http.Transport.
type HTTPTransport struct {
	client    *http.Client
	transport *http.Transport
	timeout   time.Duration
}

func NewHTTPTransport(timeout time.Duration, poolSize int) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	transport := newPooledTransport(poolSize)
	return &HTTPTransport{
		client:    &http.Client{Transport: transport},
		transport: transport,
		timeout:   timeout,
	}
}

// Call sends req to address and waits for the full body. Latency covers the
// request write and the complete body read.
func (t *HTTPTransport) Call(ctx context.Context, address string, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: failed to marshal request: %v", ErrJSONRPC, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, address, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, classifyHTTPError(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	closeErr := resp.Body.Close()
	latency := time.Since(start)

	if err != nil {
		return Response{}, classifyHTTPError(err)
	}
	if closeErr != nil {
		return Response{}, fmt.Errorf("%w: failed to close response: %v", ErrNetwork, closeErr)
	}

	decoded, _, err := decodeResponse(body, latency)
	if err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return Response{}, fmt.Errorf("%w: unexpected status code %d (body: %s)", ErrNetwork, resp.StatusCode, truncate(body, 200))
		}
		return Response{}, err
	}
	return decoded, nil
}

func (t *HTTPTransport) Close() error {
	t.transport.CloseIdleConnections()
	return nil
}

func classifyHTTPError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

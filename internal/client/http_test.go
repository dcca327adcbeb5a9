package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRPCServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTransport_Success(t *testing.T) {
	var got Request
	srv := newRPCServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`))
	})

	tr := NewHTTPTransport(time.Second, 1)
	defer tr.Close()

	resp, err := tr.Call(context.Background(), srv.URL, NewRequest(Method{Name: "eth_chainId"}))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.ErrorMessage)
	assert.Positive(t, resp.Latency)
	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Equal(t, uint64(1), got.ID)
	assert.Equal(t, "eth_chainId", got.Method)
}

func TestHTTPTransport_ApplicationError(t *testing.T) {
	srv := newRPCServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"the method eth_mining does not exist"}}`))
	})

	tr := NewHTTPTransport(time.Second, 1)
	resp, err := tr.Call(context.Background(), srv.URL, NewRequest(Method{Name: "eth_mining"}))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "the method eth_mining does not exist", resp.ErrorMessage)
	assert.Positive(t, resp.Latency)
}

func TestHTTPTransport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr: ErrJSONRPC,
		},
		{
			name: "server error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("<html>502</html>"))
			},
			wantErr: ErrNetwork,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRPCServer(t, tt.handler)
			tr := NewHTTPTransport(100*time.Millisecond, 1)
			defer tr.Close()

			_, err := tr.Call(context.Background(), srv.URL, NewRequest(Method{Name: "eth_blockNumber"}))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	address := srv.URL
	srv.Close()

	tr := NewHTTPTransport(time.Second, 1)
	_, err := tr.Call(context.Background(), address, NewRequest(Method{Name: "eth_blockNumber"}))
	require.ErrorIs(t, err, ErrNetwork)
}

package orchestrator_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/mocknode"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/orchestrator"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/summary"
)

func TestRunAgainstMockNode(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	node := mocknode.New(mocknode.Options{Failing: []string{"eth_call"}, Logger: logger})
	srv := httptest.NewServer(node.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	endpoints := []client.Endpoint{
		client.NewEndpoint("LOCAL-HTTP", srv.URL),
		client.NewEndpoint("LOCAL-WS", wsURL),
		client.NewEndpoint("DEAD-WS", "ws://127.0.0.1:1/ws"),
	}
	methods := []client.Method{
		client.NewMethod("eth_blockNumber", nil, ""),
		client.NewMethod("eth_chainId", nil, ""),
		client.NewMethod("eth_call", []any{map[string]any{"to": "0x0"}, "latest"}, ""),
	}

	d := client.NewDispatcher(client.Options{
		HTTPTimeout: 2 * time.Second,
		WSTimeout:   2 * time.Second,
		Logger:      logger,
	})
	o := orchestrator.New(d, orchestrator.Config{Repetitions: 3}, orchestrator.WithLogger(logger))

	outcomes, err := o.Run(context.Background(), endpoints, methods)
	require.NoError(t, err)
	require.Len(t, outcomes, 3*3+3*3+1)

	stats := summary.Aggregate(outcomes)
	require.Len(t, stats, 7)

	byKey := make(map[string]summary.MethodStatistic, len(stats))
	for _, s := range stats {
		byKey[s.EndpointName+"/"+s.MethodName] = s
	}

	for _, name := range []string{"LOCAL-HTTP", "LOCAL-WS"} {
		ok := byKey[name+"/eth_blockNumber"]
		assert.Equal(t, 3, ok.SuccessCount, name)
		assert.Positive(t, ok.AvgLatencyMs, name)

		failed := byKey[name+"/eth_call"]
		assert.Equal(t, 3, failed.CallCount, name)
		assert.Zero(t, failed.SuccessCount, name)
		assert.Equal(t, "execution reverted", failed.LastError, name)
	}

	dead := byKey["DEAD-WS/eth_blockNumber"]
	assert.Equal(t, 1, dead.CallCount)
	assert.Contains(t, dead.LastError, "connection")

	// One socket served every LOCAL-WS call and Run closed it.
	assert.Equal(t, int64(1), node.Connections())
	assert.Eventually(t, func() bool { return node.OpenConnections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunAgainstMockNode_WebSocketTimeoutRedials(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	node := mocknode.New(mocknode.Options{Silent: []string{"eth_gasPrice"}, Logger: logger})
	srv := httptest.NewServer(node.Handler())
	defer srv.Close()

	ep := client.NewEndpoint("LOCAL-WS", "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	methods := []client.Method{
		client.NewMethod("eth_chainId", nil, ""),
		client.NewMethod("eth_gasPrice", nil, ""),
		client.NewMethod("eth_blockNumber", nil, ""),
	}

	d := client.NewDispatcher(client.Options{WSTimeout: 100 * time.Millisecond, Logger: logger})
	o := orchestrator.New(d, orchestrator.Config{Repetitions: 2}, orchestrator.WithLogger(logger))

	outcomes, err := o.Run(context.Background(), []client.Endpoint{ep}, methods)
	require.NoError(t, err)
	require.Len(t, outcomes, 6)

	for _, out := range outcomes {
		if out.MethodName == "eth_gasPrice" {
			assert.False(t, out.Success)
			assert.Contains(t, out.Error, "timeout")
		} else {
			assert.True(t, out.Success, out.MethodName)
		}
	}
	// Each timeout discards the socket, so the next call dials again.
	assert.Equal(t, int64(3), node.Connections())
}

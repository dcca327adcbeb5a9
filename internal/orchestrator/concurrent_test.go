package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

func TestConcurrent_MatchesSequentialOrder(t *testing.T) {
	eps := []client.Endpoint{
		client.NewEndpoint("ETH-HTTP", "https://eth"),
		client.NewEndpoint("ETH-WS", "wss://eth"),
	}
	ms := methods("a", "b", "c", "d", "e")
	respond := func(_ client.Endpoint, m client.Method, call int) bool { return m.Name != "c" || call%2 == 0 }

	seq, err := New(newFakeDispatcher(respond), Config{Repetitions: 3}).Run(context.Background(), eps, ms)
	require.NoError(t, err)

	conc, err := New(newFakeDispatcher(respond), Config{Repetitions: 3, Mode: ModeConcurrent, Workers: 3}).Run(context.Background(), eps, ms)
	require.NoError(t, err)

	require.Len(t, conc, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].EndpointName, conc[i].EndpointName, i)
		assert.Equal(t, seq[i].MethodName, conc[i].MethodName, i)
		assert.Equal(t, seq[i].Attempt, conc[i].Attempt, i)
		assert.Equal(t, seq[i].Success, conc[i].Success, i)
	}
}

func TestConcurrent_ProbeStillAppliesToWebSocket(t *testing.T) {
	d := newFakeDispatcher(alwaysFailWS)
	o := New(d, Config{Repetitions: 4, Mode: ModeConcurrent, Workers: 4})

	outcomes, err := o.Run(context.Background(),
		[]client.Endpoint{client.NewEndpoint("BSC-WS", "wss://bsc")},
		methods("a", "b", "c"))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "a", outcomes[0].MethodName)
	assert.Equal(t, 1, d.total())
}

func TestConcurrent_SingleMethod(t *testing.T) {
	d := newFakeDispatcher(func(client.Endpoint, client.Method, int) bool { return true })
	o := New(d, Config{Repetitions: 2, Mode: ModeConcurrent})

	outcomes, err := o.Run(context.Background(),
		[]client.Endpoint{client.NewEndpoint("ETH-HTTP", "https://eth")},
		methods("a"))
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, int32(1), d.closes.Load())
}

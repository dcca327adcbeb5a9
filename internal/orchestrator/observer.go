package orchestrator

import "github.com/blockchain-toolbox/eth-rpc-check/internal/client"

// Observer receives progress callbacks. Calls are made from a single
// goroutine, in both modes.
type Observer interface {
	EndpointStarted(ep client.Endpoint, index, total int)
	MethodFinished(ep client.Endpoint, m client.Method, index, total int, outcomes []client.CallOutcome)
	EndpointSkipped(ep client.Endpoint, remaining int)
}

type nopObserver struct{}

func (nopObserver) EndpointStarted(client.Endpoint, int, int) {}

func (nopObserver) MethodFinished(client.Endpoint, client.Method, int, int, []client.CallOutcome) {}

func (nopObserver) EndpointSkipped(client.Endpoint, int) {}

package orchestrator

import "github.com/blockchain-toolbox/eth-rpc-check/internal/client"

// AbortPolicy decides when a run may skip work it was asked to do.
type AbortPolicy interface {
	// StopMethod is consulted after every attempt; returning true skips the
	// remaining attempts of that method.
	StopMethod(ep client.Endpoint, methodIndex, attempt int, out client.CallOutcome) bool
	// SkipEndpoint is consulted after every method; returning true skips the
	// remaining methods of that endpoint.
	SkipEndpoint(ep client.Endpoint, methodIndex int, outcomes []client.CallOutcome) bool
}

// FirstProbePolicy treats the first method against a WebSocket endpoint as a
// connectivity probe. A failed first attempt ends that method, and a first
// method without any success ends the endpoint.
type FirstProbePolicy struct{}

func (FirstProbePolicy) StopMethod(ep client.Endpoint, methodIndex, attempt int, out client.CallOutcome) bool {
	return ep.IsPersistent() && methodIndex == 0 && attempt == 0 && !out.Success
}

func (FirstProbePolicy) SkipEndpoint(ep client.Endpoint, methodIndex int, outcomes []client.CallOutcome) bool {
	if !ep.IsPersistent() || methodIndex != 0 {
		return false
	}
	for _, out := range outcomes {
		if out.Success {
			return false
		}
	}
	return true
}

// ExhaustivePolicy runs every attempt of every method.
type ExhaustivePolicy struct{}

func (ExhaustivePolicy) StopMethod(client.Endpoint, int, int, client.CallOutcome) bool {
	return false
}

func (ExhaustivePolicy) SkipEndpoint(client.Endpoint, int, []client.CallOutcome) bool {
	return false
}

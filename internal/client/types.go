package client

import "time"

// CallOutcome records one attempt against one endpoint. Error is empty when
// the node returned no message.
type CallOutcome struct {
	EndpointName    string    `json:"endpoint_name"`
	EndpointAddress string    `json:"endpoint_address"`
	MethodName      string    `json:"method_name"`
	Attempt         int       `json:"attempt"`
	Success         bool      `json:"success"`
	LatencyMs       float64   `json:"latency_ms"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

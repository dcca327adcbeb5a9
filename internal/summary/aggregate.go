package summary

import (
	"cmp"
	"slices"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

// MethodStatistic summarises every attempt of one method against one
// endpoint. Latency fields cover successful attempts only and are zero when
// there were none.
type MethodStatistic struct {
	EndpointName    string  `json:"chain"`
	EndpointAddress string  `json:"endpoint"`
	MethodName      string  `json:"method"`
	CallCount       int     `json:"call_count"`
	SuccessCount    int     `json:"success_count"`
	MinLatencyMs    float64 `json:"min_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	MedianLatencyMs float64 `json:"median_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
	SuccessRate     float64 `json:"success_rate"`
	LastError       string  `json:"last_error,omitempty"`
}

type groupKey struct {
	endpoint string
	address  string
	method   string
}

// Aggregate groups outcomes by (endpoint name, address, method) and ranks the
// groups by endpoint name, then success rate (high first), then average
// latency (low first).
func Aggregate(outcomes []client.CallOutcome) []MethodStatistic {
	var order []groupKey
	groups := make(map[groupKey][]client.CallOutcome)
	for _, out := range outcomes {
		key := groupKey{endpoint: out.EndpointName, address: out.EndpointAddress, method: out.MethodName}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], out)
	}

	stats := make([]MethodStatistic, 0, len(order))
	for _, key := range order {
		stats = append(stats, computeStatistic(key, groups[key]))
	}

	slices.SortStableFunc(stats, func(a, b MethodStatistic) int {
		return cmp.Or(
			cmp.Compare(a.EndpointName, b.EndpointName),
			cmp.Compare(b.SuccessRate, a.SuccessRate),
			cmp.Compare(a.AvgLatencyMs, b.AvgLatencyMs),
		)
	})
	return stats
}

func computeStatistic(key groupKey, group []client.CallOutcome) MethodStatistic {
	stat := MethodStatistic{
		EndpointName:    key.endpoint,
		EndpointAddress: key.address,
		MethodName:      key.method,
		CallCount:       len(group),
	}

	latencies := make([]float64, 0, len(group))
	for _, out := range group {
		if out.Success {
			latencies = append(latencies, out.LatencyMs)
		} else if out.Error != "" {
			stat.LastError = out.Error
		}
	}
	stat.SuccessCount = len(latencies)
	if stat.CallCount > 0 {
		stat.SuccessRate = float64(stat.SuccessCount) / float64(stat.CallCount)
	}
	if stat.SuccessCount == 0 {
		return stat
	}

	stat.MinLatencyMs = slices.Min(latencies)
	stat.MaxLatencyMs = slices.Max(latencies)

	var total float64
	for _, l := range latencies {
		total += l
	}
	stat.AvgLatencyMs = total / float64(len(latencies))

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	stat.MedianLatencyMs = Median(sorted)
	stat.P95LatencyMs = Percentile95(sorted)
	return stat
}

// Median of an ascending slice; the mean of the two middle values when the
// length is even.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile95 picks index floor(n*0.95) of an ascending slice, clamped to
// the last element.
func Percentile95(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(float64(n) * 0.95)
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

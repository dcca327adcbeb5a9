package influx

import (
	"time"

	"github.com/InfluxCommunity/influxdb3-go/influxdb3"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/summary"
)

const (
	measurementCall    = "rpc_call"
	measurementStats   = "rpc_method_stats"
	measurementRunMeta = "rpc_run_meta"
)

// WriteOutcomes exports one point per attempt, subject to sampling.
func (c *Client) WriteOutcomes(outcomes []client.CallOutcome) {
	if c == nil {
		return
	}

	points := make([]*influxdb3.Point, 0, min(len(outcomes), writeBatchSize))
	for _, out := range outcomes {
		if c.ctx.Err() != nil {
			return
		}
		if !c.keep() {
			continue
		}

		fields := map[string]any{
			"success":    out.Success,
			"latency_ms": out.LatencyMs,
			"attempt":    int64(out.Attempt),
		}
		if out.Error != "" {
			fields["error"] = out.Error
		}

		points = append(points, influxdb3.NewPoint(
			measurementCall,
			map[string]string{
				"run_id":    c.runID,
				"endpoint":  out.EndpointName,
				"address":   out.EndpointAddress,
				"transport": client.KindOf(out.EndpointAddress).String(),
				"method":    out.MethodName,
			},
			fields,
			out.Timestamp,
		))
		if len(points) >= writeBatchSize {
			c.writePointsAsync(points)
			points = points[:0]
		}
	}
	c.writePointsAsync(points)
}

// WriteStatistics exports one point per (endpoint, method) group. These are
// never sampled.
func (c *Client) WriteStatistics(stats []summary.MethodStatistic) {
	if c == nil {
		return
	}

	now := time.Now()
	points := make([]*influxdb3.Point, 0, len(stats))
	for i, s := range stats {
		points = append(points, influxdb3.NewPoint(
			measurementStats,
			map[string]string{
				"run_id":   c.runID,
				"endpoint": s.EndpointName,
				"address":  s.EndpointAddress,
				"method":   s.MethodName,
			},
			map[string]any{
				"call_count":        int64(s.CallCount),
				"success_count":     int64(s.SuccessCount),
				"success_rate":      s.SuccessRate,
				"min_latency_ms":    s.MinLatencyMs,
				"max_latency_ms":    s.MaxLatencyMs,
				"avg_latency_ms":    s.AvgLatencyMs,
				"median_latency_ms": s.MedianLatencyMs,
				"p95_latency_ms":    s.P95LatencyMs,
			},
			now.Add(time.Duration(i)*time.Microsecond),
		))
	}
	c.writePointsAsync(points)
}

func (c *Client) WriteRunMeta(meta summary.RunMeta) {
	if c == nil {
		return
	}

	c.writePointsAsync([]*influxdb3.Point{influxdb3.NewPoint(
		measurementRunMeta,
		map[string]string{
			"run_id":     c.runID,
			"session_id": meta.SessionID,
			"mode":       meta.Mode,
		},
		map[string]any{
			"repetitions": int64(meta.Repetitions),
			"endpoints":   int64(len(meta.Endpoints)),
			"methods":     int64(len(meta.Methods)),
			"duration_ms": meta.DurationMs,
			"interrupted": meta.Interrupted,
			"sample_rate": c.sampleRate,
		},
		meta.Timestamp,
	)})
}

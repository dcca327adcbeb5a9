package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"chain",
	"endpoint",
	"method",
	"call_count",
	"success_count",
	"min_latency_ms",
	"max_latency_ms",
	"avg_latency_ms",
	"median_latency_ms",
	"p95_latency_ms",
	"success_rate_percent",
}

// WriteCSV writes one row per statistic. Latencies use two decimals and the
// success rate is written as a percentage.
func WriteCSV(w io.Writer, stats []MethodStatistic) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range stats {
		s := &stats[i]
		record := []string{
			s.EndpointName,
			s.EndpointAddress,
			s.MethodName,
			strconv.Itoa(s.CallCount),
			strconv.Itoa(s.SuccessCount),
			formatMs(s.MinLatencyMs),
			formatMs(s.MaxLatencyMs),
			formatMs(s.AvgLatencyMs),
			formatMs(s.MedianLatencyMs),
			formatMs(s.P95LatencyMs),
			formatMs(s.SuccessRate * 100),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for %s/%s: %w", s.EndpointName, s.MethodName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

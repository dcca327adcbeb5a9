package summary

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	goodStyle    = cellStyle.Foreground(lipgloss.Color("42"))
	fairStyle    = cellStyle.Foreground(lipgloss.Color("214"))
	poorStyle    = cellStyle.Foreground(lipgloss.Color("196"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const rateColumn = 4

var tableHeaders = []string{"Chain", "Method", "Calls", "OK", "Rate", "Min", "Max", "Avg", "Median", "P95"}

// EndpointSummary is the per-endpoint roll-up shown above its methods.
type EndpointSummary struct {
	Name           string
	Methods        int
	AvgSuccessRate float64
	AvgLatencyMs   float64
	HasLatency     bool
}

// Summarize rolls up consecutive statistics of the same endpoint. The
// latency mean only counts methods that had at least one success.
func Summarize(stats []MethodStatistic) []EndpointSummary {
	var out []EndpointSummary
	for start := 0; start < len(stats); {
		end := start
		for end < len(stats) && stats[end].EndpointName == stats[start].EndpointName {
			end++
		}

		s := EndpointSummary{Name: stats[start].EndpointName, Methods: end - start}
		var rateSum, latencySum float64
		var withLatency int
		for _, st := range stats[start:end] {
			rateSum += st.SuccessRate
			if st.SuccessCount > 0 {
				latencySum += st.AvgLatencyMs
				withLatency++
			}
		}
		s.AvgSuccessRate = rateSum / float64(s.Methods)
		if withLatency > 0 {
			s.AvgLatencyMs = latencySum / float64(withLatency)
			s.HasLatency = true
		}
		out = append(out, s)
		start = end
	}
	return out
}

// RateStyle colours a success rate: green from 90%, yellow from 50%.
func RateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 0.9:
		return goodStyle
	case rate >= 0.5:
		return fairStyle
	default:
		return poorStyle
	}
}

// RenderTable builds the grouped statistics table.
func RenderTable(stats []MethodStatistic) string {
	var (
		rows [][]string
		meta []rowMeta
	)

	idx := 0
	for _, group := range Summarize(stats) {
		latency := "-"
		if group.HasLatency {
			latency = cli.FormatMs(group.AvgLatencyMs)
		}
		meta = append(meta, rowMeta{summary: true})
		rows = append(rows, []string{
			fmt.Sprintf("== %s ==", group.Name),
			fmt.Sprintf("%d methods", group.Methods),
			"", "",
			cli.FormatPercent(group.AvgSuccessRate),
			"", "",
			latency,
			"", "",
		})

		for _, st := range stats[idx : idx+group.Methods] {
			meta = append(meta, rowMeta{rate: st.SuccessRate})
			rows = append(rows, []string{
				st.EndpointName,
				st.MethodName,
				strconv.Itoa(st.CallCount),
				strconv.Itoa(st.SuccessCount),
				cli.FormatPercent(st.SuccessRate),
				formatMs(st.MinLatencyMs),
				formatMs(st.MaxLatencyMs),
				formatMs(st.AvgLatencyMs),
				formatMs(st.MedianLatencyMs),
				formatMs(st.P95LatencyMs),
			})
		}
		idx += group.Methods
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(meta) {
				return cellStyle
			}
			switch {
			case meta[row].summary:
				return summaryStyle
			case col == rateColumn:
				return RateStyle(meta[row].rate)
			default:
				return cellStyle
			}
		})

	return t.String()
}

type rowMeta struct {
	summary bool
	rate    float64
}

// PrintStatistics writes the grouped table through the console printer.
func PrintStatistics(stats []MethodStatistic) {
	cli.Section("Results")
	if len(stats) == 0 {
		cli.Warnf("No calls were recorded")
		return
	}
	cli.Println(RenderTable(stats))
}

// PrintIssues lists methods that never succeeded, with their last error.
func PrintIssues(stats []MethodStatistic) {
	var failed []MethodStatistic
	for _, st := range stats {
		if st.SuccessCount == 0 {
			failed = append(failed, st)
		}
	}
	if len(failed) == 0 {
		return
	}

	cli.Section("Issues")
	for _, st := range failed {
		cli.Failf("%s %s: %d/%d failed", st.EndpointName, st.MethodName, st.CallCount-st.SuccessCount, st.CallCount)
		if st.LastError != "" {
			cli.Linef("  └─ last: %s", cli.Truncate(st.LastError, 75))
		}
	}
}

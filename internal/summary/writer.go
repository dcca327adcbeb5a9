package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

type Report struct {
	Meta       RunMeta           `json:"meta"`
	Summary    RunSummary        `json:"summary"`
	Statistics []MethodStatistic `json:"statistics"`
}

type RunMeta struct {
	RunID       string            `json:"run_id"`
	SessionID   string            `json:"session_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	DurationMs  int64             `json:"duration_ms"`
	Repetitions int               `json:"repetitions"`
	Mode        string            `json:"mode"`
	Interrupted bool              `json:"interrupted,omitempty"`
	Endpoints   []client.Endpoint `json:"endpoints"`
	Methods     []string          `json:"methods"`
}

type RunSummary struct {
	TotalCalls      int     `json:"total_calls"`
	SuccessfulCalls int     `json:"successful_calls"`
	SuccessRate     float64 `json:"success_rate"`
	Groups          int     `json:"groups"`
	FailedGroups    int     `json:"failed_groups"`
}

func NewReport(meta RunMeta, stats []MethodStatistic) *Report {
	r := &Report{Meta: meta, Statistics: stats}
	for i := range stats {
		r.Summary.TotalCalls += stats[i].CallCount
		r.Summary.SuccessfulCalls += stats[i].SuccessCount
		if stats[i].SuccessCount == 0 {
			r.Summary.FailedGroups++
		}
	}
	r.Summary.Groups = len(stats)
	if r.Summary.TotalCalls > 0 {
		r.Summary.SuccessRate = float64(r.Summary.SuccessfulCalls) / float64(r.Summary.TotalCalls)
	}
	return r
}

// Writer exports a run next to the configured CSV path.
type Writer struct {
	csvPath string
}

func NewWriter(csvPath string) *Writer {
	return &Writer{csvPath: csvPath}
}

func (w *Writer) CSVPath() string {
	return w.csvPath
}

// JSONPath is the CSV path with its extension replaced by .json.
func (w *Writer) JSONPath() string {
	ext := filepath.Ext(w.csvPath)
	base := strings.TrimSuffix(w.csvPath, ext)
	if strings.EqualFold(ext, ".json") {
		return base + ".report.json"
	}
	return base + ".json"
}

func (w *Writer) ExportCSV(stats []MethodStatistic) (string, error) {
	f, err := os.OpenFile(w.csvPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to open output file: %w", err)
	}

	if err = WriteCSV(f, stats); err != nil {
		_ = f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	return w.csvPath, nil
}

func (w *Writer) ExportJSON(report *Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := w.JSONPath()
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

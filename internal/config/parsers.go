package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func parseDuration(value string, allowZero bool) (time.Duration, error) {
	value = strings.TrimSpace(value)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		if allowZero {
			return 0, fmt.Errorf("duration %q must not be negative", value)
		}
		return 0, fmt.Errorf("duration %q must be positive", value)
	}
	return d, nil
}

// parsePercent accepts "25%", "25" or "0.25" and returns a value in (0, 100].
func parsePercent(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("sample_rate is empty")
	}

	raw, isPercent := strings.CutSuffix(value, "%")
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.New("sample_rate must be a number or percentage")
	}
	if !isPercent && parsed > 0 && parsed <= 1 && strings.Contains(raw, ".") {
		parsed *= 100
	}
	if parsed <= 0 || parsed > 100 {
		return 0, errors.New("sample_rate must be between 0% and 100%")
	}
	return parsed, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

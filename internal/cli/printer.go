package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	SymbolPass    = "✓"
	SymbolFail    = "✗"
	SymbolArrow   = "→"
	SymbolDot     = "•"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolSkip    = "↷"

	Indent = "  "
)

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// SetOutput redirects console output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

func printf(format string, args ...any) {
	outMu.Lock()
	defer outMu.Unlock()
	_, _ = fmt.Fprintf(out, format, args...)
}

func Header(title string) {
	width := 60
	padding := max((width-len(title)-2)/2, 0)
	border := strings.Repeat("═", width)

	printf("\n")
	printf("╔%s╗\n", border)
	printf("║%s %s %s║\n", strings.Repeat(" ", padding), title, strings.Repeat(" ", max(width-padding-len(title)-2, 0)))
	printf("╚%s╝\n", border)
	printf("\n")
}

func Section(title string) {
	printf("\n━━ %s %s\n", title, strings.Repeat("━", max(60-len(title), 4)))
}

func EndpointHeader(index, total int, name, transport, address string) {
	label := fmt.Sprintf("[%d/%d] %s (%s)", index, total, name, transport)
	printf("\n┌─ %s %s\n", label, strings.Repeat("─", max(58-len(label), 4)))
	printf("│  %s\n", address)
}

func Infof(format string, args ...any) {
	printf("%s%s %s\n", Indent, SymbolInfo, fmt.Sprintf(format, args...))
}

func Successf(format string, args ...any) {
	printf("%s%s %s\n", Indent, SymbolPass, fmt.Sprintf(format, args...))
}

func Failf(format string, args ...any) {
	printf("%s%s %s\n", Indent, SymbolFail, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	printf("%s%s %s\n", Indent, SymbolWarning, fmt.Sprintf(format, args...))
}

func Linef(format string, args ...any) {
	printf("%s%s\n", Indent, fmt.Sprintf(format, args...))
}

func KeyValue(key, value string) {
	printf("%s%-20s %s\n", Indent, key+":", value)
}

func KeyValuePairs(pairs ...string) {
	if len(pairs)%2 != 0 {
		return
	}
	var parts []string
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s: %s", pairs[i], pairs[i+1]))
	}
	printf("%s%s\n", Indent, strings.Join(parts, "  │  "))
}

func Blank() {
	printf("\n")
}

// Println writes a raw line.
func Println(line string) {
	printf("%s\n", line)
}

func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// FormatMs renders a millisecond value with two decimals.
func FormatMs(ms float64) string {
	return fmt.Sprintf("%.2fms", ms)
}

func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func FormatRate(rate float64) string {
	pct := rate * 100
	if pct >= 99.95 {
		return "100%"
	}
	if pct >= 9.95 {
		return fmt.Sprintf("%.1f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

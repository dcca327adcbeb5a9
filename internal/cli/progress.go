package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

var spinnerChars = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ProgressSpinner shows a live status line while a run is in progress and
// prints one line per finished method above it. Without a terminal only the
// per-method lines are printed.
type ProgressSpinner struct {
	mu           sync.Mutex
	animate      bool
	repetitions  int
	spinnerIndex int
	startTime    time.Time
	message      string
	endpointDone int
	endpointTot  int
	methodDone   int
	methodTot    int
	running      bool
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewProgressSpinner reports each method against the requested repetitions,
// so a method cut short still shows how many calls were planned.
func NewProgressSpinner(animate bool, repetitions int) *ProgressSpinner {
	return &ProgressSpinner{
		animate:     animate,
		repetitions: repetitions,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

func (p *ProgressSpinner) Start(endpointCount int) {
	p.mu.Lock()
	p.startTime = time.Now()
	p.endpointTot = endpointCount
	p.endpointDone = 0
	p.methodDone = 0
	p.methodTot = 0
	p.message = ""
	p.running = true
	p.mu.Unlock()

	if !p.animate {
		close(p.doneCh)
		return
	}
	go p.run()
}

func (p *ProgressSpinner) run() {
	defer close(p.doneCh)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			p.mu.Lock()
			clearLine()
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.render()
		}
	}
}

func (p *ProgressSpinner) render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	spinner := spinnerChars[p.spinnerIndex]
	p.spinnerIndex = (p.spinnerIndex + 1) % len(spinnerChars)

	elapsed := time.Since(p.startTime)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	printf("\r\033[K%s  %c %s  [%d/%d endpoints]  [%d/%d methods]  elapsed: %dm%02ds",
		Indent,
		spinner,
		p.message,
		p.endpointDone, p.endpointTot,
		p.methodDone, p.methodTot,
		mins, secs,
	)
}

func clearLine() {
	printf("\r\033[K")
}

// emit prints above the status line.
func (p *ProgressSpinner) emit(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.animate && p.running {
		clearLine()
	}
	fn()
}

func (p *ProgressSpinner) EndpointStarted(ep client.Endpoint, index, total int) {
	p.emit(func() {
		EndpointHeader(index+1, total, ep.Name, ep.Kind().String(), ep.Address)
		p.endpointDone = index
		p.methodDone = 0
		p.methodTot = 0
		p.message = fmt.Sprintf("Testing %s...", ep.Name)
	})
}

func (p *ProgressSpinner) MethodFinished(ep client.Endpoint, m client.Method, index, total int, outcomes []client.CallOutcome) {
	p.emit(func() {
		p.methodDone++
		p.methodTot = total
		p.message = fmt.Sprintf("Testing %s %s...", ep.Name, m.Name)
		Linef("%s", MethodLine(ep, m, index, total, p.repetitions, outcomes))
	})
}

func (p *ProgressSpinner) EndpointSkipped(ep client.Endpoint, remaining int) {
	p.emit(func() {
		Warnf("%s: first method never succeeded, skipping %d remaining methods", ep.Name, remaining)
	})
}

func (p *ProgressSpinner) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.endpointDone = p.endpointTot
	p.mu.Unlock()

	if p.animate {
		close(p.stopCh)
	}
	<-p.doneCh
}

// MethodLine renders "[i/n] method ... done (s/N ok, avg X.XXms)" where N is
// the requested repetition count. WebSocket endpoints also show the last
// failure.
func MethodLine(ep client.Endpoint, m client.Method, index, total, requested int, outcomes []client.CallOutcome) string {
	var (
		successes int
		totalMs   float64
		lastErr   string
	)
	for _, out := range outcomes {
		if out.Success {
			successes++
			totalMs += out.LatencyMs
		} else if out.Error != "" {
			lastErr = out.Error
		}
	}

	requested = max(requested, len(outcomes))

	symbol := SymbolPass
	if successes < requested || requested == 0 {
		symbol = SymbolFail
	}

	avg := "-"
	if successes > 0 {
		avg = FormatMs(totalMs / float64(successes))
	}

	line := fmt.Sprintf("%s [%d/%d] %-40s done (%d/%d ok, avg %s)",
		symbol, index+1, total, m.Name, successes, requested, avg)
	if ep.IsPersistent() && lastErr != "" {
		line += fmt.Sprintf("  └─ last: %s", Truncate(lastErr, 70))
	}
	return line
}

// Package diagnostics reports interpreter and generator messages on a
// stream separate from program output.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"

	"ucc/colors"
)

// Severity classifies a diagnostic message.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) color() colors.COLOR {
	switch s {
	case Warning:
		return colors.YELLOW
	case Error:
		return colors.RED
	default:
		return colors.CYAN
	}
}

// Reporter writes severity-tagged diagnostics to one writer and keeps
// running counts. Program output never goes through a Reporter.
type Reporter struct {
	mu        sync.Mutex
	out       io.Writer
	color     bool
	warnCount int
	errCount  int
}

// NewReporter creates a reporter on the given writer. A nil writer
// reports to standard error with colors enabled.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		return &Reporter{out: os.Stderr, color: true}
	}
	return &Reporter{out: out}
}

// Report emits one diagnostic line.
func (r *Reporter) Report(sev Severity, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch sev {
	case Warning:
		r.warnCount++
	case Error:
		r.errCount++
	}

	msg := fmt.Sprintf(format, args...)
	if r.color {
		sev.color().Fprintln(r.out, msg)
	} else {
		fmt.Fprintln(r.out, msg)
	}
}

// Infof reports an informational message.
func (r *Reporter) Infof(format string, args ...any) {
	r.Report(Info, format, args...)
}

// Warningf reports a recoverable problem.
func (r *Reporter) Warningf(format string, args ...any) {
	r.Report(Warning, format, args...)
}

// Errorf reports a non-recoverable problem.
func (r *Reporter) Errorf(format string, args ...any) {
	r.Report(Error, format, args...)
}

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnCount
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errCount
}

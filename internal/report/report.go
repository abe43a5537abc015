// Package report carries diagnostics from scanning to whoever runs the scan.
//
// A Sink wraps an optional Reporter. With a Reporter every diagnostic is
// delivered and the scan continues. Without one, the first fatal diagnostic
// is returned as an error so callers stop immediately.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Severity orders diagnostics.
type Severity int

const (
	Notice Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Notice:
		return "notice"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Kind groups diagnostics by cause.
type Kind string

const (
	// Structural covers unknown, duplicate and unclosed regions and
	// unbalanced braces.
	Structural Kind = "structural"
	// Resource covers unreadable files and roots that are not directories.
	Resource Kind = "resource"
	// Binary marks files that cannot be decoded with the configured encoding.
	Binary Kind = "binary"
	// Validation covers overlong lines.
	Validation Kind = "validation"
	// Registry covers region names registered by more than one file.
	Registry Kind = "registry"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	File     string
	Region   string
	Message  string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

// Fatal reports whether the diagnostic stops a scan that has no Reporter.
// Resource problems never do.
func (d *Diagnostic) Fatal() bool {
	return d.Severity == Error && d.Kind != Resource
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Sink routes diagnostics to a Reporter or, without one, fails fast.
type Sink struct {
	reporter Reporter
	logger   *slog.Logger

	mu  sync.Mutex
	all []Diagnostic
}

// NewSink returns a Sink. reporter may be nil. logger receives non-fatal
// diagnostics when there is no reporter; nil means slog.Default().
func NewSink(reporter Reporter, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{reporter: reporter, logger: logger}
}

// Emit delivers d. It returns d as an error only when there is no reporter
// and d is fatal.
func (s *Sink) Emit(d Diagnostic) error {
	s.mu.Lock()
	s.all = append(s.all, d)
	s.mu.Unlock()

	if s.reporter != nil {
		s.reporter.Report(d)
		return nil
	}
	if d.Fatal() {
		return &d
	}
	Log(s.logger, d)
	return nil
}

// Emitf is Emit with a formatted message.
func (s *Sink) Emitf(sev Severity, kind Kind, file, format string, args ...any) error {
	return s.Emit(Diagnostic{Severity: sev, Kind: kind, File: file, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns every diagnostic emitted so far.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.all))
	copy(out, s.all)
	return out
}

// Count returns the number of emitted diagnostics at or above sev.
func (s *Sink) Count(sev Severity) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.all {
		if d.Severity >= sev {
			n++
		}
	}
	return n
}

// LogReporter writes diagnostics to a structured logger.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(d Diagnostic) {
	Log(r.Logger, d)
}

// Log writes d to logger at the level matching its severity.
func Log(logger *slog.Logger, d Diagnostic) {
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch d.Severity {
	case Warning:
		level = slog.LevelWarn
	case Error:
		level = slog.LevelError
	}
	attrs := []slog.Attr{slog.String("kind", string(d.Kind))}
	if d.File != "" {
		attrs = append(attrs, slog.String("file", d.File))
	}
	if d.Region != "" {
		attrs = append(attrs, slog.String("region", d.Region))
	}
	logger.LogAttrs(context.Background(), level, d.Message, attrs...)
}

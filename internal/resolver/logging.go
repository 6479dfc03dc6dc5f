package resolver

import (
	"log"
	"os"
)

// Logger is the injected logging sink from spec §6/§9. The severity
// taxonomy is exactly debug/info/warning/error, no more.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// stdLogger backs Logger with the standard library "log" package, matching
// the teacher's own logging texture (efunc never reaches for a structured
// logging library; it prints straight through log/fmt).
type stdLogger struct {
	verbose bool
	l       *log.Logger
}

// NewStdLogger returns a Logger writing to stderr. Debug messages are
// suppressed unless verbose is set.
func NewStdLogger(verbose bool) Logger {
	return &stdLogger{verbose: verbose, l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...any) {
	if s.verbose {
		s.l.Printf("DEBUG "+format, args...)
	}
}

func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...any)  { s.l.Printf("WARN "+format, args...) }
func (s *stdLogger) Errorf(format string, args ...any) { s.l.Printf("ERROR "+format, args...) }

// nopLogger discards everything; used when a Config leaves Logger nil.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

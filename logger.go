package rsocket

import (
	"log"
	"os"
)

// Logger is the thin logging seam the connection loop writes through. The
// teacher repo never reaches for a structured-logging framework either
// (server.go/client.go call log.Printf directly) — a single-connection
// protocol core has no request-scoped fields worth structuring, so this
// stays a narrow interface over the standard logger rather than pulling in
// zap/zerolog.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type stdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger backed by the standard library's log
// package, writing to stderr with a "rsocket: " prefix.
func NewStdLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "rsocket: ", log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) { s.l.Printf(format, args...) }
func (s *stdLogger) Warnf(format string, args ...interface{})  { s.l.Printf(format, args...) }
func (s *stdLogger) Errorf(format string, args ...interface{}) { s.l.Printf(format, args...) }

// nopLogger discards everything; it is the zero-value default so
// ConnOpts{} is usable without explicit configuration.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

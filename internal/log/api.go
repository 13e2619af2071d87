// Package log is a small levelled logger carried in a context.Context.
package log

import (
	"context"
)

// Sink writes entries that passed the level filter.
type Sink interface {
	Log(entry Entry) error
}

type Interface interface {
	Log(entry Entry)
	Logf(level Level, format string, args ...interface{})
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	// Errorf conditionally logs an error. If err is nil, nothing is logged.
	Errorf(err error, format string, args ...interface{})
}

// Level is the log level.
type Level int

const (
	// Default resolves to Info when a Logger is created.
	Default Level = 0
	Trace   Level = 1
	Debug   Level = 5
	Info    Level = 9
	Warn    Level = 13
	Error   Level = 17
)

// ParseLevel parses a case-insensitive level name.
func ParseLevel(input string) (Level, error) {
	var level Level
	err := level.UnmarshalText([]byte(input))
	return level, err
}

type contextKey struct{}

// Lookup returns the logger attached to ctx.
func Lookup(ctx context.Context) (*Logger, bool) {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	return logger, ok
}

// FromContext retrieves the current logger from the context or panics.
//
// Library entry points that may receive a bare context attach a fallback
// with ContextWithFallback first.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	panic("no logger in context")
}

// ContextWithLogger returns a new context with the given logger attached.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// ContextWithFallback attaches logger unless ctx already carries one.
func ContextWithFallback(ctx context.Context, logger *Logger) context.Context {
	if _, ok := Lookup(ctx); ok {
		return ctx
	}
	return ContextWithLogger(ctx, logger)
}

// ContextWithNewDefaultLogger attaches a debug level plain logger writing to
// stderr.
func ContextWithNewDefaultLogger(ctx context.Context) context.Context {
	return ContextWithLogger(ctx, Configure(stderr, Config{Level: Debug}))
}

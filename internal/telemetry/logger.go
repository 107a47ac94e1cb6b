// Package telemetry defines the logging interface this module's xrpc and
// firehose packages log through. Library
// code never depends on a third-party logging package directly; only the
// bundled CLI wires a concrete backend (see cmd/atproto-cli's logrus
// setup).
package telemetry

// Logger is a narrow adapter interface so library code can accept a
// caller-supplied logger without depending on any particular logging
// package. The bundled CLI's implementation wraps logrus (see
// cmd/atproto-cli/logger.go).
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// nopLogger discards everything; used as the zero-value default so
// callers are never required to supply a Logger.
type nopLogger struct{}

func (nopLogger) Debug(args ...interface{})                 {}
func (nopLogger) Info(args ...interface{})                  {}
func (nopLogger) Warn(args ...interface{})                  {}
func (nopLogger) Error(args ...interface{})                 {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}

// NopLogger returns a Logger that discards all output, the default used
// when a component is constructed without an explicit Logger option.
func NopLogger() Logger { return nopLogger{} }

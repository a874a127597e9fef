// Package logging provides the structured logger used across the disbursement
// pipeline. Components depend on the Logger interface; the logrus-backed
// implementation is wired in at the command layer.
package logging

// Logger is a leveled, structured logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger with an error field attached.
	WithError(err error) Logger
	// WithField returns a logger with a single field attached.
	WithField(key string, value any) Logger
	// WithFields returns a logger with multiple fields attached.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field)         {}
func (NopLogger) Info(string, ...Field)          {}
func (NopLogger) Warn(string, ...Field)          {}
func (NopLogger) Error(string, ...Field)         {}
func (n NopLogger) WithError(error) Logger       { return n }
func (n NopLogger) WithField(string, any) Logger { return n }
func (n NopLogger) WithFields(...Field) Logger   { return n }

// Package logging wraps the logging backend behind a small structured
// interface so services, handlers and CLI commands can be tested with a
// capturing logger.
package logging

// Logger is the structured logger used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying a single field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying all fields.
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the process.
	Fatal(msg string, fields ...Field)
	// Fatalf logs a formatted message and exits the process.
	Fatalf(msg string, args ...interface{})
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

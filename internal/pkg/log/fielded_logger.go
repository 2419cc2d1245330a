package log

import (
	"maps"

	"github.com/sirupsen/logrus"
)

// Fields are the predefined key/value pairs of a FieldedLogger
type Fields map[string]any

// FieldedLogger allows adding predefined fields to log entries
type FieldedLogger struct {
	fields Fields
}

// NewFieldedLogger creates a new FieldedLogger with the given fields
func NewFieldedLogger(args *Fields) *FieldedLogger {
	fields := Fields{}
	if args != nil {
		fields = maps.Clone(*args)
	}

	return &FieldedLogger{
		fields: fields,
	}
}

// With returns a child logger carrying the parent's fields plus the given ones
func (fl *FieldedLogger) With(args Fields) *FieldedLogger {
	fields := maps.Clone(fl.fields)
	maps.Copy(fields, args)

	return &FieldedLogger{fields: fields}
}

// Debug logs a message at the debug level with the predefined fields
func (fl *FieldedLogger) Debug(msg string, args ...any) {
	logWithLevel(logrus.DebugLevel, fl.fields, msg, args...)
}

// Info logs a message at the info level with the predefined fields
func (fl *FieldedLogger) Info(msg string, args ...any) {
	logWithLevel(logrus.InfoLevel, fl.fields, msg, args...)
}

// Warn logs a message at the warn level with the predefined fields
func (fl *FieldedLogger) Warn(msg string, args ...any) {
	logWithLevel(logrus.WarnLevel, fl.fields, msg, args...)
}

// Error logs a message at the error level with the predefined fields
func (fl *FieldedLogger) Error(msg string, args ...any) {
	logWithLevel(logrus.ErrorLevel, fl.fields, msg, args...)
}

package logging

import (
	"context"
	"io"
	"maps"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogger is a structured logger backed by logrus.
// Debug/Info go to the configured output; the text formatter colors
// levels when attached to a terminal.
type DefaultLogger struct {
	base   *logrus.Logger
	fields Fields
}

// NewDefaultLogger creates a logger writing text-formatted entries to stderr
func NewDefaultLogger() *DefaultLogger {
	return NewLogrusLogger(newLogrus(os.Stderr))
}

// NewDefaultLoggerTo creates a logger writing to w without colors
func NewDefaultLoggerTo(w io.Writer) *DefaultLogger {
	l := newLogrus(w)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return NewLogrusLogger(l)
}

// NewLogrusLogger wraps an existing logrus logger owned by the application
func NewLogrusLogger(l *logrus.Logger) *DefaultLogger {
	if l == nil {
		l = newLogrus(os.Stderr)
	}
	return &DefaultLogger{
		base:   l,
		fields: make(Fields),
	}
}

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func (d *DefaultLogger) entry(fields ...Fields) *logrus.Entry {
	all := make(logrus.Fields, len(d.fields))
	maps.Copy(all, logrus.Fields(d.fields))
	for _, f := range fields {
		maps.Copy(all, logrus.Fields(f))
	}
	return d.base.WithFields(all)
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.entry(fields...).Debug(msg)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.entry(fields...).Info(msg)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.entry(fields...).Warn(msg)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.entry(fields...).WithError(err).Error(msg)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		base:   d.base,
		fields: newFields,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level of the underlying logrus logger, which is
// shared by every logger derived through WithFields.
func (d *DefaultLogger) SetLevel(level Level) {
	switch level {
	case DebugLevel:
		d.base.SetLevel(logrus.DebugLevel)
	case WarnLevel:
		d.base.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		d.base.SetLevel(logrus.ErrorLevel)
	default:
		d.base.SetLevel(logrus.InfoLevel)
	}
}

// NoOpLogger discards everything. Tests use it to keep output clean.
type NoOpLogger struct{}

// NewNoOpLogger returns a logger that drops every entry
func NewNoOpLogger() Logger { return &NoOpLogger{} }

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}

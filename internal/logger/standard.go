package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StandardLogger writes formatted entries to a single writer.
type StandardLogger struct {
	mu        *sync.Mutex
	level     Level
	output    io.Writer
	formatter Formatter
	fields    []Field
}

// Option configures a StandardLogger during construction.
type Option func(*StandardLogger)

// WithLevel sets the minimum Level that will be emitted by the logger.
func WithLevel(level Level) Option {
	return func(l *StandardLogger) {
		l.level = level
	}
}

// WithOutput redirects log output to the provided writer.
func WithOutput(w io.Writer) Option {
	return func(l *StandardLogger) {
		l.output = w
	}
}

// WithFormatter overrides the formatter used to render log entries.
func WithFormatter(formatter Formatter) Option {
	return func(l *StandardLogger) {
		l.formatter = formatter
	}
}

// WithFields registers default fields for all subsequent log entries.
func WithFields(fields ...Field) Option {
	return func(l *StandardLogger) {
		l.fields = append(l.fields, fields...)
	}
}

// NewStandardLogger constructs a StandardLogger writing to stderr by default.
func NewStandardLogger(options ...Option) *StandardLogger {
	log := &StandardLogger{
		mu:     &sync.Mutex{},
		level:  LevelInfo,
		output: os.Stderr,
	}

	for _, opt := range options {
		if opt != nil {
			opt(log)
		}
	}

	if log.output == nil {
		log.output = os.Stderr
	}
	if log.formatter == nil {
		log.formatter = &TextFormatter{}
	}

	return log
}

func (l *StandardLogger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *StandardLogger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *StandardLogger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *StandardLogger) Error(format string, args ...interface{}) {
	l.emit(LevelError, fmt.Sprintf(format, args...), nil)
}

func (l *StandardLogger) DebugContext(_ context.Context, msg string, fields ...Field) {
	l.emit(LevelDebug, msg, fields)
}

func (l *StandardLogger) InfoContext(_ context.Context, msg string, fields ...Field) {
	l.emit(LevelInfo, msg, fields)
}

func (l *StandardLogger) WarnContext(_ context.Context, msg string, fields ...Field) {
	l.emit(LevelWarn, msg, fields)
}

func (l *StandardLogger) ErrorContext(_ context.Context, msg string, fields ...Field) {
	l.emit(LevelError, msg, fields)
}

// With derives a logger that shares the writer and lock of its parent.
func (l *StandardLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &StandardLogger{
		mu:        l.mu,
		level:     l.level,
		output:    l.output,
		formatter: l.formatter,
		fields:    append(append([]Field{}, l.fields...), fields...),
	}
}

// SetLevel adjusts the minimum log level emitted.
func (l *StandardLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormatter replaces the formatter used for subsequent entries.
func (l *StandardLogger) SetFormatter(formatter Formatter) {
	if formatter == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.formatter = formatter
}

// GetLevel returns the current minimum log level.
func (l *StandardLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *StandardLogger) emit(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := &Entry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  append(append([]Field{}, l.fields...), fields...),
	}

	data, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format log entry: %v\n", err)
		return
	}
	if _, err := l.output.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}

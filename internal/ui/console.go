package ui

import (
	"fmt"
	"io"
	"os"

	"romgen/internal/logger"
)

// Console coordinates logger output, step markers and plain text writes.
type Console struct {
	logger   logger.Logger
	progress logger.Progress
	output   io.Writer
}

// ConsoleOption customises a Console.
type ConsoleOption func(*Console)

// WithProgress replaces the step marker implementation.
func WithProgress(progress logger.Progress) ConsoleOption {
	return func(c *Console) {
		c.progress = progress
	}
}

// NewConsole builds a Console bound to the provided logger.
func NewConsole(log logger.Logger, output io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		logger: log,
		output: output,
	}
	if c.output == nil {
		c.output = os.Stdout
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.progress == nil {
		c.progress = logger.NewStepProgress(c.output)
	}

	return c
}

// Logger exposes the underlying logger.
func (c *Console) Logger() logger.Logger {
	return c.logger
}

// Output exposes the writer used for plain text.
func (c *Console) Output() io.Writer {
	return c.output
}

// Success logs a success message with a consistent prefix.
func (c *Console) Success(format string, args ...interface{}) {
	if c.logger == nil {
		return
	}
	c.logger.Info("✓ "+format, args...)
}

// StartProgress announces the start of a step.
func (c *Console) StartProgress(operation string) {
	if c.progress == nil {
		return
	}
	c.progress.Start(operation)
}

// StopProgress marks a step as finished.
func (c *Console) StopProgress(operation string) {
	if c.progress == nil {
		return
	}
	c.progress.Stop(operation)
}

// WriteLine outputs formatted text without involving the logger.
func (c *Console) WriteLine(format string, args ...interface{}) {
	if c.output == nil {
		return
	}
	fmt.Fprintf(c.output, format+"\n", args...)
}

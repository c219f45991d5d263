package logger

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// ColoredLogger colours level names when its writer is a terminal and
// NO_COLOR is unset.
type ColoredLogger struct {
	*StandardLogger
}

// NewColoredLogger returns a StandardLogger whose formatter colours levels.
func NewColoredLogger(options ...Option) *ColoredLogger {
	std := NewStandardLogger(options...)

	std.formatter = &TextFormatter{
		TimestampFormat: "15:04:05",
		EnableColors:    IsTerminal(std.output) && os.Getenv("NO_COLOR") == "",
	}

	return &ColoredLogger{StandardLogger: std}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

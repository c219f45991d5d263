// Package converter runs the external disk-to-nibble tools around a scoped
// temporary directory.
package converter

import (
	"context"
	"os"
	"strings"

	apperrors "romgen/internal/errors"
)

const outputFile = "input.nib"

// Tool describes one external converter binary and its calling convention.
type Tool struct {
	Name           string
	Path           string
	InputFile      string
	SupportsProDOS bool
	args           func(in, out string, prodos bool) []string
}

// Args returns the command line arguments for converting in to out.
func (t Tool) Args(in, out string, prodos bool) []string {
	return t.args(in, out, prodos)
}

// Woz2Dsk returns the woz2dsk tool, which takes positional input and output paths.
func Woz2Dsk(path string) Tool {
	return Tool{
		Name:      "woz2dsk",
		Path:      path,
		InputFile: "input.woz",
		args: func(in, out string, _ bool) []string {
			return []string{in, out}
		},
	}
}

// Dsk2Nib returns the dsk2nib tool: -i input -o output, plus -pp for ProDOS
// sector ordering.
func Dsk2Nib(path string) Tool {
	return Tool{
		Name:           "dsk2nib",
		Path:           path,
		InputFile:      "input.dsk",
		SupportsProDOS: true,
		args: func(in, out string, prodos bool) []string {
			args := []string{"-i", in, "-o", out}
			if prodos {
				args = append(args, "-pp")
			}
			return args
		},
	}
}

// Logger is the subset of logging methods the converter uses.
type Logger interface {
	Debug(format string, args ...interface{})
}

// Converter turns disk images into nibble images with an external tool.
type Converter struct {
	logger   Logger
	executor Executor
	tempRoot string
}

// Option customises Converter construction.
type Option func(*Converter)

// WithExecutor overrides how commands are run.
func WithExecutor(executor Executor) Option {
	return func(c *Converter) {
		c.executor = executor
	}
}

// WithTempRoot places workspaces below dir instead of the system temp directory.
func WithTempRoot(dir string) Option {
	return func(c *Converter) {
		c.tempRoot = dir
	}
}

// New constructs a Converter that runs tools with SystemExecutor by default.
func New(log Logger, opts ...Option) *Converter {
	c := &Converter{
		logger:   log,
		executor: SystemExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		c.executor = SystemExecutor{}
	}
	return c
}

// Convert writes input to a temporary file, runs tool on it and returns the
// bytes of the nibble image it produced. The temporary directory is removed
// on every return path.
func (c *Converter) Convert(ctx context.Context, tool Tool, input []byte, prodos bool) (out []byte, err error) {
	if prodos && !tool.SupportsProDOS {
		return nil, apperrors.ValidationError(apperrors.CodeValidationGeneric, "tool does not support prodos ordering", nil).
			WithModule("converter").
			WithOperation("Convert").
			WithField("tool", tool.Name)
	}

	ws, err := NewWorkspace(c.tempRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil && err == nil {
			out, err = nil, cerr
		}
	}()

	inPath := ws.Path(tool.InputFile)
	outPath := ws.Path(outputFile)

	if err := os.WriteFile(inPath, input, 0o644); err != nil {
		return nil, apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to write converter input", err).
			WithModule("converter").
			WithOperation("Convert").
			WithField("path", inPath)
	}

	args := tool.Args(inPath, outPath, prodos)
	if c.logger != nil {
		c.logger.Debug("Running %s %s", tool.Path, strings.Join(args, " "))
	}

	output, err := c.executor.Run(ctx, tool.Path, args...)
	if err != nil {
		return nil, apperrors.ToolError(apperrors.CodeToolExit, "converter exited with an error", err).
			WithModule("converter").
			WithOperation("Convert").
			WithFields(apperrors.Metadata{
				"tool":    tool.Name,
				"command": tool.Path + " " + strings.Join(args, " "),
				"output":  strings.TrimSpace(string(output)),
			})
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to read converter output", err).
			WithModule("converter").
			WithOperation("Convert").
			WithFields(apperrors.Metadata{
				"tool": tool.Name,
				"path": outPath,
			})
	}

	return data, nil
}

// Package app wires the manifest, fetcher, converter and emitter into the
// romgen build commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"romgen/internal/converter"
	"romgen/internal/downloader"
	"romgen/internal/emitter"
	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
	"romgen/internal/manifest"
	"romgen/internal/ui"
)

// Target selects which generated headers a build produces.
type Target string

const (
	TargetAll   Target = "all"
	TargetDisks Target = "disks"
	TargetROMs  Target = "roms"
)

// Options configures an App.
type Options struct {
	// Root is the project directory that relative manifest paths refer to.
	Root string
	// ConfigPath names an optional manifest merged over the embedded one.
	ConfigPath string
	// Progress enables download bars and step markers.
	Progress bool
	Output   io.Writer
	// ErrOutput receives download progress bars.
	ErrOutput io.Writer
}

// App runs the romgen commands.
type App struct {
	builder *Builder
	console *ui.Console
	printer *ui.Printer
	logger  logger.Logger
}

// New loads the manifest and builds an App backed by the network and the
// external converter tools.
func New(opts Options, log logger.Logger) (*App, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	m, err := manifest.Load(opts.ConfigPath)
	if err != nil {
		return nil, apperrors.Annotate(err, apperrors.ErrCategoryConfig, "app", "New").
			WithField("config", opts.ConfigPath)
	}

	fetchOpts := []downloader.Option{
		downloader.WithUserAgent(m.UserAgent),
		downloader.WithTimeout(m.Timeout),
	}
	if opts.Progress {
		fetchOpts = append(fetchOpts, downloader.WithProgressReporter(downloader.NewBarProgressReporter(opts.ErrOutput)))
	}
	fetcher, err := downloader.NewFetcher(log, fetchOpts...)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder(m, opts.Root, fetcher, converter.New(log), log)

	var consoleOpts []ui.ConsoleOption
	if !opts.Progress {
		consoleOpts = append(consoleOpts, ui.WithProgress(logger.NewStepProgress(nil)))
	}
	console := ui.NewConsole(log, opts.Output, consoleOpts...)

	return NewWithBuilder(builder, console, ui.NewPrinter(opts.Output), log), nil
}

// NewWithBuilder assembles an App from already constructed parts.
func NewWithBuilder(builder *Builder, console *ui.Console, printer *ui.Printer, log logger.Logger) *App {
	return &App{
		builder: builder,
		console: console,
		printer: printer,
		logger:  log,
	}
}

// Build generates the headers selected by target.
func (a *App) Build(ctx context.Context, target Target) error {
	var steps []Step

	if target == TargetAll || target == TargetDisks {
		steps = append(steps, a.diskSteps()...)
	}
	if target == TargetAll || target == TargetROMs {
		steps = append(steps, Step{Name: "Build ROM header", Fn: a.builder.BuildROMs})
	}
	if len(steps) == 0 {
		return apperrors.ValidationError(apperrors.CodeValidationGeneric, "unknown build target", nil).
			WithModule("app").
			WithOperation("Build").
			WithField("target", string(target))
	}

	if err := NewPipeline(a.console, a.logger, steps).Execute(ctx); err != nil {
		return err
	}

	a.console.Success("Generated assets are up to date")
	return nil
}

// diskSteps builds the disks and then the index. The index produced by the
// first step is handed to the second through the closure, for this run only.
func (a *App) diskSteps() []Step {
	var ix emitter.Index
	return []Step{
		{Name: "Build disk images", Fn: func(ctx context.Context) error {
			built, err := a.builder.BuildDisks(ctx)
			if err != nil {
				return err
			}
			ix = built
			return nil
		}},
		{Name: "Write disk index", Fn: func(context.Context) error {
			return a.builder.WriteIndex(ix)
		}},
	}
}

// List prints the state of every generated artifact.
func (a *App) List(context.Context) error {
	rows, err := a.builder.Status()
	if err != nil {
		return err
	}
	a.printer.PrintAssets(rows)
	a.printer.PrintSummary(rows)
	return nil
}

// Clean removes the generated disk headers and the index once confirmer
// agrees. It returns the number of files removed.
func (a *App) Clean(_ context.Context, confirmer ui.Confirmer) (int, error) {
	targets, err := a.builder.CleanTargets()
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		a.console.WriteLine("Nothing to clean")
		return 0, nil
	}

	for _, path := range targets {
		a.console.WriteLine("  %s", path)
	}
	ok, err := confirmer.Confirm(fmt.Sprintf("Remove %d generated files", len(targets)))
	if err != nil {
		return 0, apperrors.ValidationError(apperrors.CodeValidationGeneric, "confirmation failed", err).
			WithModule("app").
			WithOperation("Clean")
	}
	if !ok {
		a.logger.Info("Clean cancelled")
		return 0, nil
	}

	n, err := a.builder.Clean(targets)
	if err != nil {
		return n, err
	}
	a.console.Success("Removed %d generated files", n)
	return n, nil
}

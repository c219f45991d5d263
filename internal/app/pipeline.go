package app

import (
	"context"

	"github.com/pkg/errors"

	"romgen/internal/logger"
	"romgen/internal/ui"
)

// Step describes a single build phase.
type Step struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Pipeline executes build steps sequentially and stops at the first failure.
type Pipeline struct {
	steps   []Step
	console *ui.Console
	logger  logger.Logger
}

// NewPipeline constructs a new pipeline.
func NewPipeline(console *ui.Console, log logger.Logger, steps []Step) *Pipeline {
	return &Pipeline{
		steps:   steps,
		console: console,
		logger:  log,
	}
}

// Execute runs through all configured steps. A failing step's error is
// wrapped with the step name.
func (p *Pipeline) Execute(ctx context.Context) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s aborted", step.Name)
		}
		if p.logger != nil {
			p.logger.Debug("Executing step: %s", step.Name)
		}

		p.console.StartProgress(step.Name)
		if err := step.Fn(ctx); err != nil {
			return errors.Wrapf(err, "%s failed", step.Name)
		}
		p.console.StopProgress(step.Name)
	}

	return nil
}

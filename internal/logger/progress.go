package logger

import (
	"fmt"
	"io"
	"sync"
)

// Progress marks the start and end of long running steps.
type Progress interface {
	Start(operation string)
	Stop(operation string)
}

// StepProgress prints one line when a step starts and one when it finishes.
type StepProgress struct {
	mu     sync.Mutex
	output io.Writer
	active string
}

// NewStepProgress creates a StepProgress writing to output, or discarding
// everything when output is nil.
func NewStepProgress(output io.Writer) *StepProgress {
	if output == nil {
		output = io.Discard
	}
	return &StepProgress{output: output}
}

// Start announces operation.
func (p *StepProgress) Start(operation string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = operation
	fmt.Fprintf(p.output, "→ %s\n", operation)
}

// Stop reports operation as done.
func (p *StepProgress) Stop(operation string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == operation {
		p.active = ""
	}
	fmt.Fprintf(p.output, "✓ %s\n", operation)
}

// Active returns the operation started last and not yet stopped.
func (p *StepProgress) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

package downloader

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter receives download progress updates.
type ProgressReporter interface {
	OnStart(name string, totalSize int64)
	OnProgress(name string, current, total int64)
	OnComplete(name string, totalSize int64, elapsed time.Duration)
}

// NoopProgressReporter discards all progress events.
type NoopProgressReporter struct{}

func (NoopProgressReporter) OnStart(string, int64)                   {}
func (NoopProgressReporter) OnProgress(string, int64, int64)         {}
func (NoopProgressReporter) OnComplete(string, int64, time.Duration) {}

// BarProgressReporter draws a terminal progress bar per download. Responses
// without a Content-Length get an indeterminate spinner.
type BarProgressReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBarProgressReporter constructs a BarProgressReporter writing to w, or
// to stderr when w is nil.
func NewBarProgressReporter(w io.Writer) *BarProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &BarProgressReporter{writer: w}
}

func (r *BarProgressReporter) OnStart(name string, totalSize int64) {
	if totalSize <= 0 {
		totalSize = -1
	}
	r.bar = progressbar.NewOptions64(
		totalSize,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(name),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(r.writer)
		}),
	)
}

func (r *BarProgressReporter) OnProgress(_ string, current, _ int64) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Set64(current)
}

func (r *BarProgressReporter) OnComplete(string, int64, time.Duration) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}

// progressReader relays the running byte count of a response body.
type progressReader struct {
	reader    io.Reader
	total     int64
	current   int64
	reporter  ProgressReporter
	name      string
	startTime time.Time
}

func newProgressReader(reader io.Reader, total int64, reporter ProgressReporter, name string) *progressReader {
	pr := &progressReader{
		reader:    reader,
		total:     total,
		reporter:  reporter,
		name:      name,
		startTime: time.Now(),
	}
	reporter.OnStart(name, total)
	return pr
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		pr.reporter.OnProgress(pr.name, pr.current, pr.total)
	}
	return n, err
}

func (pr *progressReader) finish() {
	pr.reporter.OnComplete(pr.name, pr.current, time.Since(pr.startTime))
}

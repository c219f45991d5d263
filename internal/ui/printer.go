package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"

	"romgen/internal/logger"
)

// AssetStatus says whether a generated artifact is present.
type AssetStatus string

const (
	StatusBuilt   AssetStatus = "built"
	StatusMissing AssetStatus = "missing"
	StatusInvalid AssetStatus = "invalid"
)

// AssetRow is one line of the asset table.
type AssetRow struct {
	Kind   string
	Name   string
	Output string
	Status AssetStatus
	// Size is the number of bytes in the emitted array, valid when Status
	// is StatusBuilt.
	Size int
}

// Printer renders the asset table and short status lines.
type Printer struct {
	out          io.Writer
	colorEnabled bool
	success      *color.Color
	info         *color.Color
	warn         *color.Color
	error        *color.Color
	header       *color.Color
}

// NewPrinter constructs a Printer writing to out, with colour enabled for
// terminals unless NO_COLOR is set.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	enabled := logger.IsTerminal(out) && os.Getenv("NO_COLOR") == ""

	p := &Printer{
		out:          out,
		colorEnabled: enabled,
		success:      color.New(color.FgGreen, color.Bold),
		info:         color.New(color.FgBlue, color.Bold),
		warn:         color.New(color.FgYellow, color.Bold),
		error:        color.New(color.FgRed, color.Bold),
		header:       color.New(color.Bold, color.Underline),
	}

	if enabled {
		for _, c := range []*color.Color{p.success, p.info, p.warn, p.error, p.header} {
			c.EnableColor()
		}
	} else {
		for _, c := range []*color.Color{p.success, p.info, p.warn, p.error, p.header} {
			c.DisableColor()
		}
	}

	return p
}

// PrintAssets renders rows as an aligned table.
func (p *Printer) PrintAssets(rows []AssetRow) {
	headers := []string{"KIND", "NAME", "OUTPUT", "STATUS", "SIZE"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for i, row := range rows {
		size := "-"
		if row.Status == StatusBuilt {
			size = humanize.Bytes(uint64(row.Size))
		}
		cells[i] = []string{row.Kind, row.Name, row.Output, string(row.Status), size}
		for j, cell := range cells[i] {
			if w := runewidth.StringWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	p.printRow(headers, widths, func(_ int, s string) string { return p.header.Sprint(s) })
	for i, row := range rows {
		status := p.statusColor(row.Status)
		p.printRow(cells[i], widths, func(col int, s string) string {
			if col == 3 {
				return status.Sprint(s)
			}
			return s
		})
	}
}

// PrintSummary prints a one line count of built and missing artifacts.
func (p *Printer) PrintSummary(rows []AssetRow) {
	built := 0
	for _, row := range rows {
		if row.Status == StatusBuilt {
			built++
		}
	}
	mark := p.success.Sprint("✓")
	if built != len(rows) {
		mark = p.warn.Sprint("!")
	}
	fmt.Fprintf(p.out, "[ %s ] %d of %d artifacts built\n", mark, built, len(rows))
}

// PrintSeparator prints a repeated character separator.
func (p *Printer) PrintSeparator(char string, length int) {
	if length <= 0 {
		return
	}
	fmt.Fprintln(p.out, strings.Repeat(char, length))
}

func (p *Printer) statusColor(status AssetStatus) *color.Color {
	switch status {
	case StatusBuilt:
		return p.success
	case StatusMissing:
		return p.warn
	default:
		return p.error
	}
}

func (p *Printer) printRow(cells []string, widths []int, paint func(col int, s string) string) {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(paint(i, cell))
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		}
	}
	fmt.Fprintln(p.out, b.String())
}

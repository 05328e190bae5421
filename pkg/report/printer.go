package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")
)

// Printer writes the end-of-run summary to a terminal.
type Printer struct {
	writer io.Writer

	header  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a printer for w. Colors are dropped when w is not a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		writer:  w,
		header:  r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		failure: r.NewStyle().Foreground(salmonPink).Bold(true),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// Summary prints s.
func (p *Printer) Summary(s *Summary) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(p.writer)
	fmt.Fprintln(p.writer, p.header.Render(rule))
	fmt.Fprintln(p.writer, p.header.Render("  ONBOARDING SUMMARY"))
	fmt.Fprintln(p.writer, p.header.Render(rule))

	fmt.Fprint(p.writer, "  Status: ")
	if s.Succeeded() {
		fmt.Fprintln(p.writer, p.success.Render("✓ WALLET IMPORTED"))
	} else {
		fmt.Fprintln(p.writer, p.failure.Render("✗ ABORTED"))
	}

	if s.WindowTitle != "" {
		fmt.Fprintf(p.writer, "  Window: %s\n", s.WindowTitle)
	}
	fmt.Fprintf(p.writer, "  Duration: %s\n", s.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(p.writer, "  Steps: %d passed, %d failed, %d skipped\n",
		s.Metrics.Passed, s.Metrics.Failed, s.Metrics.Skipped)

	if s.Succeeded() && !s.PasswordSet {
		fmt.Fprintln(p.writer, p.muted.Render("  Password form was not shown"))
	}

	if !s.Succeeded() {
		fmt.Fprintln(p.writer)
		fmt.Fprintln(p.writer, p.failure.Render("  "+s.Reason))
		if s.Step != "" {
			fmt.Fprintln(p.writer, p.muted.Render(fmt.Sprintf("    at step %d: %s", s.StepIndex, s.Step)))
		}
		if s.Error != "" {
			fmt.Fprintln(p.writer, p.muted.Render("    "+s.Error))
		}
		if s.TimedOut {
			fmt.Fprintln(p.writer, p.muted.Render("    (timed out)"))
		}
	}

	fmt.Fprintln(p.writer, p.header.Render(rule))
	fmt.Fprintln(p.writer)
}

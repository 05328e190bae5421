package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Artifact file names
const (
	RunFile     = "run.json"
	SummaryFile = "summary.md"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes every artifact format
func (w *ArtifactWriter) WriteAll(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteRunJSON(summary); err != nil {
		return err
	}
	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return err
	}
	return nil
}

// WriteRunJSON writes the full summary as JSON
func (w *ArtifactWriter) WriteRunJSON(summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := os.WriteFile(filepath.Join(w.outputDir, RunFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write run JSON: %w", err)
	}
	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *Summary) error {
	var md strings.Builder

	md.WriteString("# Wallet Onboarding Summary\n\n")
	if summary.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	}
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	md.WriteString("## Result\n\n")
	if summary.Succeeded() {
		md.WriteString("✅ **Success**\n\n")
		if !summary.PasswordSet {
			md.WriteString("Password form was not shown; the existing password was kept.\n\n")
		}
	} else {
		md.WriteString(fmt.Sprintf("❌ **%s**\n\n", summary.Reason))
		if summary.Step != "" {
			md.WriteString(fmt.Sprintf("Failed at step %d (%s).\n\n", summary.StepIndex, summary.Step))
		}
		if summary.Error != "" {
			md.WriteString(fmt.Sprintf("```\n%s\n```\n\n", summary.Error))
		}
	}

	if len(summary.Steps) > 0 {
		md.WriteString("## Steps\n\n")
		md.WriteString("| # | Step | Element | Action | Status | Duration |\n")
		md.WriteString("|---|------|---------|--------|--------|----------|\n")
		for _, rec := range summary.Steps {
			md.WriteString(fmt.Sprintf("| %d | %s | `%s` | %s | %s | %s |\n",
				rec.Index, rec.Name, rec.Element, rec.Action, rec.Status, rec.Duration.Round(time.Millisecond)))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Steps:** %d\n", summary.Metrics.Total))
	md.WriteString(fmt.Sprintf("- **Passed:** %d\n", summary.Metrics.Passed))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", summary.Metrics.Failed))
	md.WriteString(fmt.Sprintf("- **Skipped:** %d\n", summary.Metrics.Skipped))
	md.WriteString(fmt.Sprintf("- **Browser released:** %t\n", summary.Released))

	if err := os.WriteFile(filepath.Join(w.outputDir, SummaryFile), []byte(md.String()), 0600); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}

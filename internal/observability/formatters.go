// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxUtterancesToShow is the default number of utterances to display
	maxUtterancesToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecording prints the recording's status and stage outputs.
func (p *Printer) PrintRecording(rec *types.Recording) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", rec.Status)
	fmt.Fprintf(&sb, "Mode: %s\n", rec.Mode)
	if rec.Language != "" {
		fmt.Fprintf(&sb, "Language: %s\n", rec.Language)
	}
	if rec.ReviewRequired {
		sb.WriteString("Review required: yes\n")
	}
	if rec.FailedStage != "" {
		fmt.Fprintf(&sb, "Failed stage: %s\n", rec.FailedStage)
		fmt.Fprintf(&sb, "Cause: %s\n", rec.FailureMsg)
	}
	if rec.Score != nil {
		fmt.Fprintf(&sb, "Composite score: %d / 100\n", *rec.Score)
	}
	p.printBox(fmt.Sprintf("Recording %s", rec.ID), strings.TrimRight(sb.String(), "\n"))
}

// PrintTagCounts prints the per-category tallies.
func (p *Printer) PrintTagCounts(counts types.TagCounts) {
	if counts == nil {
		return
	}
	var sb strings.Builder
	for _, code := range types.AllCodes {
		fmt.Fprintf(&sb, "%-16s %d\n", code, counts[code])
	}
	p.printBox("Tag Counts", strings.TrimRight(sb.String(), "\n"))
}

// PrintUtterances prints the first utterances of the transcript.
func (p *Printer) PrintUtterances(utts []types.Utterance) {
	var sb strings.Builder
	for i, u := range utts {
		if i >= maxUtterancesToShow {
			fmt.Fprintf(&sb, "... and %d more\n", len(utts)-maxUtterancesToShow)
			break
		}
		role := "?"
		if u.Role != nil {
			role = string(*u.Role)
		}
		fmt.Fprintf(&sb, "%d [%s] %s\n", u.Order, role, u.Text)
	}
	p.printBox(fmt.Sprintf("Utterances (%d)", len(utts)), strings.TrimRight(sb.String(), "\n"))
}

// PrintFeedback prints the qualitative report.
func (p *Printer) PrintFeedback(fb *types.Feedback) {
	if fb == nil {
		return
	}
	content := fmt.Sprintf("Highlight: %s\nTip: %s\n%s", fb.Highlight, fb.Tip, fb.Encouragement)
	p.printBox("Session Feedback", content)
}

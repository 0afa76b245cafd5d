// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-tailor/internal/jobs"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/session"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSessionSummary outputs the session's inputs and gate states.
func (p *Printer) PrintSessionSummary(rec *session.Record) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CV:        %s\n", orDash(rec.CVFilename)))
	sb.WriteString(fmt.Sprintf("Job desc:  %d words (%s)\n", rec.WordCount, rec.JobDescriptionStatus()))
	sb.WriteString(fmt.Sprintf("Template:  %s\n", rec.SelectedTemplate))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Gates: cv=%s jd=%s template=%s",
		gateMark(rec.FileUploaded), gateMark(rec.JobDescriptionAdded), gateMark(rec.TemplateSelected)))

	p.printBox("SESSION", sb.String())
}

// PrintKeywords outputs the extracted keyword payload. Non-JSON payloads
// (the raw-response envelope) are shown as-is, truncated.
func (p *Printer) PrintKeywords(payload []byte) {
	if len(payload) == 0 {
		return
	}

	var parsed map[string][]string
	if err := json.Unmarshal(payload, &parsed); err != nil {
		p.printBox("EXTRACTED KEYWORDS", string(payload))
		return
	}

	var sb strings.Builder
	for _, field := range []string{"technical_skills", "soft_skills", "qualifications", "responsibilities", "company_values"} {
		items := parsed[field]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s:\n", strings.ReplaceAll(field, "_", " ")))
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}
	if sb.Len() == 0 {
		return
	}

	p.printBox("EXTRACTED KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunResult outputs the artifacts of a completed optimization run.
func (p *Printer) PrintRunResult(result *pipeline.RunResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:     %s\n", result.State))
	sb.WriteString(fmt.Sprintf("Artifact:  %s\n", orDash(result.ArtifactPath)))
	sb.WriteString(fmt.Sprintf("PDF:       %s", orDash(result.PDFPath)))
	if result.Message != "" {
		sb.WriteString(fmt.Sprintf("\n\nNote: %s", result.Message))
	}

	p.printBox("OPTIMIZATION RESULT", sb.String())
}

// PrintListings outputs the top ranked job listings.
func (p *Printer) PrintListings(listings []jobs.Listing) {
	if len(listings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total listings: %d\n\n", len(listings)))

	count := min(len(listings), maxItemsToShow)
	for i := 0; i < count; i++ {
		l := listings[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, l.Title))
		sb.WriteString(fmt.Sprintf("    %s, %s\n", l.Company, l.Location))
		sb.WriteString(fmt.Sprintf("    Score: %.2f [%s]", l.MatchScore, l.Board))
		if i < count-1 {
			sb.WriteString("\n\n")
		}
	}

	if len(listings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n\n... and %d more listings", len(listings)-maxItemsToShow))
	}

	p.printBox("TOP RANKED LISTINGS", sb.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func gateMark(armed bool) string {
	if armed {
		return "armed"
	}
	return "open"
}

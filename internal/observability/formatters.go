// Package observability provides formatted operator output for listing runs.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/status"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for the operator
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fitLine(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fitLine(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fitLine truncates line to the box interior. fmt pads by rune count.
func fitLine(line string) string {
	width := boxWidth - 4
	if utf8.RuneCountInString(line) > width {
		runes := []rune(line)
		line = string(runes[:width-3]) + "..."
	}
	return line
}

// PrintRecord outputs a summary of one processed listing.
func (p *Printer) PrintRecord(record *listing.Record) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:       %s\n", record.URL))

	meta := record.Meta
	if meta != nil {
		sb.WriteString(fmt.Sprintf("Status:    %s (%s)\n", meta.StatusKey, meta.StatusCode))
	}
	sb.WriteString(fmt.Sprintf("Title:     %s\n", display(record.ListingTitle)))
	sb.WriteString(fmt.Sprintf("Price:     %s\n", display(record.Price)))
	sb.WriteString(fmt.Sprintf("Beds/Bath: %s / %s\n", display(record.Bedrooms), display(record.Bathrooms)))
	sb.WriteString(fmt.Sprintf("Type:      %s\n", display(record.PropertyType)))
	sb.WriteString(fmt.Sprintf("Phone:     %s\n", display(record.PhoneNumber)))

	if meta != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Model:     %s (attempts: %d)\n", displayString(meta.GeminiModel), meta.GeminiAttempts))
		sb.WriteString(fmt.Sprintf("Tokens:    prompt=%s response=%s total=%s\n",
			displayInt(meta.GeminiPromptTokens), displayInt(meta.GeminiRespTokens), displayInt(meta.GeminiTotalTokens)))
		sb.WriteString(fmt.Sprintf("Durations: crawl=%s gemini=%s total=%s\n",
			displaySeconds(meta.CrawlDurationSec), displaySeconds(meta.GeminiDurationSec), displaySeconds(meta.TotalDurationSec)))
		sb.WriteString(fmt.Sprintf("Timestamp: %s\n", meta.TimestampUTC))
	}

	p.printBox("RESULT", sb.String())
}

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	RunID      string
	OutputFile string
	Duration   time.Duration
	ByStatus   map[string]int
	Total      int
}

// Summarize counts records by status.
func Summarize(records []listing.Record) RunSummary {
	s := RunSummary{ByStatus: make(map[string]int), Total: len(records)}
	for i := range records {
		key := status.UnexpectedError
		if records[i].Meta != nil {
			key = records[i].Meta.StatusKey
		}
		s.ByStatus[key]++
	}
	return s
}

// PrintRunSummary outputs the end-of-run totals.
func (p *Printer) PrintRunSummary(summary RunSummary) {
	var sb strings.Builder

	if summary.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:      %s\n", summary.RunID))
	}
	sb.WriteString(fmt.Sprintf("URLs:     %d\n", summary.Total))
	if summary.OutputFile != "" {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", summary.OutputFile))
	}
	sb.WriteString(fmt.Sprintf("Duration: %.2fs\n", summary.Duration.Seconds()))

	if len(summary.ByStatus) > 0 {
		sb.WriteString("\n")
		// Registry order keeps the listing stable.
		for _, def := range status.All() {
			if n := summary.ByStatus[def.Name]; n > 0 {
				sb.WriteString(fmt.Sprintf("  • %-22s %d\n", def.Name, n))
			}
		}
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintStatuses outputs the status registry as a table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStatuses(defs []status.Definition) {
	for _, def := range defs {
		fmt.Fprintf(p.out, "%s  %-28s %s\n", def.Code, def.Name, def.Description)
	}
}

// PrintPhoneCandidates outputs the phone candidates found in a page.
func (p *Printer) PrintPhoneCandidates(source string, candidates []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s\n", source))
	sb.WriteString(fmt.Sprintf("Found:  %d\n", len(candidates)))

	if len(candidates) > 0 {
		sb.WriteString("\n")
		count := min(len(candidates), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, candidates[i]))
		}
		if len(candidates) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(candidates)-maxItemsToShow))
		}
	}

	p.printBox("PHONE CANDIDATES", sb.String())
}

func display(v any) string {
	if v == nil {
		return "-"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func displayString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func displayInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}

func displaySeconds(s *float64) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fs", *s)
}

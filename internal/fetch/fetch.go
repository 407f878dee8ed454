// Package fetch renders listing pages in a shared headless browser session and
// returns their content in the representations used for extraction.
package fetch

import (
	"fmt"
	"time"
)

// Origin names the representation a page text was taken from.
type Origin string

// Representations in order of preference.
const (
	OriginMarkdown    Origin = "markdown"
	OriginCleanedHTML Origin = "cleaned_html"
	OriginRawHTML     Origin = "html"
)

// Result holds a captured page.
type Result struct {
	URL         string // requested URL
	FinalURL    string // location after redirects
	StatusCode  int    // document HTTP status, 0 when not observed
	Title       string
	Markdown    string
	CleanedHTML string
	RawHTML     string
	Ready       bool // readiness predicate held before capture
	Clicked     int  // elements clicked by the interaction script
	Duration    time.Duration
}

// Text returns the content handed to the extraction service: markdown when
// non-empty, else cleaned HTML when non-empty, else raw HTML.
func (r *Result) Text() (string, Origin) {
	return SelectText(r.Markdown, r.CleanedHTML, r.RawHTML)
}

// SelectText applies the representation preference chain.
func SelectText(markdown, cleanedHTML, rawHTML string) (string, Origin) {
	switch {
	case markdown != "":
		return markdown, OriginMarkdown
	case cleanedHTML != "":
		return cleanedHTML, OriginCleanedHTML
	default:
		return rawHTML, OriginRawHTML
	}
}

// Error represents a failure to render or capture a page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

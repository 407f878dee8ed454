package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/status"
)

func intp(v int) *int { return &v }

func successRecord() listing.Record {
	r := listing.FromFields("https://www.mudah.my/a.htm", map[string]any{
		"listing_title": "Cozy Condo",
		"price":         "RM 450,000",
		"bedrooms":      "3",
		"bathrooms":     2.0,
		"phone_number":  "0177870260",
	})
	crawl := 4 * time.Second
	r.Meta = listing.NewMetadata(listing.MetaInput{
		Status:        status.Success,
		Model:         "gemini-2.5-flash-lite",
		Attempts:      1,
		Usage:         &listing.Usage{PromptTokens: intp(1200), ResponseTokens: intp(80), TotalTokens: intp(1280)},
		CrawlDuration: &crawl,
	}, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return r
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := successRecord()
	p.PrintRecord(&r)
	output := buf.String()

	assert.Contains(t, output, "RESULT")
	assert.Contains(t, output, "https://www.mudah.my/a.htm")
	assert.Contains(t, output, "SUCCESS (000000)")
	assert.Contains(t, output, "Cozy Condo")
	assert.Contains(t, output, "RM 450,000")
	assert.Contains(t, output, "3 / 2")
	assert.Contains(t, output, "Type:      -")
	assert.Contains(t, output, "0177870260")
	assert.Contains(t, output, "prompt=1200 response=80 total=1280")
	assert.Contains(t, output, "crawl=4.00s gemini=- total=-")
	assert.Contains(t, output, "2024-05-01T10:00:00Z")
}

func TestPrintRecord_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecord(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecord_NoMeta(t *testing.T) {
	var buf bytes.Buffer
	r := listing.Empty("u")
	NewPrinter(&buf).PrintRecord(&r)

	output := buf.String()
	assert.Contains(t, output, "URL:       u")
	assert.NotContains(t, output, "Status:")
}

func TestSummarize(t *testing.T) {
	failed := listing.Empty("b")
	failed.Meta = listing.NewMetadata(listing.MetaInput{Status: status.CrawlFailed}, time.Now())

	summary := Summarize([]listing.Record{successRecord(), failed, successRecord(), listing.Empty("c")})

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.ByStatus[status.Success])
	assert.Equal(t, 1, summary.ByStatus[status.CrawlFailed])
	assert.Equal(t, 1, summary.ByStatus[status.UnexpectedError])
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := RunSummary{
		RunID:      "run-1",
		OutputFile: "output.json",
		Duration:   1500 * time.Millisecond,
		Total:      3,
		ByStatus:   map[string]int{status.Success: 2, status.GeminiCallFailed: 1},
	}
	NewPrinter(&buf).PrintRunSummary(summary)
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "output.json")
	assert.Contains(t, output, "1.50s")
	assert.Less(t, strings.Index(output, status.Success), strings.Index(output, status.GeminiCallFailed))
}

func TestPrintStatuses(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStatuses(status.All())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(status.All()))
	assert.True(t, strings.HasPrefix(lines[0], "000000  SUCCESS"))
}

func TestPrintPhoneCandidates(t *testing.T) {
	var buf bytes.Buffer
	candidates := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		candidates = append(candidates, "0123456789")
	}
	NewPrinter(&buf).PrintPhoneCandidates("page.html", candidates)
	output := buf.String()

	assert.Contains(t, output, "PHONE CANDIDATES")
	assert.Contains(t, output, "Found:  12")
	assert.Contains(t, output, "10. 0123456789")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 200)+"\nshort")
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

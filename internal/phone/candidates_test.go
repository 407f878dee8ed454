package phone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidates_PatternCoverage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dashed mobile", "Call 017-787 0260 now", "017-787 0260"},
		{"spaced mobile", "Tel: 012 345 6789", "012 345 6789"},
		{"compact mobile", `<a href="tel:0123456789">`, "0123456789"},
		{"compact eleven digits", "contact 01123456789 today", "01123456789"},
		{"landline", "Office 03-12345678", "03-12345678"},
		{"international link", `href="https://wasap.my/60123456789"`, "60123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Candidates(tt.input), tt.want)
		})
	}
}

func TestCandidates_Deduplicates(t *testing.T) {
	got := Candidates("Call 017-787 0260 or 017-787 0260 again")
	assert.Equal(t, []string{"017-787 0260"}, got)
}

func TestCandidates_OrderIsPatternThenPosition(t *testing.T) {
	// The landline appears first in the text but its pattern runs after the
	// mobile patterns, so it is listed after them.
	html := "03-12345678 then 0123456789 then 012-987 6543 then wasap.my/60198765432"

	got := Candidates(html)

	assert.Equal(t, []string{
		"0123456789",
		"012-987 6543",
		"03-12345678",
		"60198765432",
	}, got)
}

func TestCandidates_NoNormalization(t *testing.T) {
	got := Candidates("017 787 0260")
	assert.Equal(t, []string{"017 787 0260"}, got)
}

func TestCandidates_Idempotent(t *testing.T) {
	html := strings.Repeat(`<div>017-787 0260</div><script>{"phone":"60177870260"}</script>`, 3)

	first := Candidates(html)
	second := Candidates(html)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"017-787 0260", "60177870260"}, first)
}

func TestCandidates_NoMatches(t *testing.T) {
	got := Candidates("<p>No phone here, price RM 450,000</p>")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCandidates_WordBoundaries(t *testing.T) {
	// Digits embedded in a longer run are not phone numbers.
	got := Candidates("id=990123456789000")
	assert.Empty(t, got)
}

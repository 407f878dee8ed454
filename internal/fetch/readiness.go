package fetch

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Readiness decides whether rendered page text has loaded enough to capture.
// The text must reach MinChars after whitespace collapsing and, when Pattern is
// set, contain a match for it.
type Readiness struct {
	MinChars int
	Pattern  *regexp.Regexp
}

// NewReadiness compiles pattern into a Readiness. An empty pattern only checks length.
func NewReadiness(minChars int, pattern string) (Readiness, error) {
	r := Readiness{MinChars: minChars}
	if pattern == "" {
		return r, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Readiness{}, fmt.Errorf("invalid readiness pattern: %w", err)
	}
	r.Pattern = re
	return r, nil
}

// Ready reports whether text satisfies the predicate.
func (r Readiness) Ready(text string) bool {
	collapsed := whitespaceRun.ReplaceAllString(text, " ")
	if utf8.RuneCountInString(collapsed) < r.MinChars {
		return false
	}
	if r.Pattern == nil {
		return true
	}
	return r.Pattern.MatchString(collapsed)
}

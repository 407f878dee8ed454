// Package phone finds phone-number-shaped substrings in raw page markup.
//
// The patterns follow Malaysian numbering. Candidates are hints for the extraction
// prompt, not validated numbers, and are returned exactly as they appear in the markup.
package phone

import "regexp"

// patterns are applied in order; all matches of one pattern are collected before the next.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\b01\d[-\s]?\d{3}[-\s]?\d{4}\b`), // 012-345 6789 / 017 787 0260
	regexp.MustCompile(`\b01\d\d{7,8}\b`),                // 0112345678 / 01123456789
	regexp.MustCompile(`\b0\d{1,2}-\d{6,8}\b`),           // 03-12345678
	regexp.MustCompile(`\b6\d{8,11}\b`),                  // 60123456789
}

// Candidates scans rawHTML with every pattern and returns the distinct matches in
// first-seen order, pattern by pattern.
func Candidates(rawHTML string) []string {
	candidates := []string{}
	seen := make(map[string]bool)

	for _, re := range patterns {
		for _, m := range re.FindAllString(rawHTML, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			candidates = append(candidates, m)
		}
	}

	return candidates
}

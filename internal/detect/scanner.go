// Package detect finds coupon-shaped tokens in AI Overview text and
// classifies them against the active coupon registry.
package detect

import (
	"fmt"
	"regexp"

	"coupontracker/internal/config"
)

// Match is one positional scan hit: the exact source substring and its byte
// offset in the scanned text.
type Match struct {
	Text     string
	Position int
}

// Scanner finds coupon-code candidates using a single compiled pattern.
// The pattern describes coupon syntax rather than specific codes, so the
// scanner also surfaces codes the registry has never seen. Scanning is pure:
// identical text always yields identical matches in left-to-right order.
type Scanner struct {
	re     *regexp.Regexp
	minLen int
	maxLen int
}

// NewScanner compiles the detection pattern from the given rules.
// Matching is case-insensitive and leftmost-longest, so the longest
// candidate at a given start position wins.
func NewScanner(rules config.Rules) (*Scanner, error) {
	re, err := regexp.Compile("(?i)" + rules.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon pattern %q: %w", rules.Pattern, err)
	}
	re.Longest()

	return &Scanner{
		re:     re,
		minLen: rules.MinLength,
		maxLen: rules.MaxLength,
	}, nil
}

// Scan returns all candidate matches in text, in order of position.
// Empty text yields no matches.
func (s *Scanner) Scan(text string) []Match {
	if text == "" {
		return nil
	}

	var matches []Match
	for _, loc := range s.re.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if s.minLen > 0 && len(candidate) < s.minLen {
			continue
		}
		if s.maxLen > 0 && len(candidate) > s.maxLen {
			continue
		}
		matches = append(matches, Match{Text: candidate, Position: loc[0]})
	}
	return matches
}

package detect

import (
	"strings"

	"coupontracker/internal/models"
	"coupontracker/internal/registry"
)

// Classifier turns scan matches into classified mentions. Validity is a
// function of registry membership at classification time only; it is never
// recomputed if the registry changes later.
type Classifier struct {
	scanner      *Scanner
	registry     *registry.Registry
	contextChars int
}

// NewClassifier creates a classifier over the given registry snapshot.
func NewClassifier(scanner *Scanner, reg *registry.Registry, contextChars int) *Classifier {
	return &Classifier{
		scanner:      scanner,
		registry:     reg,
		contextChars: contextChars,
	}
}

// Classify scans a record's response text and emits one Mention per
// occurrence, not deduplicated; frequency is itself a report signal.
// A record with empty text yields an empty result, not an error.
func (c *Classifier) Classify(record models.OverviewRecord) []models.Mention {
	matches := c.scanner.Scan(record.ResponseText)
	if len(matches) == 0 {
		return nil
	}

	mentions := make([]models.Mention, 0, len(matches))
	for _, match := range matches {
		mentions = append(mentions, models.Mention{
			RecordID: record.ID,
			Keyword:  record.Keyword,
			Code:     match.Text,
			Position: match.Position,
			IsValid:  c.registry.IsActive(match.Text),
			Context:  snippet(record.ResponseText, match.Position, match.Position+len(match.Text), c.contextChars),
		})
	}
	return mentions
}

// snippet extracts the text around a match with surrounding whitespace
// collapsed, adding ellipses where the source was truncated.
func snippet(text string, start, end, contextChars int) string {
	if contextChars <= 0 {
		return ""
	}

	from := start - contextChars
	if from < 0 {
		from = 0
	}
	to := end + contextChars
	if to > len(text) {
		to = len(text)
	}

	prefix := ""
	if from > 0 {
		prefix = "..."
	}
	suffix := ""
	if to < len(text) {
		suffix = "..."
	}

	collapsed := strings.Join(strings.Fields(text[from:to]), " ")
	return prefix + collapsed + suffix
}

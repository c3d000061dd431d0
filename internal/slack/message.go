package slack

import (
	"fmt"
	"strings"

	"coupontracker/internal/models"
	"coupontracker/internal/report"
)

// maxDisplayEntries caps per-section keyword lists so a busy week does not
// produce an unreadable message.
const maxDisplayEntries = 10

// Message is a webhook payload. Text is the notification fallback; Blocks
// carry the Block Kit rendering.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a single Block Kit block.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a Block Kit text object.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func header(text string) Block {
	return Block{Type: "header", Text: &Text{Type: "plain_text", Text: text}}
}

func section(markdown string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: markdown}}
}

func contextBlock(markdown string) Block {
	return Block{Type: "context", Elements: []Text{{Type: "mrkdwn", Text: markdown}}}
}

func divider() Block {
	return Block{Type: "divider"}
}

// BuildWeeklyReport renders the aggregated report as a Block Kit message:
// a summary, an invalid-coupons section with the offending codes
// highlighted, and the per-keyword valid mention counts. Entries arrive
// already sorted by the aggregator and are rendered in that order.
func BuildWeeklyReport(entries []models.ReportEntry, window models.Window) Message {
	period := fmt.Sprintf("%s to %s", window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	valid, invalid := report.Totals(entries)

	blocks := []Block{
		header("Weekly coupon mention report"),
		contextBlock("Period: " + period),
		divider(),
		section(fmt.Sprintf(
			"*Summary*\n• Keywords with mentions: %d\n• Valid mentions: %d\n• Invalid mentions: %d",
			len(entries), valid, invalid,
		)),
	}

	if withInvalid := entriesWithInvalidCodes(entries); len(withInvalid) > 0 {
		blocks = append(blocks, divider(), section("*Invalid or outdated coupons detected*"))
		blocks = append(blocks, entryListBlocks(withInvalid, formatInvalidEntry)...)
	}

	if withValid := entriesWithValidMentions(entries); len(withValid) > 0 {
		blocks = append(blocks, divider(), section("*Valid coupon mentions*"))
		blocks = append(blocks, entryListBlocks(withValid, formatValidEntry)...)
	}

	if len(entries) == 0 {
		blocks = append(blocks, divider(), section("No coupon mentions found this period."))
	}

	return Message{
		Text:   fmt.Sprintf("Weekly coupon report: %s (%d valid, %d invalid mentions)", period, valid, invalid),
		Blocks: blocks,
	}
}

func entriesWithInvalidCodes(entries []models.ReportEntry) []models.ReportEntry {
	var filtered []models.ReportEntry
	for _, e := range entries {
		if e.InvalidCount > 0 {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func entriesWithValidMentions(entries []models.ReportEntry) []models.ReportEntry {
	var filtered []models.ReportEntry
	for _, e := range entries {
		if e.ValidCount > 0 {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// entryListBlocks renders entries as one section of bullet lines, capped at
// maxDisplayEntries with an overflow note.
func entryListBlocks(entries []models.ReportEntry, format func(models.ReportEntry) string) []Block {
	shown := entries
	if len(shown) > maxDisplayEntries {
		shown = shown[:maxDisplayEntries]
	}

	lines := make([]string, 0, len(shown))
	for _, entry := range shown {
		lines = append(lines, format(entry))
	}

	blocks := []Block{section(strings.Join(lines, "\n"))}
	if remaining := len(entries) - len(shown); remaining > 0 {
		blocks = append(blocks, contextBlock(fmt.Sprintf("_...and %d more_", remaining)))
	}
	return blocks
}

func formatInvalidEntry(entry models.ReportEntry) string {
	codes := make([]string, 0, len(entry.InvalidCodes))
	for _, code := range entry.InvalidCodes {
		codes = append(codes, "`"+code+"`")
	}
	return fmt.Sprintf("• _%s_: %s (%d mention(s))", entry.Keyword, strings.Join(codes, ", "), entry.InvalidCount)
}

func formatValidEntry(entry models.ReportEntry) string {
	return fmt.Sprintf("• _%s_: %d mention(s)", entry.Keyword, entry.ValidCount)
}

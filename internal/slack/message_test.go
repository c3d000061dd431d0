package slack

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"coupontracker/internal/models"
)

func testWindow() models.Window {
	end := time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC)
	return models.Window{Start: end.AddDate(0, 0, -7), End: end}
}

func blockTexts(msg Message) string {
	var sb strings.Builder
	for _, b := range msg.Blocks {
		if b.Text != nil {
			sb.WriteString(b.Text.Text)
			sb.WriteString("\n")
		}
		for _, e := range b.Elements {
			sb.WriteString(e.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func TestBuildWeeklyReport(t *testing.T) {
	entries := []models.ReportEntry{
		{Keyword: "vpn deals", ValidCount: 2, InvalidCount: 1, InvalidCodes: []string{"OLD5"}},
		{Keyword: "best vpn", ValidCount: 1, InvalidCount: 0},
	}

	msg := BuildWeeklyReport(entries, testWindow())

	if !strings.Contains(msg.Text, "2025-11-10 to 2025-11-17") {
		t.Errorf("fallback text %q should contain the period", msg.Text)
	}
	if !strings.Contains(msg.Text, "3 valid, 1 invalid") {
		t.Errorf("fallback text %q should contain mention totals", msg.Text)
	}

	rendered := blockTexts(msg)
	for _, want := range []string{
		"Weekly coupon mention report",
		"Period: 2025-11-10 to 2025-11-17",
		"Keywords with mentions: 2",
		"Invalid or outdated coupons detected",
		"`OLD5`",
		"_vpn deals_",
		"Valid coupon mentions",
		"_best vpn_",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered blocks missing %q:\n%s", want, rendered)
		}
	}
}

func TestBuildWeeklyReportNoMentions(t *testing.T) {
	msg := BuildWeeklyReport(nil, testWindow())

	rendered := blockTexts(msg)
	if !strings.Contains(rendered, "No coupon mentions found") {
		t.Errorf("rendered blocks should note the empty period:\n%s", rendered)
	}
}

func TestBuildWeeklyReportCapsDisplayedEntries(t *testing.T) {
	var entries []models.ReportEntry
	for i := 0; i < maxDisplayEntries+5; i++ {
		entries = append(entries, models.ReportEntry{
			Keyword:    fmt.Sprintf("keyword %02d", i),
			ValidCount: 1,
		})
	}

	msg := BuildWeeklyReport(entries, testWindow())

	rendered := blockTexts(msg)
	if !strings.Contains(rendered, "_...and 5 more_") {
		t.Errorf("rendered blocks should contain the overflow note:\n%s", rendered)
	}
	if strings.Contains(rendered, fmt.Sprintf("keyword %02d", maxDisplayEntries+1)) {
		t.Errorf("entries beyond the display cap should not be rendered:\n%s", rendered)
	}
}

func TestBuildWeeklyReportHeaderIsPlainText(t *testing.T) {
	msg := BuildWeeklyReport(nil, testWindow())

	if len(msg.Blocks) == 0 || msg.Blocks[0].Type != "header" {
		t.Fatalf("first block should be a header, got %+v", msg.Blocks)
	}
	if msg.Blocks[0].Text.Type != "plain_text" {
		t.Errorf("header text type = %q, want plain_text", msg.Blocks[0].Text.Type)
	}
}

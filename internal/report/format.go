package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	titleWidth    = 50
	durationWidth = 10
	creatorWidth  = 20
	statusWidth   = 20
	ruleWidth     = 150
)

// Truncate shortens text to width characters, replacing the tail with "...".
func Truncate(text string, width int) string {
	if utf8.RuneCountInString(text) <= width {
		return text
	}
	if width <= 3 {
		return string([]rune(text)[:width])
	}
	return string([]rune(text)[:width-3]) + "..."
}

// Duration renders an age the way rows show it.
func Duration(ageDays int) string {
	return fmt.Sprintf("%d days", ageDays)
}

// TableHeader is the column title line followed by a rule.
func TableHeader() string {
	return fmt.Sprintf("ClickUpID| %-*s | %-*s | %-*s | %-*s | Assignees\n%s\n",
		titleWidth, "Title",
		durationWidth, "Duration",
		creatorWidth, "Created By",
		statusWidth, "Status",
		strings.Repeat("-", ruleWidth),
	)
}

// FormatRow renders one stale task as a fixed-width row without a trailing newline.
func FormatRow(t StaleTask) string {
	clickable := fmt.Sprintf("<%s|%s>", t.URL, t.DisplayID())
	return fmt.Sprintf("%s | %-*s | %-*s | %-*s | %-*s | %s",
		clickable,
		titleWidth, Truncate(t.Name, titleWidth),
		durationWidth, Duration(t.AgeDays),
		creatorWidth, t.Creator,
		statusWidth, t.Status,
		t.AssigneeText,
	)
}

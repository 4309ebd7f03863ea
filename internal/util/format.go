package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Placeholder shown for empty values.
const Placeholder = "—"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Dash returns s, or the placeholder when s is blank.
func Dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// FormatAmount formats a rupee amount with digit grouping, e.g. "₹12,500.5".
// Text that is not a number is returned unchanged.
func FormatAmount(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return "₹" + humanize.CommafWithDigits(v, 2)
}

// FormatDate formats a date or timestamp for display.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return Placeholder
	}
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("Jan 02, 2006")
	}
	return t.Format("Jan 02, 2006 15:04")
}

// FormatDateHuman formats a date relative to now.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return Placeholder
	}
	t, ok := parseDate(date)
	if !ok {
		return date
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dateDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(dateDay).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:max(maxLen, 0)])
	}
	return string(runes[:maxLen-3]) + "..."
}

// OneLine collapses newlines and runs of spaces so multi-line text fits a
// table cell.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar-date layout used for drink dates.
const DateLayout = "2006-01-02"

// FormatDate formats a date string (YYYY-MM-DD) for display.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "Unknown"
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}

// FormatDateHuman formats a date with humanized relative display.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "Unknown"
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
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

// FormatRatingStars formats a 1-5 rating as stars (e.g., "★★★★☆") or "—" if nil.
func FormatRatingStars(rating *int) string {
	if rating == nil {
		return "—"
	}
	stars := *rating
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatVintage formats a vintage year, or "NV" when absent.
func FormatVintage(vintage *int) string {
	if vintage == nil {
		return "NV"
	}
	return strconv.Itoa(*vintage)
}

// FormatWindow formats an inclusive drink window as "2024–2030".
func FormatWindow(from, to int) string {
	return fmt.Sprintf("%d–%d", from, to)
}

// FormatPrice formats a stored price for display, or "—" if unknown.
func FormatPrice(price string) string {
	d, ok := ParsePrice(price)
	if !ok {
		return "—"
	}
	return "$" + d.StringFixed(2)
}

// TodayISO returns the date of now in ISO 8601 format (YYYY-MM-DD).
func TodayISO(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseDateInput parses flexible user input and normalizes to ISO (YYYY-MM-DD).
// Empty input is allowed and returns "".
func ParseDateInput(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", nil
	}

	layouts := []string{
		DateLayout,
		"January 2, 2006",
		"Jan 2, 2006",
		"1/2/2006",
		"01/02/2006",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}

	return "", fmt.Errorf("invalid date format")
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats a dollar amount with thousands separators and cents.
// e.g., 1234.5 -> "$1,234.50", -3.2 -> "-$3.20"
func FormatMoney(v float64) string {
	v = math.Round(v*100) / 100
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatSignedMoney prefixes non-negative amounts with "+".
func FormatSignedMoney(v float64) string {
	if math.Round(v*100) >= 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatDays formats a day count, dropping the fraction when it is whole.
// e.g., 15 -> "15 days", 1 -> "1 day", 89.6 -> "89.6 days"
func FormatDays(d float64) string {
	if d == math.Trunc(d) {
		if d == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%.0f days", d)
	}
	return fmt.Sprintf("%.1f days", d)
}

// FormatDate formats a date as "Mon Jan 2".
func FormatDate(t time.Time) string {
	return t.Format("Mon Jan 2")
}

// FormatDateTime formats a timestamp for transaction listings.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// ShortID returns the first 8 characters of an ID for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

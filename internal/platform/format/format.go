// Package format renders KPI values for the dashboard cards.
package format

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing is shown in place of a KPI that could not be computed.
const Missing = "—"

var printer = message.NewPrinter(language.English)

// Count renders an integer with thousands separators: 1234567 -> "1,234,567".
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// Decimal renders a float with the given number of decimals and no
// thousands separators: 1234.56 -> "1234.6".
func Decimal(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}

// Percent renders v as "12.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Cost abbreviates an amount in euros: €1.23B, €4.56M, €7.8K or €950.
func Cost(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("€%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("€%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("€%.1fK", v/1_000)
	default:
		return fmt.Sprintf("€%.0f", v)
	}
}

// Truncate shortens s to keep runes followed by "..." when it is longer
// than max runes.
func Truncate(s string, max, keep int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + "..."
}

// Days renders a length of stay as "12.3 días".
func Days(v float64) string {
	return fmt.Sprintf("%.1f días", v)
}

// Stat is one labelled line of a statistics panel.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

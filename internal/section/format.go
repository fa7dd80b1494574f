package section

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCount prints an integer with thousands separators ("1,234").
func FormatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatRating prints a rating with one decimal.
func FormatRating(r float64) string {
	return message.NewPrinter(language.English).Sprintf("%.1f", r)
}

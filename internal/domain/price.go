package domain

import (
	"strconv"
	"strings"
)

// ParsePrice converts a chart price label into a float value.
// Accepts "$" prefixes, thousands separators and K/M suffixes so that
// labels like "45.2K", "$1,250" and "1.5M" all parse; the original
// notation is preserved elsewhere, this only answers "is it a price
// and what is its magnitude".
// Parameters:
//   - s: price label as the model read it off the chart.
// Returns:
//   - float64: parsed value.
//   - bool: false if the label is not a recognizable price.
func ParsePrice(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "K"), strings.HasSuffix(cleaned, "k"):
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "M"), strings.HasSuffix(cleaned, "m"):
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, false
	}
	return value * multiplier, true
}

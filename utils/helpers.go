package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDays reads the days query value. An empty value yields def; the
// result is clamped to limit.
func ParseDays(raw string, def, limit int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return min(def, limit), nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("days must be a non-negative integer, got %q", raw)
	}
	return min(days, limit), nil
}

// Report formats.
const (
	FormatSummary  = "summary"
	FormatDetailed = "detailed"
)

// NormalizeFormat maps a format value onto a report format. An empty value is
// the summary; ok is false for unknown values, which also map to the summary.
func NormalizeFormat(raw string) (format string, ok bool) {
	switch strings.TrimSpace(raw) {
	case "", FormatSummary:
		return FormatSummary, true
	case FormatDetailed:
		return FormatDetailed, true
	default:
		return FormatSummary, false
	}
}

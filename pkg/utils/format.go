// Package utils provides small formatting and calendar helpers shared by
// the corpus, pipeline and report packages.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCount formats an integer with thousands separators (12,345).
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -n))
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

// FormatCompact formats a count in short notation.
// e.g., 950 → "950", 12345 → "12.35K", 2500000 → "2.5M"
func FormatCompact(n int) string {
	v := math.Abs(float64(n))
	sign := ""
	if n < 0 {
		sign = "-"
	}
	switch {
	case v >= 1e9:
		return sign + formatWithDecimals(v/1e9) + "B"
	case v >= 1e6:
		return sign + formatWithDecimals(v/1e6) + "M"
	case v >= 1e3:
		return sign + formatWithDecimals(v/1e3) + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatScore formats a sentiment score with an explicit sign.
// e.g., 2.5 → "+2.50", -1 → "-1.00", 0 → "0.00"
func FormatScore(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	if v == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatPct formats a 0-100 share as a whole percentage.
func FormatPct(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

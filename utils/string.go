package utils

import (
	"strings"
)

// Uniquify removes repeated items while preserving the order of first
// appearance.
func Uniquify(in []string) []string {
	result := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, i := range in {
		_, pres := seen[i]
		if pres {
			continue
		}
		seen[i] = true
		result = append(result, i)
	}
	return result
}

// Pad a string to the width. Negative widths right align. Longer
// strings are never truncated.
func Pad(in string, width int) string {
	if width < 0 {
		width = -width
		if len(in) >= width {
			return in
		}
		return strings.Repeat(" ", width-len(in)) + in
	}

	if len(in) >= width {
		return in
	}
	return in + strings.Repeat(" ", width-len(in))
}

package utils

import (
	"fmt"
	"strings"
)

var sizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(byteCount int64) string {
	if byteCount < 1024 {
		return fmt.Sprintf("%db", max(byteCount, 0))
	}
	scaledValue := float64(byteCount)
	unitIndex := 0
	for scaledValue >= 1024 && unitIndex < len(sizeUnits)-1 {
		scaledValue /= 1024
		unitIndex++
	}
	if scaledValue >= 10 {
		return fmt.Sprintf("%.0f%s", scaledValue, sizeUnits[unitIndex])
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", scaledValue), ".0") + sizeUnits[unitIndex]
}

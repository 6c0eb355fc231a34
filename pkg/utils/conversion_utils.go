package utils

import (
	"fmt"
	"math"
	"strconv"
)

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
// Returns 0 and an error if the conversion fails.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

// FormatHours renders a decimal-hours figure as "8h" or "8.5h".
func FormatHours(hours float64) string {
	rounded := math.Round(hours*100) / 100
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%dh", int64(rounded))
	}
	return fmt.Sprintf("%gh", rounded)
}

// FormatHoursMinutes renders a decimal-hours figure as "1h 30m".
func FormatHoursMinutes(hours float64) string {
	whole := int(hours)
	minutes := int(math.Round((hours - float64(whole)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", whole, minutes)
}

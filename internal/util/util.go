package util

import "fmt"

// HumanBytes formats a byte count with a binary unit suffix.
func HumanBytes[T ~int | ~int64](n T) string {
	const unit = 1024
	v := float64(n)
	if v < unit {
		return fmt.Sprintf("%d B", int64(n))
	}
	div, exp := int64(unit), 0
	for m := int64(n) / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", v/float64(div), "KMGTPE"[exp])
}

package optimizer

import "math"

func ternary[T any](condition bool, value1, value2 T) T {
	if condition {
		return value1
	}

	return value2
}

// round2 rounds to two decimals at the reporting boundary. Internal math
// stays unrounded.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

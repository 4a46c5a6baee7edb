package util

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"time"
)

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// Round Method to round to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Percent returns part as a percentage of total, rounded to 2 decimals.
// A zero total gives 0.
func Percent[T ~int | ~int64](part, total T) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part) * 100 / float64(total))
}

// DurationToMS converts d to milliseconds, rounded to 2 decimals.
func DurationToMS(d time.Duration) float64 {
	return Round(float64(d) / float64(time.Millisecond))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

package report

import (
	"math"
	"time"
)

// AgeDays returns the whole days elapsed between created and now.
// A zero creation time counts as age 0.
func AgeDays(created, now time.Time) int {
	if created.IsZero() {
		return 0
	}
	days := now.UTC().Sub(created.UTC()).Hours() / 24
	return int(math.Floor(days))
}

// IsStale reports whether a task of the given age is past the threshold.
// The threshold itself is not stale.
func IsStale(ageDays, thresholdDays int) bool {
	return ageDays > thresholdDays
}

package app

import "time"

// LastDayOfMonth returns the number of days in month: the first day of the
// following month minus one day. time.Date normalises month 13 to January.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// IsLastDayOfMonth reports whether t falls on the final day of its month, in t's location.
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == LastDayOfMonth(t.Year(), t.Month())
}

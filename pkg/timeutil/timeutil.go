// Package timeutil provides UTC calendar helpers used by the monthly
// reconciliation jobs. All windows are computed in UTC regardless of the
// server's local timezone.
package timeutil

import "time"

// MonthWindow returns the half-open interval [from, to) covering the given
// calendar month in UTC.
func MonthWindow(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	return from, to
}

// CurrentMonth returns the year and month of now in UTC.
func CurrentMonth(now time.Time) (int, time.Month) {
	u := now.UTC()
	return u.Year(), u.Month()
}

// PreviousMonth returns the year and month immediately before now in UTC.
func PreviousMonth(now time.Time) (int, time.Month) {
	u := now.UTC().AddDate(0, -1, 0)
	return u.Year(), u.Month()
}

// SameMonth reports whether a and b fall in the same UTC calendar month.
func SameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// StartOfNextMonth returns midnight UTC on the first day of the month after
// now. Used to schedule the month rollover job.
func StartOfNextMonth(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// Package dates provides local-calendar-day helpers shared by the health
// store and the activity derivations.
package dates

import "time"

// Midnight returns t normalized to local midnight of its calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// Key returns the calendar date key (YYYY-MM-DD) for t in local time.
func Key(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Label returns a human header for a day relative to now: "Today",
// "Yesterday", or a long weekday/month/day form for anything older.
func Label(t, now time.Time) string {
	day := Midnight(t)
	today := Midnight(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("Monday, January 2")
	}
}

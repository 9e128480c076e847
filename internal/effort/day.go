package effort

import "time"

// DefaultWindowDays is the default length of the rolling effort window.
const DefaultWindowDays = 21

// DayOf returns the calendar date of t in loc, as midnight UTC. Days in
// this form can be compared and subtracted without DST drift.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b. Both must
// come from DayOf.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// AddDays shifts a day by n calendar days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

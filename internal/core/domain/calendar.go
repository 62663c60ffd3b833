package domain

import "time"

const (
	DateLayout     = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// DateOnly drops the clock part, keeping the calendar day of t as a UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped moves anchor forward by months calendar months and pins
// the day to min(anchorDay, last day of the target month). time.AddDate
// normalises overflow (Jan 31 + 1 month = Mar 3), which is never wanted here.
func AddMonthsClamped(anchor time.Time, months, anchorDay int) time.Time {
	y, m, _ := anchor.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)

	day := anchorDay
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

package service

import "time"

// dateOnly drops the time-of-day component so day arithmetic is stable no
// matter what timestamps the callers hand in.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(entry, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(entry)).Hours() / 24)
}

// WeekendDays counts Saturdays and Sundays in the inclusive [entry, end]
// window. A window with end before entry counts zero.
func WeekendDays(entry, end time.Time) int {
	entry = dateOnly(entry)
	end = dateOnly(end)
	count := 0
	for day := entry; !day.After(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			count++
		}
	}
	return count
}

// WaitingCountDays is the business-day count of a waiting period: calendar
// days between entry and end minus the weekend days inside the window.
func WaitingCountDays(entry, end time.Time) int {
	return daysBetween(entry, end) - WeekendDays(entry, end)
}

// PlannedDurationDays is the ticket-level planned duration. The calendar
// window is extended one day past the end before counting, while weekend days
// are still taken from the original [entry, end] window. The asymmetry with
// WaitingCountDays is kept on purpose for round-trip compatibility with
// historical records.
func PlannedDurationDays(entry, end time.Time) int {
	dateSum := dateOnly(end).AddDate(0, 0, 1)
	return daysBetween(entry, dateSum) - WeekendDays(entry, end)
}

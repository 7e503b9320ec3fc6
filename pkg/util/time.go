package util

import (
	"time"
)

func AddTimeToDate(date time.Time, sourceTime time.Time) time.Time {
	newDateTime := time.Date(date.Year(), date.Month(), date.Day(), sourceTime.Hour(), sourceTime.Minute(), sourceTime.Second(), sourceTime.Nanosecond(), date.Location())

	return newDateTime
}

// ClockTimeBetween reports whether the clock time of value lies inside the
// inclusive [start, end] window, ignoring the date component.
func ClockTimeBetween(value time.Time, start time.Time, end time.Time) bool {
	minutes := value.Hour()*60 + value.Minute()
	startMinutes := start.Hour()*60 + start.Minute()
	endMinutes := end.Hour()*60 + end.Minute()

	return minutes >= startMinutes && minutes <= endMinutes
}

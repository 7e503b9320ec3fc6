package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTimeBetween(t *testing.T) {
	start := time.Date(0, time.January, 1, 6, 0, 0, 0, time.UTC)
	end := time.Date(0, time.January, 1, 8, 0, 0, 0, time.UTC)

	inside := time.Date(2026, time.March, 16, 7, 15, 0, 0, time.UTC)
	assert.True(t, ClockTimeBetween(inside, start, end))

	// Window bounds are inclusive
	assert.True(t, ClockTimeBetween(time.Date(2026, time.March, 16, 6, 0, 0, 0, time.UTC), start, end))
	assert.True(t, ClockTimeBetween(time.Date(2026, time.March, 16, 8, 0, 0, 0, time.UTC), start, end))

	assert.False(t, ClockTimeBetween(time.Date(2026, time.March, 16, 5, 59, 0, 0, time.UTC), start, end))
	assert.False(t, ClockTimeBetween(time.Date(2026, time.March, 16, 8, 1, 0, 0, time.UTC), start, end))
}

func TestAddTimeToDate(t *testing.T) {
	date := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	clock := time.Date(0, time.January, 1, 6, 45, 0, 0, time.UTC)

	combined := AddTimeToDate(date, clock)
	assert.Equal(t, 2026, combined.Year())
	assert.Equal(t, time.March, combined.Month())
	assert.Equal(t, 16, combined.Day())
	assert.Equal(t, 6, combined.Hour())
	assert.Equal(t, 45, combined.Minute())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	parsed, err := ParseClockTime("06:00")
	require.NoError(t, err)
	assert.Equal(t, 6, parsed.Hour())
	assert.Equal(t, 0, parsed.Minute())

	parsed, err = ParseClockTime(" 15:30 ")
	require.NoError(t, err)
	assert.Equal(t, 15, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())

	_, err = ParseClockTime("1530")
	assert.Error(t, err)

	_, err = ParseClockTime("24:00")
	assert.Error(t, err)

	_, err = ParseClockTime("12:60")
	assert.Error(t, err)

	_, err = ParseClockTime("ab:cd")
	assert.Error(t, err)
}

func TestRouteWindowsDefaults(t *testing.T) {
	windows, err := RouteWindows()
	require.NoError(t, err)
	require.Len(t, windows, 2)

	morning := windows[0]
	assert.Equal(t, "Morning Freiburg->Offenburg", morning.Label)
	assert.Equal(t, "8000107", morning.SourceEVA)
	assert.Equal(t, "8000290", morning.TargetEVA)
	assert.Equal(t, 6, morning.StartTime.Hour())
	assert.Equal(t, 8, morning.EndTime.Hour())

	afternoon := windows[1]
	assert.Equal(t, "Afternoon Offenburg->Freiburg", afternoon.Label)
	assert.Equal(t, "8000290", afternoon.SourceEVA)
	assert.Equal(t, 15, afternoon.StartTime.Hour())
	assert.Equal(t, 30, afternoon.StartTime.Minute())
}

func TestCarRoutesDefaults(t *testing.T) {
	routes, err := CarRoutes()
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, "Car Morning Freiburg->Offenburg", routes[0].Label)
	assert.Equal(t, 6, routes[0].TargetDeparture.Hour())
	assert.Equal(t, 45, routes[0].TargetDeparture.Minute())

	assert.Equal(t, "Car Afternoon Offenburg->Freiburg", routes[1].Label)
	assert.InDelta(t, 48.4767, routes[1].FromLat, 0.0001)
}

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

const testRoute = "Morning Freiburg->Offenburg"

func minutePointer(value int) *int {
	return &value
}

func dayEvent(serviceDate string, departureDelay *int, arrivalDelay *int, cancelled bool) observation.TrainEvent {
	event := observation.TrainEvent{
		ServiceDate:      serviceDate,
		Route:            testRoute,
		TrainID:          serviceDate + "/100-1",
		TrainName:        "RE7",
		PlannedDeparture: time.Date(2026, time.March, 16, 6, 0, 0, 0, time.UTC),
		Cancelled:        cancelled,
	}

	if !cancelled {
		event.DepartureDelayMinutes = departureDelay
		if arrivalDelay != nil {
			event.ArrivalDelayMinutes = arrivalDelay
			event.ArrivalObserved = true
		}
	}

	return event
}

func TestBuildRouteMatrixMeansExcludeCancelled(t *testing.T) {
	events := []observation.TrainEvent{
		dayEvent("2026-03-14", minutePointer(4), minutePointer(6), false),
		dayEvent("2026-03-15", minutePointer(10), minutePointer(12), false),
		dayEvent("2026-03-16", nil, nil, true),
	}

	endDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	matrix := BuildRouteMatrix(events, testRoute, endDate, 30)

	assert.Equal(t, "2026-02-15", matrix.StartDate)
	assert.Equal(t, "2026-03-16", matrix.EndDate)
	assert.Equal(t, []string{"2026-03-14", "2026-03-15", "2026-03-16"}, matrix.Days)

	require.Len(t, matrix.Trains, 1)
	train := matrix.Trains[0]
	assert.Equal(t, "RE7 | 06:00", train.TrainKey)

	// Cancelled day excluded from numerator and denominator: (4+10)/2
	require.NotNil(t, train.MeanDepartureDelayMinutes)
	assert.Equal(t, 7, *train.MeanDepartureDelayMinutes)
	require.NotNil(t, train.MeanArrivalDelayMinutes)
	assert.Equal(t, 9, *train.MeanArrivalDelayMinutes)
	assert.Equal(t, 1, train.CancelledDays)

	require.Len(t, train.Days, 3)
	assert.True(t, train.Days[2].Cancelled)
	assert.Nil(t, train.Days[2].DepartureDelayMinutes)
}

func TestBuildRouteMatrixUndefinedMeanStaysNil(t *testing.T) {
	events := []observation.TrainEvent{
		dayEvent("2026-03-15", nil, nil, true),
		dayEvent("2026-03-16", nil, nil, true),
	}

	endDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	matrix := BuildRouteMatrix(events, testRoute, endDate, 30)

	require.Len(t, matrix.Trains, 1)
	// Every day cancelled: the mean is undefined, never zero
	assert.Nil(t, matrix.Trains[0].MeanDepartureDelayMinutes)
	assert.Nil(t, matrix.Trains[0].MeanArrivalDelayMinutes)
	assert.Equal(t, 2, matrix.Trains[0].CancelledDays)
}

func TestBuildRouteMatrixWindowBounds(t *testing.T) {
	events := []observation.TrainEvent{
		dayEvent("2026-02-14", minutePointer(99), nil, false), // one day before the window
		dayEvent("2026-02-15", minutePointer(3), nil, false),  // first day inside
		dayEvent("2026-03-17", minutePointer(99), nil, false), // after the end date
	}

	endDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	matrix := BuildRouteMatrix(events, testRoute, endDate, 30)

	assert.Equal(t, []string{"2026-02-15"}, matrix.Days)
	require.Len(t, matrix.Trains, 1)
	require.NotNil(t, matrix.Trains[0].MeanDepartureDelayMinutes)
	assert.Equal(t, 3, *matrix.Trains[0].MeanDepartureDelayMinutes)
}

func TestBuildRouteMatrixIgnoresOtherRoutes(t *testing.T) {
	other := dayEvent("2026-03-16", minutePointer(5), nil, false)
	other.Route = "Afternoon Offenburg->Freiburg"

	endDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	matrix := BuildRouteMatrix([]observation.TrainEvent{other}, testRoute, endDate, 30)

	assert.Empty(t, matrix.Days)
	assert.Empty(t, matrix.Trains)
}

func TestBuildRouteMatrixTrainsSortedByDepartureTime(t *testing.T) {
	early := dayEvent("2026-03-16", minutePointer(1), nil, false)

	late := dayEvent("2026-03-16", minutePointer(2), nil, false)
	late.TrainID = "2026-03-16/200-1"
	late.TrainName = "RE17"
	late.PlannedDeparture = time.Date(2026, time.March, 16, 7, 30, 0, 0, time.UTC)

	endDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	matrix := BuildRouteMatrix([]observation.TrainEvent{late, early}, testRoute, endDate, 30)

	require.Len(t, matrix.Trains, 2)
	assert.Equal(t, "06:00", matrix.Trains[0].DepartureTime)
	assert.Equal(t, "07:30", matrix.Trains[1].DepartureTime)
}

func TestEffectiveArrivalMissingWidensPastDays(t *testing.T) {
	pastDay := dayEvent("2026-03-14", minutePointer(0), nil, false)
	sameDay := dayEvent("2026-03-16", minutePointer(0), nil, false)

	// Unobserved arrival on a past day can never be filled in anymore
	assert.True(t, effectiveArrivalMissing(pastDay, "2026-03-16"))
	// The reference day itself stays open
	assert.False(t, effectiveArrivalMissing(sameDay, "2026-03-16"))

	observed := dayEvent("2026-03-14", minutePointer(0), minutePointer(2), false)
	assert.False(t, effectiveArrivalMissing(observed, "2026-03-16"))

	cancelled := dayEvent("2026-03-14", nil, nil, true)
	assert.False(t, effectiveArrivalMissing(cancelled, "2026-03-16"))
}

package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/timetables"
)

func timeAt(hour int, minute int) *time.Time {
	value := time.Date(2026, time.March, 16, hour, minute, 0, 0, time.UTC)
	return &value
}

func plannedStop(id string, name string, departure *time.Time, arrival *time.Time) timetables.PlannedStop {
	return timetables.PlannedStop{
		TrainID:          id,
		TrainName:        name,
		Line:             name,
		SourceStation:    "Freiburg(Breisgau) Hbf",
		TargetStation:    "Offenburg",
		Route:            "Morning Freiburg->Offenburg",
		PlannedDeparture: departure,
		PlannedArrival:   arrival,
	}
}

func TestMatchArrivalByStopID(t *testing.T) {
	arrivals := []timetables.PlannedStop{
		plannedStop("200-1", "RE7", nil, timeAt(6, 45)),
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	matched := matchArrivalForDeparture(departure, arrivals, map[string]bool{})

	require.NotNil(t, matched)
	assert.Equal(t, "100-1", matched.TrainID)
}

func TestMatchArrivalByNameNearestAfter(t *testing.T) {
	arrivals := []timetables.PlannedStop{
		plannedStop("900-1", "RE7", nil, timeAt(5, 30)),
		plannedStop("901-1", "RE7", nil, timeAt(6, 41)),
		plannedStop("902-1", "RE7", nil, timeAt(9, 41)),
	}

	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	usedIDs := map[string]bool{}
	matched := matchArrivalForDeparture(departure, arrivals, usedIDs)

	require.NotNil(t, matched)
	assert.Equal(t, "901-1", matched.TrainID)
	assert.True(t, usedIDs["901-1"])

	// The consumed arrival is not handed out twice
	second := matchArrivalForDeparture(departure, arrivals, usedIDs)
	require.NotNil(t, second)
	assert.NotEqual(t, "901-1", second.TrainID)
}

func TestMatchArrivalFallsBackToNearestAbsolute(t *testing.T) {
	// Only candidate after the departure is beyond the plausible gap, the
	// nearest one by absolute distance wins instead.
	arrivals := []timetables.PlannedStop{
		plannedStop("900-1", "RE7", nil, timeAt(5, 50)),
		plannedStop("901-1", "RE7", nil, timeAt(12, 30)),
	}

	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	matched := matchArrivalForDeparture(departure, arrivals, map[string]bool{})

	require.NotNil(t, matched)
	assert.Equal(t, "900-1", matched.TrainID)
}

func TestMatchArrivalNoCandidate(t *testing.T) {
	arrivals := []timetables.PlannedStop{
		plannedStop("900-1", "ICE104", nil, timeAt(6, 41)),
	}

	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	assert.Nil(t, matchArrivalForDeparture(departure, arrivals, map[string]bool{}))
}

func TestBuildEventDelayedRun(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	arrivals := []timetables.PlannedStop{
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	sourceChanges := map[string]timetables.ChangeInfo{
		"100-1": {TrainID: "100-1", ChangedDeparture: timeAt(6, 4)},
	}
	targetChanges := map[string]timetables.ChangeInfo{
		"100-1": {TrainID: "100-1", ChangedArrival: timeAt(6, 47)},
	}

	now := *timeAt(6, 50)
	event := buildEvent(departure, arrivals, map[string]bool{}, sourceChanges, targetChanges, now)

	assert.Equal(t, "2026-03-16", event.ServiceDate)
	assert.Equal(t, "RE7", event.TrainName)
	assert.False(t, event.Cancelled)

	require.NotNil(t, event.DepartureDelayMinutes)
	assert.Equal(t, 4, *event.DepartureDelayMinutes)

	assert.True(t, event.ArrivalObserved)
	require.NotNil(t, event.ArrivalDelayMinutes)
	assert.Equal(t, 6, *event.ArrivalDelayMinutes)
	assert.False(t, event.ArrivalInfoMissing)
}

func TestBuildEventEarlyDepartureClampedToZero(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)

	sourceChanges := map[string]timetables.ChangeInfo{
		"100-1": {TrainID: "100-1", ChangedDeparture: timeAt(5, 58)},
	}

	event := buildEvent(departure, nil, map[string]bool{}, sourceChanges, map[string]timetables.ChangeInfo{}, *timeAt(6, 10))

	require.NotNil(t, event.DepartureDelayMinutes)
	assert.Equal(t, 0, *event.DepartureDelayMinutes)
	require.NotNil(t, event.DepartureDeviationMinutes)
	assert.Equal(t, -2, *event.DepartureDeviationMinutes)
}

func TestBuildEventCancelledHasNilDelays(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	arrivals := []timetables.PlannedStop{
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	sourceChanges := map[string]timetables.ChangeInfo{
		"100-1": {TrainID: "100-1", Cancelled: true},
	}

	event := buildEvent(departure, arrivals, map[string]bool{}, sourceChanges, map[string]timetables.ChangeInfo{}, *timeAt(7, 0))

	assert.True(t, event.Cancelled)
	assert.Equal(t, "Ausfall", event.DepartureReason)
	assert.Nil(t, event.DepartureDelayMinutes)
	assert.Nil(t, event.DepartureDeviationMinutes)
	assert.Nil(t, event.ArrivalDelayMinutes)
	assert.Nil(t, event.ArrivalDeviationMinutes)
}

func TestBuildEventArrivalStillOpenBeforePlannedArrival(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	arrivals := []timetables.PlannedStop{
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	// Observation before the planned arrival and without an explicit change
	// event: the arrival stays open, not missing.
	event := buildEvent(departure, arrivals, map[string]bool{}, map[string]timetables.ChangeInfo{}, map[string]timetables.ChangeInfo{}, *timeAt(6, 20))

	assert.False(t, event.ArrivalObserved)
	assert.False(t, event.ArrivalInfoMissing)
	assert.Nil(t, event.ArrivalDelayMinutes)

	require.NotNil(t, event.DepartureDelayMinutes)
	assert.Equal(t, 0, *event.DepartureDelayMinutes)
}

func TestBuildEventInfersOnTimeArrivalInsideCaptureWindow(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	arrivals := []timetables.PlannedStop{
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	event := buildEvent(departure, arrivals, map[string]bool{}, map[string]timetables.ChangeInfo{}, map[string]timetables.ChangeInfo{}, *timeAt(7, 0))

	assert.True(t, event.ArrivalObserved)
	require.NotNil(t, event.ActualArrival)
	assert.True(t, event.ActualArrival.Equal(*timeAt(6, 41)))
	require.NotNil(t, event.ArrivalDelayMinutes)
	assert.Equal(t, 0, *event.ArrivalDelayMinutes)
}

func TestBuildEventArrivalMissingAfterDeadline(t *testing.T) {
	departure := plannedStop("100-1", "RE7", timeAt(6, 0), nil)
	arrivals := []timetables.PlannedStop{
		plannedStop("100-1", "RE7", nil, timeAt(6, 41)),
	}

	// Past the one hour capture window without any arrival information
	event := buildEvent(departure, arrivals, map[string]bool{}, map[string]timetables.ChangeInfo{}, map[string]timetables.ChangeInfo{}, *timeAt(8, 0))

	assert.False(t, event.ArrivalObserved)
	assert.True(t, event.ArrivalInfoMissing)
	assert.Nil(t, event.ArrivalDelayMinutes)
}

type stubSource struct {
	plans   map[string]map[int]string
	changes map[string]string
}

func (stub *stubSource) StationEVA(stationName string) (string, error) {
	return "0000000", nil
}

func (stub *stubSource) Plan(eva string, serviceDate time.Time, hour int) (string, error) {
	if payload, exists := stub.plans[eva][hour]; exists {
		return payload, nil
	}

	return "<timetable/>", nil
}

func (stub *stubSource) Changes(eva string) (string, error) {
	if payload, exists := stub.changes[eva]; exists {
		return payload, nil
	}

	return "<timetable/>", nil
}

func TestCollectAtEndToEnd(t *testing.T) {
	windows, err := config.RouteWindows()
	require.NoError(t, err)

	source := &stubSource{
		plans: map[string]map[int]string{
			"8000107": {
				6: `<timetable>
					<s id="100-1"><tl c="RE" n="7"/><dp pt="2603160600" ppth="Emmendingen|Offenburg" l="RE7"/></s>
				</timetable>`,
			},
			"8000290": {
				6: `<timetable>
					<s id="100-1"><tl c="RE" n="7"/><ar pt="2603160641" ppth="Freiburg(Breisgau) Hbf|Emmendingen"/></s>
				</timetable>`,
			},
		},
		changes: map[string]string{
			"8000107": `<timetable><s id="100-1"><dp ct="2603160604"/></s></timetable>`,
			"8000290": `<timetable><s id="100-1"><ar ct="2603160647"/></s></timetable>`,
		},
	}

	location, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2026, time.March, 16, 7, 0, 0, 0, location)

	events, err := collectAt(source, windows, now, location)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "Morning Freiburg->Offenburg", event.Route)
	assert.Equal(t, "100-1", event.TrainID)
	assert.Equal(t, "2026-03-16", event.ServiceDate)

	require.NotNil(t, event.DepartureDelayMinutes)
	assert.Equal(t, 4, *event.DepartureDelayMinutes)
	assert.True(t, event.ArrivalObserved)
	require.NotNil(t, event.ArrivalDelayMinutes)
	assert.Equal(t, 6, *event.ArrivalDelayMinutes)
}

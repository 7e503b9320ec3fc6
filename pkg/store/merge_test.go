package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

func minutePointer(value int) *int {
	return &value
}

func timePointer(hour int, minute int) *time.Time {
	value := time.Date(2026, time.March, 16, hour, minute, 0, 0, time.UTC)
	return &value
}

func baseEvent() observation.TrainEvent {
	return observation.TrainEvent{
		ServiceDate:      "2026-03-16",
		Route:            "Morning Freiburg->Offenburg",
		TrainID:          "100-1",
		TrainName:        "RE7",
		PlannedDeparture: *timePointer(6, 0),
		PlannedArrival:   timePointer(6, 41),
	}
}

func TestMergeKeepsObservedArrivalOnRecollection(t *testing.T) {
	existing := baseEvent()
	existing.ArrivalObserved = true
	existing.ActualArrival = timePointer(6, 47)
	existing.ArrivalDelayMinutes = minutePointer(6)
	existing.ArrivalDeviationMinutes = minutePointer(6)
	existing.ArrivalReason = "f Störung"

	// A later collection without arrival information must not wipe it
	incoming := baseEvent()
	incoming.DepartureDelayMinutes = minutePointer(4)

	merged := MergeTrainEvent(existing, incoming)

	assert.True(t, merged.ArrivalObserved)
	require.NotNil(t, merged.ActualArrival)
	assert.True(t, merged.ActualArrival.Equal(*timePointer(6, 47)))
	require.NotNil(t, merged.ArrivalDelayMinutes)
	assert.Equal(t, 6, *merged.ArrivalDelayMinutes)
	assert.Equal(t, "f Störung", merged.ArrivalReason)
	assert.False(t, merged.ArrivalInfoMissing)

	// Departure side always takes the newest value
	require.NotNil(t, merged.DepartureDelayMinutes)
	assert.Equal(t, 4, *merged.DepartureDelayMinutes)
}

func TestMergeIncomingObservationWins(t *testing.T) {
	existing := baseEvent()
	existing.ArrivalObserved = true
	existing.ActualArrival = timePointer(6, 41)
	existing.ArrivalDelayMinutes = minutePointer(0)

	incoming := baseEvent()
	incoming.ArrivalObserved = true
	incoming.ActualArrival = timePointer(6, 55)
	incoming.ArrivalDelayMinutes = minutePointer(14)

	merged := MergeTrainEvent(existing, incoming)

	require.NotNil(t, merged.ArrivalDelayMinutes)
	assert.Equal(t, 14, *merged.ArrivalDelayMinutes)
}

func TestMergeMissingFlagClearsOnceObserved(t *testing.T) {
	existing := baseEvent()
	existing.ArrivalInfoMissing = true

	incoming := baseEvent()
	incoming.ArrivalObserved = true
	incoming.ActualArrival = timePointer(6, 43)
	incoming.ArrivalDelayMinutes = minutePointer(2)

	merged := MergeTrainEvent(existing, incoming)

	assert.True(t, merged.ArrivalObserved)
	assert.False(t, merged.ArrivalInfoMissing)
}

func TestMergeMissingFlagLatchesWhileUnobserved(t *testing.T) {
	existing := baseEvent()
	existing.ArrivalInfoMissing = true

	incoming := baseEvent()

	merged := MergeTrainEvent(existing, incoming)

	assert.False(t, merged.ArrivalObserved)
	assert.True(t, merged.ArrivalInfoMissing)
}

func TestMergeRecomputesCancellation(t *testing.T) {
	existing := baseEvent()
	existing.ArrivalObserved = true
	existing.CancelledArrival = true

	incoming := baseEvent()

	merged := MergeTrainEvent(existing, incoming)

	// The preserved arrival side carries its cancellation into the merged
	// overall flag
	assert.True(t, merged.CancelledArrival)
	assert.True(t, merged.Cancelled)

	incoming.CancelledDeparture = true
	merged = MergeTrainEvent(baseEvent(), incoming)
	assert.True(t, merged.Cancelled)
}

func TestMergeIsIdempotentForIdenticalCollections(t *testing.T) {
	event := baseEvent()
	event.ArrivalObserved = true
	event.ActualArrival = timePointer(6, 47)
	event.ArrivalDelayMinutes = minutePointer(6)
	event.DepartureDelayMinutes = minutePointer(4)

	merged := MergeTrainEvent(event, event)
	assert.Equal(t, event, merged)
}

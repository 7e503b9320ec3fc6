package store

import "github.com/puenktlich/puenktlich/pkg/observation"

// MergeTrainEvent combines a stored event with a freshly collected one for
// the same (date, route, train). Departure-side fields always take the new
// value. Arrival-side fields only do once the new collection actually
// observed the arrival - an early re-collection must not wipe an arrival
// that a previous run already captured.
func MergeTrainEvent(existing observation.TrainEvent, incoming observation.TrainEvent) observation.TrainEvent {
	merged := incoming

	if !incoming.ArrivalObserved && existing.ArrivalObserved {
		merged.ActualArrival = existing.ActualArrival
		merged.ArrivalDelayMinutes = existing.ArrivalDelayMinutes
		merged.ArrivalDeviationMinutes = existing.ArrivalDeviationMinutes
		merged.CancelledArrival = existing.CancelledArrival
	}

	merged.ArrivalObserved = existing.ArrivalObserved || incoming.ArrivalObserved

	if merged.ArrivalObserved {
		merged.ArrivalInfoMissing = false
	} else {
		merged.ArrivalInfoMissing = existing.ArrivalInfoMissing || incoming.ArrivalInfoMissing
	}

	if !incoming.ArrivalObserved && existing.ArrivalReason != "" {
		merged.ArrivalReason = existing.ArrivalReason
	}

	merged.Cancelled = merged.CancelledDeparture || merged.CancelledArrival

	return merged
}

package collector

import (
	"math"
	"sort"
	"time"

	"github.com/puenktlich/puenktlich/pkg/timetables"
)

const maxArrivalGapMinutes = 300

// matchArrivalForDeparture pairs a planned departure at the source station
// with the corresponding planned arrival at the target station. The stop id
// matches exactly for through trains; when the operator splits the trip into
// separate ids the train name plus the nearest plausible arrival time is
// used instead. Every arrival is consumed at most once.
func matchArrivalForDeparture(departure timetables.PlannedStop, arrivals []timetables.PlannedStop, usedIDs map[string]bool) *timetables.PlannedStop {
	if departure.TrainID != "" {
		for index, candidate := range arrivals {
			if candidate.TrainID == departure.TrainID && !usedIDs[candidate.TrainID] {
				usedIDs[candidate.TrainID] = true
				return &arrivals[index]
			}
		}
	}

	sameName := []timetables.PlannedStop{}
	for _, candidate := range arrivals {
		if candidate.TrainName == departure.TrainName && !usedIDs[candidate.TrainID] {
			sameName = append(sameName, candidate)
		}
	}

	if len(sameName) == 0 {
		return nil
	}

	sort.SliceStable(sameName, func(a, b int) bool {
		return plannedArrivalOrMax(sameName[a]).Before(plannedArrivalOrMax(sameName[b]))
	})

	if departure.PlannedDeparture == nil {
		chosen := sameName[0]
		usedIDs[chosen.TrainID] = true
		return &chosen
	}

	// Prefer the arrival closest after the departure, fall back to the
	// nearest one by absolute distance
	var preferred *timetables.PlannedStop
	preferredMinutes := math.MaxInt32

	fallback := sameName[0]
	fallbackAbs := math.MaxInt32

	for index, candidate := range sameName {
		if candidate.PlannedArrival == nil {
			continue
		}

		diff := int(candidate.PlannedArrival.Sub(*departure.PlannedDeparture).Minutes())
		absDiff := diff
		if absDiff < 0 {
			absDiff = -absDiff
		}

		if absDiff < fallbackAbs {
			fallback = candidate
			fallbackAbs = absDiff
		}
		if diff >= 0 && diff <= maxArrivalGapMinutes && diff < preferredMinutes {
			preferred = &sameName[index]
			preferredMinutes = diff
		}
	}

	chosen := fallback
	if preferred != nil {
		chosen = *preferred
	}

	usedIDs[chosen.TrainID] = true
	return &chosen
}

func plannedArrivalOrMax(stop timetables.PlannedStop) time.Time {
	if stop.PlannedArrival == nil {
		return time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
	}

	return *stop.PlannedArrival
}

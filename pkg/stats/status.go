package stats

import (
	"sort"
	"time"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

// SystemStatus summarises the health of the stored history for the
// dashboard footer.
type SystemStatus struct {
	LastObservation time.Time `groups:"basic"`
	TotalEvents     int       `groups:"basic"`

	ArrivalMissing int `groups:"basic"`
	ArrivalOpen    int `groups:"basic"`
}

func BuildSystemStatus(events []observation.TrainEvent, referenceDate time.Time) SystemStatus {
	status := SystemStatus{
		TotalEvents: len(events),
	}

	referenceKey := referenceDate.Format(observation.ServiceDateFormat)

	for _, event := range events {
		if event.ObservationDateTime.After(status.LastObservation) {
			status.LastObservation = event.ObservationDateTime
		}

		if event.Cancelled || event.ArrivalObserved {
			continue
		}

		if effectiveArrivalMissing(event, referenceKey) {
			status.ArrivalMissing++
		} else {
			status.ArrivalOpen++
		}
	}

	return status
}

// ReasonStat aggregates the reported delay reasons of one train.
type ReasonStat struct {
	Scope  string `groups:"basic"` // "Start" or "Ankunft"
	Reason string `groups:"basic"`

	Count            int  `groups:"basic"`
	MeanDelayMinutes *int `groups:"basic" json:",omitempty"`
}

// ReasonStatistics counts the delay & cancellation reasons over a train's
// events. Only delayed or cancelled runs contribute.
func ReasonStatistics(events []observation.TrainEvent) []ReasonStat {
	type record struct {
		scope  string
		reason string
		delay  int
	}

	records := []record{}

	for _, event := range events {
		departureDelay := 0
		if event.DepartureDelayMinutes != nil {
			departureDelay = *event.DepartureDelayMinutes
		}
		arrivalDelay := 0
		if event.ArrivalDelayMinutes != nil {
			arrivalDelay = *event.ArrivalDelayMinutes
		}

		if event.Cancelled {
			departureReason := event.DepartureReason
			if departureReason == "" {
				departureReason = "Ausfall"
			}
			arrivalReason := event.ArrivalReason
			if arrivalReason == "" {
				arrivalReason = departureReason
			}

			records = append(records, record{"Start", departureReason, departureDelay})
			records = append(records, record{"Ankunft", arrivalReason, arrivalDelay})
			continue
		}

		if departureDelay > 0 {
			reason := event.DepartureReason
			if reason == "" {
				reason = "Unbekannt"
			}
			records = append(records, record{"Start", reason, departureDelay})
		}
		if arrivalDelay > 0 {
			reason := event.ArrivalReason
			if reason == "" {
				reason = event.DepartureReason
			}
			if reason == "" {
				reason = "Unbekannt"
			}
			records = append(records, record{"Ankunft", reason, arrivalDelay})
		}
	}

	grouped := map[string]*ReasonStat{}
	sums := map[string]int{}

	for _, item := range records {
		groupKey := item.scope + "|" + item.reason

		if grouped[groupKey] == nil {
			grouped[groupKey] = &ReasonStat{
				Scope:  item.scope,
				Reason: item.reason,
			}
		}

		grouped[groupKey].Count++
		sums[groupKey] += item.delay
	}

	result := []ReasonStat{}
	for groupKey, stat := range grouped {
		mean := sums[groupKey] / stat.Count
		stat.MeanDelayMinutes = observation.IntPointer(mean)
		result = append(result, *stat)
	}

	sort.Slice(result, func(a, b int) bool {
		if result[a].Scope != result[b].Scope {
			return result[a].Scope < result[b].Scope
		}
		if result[a].Count != result[b].Count {
			return result[a].Count > result[b].Count
		}
		return result[a].Reason < result[b].Reason
	})

	return result
}

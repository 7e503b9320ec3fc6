package collector

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/observation"
	"github.com/puenktlich/puenktlich/pkg/timetables"
)

const arrivalLookaheadHours = 3
const arrivalCaptureWindow = 1 * time.Hour

// TimetableSource is the slice of the API client the collector needs,
// swapped for a stub in tests.
type TimetableSource interface {
	StationEVA(stationName string) (string, error)
	Plan(eva string, serviceDate time.Time, hour int) (string, error)
	Changes(eva string) (string, error)
}

// CollectObservations runs the write path once: fetch the plan & changes
// documents for every monitored route window and reduce them to one
// TrainEvent per train. A network or auth failure aborts the whole
// invocation - the next scheduled trigger retries.
func CollectObservations(source TimetableSource, settings config.Settings, windows []config.RouteWindow) ([]observation.TrainEvent, error) {
	location, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(location)

	return collectAt(source, windows, now, location)
}

func collectAt(source TimetableSource, windows []config.RouteWindow, now time.Time, location *time.Location) ([]observation.TrainEvent, error) {
	events := []observation.TrainEvent{}

	for _, window := range windows {
		windowEvents, err := collectWindow(source, window, now, location)
		if err != nil {
			return nil, err
		}

		events = append(events, windowEvents...)
	}

	// Last write wins per (route, train), ordered for stable storage
	deduped := map[string]observation.TrainEvent{}
	for _, event := range events {
		deduped[event.Route+"/"+event.TrainID] = event
	}

	result := []observation.TrainEvent{}
	for _, event := range deduped {
		result = append(result, event)
	}

	sort.Slice(result, func(a, b int) bool {
		if result[a].Route != result[b].Route {
			return result[a].Route < result[b].Route
		}
		if !result[a].PlannedDeparture.Equal(result[b].PlannedDeparture) {
			return result[a].PlannedDeparture.Before(result[b].PlannedDeparture)
		}
		return result[a].TrainName < result[b].TrainName
	})

	return result, nil
}

func collectWindow(source TimetableSource, window config.RouteWindow, now time.Time, location *time.Location) ([]observation.TrainEvent, error) {
	sourceEVA := window.SourceEVA
	targetEVA := window.TargetEVA

	var err error
	if sourceEVA == "" {
		if sourceEVA, err = source.StationEVA(window.SourceStation); err != nil {
			return nil, err
		}
	}
	if targetEVA == "" {
		if targetEVA, err = source.StationEVA(window.TargetStation); err != nil {
			return nil, err
		}
	}

	sourceChangesPayload, err := source.Changes(sourceEVA)
	if err != nil {
		return nil, err
	}
	sourceChanges, err := timetables.ParseChanges(sourceChangesPayload, location)
	if err != nil {
		return nil, err
	}

	targetChangesPayload, err := source.Changes(targetEVA)
	if err != nil {
		return nil, err
	}
	targetChanges, err := timetables.ParseChanges(targetChangesPayload, location)
	if err != nil {
		return nil, err
	}

	departureFilter := timetables.PlanFilter{
		SourceStation: window.SourceStation,
		TargetStation: window.TargetStation,
		Route:         window.Label,
		WindowStart:   window.StartTime,
		WindowEnd:     window.EndTime,
		Location:      location,
	}

	departures := []timetables.PlannedStop{}
	for hour := window.StartTime.Hour(); hour <= window.EndTime.Hour(); hour++ {
		payload, err := source.Plan(sourceEVA, now, hour)
		if err != nil {
			return nil, err
		}

		parsed, err := timetables.ParseDeparturesPlan(payload, departureFilter)
		if err != nil {
			log.Warn().Err(err).Str("route", window.Label).Int("hour", hour).Msg("Skipping unparseable departures plan")
			continue
		}

		departures = append(departures, parsed...)
	}

	arrivalFilter := departureFilter
	arrivalFilter.WindowEnd = window.EndTime.Add(arrivalLookaheadHours * time.Hour)

	lastArrivalHour := window.EndTime.Hour() + arrivalLookaheadHours
	if lastArrivalHour > 23 {
		lastArrivalHour = 23
	}

	arrivals := []timetables.PlannedStop{}
	for hour := window.StartTime.Hour(); hour <= lastArrivalHour; hour++ {
		payload, err := source.Plan(targetEVA, now, hour)
		if err != nil {
			return nil, err
		}

		parsed, err := timetables.ParseArrivalsPlan(payload, arrivalFilter)
		if err != nil {
			log.Warn().Err(err).Str("route", window.Label).Int("hour", hour).Msg("Skipping unparseable arrivals plan")
			continue
		}

		arrivals = append(arrivals, parsed...)
	}

	sort.SliceStable(departures, func(a, b int) bool {
		return plannedDepartureOrMax(departures[a]).Before(plannedDepartureOrMax(departures[b]))
	})
	sort.SliceStable(arrivals, func(a, b int) bool {
		return plannedArrivalOrMax(arrivals[a]).Before(plannedArrivalOrMax(arrivals[b]))
	})

	usedArrivalIDs := map[string]bool{}
	events := []observation.TrainEvent{}

	for _, departure := range departures {
		if departure.PlannedDeparture == nil {
			continue
		}

		event := buildEvent(departure, arrivals, usedArrivalIDs, sourceChanges, targetChanges, now)
		events = append(events, event)
	}

	return events, nil
}

func buildEvent(departure timetables.PlannedStop, arrivals []timetables.PlannedStop, usedArrivalIDs map[string]bool, sourceChanges map[string]timetables.ChangeInfo, targetChanges map[string]timetables.ChangeInfo, now time.Time) observation.TrainEvent {
	event := observation.TrainEvent{
		ObservationDateTime: now,
		ServiceDate:         now.Format(observation.ServiceDateFormat),
		Route:               departure.Route,
		TrainID:             departure.TrainID,
		TrainName:           departure.TrainName,
		Line:                departure.Line,
		SourceStation:       departure.SourceStation,
		TargetStation:       departure.TargetStation,
		PlannedDeparture:    *departure.PlannedDeparture,
	}

	departureChange, hasDepartureChange := sourceChanges[departure.TrainID]
	if hasDepartureChange {
		event.ActualDeparture = departureChange.ChangedDeparture
		event.CancelledDeparture = departureChange.Cancelled
		event.DepartureReason = departureChange.DepartureReason
	}
	if event.CancelledDeparture && event.DepartureReason == "" {
		event.DepartureReason = "Ausfall"
	}

	matchedArrival := matchArrivalForDeparture(departure, arrivals, usedArrivalIDs)
	if matchedArrival != nil {
		event.PlannedArrival = matchedArrival.PlannedArrival
	}

	var arrivalChange timetables.ChangeInfo
	hasArrivalChange := false
	if matchedArrival != nil {
		arrivalChange, hasArrivalChange = targetChanges[matchedArrival.TrainID]
	}

	arrivalEventAvailable := hasArrivalChange && (arrivalChange.ChangedArrival != nil || arrivalChange.Cancelled)

	withinCaptureWindow := false
	var arrivalDeadline time.Time
	if event.PlannedArrival != nil {
		arrivalDeadline = event.PlannedArrival.Add(arrivalCaptureWindow)
		withinCaptureWindow = !now.After(arrivalDeadline)
	}

	// Explicit arrival events count immediately. Otherwise an on-time
	// arrival is only inferred once the planned arrival has passed and we
	// are still inside the capture window.
	event.ArrivalObserved = arrivalEventAvailable ||
		(withinCaptureWindow && event.PlannedArrival != nil && !now.Before(*event.PlannedArrival))

	if event.ArrivalObserved {
		event.ActualArrival = event.PlannedArrival
		if hasArrivalChange && arrivalChange.ChangedArrival != nil {
			event.ActualArrival = arrivalChange.ChangedArrival
		}

		if hasArrivalChange {
			event.CancelledArrival = arrivalChange.Cancelled
			event.ArrivalReason = arrivalChange.ArrivalReason
		}
		if event.CancelledArrival && event.ArrivalReason == "" {
			event.ArrivalReason = "Ausfall"
		}
	}

	event.ArrivalInfoMissing = event.PlannedArrival != nil && !event.ArrivalObserved && now.After(arrivalDeadline)
	event.Cancelled = event.CancelledDeparture || event.CancelledArrival

	// Cancelled runs have no meaningful delay - the fields stay null and
	// the aggregation counts the day as a cancellation instead.
	if !event.Cancelled {
		plannedDeparture := event.PlannedDeparture
		departureDeviation := observation.DelayMinutes(event.ActualDeparture, &plannedDeparture)
		event.DepartureDeviationMinutes = observation.IntPointer(departureDeviation)
		event.DepartureDelayMinutes = observation.IntPointer(observation.ClampDelay(departureDeviation))

		if event.ArrivalObserved {
			arrivalDeviation := observation.DelayMinutes(event.ActualArrival, event.PlannedArrival)
			event.ArrivalDeviationMinutes = observation.IntPointer(arrivalDeviation)
			event.ArrivalDelayMinutes = observation.IntPointer(observation.ClampDelay(arrivalDeviation))
		}
	}

	return event
}

func plannedDepartureOrMax(stop timetables.PlannedStop) time.Time {
	if stop.PlannedDeparture == nil {
		return time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
	}

	return *stop.PlannedDeparture
}

package stats

import (
	"sort"
	"time"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

const DefaultWindowDays = 30

// DayCell is one calendar day of one train in the dashboard matrix.
type DayCell struct {
	ServiceDate string `groups:"basic"`

	DepartureDelayMinutes *int `groups:"basic" json:",omitempty"`
	ArrivalDelayMinutes   *int `groups:"basic" json:",omitempty"`

	Cancelled       bool `groups:"basic"`
	ArrivalObserved bool `groups:"basic"`
	// Set once no arrival information can be expected anymore, either
	// because the collector flagged it or because the day has passed
	ArrivalInfoMissing bool `groups:"basic"`
}

// TrainSummary is one row of the matrix: the day cells in ascending date
// order plus the trailing window aggregates. A mean of nil is "no
// non-cancelled observation in the window" and renders as a placeholder,
// never as zero.
type TrainSummary struct {
	TrainKey      string `groups:"basic"`
	TrainName     string `groups:"basic"`
	DepartureTime string `groups:"basic"`

	Days []DayCell `groups:"basic"`

	MeanDepartureDelayMinutes *int `groups:"basic" json:",omitempty"`
	MeanArrivalDelayMinutes   *int `groups:"basic" json:",omitempty"`

	CancelledDays int `groups:"basic"`
}

// RouteMatrix is the aggregation of one route over a trailing day window.
type RouteMatrix struct {
	Route     string `groups:"basic"`
	StartDate string `groups:"basic"`
	EndDate   string `groups:"basic"`

	// Every service date with at least one observation, ascending - the
	// column order of the rendered table
	Days []string `groups:"basic"`

	Trains []TrainSummary `groups:"basic"`
}

// BuildRouteMatrix aggregates the event history of one route over the
// trailing window ending at endDate. It is a pure function over the queried
// slice - cancelled observations contribute to the cancellation count but
// are excluded from both numerator and denominator of the delay means.
func BuildRouteMatrix(events []observation.TrainEvent, route string, endDate time.Time, windowDays int) RouteMatrix {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	endDateKey := endDate.Format(observation.ServiceDateFormat)
	startDateKey := endDate.AddDate(0, 0, -(windowDays - 1)).Format(observation.ServiceDateFormat)

	matrix := RouteMatrix{
		Route:     route,
		StartDate: startDateKey,
		EndDate:   endDateKey,
	}

	inWindow := []observation.TrainEvent{}
	daysSeen := map[string]bool{}

	for _, event := range events {
		if event.Route != route {
			continue
		}
		if event.ServiceDate < startDateKey || event.ServiceDate > endDateKey {
			continue
		}

		inWindow = append(inWindow, event)
		daysSeen[event.ServiceDate] = true
	}

	for day := range daysSeen {
		matrix.Days = append(matrix.Days, day)
	}
	sort.Strings(matrix.Days)

	byTrain := map[string][]observation.TrainEvent{}
	for _, event := range inWindow {
		key := event.TrainKey()
		byTrain[key] = append(byTrain[key], event)
	}

	for key, trainEvents := range byTrain {
		matrix.Trains = append(matrix.Trains, summariseTrain(key, trainEvents, endDateKey))
	}

	sort.Slice(matrix.Trains, func(a, b int) bool {
		if matrix.Trains[a].DepartureTime != matrix.Trains[b].DepartureTime {
			return matrix.Trains[a].DepartureTime < matrix.Trains[b].DepartureTime
		}
		return matrix.Trains[a].TrainKey < matrix.Trains[b].TrainKey
	})

	return matrix
}

func summariseTrain(key string, events []observation.TrainEvent, endDateKey string) TrainSummary {
	sort.Slice(events, func(a, b int) bool {
		return events[a].ServiceDate < events[b].ServiceDate
	})

	summary := TrainSummary{
		TrainKey:      key,
		TrainName:     events[0].TrainName,
		DepartureTime: events[0].PlannedDeparture.Format("15:04"),
	}

	departureSum := 0
	departureCount := 0
	arrivalSum := 0
	arrivalCount := 0
	cancelledDays := map[string]bool{}

	for _, event := range events {
		cell := DayCell{
			ServiceDate:        event.ServiceDate,
			Cancelled:          event.Cancelled,
			ArrivalObserved:    event.ArrivalObserved,
			ArrivalInfoMissing: effectiveArrivalMissing(event, endDateKey),
		}

		if !event.Cancelled {
			cell.DepartureDelayMinutes = event.DepartureDelayMinutes
			if event.ArrivalObserved {
				cell.ArrivalDelayMinutes = event.ArrivalDelayMinutes
			}
		}

		summary.Days = append(summary.Days, cell)

		if event.Cancelled {
			cancelledDays[event.ServiceDate] = true
			continue
		}

		if event.DepartureDelayMinutes != nil {
			departureSum += *event.DepartureDelayMinutes
			departureCount++
		}
		if event.ArrivalObserved && event.ArrivalDelayMinutes != nil {
			arrivalSum += *event.ArrivalDelayMinutes
			arrivalCount++
		}
	}

	if departureCount > 0 {
		summary.MeanDepartureDelayMinutes = observation.IntPointer(departureSum / departureCount)
	}
	if arrivalCount > 0 {
		summary.MeanArrivalDelayMinutes = observation.IntPointer(arrivalSum / arrivalCount)
	}

	summary.CancelledDays = len(cancelledDays)

	return summary
}

// effectiveArrivalMissing widens the collector's missing flag at read time:
// an unobserved arrival on a day that already lies behind the reference date
// can never be filled in anymore.
func effectiveArrivalMissing(event observation.TrainEvent, endDateKey string) bool {
	if event.ArrivalObserved || event.Cancelled {
		return false
	}
	if event.ArrivalInfoMissing {
		return true
	}

	return event.ServiceDate < endDateKey
}

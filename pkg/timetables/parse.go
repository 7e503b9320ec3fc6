package timetables

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/puenktlich/puenktlich/pkg/util"
	"github.com/rs/zerolog/log"
)

// PlannedStop is one train's planned call at a station, already attributed to
// a monitored route.
type PlannedStop struct {
	TrainID   string
	TrainName string
	Line      string

	SourceStation string
	TargetStation string
	Route         string

	PlannedDeparture *time.Time
	PlannedArrival   *time.Time
}

// ChangeInfo is the realtime delta for one train at one station.
type ChangeInfo struct {
	TrainID string

	ChangedDeparture *time.Time
	ChangedArrival   *time.Time

	DepartureReason string
	ArrivalReason   string

	Cancelled bool
}

// PlanFilter restricts a raw plan document to one monitored route & clock
// window.
type PlanFilter struct {
	SourceStation string
	TargetStation string
	Route         string

	WindowStart time.Time
	WindowEnd   time.Time

	Location *time.Location
}

// ParseDeparturesPlan extracts the planned departures of a route from a plan
// payload of its source station. Records with malformed or missing
// timestamps are skipped so one bad record never aborts the batch.
func ParseDeparturesPlan(xmlPayload string, filter PlanFilter) ([]PlannedStop, error) {
	return parsePlan(xmlPayload, filter, false)
}

// ParseArrivalsPlan extracts the planned arrivals of a route from a plan
// payload of its target station.
func ParseArrivalsPlan(xmlPayload string, filter PlanFilter) ([]PlannedStop, error) {
	return parsePlan(xmlPayload, filter, true)
}

func parsePlan(xmlPayload string, filter PlanFilter, arrivalMode bool) ([]PlannedStop, error) {
	var timetable Timetable
	if err := xml.Unmarshal([]byte(xmlPayload), &timetable); err != nil {
		return nil, err
	}

	stops := []PlannedStop{}

	for _, stop := range timetable.Stops {
		if stop.ID == "" {
			continue
		}

		trainName, line := trainNameFromLabel(stop.TripLabel)

		plannedDeparture := eventTime(stop.Departure, filter.Location, false)
		plannedArrival := eventTime(stop.Arrival, filter.Location, false)

		eventInstant := plannedDeparture
		requiredInPath := filter.TargetStation
		pathEvent := stop.Departure
		if arrivalMode {
			eventInstant = plannedArrival
			requiredInPath = filter.SourceStation
			pathEvent = stop.Arrival
		}

		if eventInstant == nil {
			continue
		}

		// Clock-time window, intentionally date independent
		if !util.ClockTimeBetween(*eventInstant, filter.WindowStart, filter.WindowEnd) {
			continue
		}

		if !pathContains(pathEvent, stop, requiredInPath) {
			continue
		}

		stops = append(stops, PlannedStop{
			TrainID:          stop.ID,
			TrainName:        trainName,
			Line:             line,
			SourceStation:    filter.SourceStation,
			TargetStation:    filter.TargetStation,
			Route:            filter.Route,
			PlannedDeparture: plannedDeparture,
			PlannedArrival:   plannedArrival,
		})
	}

	return stops, nil
}

// ParseChanges extracts the realtime changes per train from a fchg payload.
func ParseChanges(xmlPayload string, location *time.Location) (map[string]ChangeInfo, error) {
	var timetable Timetable
	if err := xml.Unmarshal([]byte(xmlPayload), &timetable); err != nil {
		return nil, err
	}

	changes := map[string]ChangeInfo{}

	for _, stop := range timetable.Stops {
		if stop.ID == "" {
			continue
		}

		cancelled := false
		if stop.Departure != nil && stop.Departure.ChangedStatus == "c" {
			cancelled = true
		}
		if stop.Arrival != nil && stop.Arrival.ChangedStatus == "c" {
			cancelled = true
		}

		changes[stop.ID] = ChangeInfo{
			TrainID:          stop.ID,
			ChangedDeparture: eventTime(stop.Departure, location, true),
			ChangedArrival:   eventTime(stop.Arrival, location, true),
			DepartureReason:  collectReasons(stop, stop.Departure),
			ArrivalReason:    collectReasons(stop, stop.Arrival),
			Cancelled:        cancelled,
		}
	}

	return changes, nil
}

func eventTime(event *TimetableEvent, location *time.Location, changed bool) *time.Time {
	if event == nil {
		return nil
	}

	raw := event.PlannedTime
	if changed {
		raw = event.ChangedTime
	}

	if raw == "" {
		return nil
	}

	parsed, err := ParseTimetableTime(raw, location)
	if err != nil {
		// Partial success policy: drop the timestamp, keep collecting
		log.Debug().Str("raw", raw).Msg("Skipping malformed timetable timestamp")
		return nil
	}

	return &parsed
}

func trainNameFromLabel(label *TripLabel) (string, string) {
	if label == nil {
		return "Unbekannt", ""
	}

	category := strings.TrimSpace(label.Category)
	number := strings.TrimSpace(label.Number)

	if category != "" && number != "" {
		compact := strings.ReplaceAll(category+number, " ", "")
		return compact, compact
	}
	if number != "" {
		return number, number
	}
	if category != "" {
		return category, category
	}

	fallback := strings.ReplaceAll(strings.TrimSpace(label.Owner), " ", "")
	if fallback == "" {
		fallback = "Unbekannt"
	}

	return fallback, fallback
}

func pathContains(event *TimetableEvent, stop TimetableStop, station string) bool {
	path := ""
	if event != nil && event.PlannedPath != "" {
		path = event.PlannedPath
	} else if stop.Departure != nil && stop.Departure.PlannedPath != "" {
		path = stop.Departure.PlannedPath
	} else if stop.Arrival != nil && stop.Arrival.PlannedPath != "" {
		path = stop.Arrival.PlannedPath
	}

	// No path information at all - keep the record rather than guess
	if path == "" {
		return true
	}

	for _, pathStation := range strings.Split(path, "|") {
		if strings.EqualFold(strings.TrimSpace(pathStation), station) {
			return true
		}
	}

	return false
}

// collectReasons merges the message texts of a stop and one of its events,
// first occurrence wins, duplicates dropped.
func collectReasons(stop TimetableStop, event *TimetableEvent) string {
	messages := append([]Message{}, stop.Messages...)
	if event != nil {
		messages = append(messages, event.Messages...)
	}

	seen := map[string]bool{}
	reasons := []string{}

	for _, message := range messages {
		parts := []string{}
		for _, value := range []string{message.Type, message.Category, message.Code, message.From, message.To, message.ID} {
			if strings.TrimSpace(value) != "" {
				parts = append(parts, strings.TrimSpace(value))
			}
		}

		text := strings.Join(parts, " ")
		if text == "" {
			text = strings.TrimSpace(message.Text)
		}
		if text == "" || seen[text] {
			continue
		}

		seen[text] = true
		reasons = append(reasons, text)
	}

	return strings.Join(reasons, " | ")
}

package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

// trainEventRow is the flat CSV projection of a TrainEvent. Absent values
// stay empty cells so spreadsheets do not mistake them for zero delays.
type trainEventRow struct {
	ServiceDate string `csv:"service_date"`
	Route       string `csv:"route"`
	TrainID     string `csv:"train_id"`
	TrainName   string `csv:"train_name"`
	Line        string `csv:"line"`

	PlannedDeparture string `csv:"planned_departure"`
	ActualDeparture  string `csv:"actual_departure"`
	PlannedArrival   string `csv:"planned_arrival"`
	ActualArrival    string `csv:"actual_arrival"`

	DepartureDelayMinutes string `csv:"departure_delay_minutes"`
	ArrivalDelayMinutes   string `csv:"arrival_delay_minutes"`

	ArrivalObserved    bool `csv:"arrival_observed"`
	ArrivalInfoMissing bool `csv:"arrival_info_missing"`
	Cancelled          bool `csv:"cancelled"`

	DepartureReason string `csv:"departure_reason"`
	ArrivalReason   string `csv:"arrival_reason"`
}

// WriteCSV marshals events into CSV on the given writer.
func WriteCSV(events []observation.TrainEvent, writer io.Writer) error {
	rows := make([]trainEventRow, 0, len(events))

	for _, event := range events {
		rows = append(rows, trainEventRow{
			ServiceDate:           event.ServiceDate,
			Route:                 event.Route,
			TrainID:               event.TrainID,
			TrainName:             event.TrainName,
			Line:                  event.Line,
			PlannedDeparture:      event.PlannedDeparture.Format(time.RFC3339),
			ActualDeparture:       formatOptionalTime(event.ActualDeparture),
			PlannedArrival:        formatOptionalTime(event.PlannedArrival),
			ActualArrival:         formatOptionalTime(event.ActualArrival),
			DepartureDelayMinutes: formatOptionalInt(event.DepartureDelayMinutes),
			ArrivalDelayMinutes:   formatOptionalInt(event.ArrivalDelayMinutes),
			ArrivalObserved:       event.ArrivalObserved,
			ArrivalInfoMissing:    event.ArrivalInfoMissing,
			Cancelled:             event.Cancelled,
			DepartureReason:       event.DepartureReason,
			ArrivalReason:         event.ArrivalReason,
		})
	}

	return gocsv.Marshal(rows, writer)
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}

	return value.Format(time.RFC3339)
}

func formatOptionalInt(value *int) string {
	if value == nil {
		return ""
	}

	return fmt.Sprintf("%d", *value)
}

package observation

import (
	"fmt"
	"time"
)

const ServiceDateFormat = "2006-01-02"

// TrainEvent is one observed run of one train on one route on one service
// date. There is at most one per (ServiceDate, Route, TrainID) - recollecting
// the same window overwrites the existing record instead of duplicating it.
type TrainEvent struct {
	ObservationDateTime time.Time `groups:"detailed" bson:",omitempty"`

	ServiceDate string `groups:"basic"`
	Route       string `groups:"basic"`

	TrainID   string `groups:"basic"`
	TrainName string `groups:"basic" bson:",omitempty"`
	Line      string `groups:"basic" bson:",omitempty"`

	SourceStation string `groups:"detailed" bson:",omitempty"`
	TargetStation string `groups:"detailed" bson:",omitempty"`

	PlannedDeparture time.Time  `groups:"basic"`
	ActualDeparture  *time.Time `groups:"basic" json:",omitempty" bson:",omitempty"`
	PlannedArrival   *time.Time `groups:"basic" json:",omitempty" bson:",omitempty"`
	ActualArrival    *time.Time `groups:"basic" json:",omitempty" bson:",omitempty"`

	// Published delays are clamped at zero, the deviations keep the sign so
	// early departures stay distinguishable from on-time ones. All four are
	// nil when the event is cancelled, and the arrival pair additionally
	// until the arrival has actually been observed.
	DepartureDelayMinutes     *int `groups:"basic" json:",omitempty" bson:",omitempty"`
	DepartureDeviationMinutes *int `groups:"detailed" json:",omitempty" bson:",omitempty"`
	ArrivalDelayMinutes       *int `groups:"basic" json:",omitempty" bson:",omitempty"`
	ArrivalDeviationMinutes   *int `groups:"detailed" json:",omitempty" bson:",omitempty"`

	ArrivalObserved    bool `groups:"basic"`
	ArrivalInfoMissing bool `groups:"basic"`

	DepartureReason string `groups:"detailed" bson:",omitempty"`
	ArrivalReason   string `groups:"detailed" bson:",omitempty"`

	CancelledDeparture bool `groups:"detailed"`
	CancelledArrival   bool `groups:"detailed"`
	Cancelled          bool `groups:"basic"`
}

// TrainKey is the display identity of a train within a route: the same
// physical service keeps its key across days even when the operator reuses
// stop ids.
func (event *TrainEvent) TrainKey() string {
	name := event.TrainName
	if name == "" {
		name = event.Line
	}
	if name == "" {
		name = "Unbekannt"
	}

	return fmt.Sprintf("%s | %s", name, event.PlannedDeparture.Format("15:04"))
}

// DelayMinutes returns the minute difference between an actual and a planned
// time, zero when either side is unknown.
func DelayMinutes(actual *time.Time, planned *time.Time) int {
	if actual == nil || planned == nil {
		return 0
	}

	return int(actual.Sub(*planned).Minutes())
}

func ClampDelay(deviation int) int {
	if deviation < 0 {
		return 0
	}

	return deviation
}

func IntPointer(value int) *int {
	return &value
}

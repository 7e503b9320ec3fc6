package observation

import "time"

// CarTravelObservation records the road alternative for a commuter route,
// sampled once per day after the target departure time has passed.
type CarTravelObservation struct {
	ObservationDateTime time.Time `groups:"detailed"`

	ServiceDate string `groups:"basic"`
	Route       string `groups:"basic"`

	FromName string `groups:"detailed"`
	ToName   string `groups:"detailed"`

	// HH:MM of the commute departure this sample stands in for
	TargetDeparture string `groups:"basic"`

	DurationMinutes int     `groups:"basic"`
	DistanceKM      float64 `groups:"basic"`
}

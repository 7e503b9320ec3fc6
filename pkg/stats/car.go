package stats

import (
	"math"
	"time"

	"github.com/puenktlich/puenktlich/pkg/observation"
)

// CarRouteSummary compares a monitored train route against its road
// alternative.
type CarRouteSummary struct {
	Route    string `groups:"basic"`
	CarRoute string `groups:"basic"`

	MeanDurationMinutes  *int `groups:"basic" json:",omitempty"`
	TodayDurationMinutes *int `groups:"basic" json:",omitempty"`

	SampledDays int `groups:"basic"`
}

// CarRouteLabel maps a train route label onto its car route label.
func CarRouteLabel(trainRoute string) string {
	return "Car " + trainRoute
}

// BuildCarSummary reduces the car travel history to one summary per train
// route: the mean duration over all sampled days (latest sample of each day
// wins) plus today's value when present.
func BuildCarSummary(observations []observation.CarTravelObservation, trainRoutes []string, referenceDate time.Time) []CarRouteSummary {
	referenceKey := referenceDate.Format(observation.ServiceDateFormat)

	summaries := []CarRouteSummary{}

	for _, trainRoute := range trainRoutes {
		carRoute := CarRouteLabel(trainRoute)

		latestPerDay := map[string]observation.CarTravelObservation{}
		for _, carObservation := range observations {
			if carObservation.Route != carRoute {
				continue
			}

			current, exists := latestPerDay[carObservation.ServiceDate]
			if !exists || carObservation.ObservationDateTime.After(current.ObservationDateTime) {
				latestPerDay[carObservation.ServiceDate] = carObservation
			}
		}

		summary := CarRouteSummary{
			Route:       trainRoute,
			CarRoute:    carRoute,
			SampledDays: len(latestPerDay),
		}

		if len(latestPerDay) > 0 {
			sum := 0
			for _, carObservation := range latestPerDay {
				sum += carObservation.DurationMinutes
			}

			mean := int(math.Round(float64(sum) / float64(len(latestPerDay))))
			summary.MeanDurationMinutes = observation.IntPointer(mean)

			if today, exists := latestPerDay[referenceKey]; exists {
				summary.TodayDurationMinutes = observation.IntPointer(today.DurationMinutes)
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

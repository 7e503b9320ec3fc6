package cartravel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/observation"
	"github.com/puenktlich/puenktlich/pkg/util"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Duration float64 `json:"duration"`
			Distance float64 `json:"distance"`
		} `json:"summary"`
	} `json:"routes"`
}

// Collect samples the road travel time for every car route whose target
// departure time of the day has already passed. Without an openrouteservice
// key the whole add-on is silently disabled.
func Collect(settings config.Settings, routes []config.CarRoute) ([]observation.CarTravelObservation, error) {
	if settings.ORSAPIKey == "" {
		return nil, nil
	}

	location, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(location)
	serviceDate := now.Format(observation.ServiceDateFormat)

	observations := []observation.CarTravelObservation{}

	for _, route := range routes {
		// A route is only meaningful once its commute departure has started.
		// Offenburg->Freiburg must not be sampled in the morning.
		if !util.ClockTimeBetween(now, route.TargetDeparture, endOfDay()) {
			continue
		}

		durationMinutes, distanceKM, err := fetchRouteDuration(settings, route)
		if err != nil {
			return nil, err
		}

		observations = append(observations, observation.CarTravelObservation{
			ObservationDateTime: now,
			ServiceDate:         serviceDate,
			Route:               route.Label,
			FromName:            route.FromName,
			ToName:              route.ToName,
			TargetDeparture:     route.TargetDeparture.Format("15:04"),
			DurationMinutes:     durationMinutes,
			DistanceKM:          distanceKM,
		})
	}

	return observations, nil
}

func fetchRouteDuration(settings config.Settings, route config.CarRoute) (int, float64, error) {
	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{
			{route.FromLon, route.FromLat},
			{route.ToLon, route.ToLat},
		},
	})
	if err != nil {
		return 0, 0, err
	}

	req, err := http.NewRequest("POST", settings.ORSDirectionsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Authorization", settings.ORSAPIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		truncated := strings.TrimSpace(string(body))
		if len(truncated) > 500 {
			truncated = truncated[:500]
		}
		return 0, 0, fmt.Errorf("unexpected status %d from openrouteservice: %s", resp.StatusCode, truncated)
	}

	var directions directionsResponse
	if err := json.Unmarshal(body, &directions); err != nil {
		return 0, 0, err
	}

	if len(directions.Routes) == 0 {
		return 0, 0, fmt.Errorf("openrouteservice returned no route for %s", route.Label)
	}

	summary := directions.Routes[0].Summary
	durationMinutes := int(math.Round(summary.Duration / 60.0))
	distanceKM := math.Round(summary.Distance/1000.0*10) / 10

	return durationMinutes, distanceKM, nil
}

func endOfDay() time.Time {
	return time.Date(0, time.January, 1, 23, 59, 0, 0, time.UTC)
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/puenktlich/puenktlich/pkg/util"
)

const defaultStationEndpoint = "https://apis.deutschebahn.com/db-api-marketplace/apis/station-data/v2"
const defaultTimetablesEndpoint = "https://apis.deutschebahn.com/db-api-marketplace/apis/timetables/v1"
const defaultORSDirectionsEndpoint = "https://api.openrouteservice.org/v2/directions/driving-car"

// Settings holds the credential & endpoint configuration supplied via the
// environment. The two credential values come from the DB API marketplace
// subscription and are never stored.
type Settings struct {
	ClientID string
	APIKey   string

	Timezone string

	StationEndpoint    string
	TimetablesEndpoint string

	ORSAPIKey             string
	ORSDirectionsEndpoint string
}

// RouteWindow is one of the two fixed directional commuter routes together
// with the clock-time window of departures that are monitored on it.
type RouteWindow struct {
	Label string

	SourceStation string
	TargetStation string

	SourceEVA string
	TargetEVA string

	StartTime time.Time
	EndTime   time.Time
}

// CarRoute mirrors a RouteWindow for the road alternative, measured once the
// target departure time of the day has passed.
type CarRoute struct {
	Label string

	FromName string
	ToName   string

	FromLat float64
	FromLon float64
	ToLat   float64
	ToLon   float64

	TargetDeparture time.Time
}

func Get() (Settings, error) {
	env := util.GetEnvironmentVariables()

	clientID := strings.TrimSpace(env["PUENKTLICH_DB_CLIENT_ID"])
	apiKey := strings.TrimSpace(env["PUENKTLICH_DB_API_KEY"])
	if apiKey == "" {
		// Older deployments of this project used the secret naming
		apiKey = strings.TrimSpace(env["PUENKTLICH_DB_CLIENT_SECRET"])
	}

	if clientID == "" || apiKey == "" {
		return Settings{}, errors.New("PUENKTLICH_DB_CLIENT_ID and PUENKTLICH_DB_API_KEY must be set")
	}

	settings := Settings{
		ClientID: clientID,
		APIKey:   apiKey,

		Timezone: envOrDefault(env, "PUENKTLICH_TIMEZONE", "Europe/Berlin"),

		StationEndpoint:    envOrDefault(env, "PUENKTLICH_DB_STATION_ENDPOINT", defaultStationEndpoint),
		TimetablesEndpoint: envOrDefault(env, "PUENKTLICH_DB_TIMETABLES_ENDPOINT", defaultTimetablesEndpoint),

		ORSAPIKey:             env["PUENKTLICH_ORS_API_KEY"],
		ORSDirectionsEndpoint: envOrDefault(env, "PUENKTLICH_ORS_DIRECTIONS_ENDPOINT", defaultORSDirectionsEndpoint),
	}

	return settings, nil
}

// RouteWindows returns the two monitored directional routes. Stations, EVA
// numbers and clock windows can all be overriden from the environment but
// default to the Freiburg<->Offenburg commute.
func RouteWindows() ([]RouteWindow, error) {
	env := util.GetEnvironmentVariables()

	morningStart, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_MORNING_START", "06:00"))
	if err != nil {
		return nil, err
	}
	morningEnd, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_MORNING_END", "08:00"))
	if err != nil {
		return nil, err
	}
	afternoonStart, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_AFTERNOON_START", "15:30"))
	if err != nil {
		return nil, err
	}
	afternoonEnd, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_AFTERNOON_END", "17:30"))
	if err != nil {
		return nil, err
	}

	return []RouteWindow{
		{
			Label:         "Morning Freiburg->Offenburg",
			SourceStation: envOrDefault(env, "PUENKTLICH_MORNING_SOURCE", "Freiburg(Breisgau) Hbf"),
			TargetStation: envOrDefault(env, "PUENKTLICH_MORNING_TARGET", "Offenburg"),
			SourceEVA:     envOrDefault(env, "PUENKTLICH_MORNING_SOURCE_EVA", "8000107"),
			TargetEVA:     envOrDefault(env, "PUENKTLICH_MORNING_TARGET_EVA", "8000290"),
			StartTime:     morningStart,
			EndTime:       morningEnd,
		},
		{
			Label:         "Afternoon Offenburg->Freiburg",
			SourceStation: envOrDefault(env, "PUENKTLICH_AFTERNOON_SOURCE", "Offenburg"),
			TargetStation: envOrDefault(env, "PUENKTLICH_AFTERNOON_TARGET", "Freiburg(Breisgau) Hbf"),
			SourceEVA:     envOrDefault(env, "PUENKTLICH_AFTERNOON_SOURCE_EVA", "8000290"),
			TargetEVA:     envOrDefault(env, "PUENKTLICH_AFTERNOON_TARGET_EVA", "8000107"),
			StartTime:     afternoonStart,
			EndTime:       afternoonEnd,
		},
	}, nil
}

// CarRoutes returns the road equivalents of the monitored routes. Only used
// when an openrouteservice key is configured.
func CarRoutes() ([]CarRoute, error) {
	env := util.GetEnvironmentVariables()

	morningDeparture, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_CAR_MORNING_DEPARTURE", "06:45"))
	if err != nil {
		return nil, err
	}
	afternoonDeparture, err := ParseClockTime(envOrDefault(env, "PUENKTLICH_CAR_AFTERNOON_DEPARTURE", "16:30"))
	if err != nil {
		return nil, err
	}

	return []CarRoute{
		{
			Label:           "Car Morning Freiburg->Offenburg",
			FromName:        "Freiburg im Breisgau",
			ToName:          "Offenburg",
			FromLat:         47.9977,
			FromLon:         7.8415,
			ToLat:           48.4767,
			ToLon:           7.9463,
			TargetDeparture: morningDeparture,
		},
		{
			Label:           "Car Afternoon Offenburg->Freiburg",
			FromName:        "Offenburg",
			ToName:          "Freiburg im Breisgau",
			FromLat:         48.4767,
			FromLon:         7.9463,
			ToLat:           47.9977,
			ToLon:           7.8415,
			TargetDeparture: afternoonDeparture,
		},
	}, nil
}

// ParseClockTime parses a "HH:MM" string into a date-less clock time.
func ParseClockTime(raw string) (time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid clock time %q", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q", raw)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("clock time %q out of range", raw)
	}

	return time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC), nil
}

func envOrDefault(env map[string]string, key string, fallback string) string {
	if env[key] != "" {
		return env[key]
	}

	return fallback
}

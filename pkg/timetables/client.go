package timetables

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/puenktlich/puenktlich/pkg/config"
)

// APIClient talks to the DB API marketplace Timetables & Station Data
// products. There is deliberately no retry here - a failed collection run
// aborts and the next scheduled trigger picks up again.
type APIClient struct {
	settings config.Settings

	httpClient *http.Client
}

func NewAPIClient(settings config.Settings) *APIClient {
	return &APIClient{
		settings: settings,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type stationSearchResponse struct {
	Result []struct {
		Name       string `json:"name"`
		EVANumbers []struct {
			Number int64 `json:"number"`
		} `json:"evaNumbers"`
	} `json:"result"`
}

// StationEVA resolves a station name to its EVA number, preferring results
// whose name contains the query.
func (client *APIClient) StationEVA(stationName string) (string, error) {
	requestURL := fmt.Sprintf("%s/stations?searchstring=%s&limit=5", client.settings.StationEndpoint, url.QueryEscape(stationName))

	body, err := client.get(requestURL, "application/json")
	if err != nil {
		return "", err
	}

	var searchResponse stationSearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return "", err
	}

	if len(searchResponse.Result) == 0 {
		return "", fmt.Errorf("no station found for %q", stationName)
	}

	for _, station := range searchResponse.Result {
		if strings.Contains(strings.ToLower(station.Name), strings.ToLower(stationName)) && len(station.EVANumbers) > 0 {
			return fmt.Sprintf("%d", station.EVANumbers[0].Number), nil
		}
	}

	first := searchResponse.Result[0]
	if len(first.EVANumbers) == 0 {
		return "", fmt.Errorf("station %q has no EVA number", stationName)
	}

	return fmt.Sprintf("%d", first.EVANumbers[0].Number), nil
}

// Plan returns the planned timetable slice for one station & hour. Some
// station/hour combinations legitimately have no plan payload, those come
// back as an empty timetable instead of an error.
func (client *APIClient) Plan(eva string, serviceDate time.Time, hour int) (string, error) {
	requestURL := fmt.Sprintf("%s/plan/%s/%s/%02d", client.settings.TimetablesEndpoint, eva, serviceDate.Format("060102"), hour)

	body, err := client.get(requestURL, "application/xml")
	if err != nil {
		var httpError *HTTPError
		if errors.As(err, &httpError) && httpError.StatusCode == http.StatusNotFound {
			return "<timetable/>", nil
		}

		return "", err
	}

	return string(body), nil
}

// Changes returns the full changes feed for a station.
func (client *APIClient) Changes(eva string) (string, error) {
	requestURL := fmt.Sprintf("%s/fchg/%s", client.settings.TimetablesEndpoint, eva)

	body, err := client.get(requestURL, "application/xml")
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// HTTPError carries the endpoint and a truncated response body so auth &
// quota failures are diagnosable from the log alone.
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

func (client *APIClient) get(requestURL string, accept string) ([]byte, error) {
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("DB-Client-Id", client.settings.ClientID)
	req.Header.Set("DB-Api-Key", client.settings.APIKey)
	req.Header.Set("Accept", accept)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		truncated := strings.ReplaceAll(strings.TrimSpace(string(body)), "\n", " ")
		if len(truncated) > 500 {
			truncated = truncated[:500]
		}

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Endpoint:   requestURL,
			Body:       truncated,
		}
	}

	return body, nil
}

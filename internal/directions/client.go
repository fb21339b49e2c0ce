package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Google Maps API host.
const DefaultBaseURL = "https://maps.googleapis.com"

const directionsPath = "/maps/api/directions/json"

// Fetcher returns the alternative routes for one request.
type Fetcher interface {
	Directions(ctx context.Context, req Request) ([]Route, error)
}

// APIError is a non-OK status returned in the response body.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "directions: " + e.Status
	}
	return "directions: " + e.Status + ": " + e.Message
}

// Client talks to the Directions API over HTTPS.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Query builds the URL query for a request.
func (c *Client) Query(req Request) url.Values {
	q := url.Values{}
	q.Set("origin", req.Origin)
	q.Set("destination", req.Destination)
	q.Set("mode", ModeDriving)
	q.Set("alternatives", "true")
	q.Set("units", UnitsImperial)
	q.Set("departure_time", strconv.FormatInt(req.DepartureTime.Unix(), 10))
	if req.TrafficModel != "" {
		q.Set("traffic_model", req.TrafficModel)
	}
	q.Set("key", c.apiKey)
	return q
}

// Directions issues one request and returns its routes. ZERO_RESULTS is
// not an error.
func (c *Client) Directions(ctx context.Context, req Request) ([]Route, error) {
	u := c.baseURL + directionsPath + "?" + c.Query(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call directions api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions api returned status %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch body.Status {
	case StatusOK:
		return body.Routes, nil
	case StatusZeroResults:
		return nil, nil
	default:
		return nil, &APIError{Status: body.Status, Message: body.ErrorMessage}
	}
}

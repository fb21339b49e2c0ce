package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startMockAPI serves body for every directions request and records the
// last query it saw.
func startMockAPI(t *testing.T, status int, body []byte) (*httptest.Server, *url.Values) {
	t.Helper()

	var seen url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != directionsPath {
			http.NotFound(w, r)
			return
		}
		seen = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/work_to_home.json")
	require.NoError(t, err)
	return data
}

func TestDirectionsSendsFixedParameters(t *testing.T) {
	srv, seen := startMockAPI(t, http.StatusOK, fixture(t))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	dep := time.Date(2026, time.October, 21, 14, 15, 0, 0, time.UTC)
	_, err := client.Directions(context.Background(), Request{
		Origin:        "9 Office Rd",
		Destination:   "1 Home St",
		DepartureTime: dep,
		TrafficModel:  TrafficPessimistic,
	})
	require.NoError(t, err)

	q := *seen
	assert.Equal(t, "9 Office Rd", q.Get("origin"))
	assert.Equal(t, "1 Home St", q.Get("destination"))
	assert.Equal(t, "driving", q.Get("mode"))
	assert.Equal(t, "true", q.Get("alternatives"))
	assert.Equal(t, "imperial", q.Get("units"))
	assert.Equal(t, "pessimistic", q.Get("traffic_model"))
	assert.Equal(t, "1792592100", q.Get("departure_time"))
	assert.Equal(t, "secret", q.Get("key"))
}

func TestDirectionsDecodesRoutes(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusOK, fixture(t))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	routes, err := client.Directions(context.Background(), Request{Origin: "a", Destination: "b", DepartureTime: time.Now()})
	require.NoError(t, err)
	require.Len(t, routes, 2)

	r := routes[0]
	assert.Equal(t, "I-90 W", r.Summary)
	require.Len(t, r.Legs, 1)
	leg := r.Legs[0]
	assert.Equal(t, 28003, leg.Distance.Value)
	assert.Equal(t, "31 mins", leg.TrafficDuration().Text)
	assert.Equal(t, 24*time.Minute, leg.Duration.Seconds())
	require.Len(t, leg.Steps, 3)
	assert.Empty(t, leg.Steps[0].Maneuver)
	assert.Equal(t, "turn-left", leg.Steps[2].Maneuver)
	assert.Equal(t, "DRIVING", leg.Steps[2].TravelMode)
	assert.InDelta(t, 47.5301, leg.Steps[2].EndLocation.Lat, 1e-9)
}

func TestDirectionsZeroResults(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusOK, []byte(`{"routes":[],"status":"ZERO_RESULTS"}`))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	routes, err := client.Directions(context.Background(), Request{DepartureTime: time.Now()})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestDirectionsAPIError(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusOK,
		[]byte(`{"routes":[],"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	client := NewClient(srv.URL, "bad", 5*time.Second)

	_, err := client.Directions(context.Background(), Request{DepartureTime: time.Now()})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "REQUEST_DENIED", apiErr.Status)
	assert.Equal(t, "directions: REQUEST_DENIED: The provided API key is invalid.", err.Error())
}

func TestDirectionsHTTPError(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusInternalServerError, []byte("boom"))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	_, err := client.Directions(context.Background(), Request{DepartureTime: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDirectionsBadJSON(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusOK, []byte("{"))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	_, err := client.Directions(context.Background(), Request{DepartureTime: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestDirectionsCanceledContext(t *testing.T) {
	srv, _ := startMockAPI(t, http.StatusOK, fixture(t))
	client := NewClient(srv.URL, "secret", 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Directions(ctx, Request{DepartureTime: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLegTrafficDurationFallback(t *testing.T) {
	leg := Leg{Duration: TextValue{Text: "10 mins", Value: 600}}
	assert.Equal(t, leg.Duration, leg.TrafficDuration())
}

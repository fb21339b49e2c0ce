// Package directions provides the wire types and HTTP client for the Google
// Directions JSON API.
package directions

import "time"

// Fixed request parameters.
const (
	ModeDriving   = "driving"
	UnitsImperial = "imperial"
)

// Traffic models accepted by the API.
const (
	TrafficBestGuess   = "best_guess"
	TrafficPessimistic = "pessimistic"
	TrafficOptimistic  = "optimistic"
)

// Response statuses with special handling.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// TrafficModels lists every traffic model, in query order.
var TrafficModels = []string{TrafficBestGuess, TrafficPessimistic, TrafficOptimistic}

// Request is one directions query.
type Request struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	TrafficModel  string
}

// Response is the top-level API payload.
type Response struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Routes       []Route `json:"routes"`
}

// Route is one alternative returned for a query.
type Route struct {
	Summary  string   `json:"summary"`
	Legs     []Leg    `json:"legs"`
	Warnings []string `json:"warnings,omitempty"`
}

// Leg is an origin to destination segment of a route.
type Leg struct {
	StartAddress      string     `json:"start_address"`
	EndAddress        string     `json:"end_address"`
	StartLocation     LatLng     `json:"start_location"`
	EndLocation       LatLng     `json:"end_location"`
	Distance          TextValue  `json:"distance"`
	Duration          TextValue  `json:"duration"`
	DurationInTraffic *TextValue `json:"duration_in_traffic,omitempty"`
	Steps             []Step     `json:"steps"`
}

// Step is one maneuver within a leg.
type Step struct {
	HTMLInstructions string    `json:"html_instructions"`
	Maneuver         string    `json:"maneuver,omitempty"`
	Distance         TextValue `json:"distance"`
	Duration         TextValue `json:"duration"`
	StartLocation    LatLng    `json:"start_location"`
	EndLocation      LatLng    `json:"end_location"`
	TravelMode       string    `json:"travel_mode"`
}

// TextValue pairs a display string with its numeric value (meters or
// seconds).
type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Seconds returns Value as a duration of seconds.
func (tv TextValue) Seconds() time.Duration {
	return time.Duration(tv.Value) * time.Second
}

// TrafficDuration returns duration_in_traffic, falling back to duration
// when the API omitted it.
func (l Leg) TrafficDuration() TextValue {
	if l.DurationInTraffic != nil {
		return *l.DurationInTraffic
	}
	return l.Duration
}

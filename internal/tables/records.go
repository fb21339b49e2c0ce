// Package tables flattens directions responses into linked route, leg and
// step records.
package tables

import (
	"strconv"
	"time"

	"github.com/paulmach/orb"
)

// Layouts used when rendering records as rows.
const (
	TimestampLayout = time.RFC3339
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
)

var (
	routeHeader = []string{
		"route_id", "route_hash", "summary", "legs_count",
		"departure_timestamp", "departure_date", "departure_time",
		"arrival_timestamp", "arrival_date", "arrival_time",
		"arrival_timestamp_traffic", "arrival_date_traffic", "arrival_time_traffic",
		"timestamp", "traffic_model", "commute",
	}
	legHeader = []string{
		"leg_id", "route_id",
		"start_location_latitude", "start_location_longitude",
		"end_location_latitude", "end_location_longitude",
		"distance_text", "distance_meters",
		"duration_text", "duration_seconds",
		"duration_in_traffic_text", "duration_in_traffic_seconds",
		"start_address", "end_address", "steps_count", "crow_flies_meters",
	}
	stepHeader = []string{
		"step_id", "leg_id", "step_number",
		"html_instruction", "plaintext_instruction", "maneuver",
		"distance_text", "distance_meters",
		"duration_text", "duration_seconds",
		"start_location_latitude", "start_location_longitude",
		"end_location_latitude", "end_location_longitude",
		"travel_mode",
	}
)

// Route is one alternative path for one query.
type Route struct {
	ID             string    `json:"route_id"`
	Fingerprint    string    `json:"route_hash"`
	Summary        string    `json:"summary"`
	LegsCount      int       `json:"legs_count"`
	Departure      time.Time `json:"departure_timestamp"`
	Arrival        time.Time `json:"arrival_timestamp"`
	ArrivalTraffic time.Time `json:"arrival_timestamp_traffic"`
	QueriedAt      time.Time `json:"timestamp"`
	TrafficModel   string    `json:"traffic_model"`
	Commute        string    `json:"commute"`
}

// Leg is one segment of a route.
type Leg struct {
	ID              string    `json:"leg_id"`
	RouteID         string    `json:"route_id"`
	Start           orb.Point `json:"start_location"`
	End             orb.Point `json:"end_location"`
	DistanceText    string    `json:"distance_text"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationText    string    `json:"duration_text"`
	DurationSeconds int       `json:"duration_seconds"`
	TrafficText     string    `json:"duration_in_traffic_text"`
	TrafficSeconds  int       `json:"duration_in_traffic_seconds"`
	StartAddress    string    `json:"start_address"`
	EndAddress      string    `json:"end_address"`
	StepsCount      int       `json:"steps_count"`
	CrowFliesMeters float64   `json:"crow_flies_meters"`
}

// Step is one maneuver within a leg. Maneuver is empty when the API sent
// none.
type Step struct {
	ID               string    `json:"step_id"`
	LegID            string    `json:"leg_id"`
	Number           int       `json:"step_number"`
	HTMLInstruction  string    `json:"html_instruction"`
	PlainInstruction string    `json:"plaintext_instruction"`
	Maneuver         string    `json:"maneuver,omitempty"`
	DistanceText     string    `json:"distance_text"`
	DistanceMeters   int       `json:"distance_meters"`
	DurationText     string    `json:"duration_text"`
	DurationSeconds  int       `json:"duration_seconds"`
	Start            orb.Point `json:"start_location"`
	End              orb.Point `json:"end_location"`
	TravelMode       string    `json:"travel_mode"`
}

// RouteHeader returns the route column names.
func RouteHeader() []string { return clone(routeHeader) }

// LegHeader returns the leg column names.
func LegHeader() []string { return clone(legHeader) }

// StepHeader returns the step column names.
func StepHeader() []string { return clone(stepHeader) }

// Row renders the route in RouteHeader order.
func (r Route) Row() []string {
	return []string{
		r.ID, r.Fingerprint, r.Summary, strconv.Itoa(r.LegsCount),
		r.Departure.Format(TimestampLayout), r.Departure.Format(DateLayout), r.Departure.Format(TimeLayout),
		r.Arrival.Format(TimestampLayout), r.Arrival.Format(DateLayout), r.Arrival.Format(TimeLayout),
		r.ArrivalTraffic.Format(TimestampLayout), r.ArrivalTraffic.Format(DateLayout), r.ArrivalTraffic.Format(TimeLayout),
		r.QueriedAt.Format(time.RFC3339Nano), r.TrafficModel, r.Commute,
	}
}

// Row renders the leg in LegHeader order.
func (l Leg) Row() []string {
	return []string{
		l.ID, l.RouteID,
		formatFloat(l.Start.Lat()), formatFloat(l.Start.Lon()),
		formatFloat(l.End.Lat()), formatFloat(l.End.Lon()),
		l.DistanceText, strconv.Itoa(l.DistanceMeters),
		l.DurationText, strconv.Itoa(l.DurationSeconds),
		l.TrafficText, strconv.Itoa(l.TrafficSeconds),
		l.StartAddress, l.EndAddress, strconv.Itoa(l.StepsCount),
		strconv.FormatFloat(l.CrowFliesMeters, 'f', 1, 64),
	}
}

// Row renders the step in StepHeader order.
func (s Step) Row() []string {
	return []string{
		s.ID, s.LegID, strconv.Itoa(s.Number),
		s.HTMLInstruction, s.PlainInstruction, s.Maneuver,
		s.DistanceText, strconv.Itoa(s.DistanceMeters),
		s.DurationText, strconv.Itoa(s.DurationSeconds),
		formatFloat(s.Start.Lat()), formatFloat(s.Start.Lon()),
		formatFloat(s.End.Lat()), formatFloat(s.End.Lon()),
		s.TravelMode,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

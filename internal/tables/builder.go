package tables

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/jwulff/commutes/internal/directions"
)

// Query identifies one (commute, departure, traffic model) request.
type Query struct {
	Commute      string
	Label        string
	Departure    time.Time
	TrafficModel string
}

func (q Query) String() string {
	return fmt.Sprintf("%s %s %s", q.Commute, q.Label, q.TrafficModel)
}

// Builder accumulates the records of one run.
type Builder struct {
	newID  func() string
	routes []Route
	legs   []Leg
	steps  []Step
}

// NewBuilder returns a builder that assigns UUIDv4 identifiers.
func NewBuilder() *Builder {
	return &Builder{newID: uuid.NewString}
}

// NewBuilderWithIDs returns a builder using newID for identifiers.
func NewBuilderWithIDs(newID func() string) *Builder {
	return &Builder{newID: newID}
}

// Add flattens the routes returned for q and returns the number of route
// records added. Nothing is added when any route has no legs.
func (b *Builder) Add(q Query, routes []directions.Route, queriedAt time.Time) (int, error) {
	for i, r := range routes {
		if len(r.Legs) == 0 {
			return 0, fmt.Errorf("query %s: route %d (%s) has no legs", q, i, r.Summary)
		}
	}
	for _, r := range routes {
		b.addRoute(q, r, queriedAt)
	}
	return len(routes), nil
}

func (b *Builder) addRoute(q Query, r directions.Route, queriedAt time.Time) {
	var base, traffic time.Duration
	for _, leg := range r.Legs {
		base += leg.Duration.Seconds()
		traffic += leg.TrafficDuration().Seconds()
	}

	routeID := b.newID()
	b.routes = append(b.routes, Route{
		ID:             routeID,
		Fingerprint:    RouteFingerprint(r),
		Summary:        r.Summary,
		LegsCount:      len(r.Legs),
		Departure:      q.Departure,
		Arrival:        q.Departure.Add(base),
		ArrivalTraffic: q.Departure.Add(traffic),
		QueriedAt:      queriedAt,
		TrafficModel:   q.TrafficModel,
		Commute:        q.Commute,
	})

	for _, leg := range r.Legs {
		b.addLeg(routeID, leg)
	}
}

func (b *Builder) addLeg(routeID string, leg directions.Leg) {
	legID := b.newID()
	start, end := point(leg.StartLocation), point(leg.EndLocation)
	traffic := leg.TrafficDuration()

	b.legs = append(b.legs, Leg{
		ID:              legID,
		RouteID:         routeID,
		Start:           start,
		End:             end,
		DistanceText:    leg.Distance.Text,
		DistanceMeters:  leg.Distance.Value,
		DurationText:    leg.Duration.Text,
		DurationSeconds: leg.Duration.Value,
		TrafficText:     traffic.Text,
		TrafficSeconds:  traffic.Value,
		StartAddress:    leg.StartAddress,
		EndAddress:      leg.EndAddress,
		StepsCount:      len(leg.Steps),
		CrowFliesMeters: geo.Distance(start, end),
	})

	for i, s := range leg.Steps {
		b.steps = append(b.steps, Step{
			ID:               b.newID(),
			LegID:            legID,
			Number:           i + 1,
			HTMLInstruction:  s.HTMLInstructions,
			PlainInstruction: StripHTML(s.HTMLInstructions),
			Maneuver:         s.Maneuver,
			DistanceText:     s.Distance.Text,
			DistanceMeters:   s.Distance.Value,
			DurationText:     s.Duration.Text,
			DurationSeconds:  s.Duration.Value,
			Start:            point(s.StartLocation),
			End:              point(s.EndLocation),
			TravelMode:       s.TravelMode,
		})
	}
}

// Result returns a snapshot of everything added so far.
func (b *Builder) Result() Result {
	return Result{
		Routes: append([]Route(nil), b.routes...),
		Legs:   append([]Leg(nil), b.legs...),
		Steps:  append([]Step(nil), b.steps...),
	}
}

func point(ll directions.LatLng) orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

package tables

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// Result holds the three tables of a run.
type Result struct {
	Routes []Route
	Legs   []Leg
	Steps  []Step
}

// Empty reports whether the run produced no routes.
func (r Result) Empty() bool { return len(r.Routes) == 0 }

// Route returns the route with id.
func (r Result) Route(id string) (Route, bool) {
	for _, rt := range r.Routes {
		if rt.ID == id {
			return rt, true
		}
	}
	return Route{}, false
}

// Leg returns the leg with id.
func (r Result) Leg(id string) (Leg, bool) {
	for _, l := range r.Legs {
		if l.ID == id {
			return l, true
		}
	}
	return Leg{}, false
}

// LegsFor returns the legs of a route in insertion order.
func (r Result) LegsFor(routeID string) []Leg {
	var out []Leg
	for _, l := range r.Legs {
		if l.RouteID == routeID {
			out = append(out, l)
		}
	}
	return out
}

// StepsFor returns the steps of a leg in ordinal order.
func (r Result) StepsFor(legID string) []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.LegID == legID {
			out = append(out, s)
		}
	}
	return out
}

// Line returns the route geometry traced through its step endpoints.
func (r Result) Line(routeID string) orb.LineString {
	var line orb.LineString
	for _, l := range r.LegsFor(routeID) {
		for _, s := range r.StepsFor(l.ID) {
			if len(line) == 0 || !line[len(line)-1].Equal(s.Start) {
				line = append(line, s.Start)
			}
			line = append(line, s.End)
		}
	}
	return line
}

// Validate checks that identifiers are unique, every leg and step points
// at an existing parent, and step numbers run 1..n within each leg.
func (r Result) Validate() error {
	ids := make(map[string]struct{}, len(r.Routes)+len(r.Legs)+len(r.Steps))
	seen := func(id string) error {
		if _, dup := ids[id]; dup {
			return fmt.Errorf("duplicate id %s", id)
		}
		ids[id] = struct{}{}
		return nil
	}

	routes := make(map[string]struct{}, len(r.Routes))
	for _, rt := range r.Routes {
		if err := seen(rt.ID); err != nil {
			return err
		}
		routes[rt.ID] = struct{}{}
	}

	legs := make(map[string]int, len(r.Legs))
	for _, l := range r.Legs {
		if err := seen(l.ID); err != nil {
			return err
		}
		if _, ok := routes[l.RouteID]; !ok {
			return fmt.Errorf("leg %s: unknown route %s", l.ID, l.RouteID)
		}
		legs[l.ID] = 0
	}

	for _, s := range r.Steps {
		if err := seen(s.ID); err != nil {
			return err
		}
		last, ok := legs[s.LegID]
		if !ok {
			return fmt.Errorf("step %s: unknown leg %s", s.ID, s.LegID)
		}
		if s.Number != last+1 {
			return fmt.Errorf("step %s: number %d follows %d in leg %s", s.ID, s.Number, last, s.LegID)
		}
		legs[s.LegID] = s.Number
	}
	return nil
}

// Group is a set of routes sharing a fingerprint.
type Group struct {
	Fingerprint string
	Summary     string
	RouteIDs    []string
}

// FingerprintGroups groups routes by fingerprint, largest group first and
// then by first appearance. Intended for display grouping only: routes with
// the same turns but different timings share a group.
func (r Result) FingerprintGroups() []Group {
	index := map[string]int{}
	var groups []Group
	for _, rt := range r.Routes {
		i, ok := index[rt.Fingerprint]
		if !ok {
			i = len(groups)
			index[rt.Fingerprint] = i
			groups = append(groups, Group{Fingerprint: rt.Fingerprint, Summary: rt.Summary})
		}
		groups[i].RouteIDs = append(groups[i].RouteIDs, rt.ID)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a].RouteIDs) > len(groups[b].RouteIDs)
	})
	return groups
}

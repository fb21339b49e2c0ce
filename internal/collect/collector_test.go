package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/directions"
	"github.com/jwulff/commutes/internal/timegrid"
)

// fakeFetcher returns two single-leg alternatives per call and records the
// requests it saw.
type fakeFetcher struct {
	calls  []directions.Request
	failAt int // 1-based call index to fail on; 0 never fails
}

func (f *fakeFetcher) Directions(_ context.Context, req directions.Request) ([]directions.Route, error) {
	f.calls = append(f.calls, req)
	if f.failAt == len(f.calls) {
		return nil, &directions.APIError{Status: "OVER_QUERY_LIMIT"}
	}
	step := func(html string) directions.Step {
		return directions.Step{HTMLInstructions: html, TravelMode: "DRIVING"}
	}
	return []directions.Route{
		{Summary: "fast", Legs: []directions.Leg{{
			Duration: directions.TextValue{Text: "20 mins", Value: 1200},
			Steps:    []directions.Step{step("Head <b>west</b>"), step("Arrive")},
		}}},
		{Summary: "scenic", Legs: []directions.Leg{{
			Duration: directions.TextValue{Text: "30 mins", Value: 1800},
			Steps:    []directions.Step{step("Head <b>east</b>"), step("Loop"), step("Arrive")},
		}}},
	}, nil
}

func testGrid(t *testing.T) timegrid.Grid {
	t.Helper()
	g, err := timegrid.Generate(time.Date(2026, time.October, 20, 9, 0, 0, 0, time.UTC), timegrid.Options{
		Days: 2, StartHour: 14, EndHour: 15, Interval: 30 * time.Minute,
	})
	require.NoError(t, err)
	return g
}

func TestQueriesNestingOrder(t *testing.T) {
	commutes := []Commute{
		{Name: "Work to Home", Origin: "W", Destination: "H"},
		{Name: "Home to Work", Origin: "H", Destination: "W"},
	}
	plans := Queries(commutes, testGrid(t), directions.TrafficModels)

	// 2 commutes × (2 days × 3 slots) × 3 models
	require.Len(t, plans, 36)
	assert.Equal(t, "Work to Home", plans[0].Commute)
	assert.Equal(t, "best_guess", plans[0].TrafficModel)
	assert.Equal(t, "pessimistic", plans[1].TrafficModel)
	assert.Equal(t, "optimistic", plans[2].TrafficModel)
	assert.Equal(t, "Wednesday_14:30", plans[3].Label)
	assert.Equal(t, "Home to Work", plans[18].Commute)
	assert.Equal(t, "H", plans[18].Origin)
}

func TestRunCollectsEveryQuery(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, zap.NewNop())
	plans := Queries([]Commute{{Name: "Work to Home", Origin: "W", Destination: "H"}}, testGrid(t), directions.TrafficModels)

	var reports []Progress
	res, err := c.Run(context.Background(), plans, func(p Progress) { reports = append(reports, p) })
	require.NoError(t, err)

	require.Len(t, f.calls, len(plans))
	for i, call := range f.calls {
		assert.Equal(t, plans[i].Departure, call.DepartureTime)
		assert.Equal(t, plans[i].TrafficModel, call.TrafficModel)
		assert.Equal(t, "W", call.Origin)
	}

	assert.Len(t, res.Routes, 2*len(plans))
	assert.Len(t, res.Legs, 2*len(plans))
	assert.Len(t, res.Steps, 5*len(plans))
	require.NoError(t, res.Validate())

	require.Len(t, reports, len(plans))
	assert.Equal(t, len(plans), reports[len(reports)-1].Done)
	assert.Equal(t, 2, reports[0].Routes)

	groups := res.FingerprintGroups()
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].RouteIDs, len(plans))
}

func TestRunAbortsOnFirstError(t *testing.T) {
	f := &fakeFetcher{failAt: 4}
	c := New(f, zap.NewNop())
	plans := Queries([]Commute{{Name: "Work to Home", Origin: "W", Destination: "H"}}, testGrid(t), directions.TrafficModels)

	res, err := c.Run(context.Background(), plans, nil)
	require.Error(t, err)
	assert.True(t, res.Empty())
	assert.Len(t, f.calls, 4)

	var apiErr *directions.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "query Work to Home Wednesday_14:30 best_guess")
}

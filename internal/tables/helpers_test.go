package tables

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwulff/commutes/internal/directions"
)

// loadFixture reads the recorded Work to Home response shared with the
// directions package.
func loadFixture(t *testing.T) []directions.Route {
	t.Helper()
	data, err := os.ReadFile("../directions/testdata/work_to_home.json")
	require.NoError(t, err)

	var resp directions.Response
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Equal(t, directions.StatusOK, resp.Status)
	return resp.Routes
}

// sequentialIDs yields id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testQuery() Query {
	return Query{
		Commute:      "Work to Home",
		Label:        "Wednesday_14:00",
		Departure:    time.Date(2026, time.October, 21, 14, 0, 0, 0, time.UTC),
		TrafficModel: directions.TrafficBestGuess,
	}
}

func stepWith(html string, meters int) directions.Step {
	return directions.Step{
		HTMLInstructions: html,
		Distance:         directions.TextValue{Text: fmt.Sprintf("%d m", meters), Value: meters},
		Duration:         directions.TextValue{Text: "1 min", Value: meters / 10},
		TravelMode:       "DRIVING",
	}
}

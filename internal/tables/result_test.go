package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/commutes/internal/directions"
)

func TestValidateCatchesBrokenReferences(t *testing.T) {
	good := Result{
		Routes: []Route{{ID: "r1"}},
		Legs:   []Leg{{ID: "l1", RouteID: "r1"}},
		Steps:  []Step{{ID: "s1", LegID: "l1", Number: 1}, {ID: "s2", LegID: "l1", Number: 2}},
	}
	require.NoError(t, good.Validate())

	orphanLeg := good
	orphanLeg.Legs = []Leg{{ID: "l1", RouteID: "r9"}}
	assert.ErrorContains(t, orphanLeg.Validate(), "unknown route")

	orphanStep := good
	orphanStep.Steps = []Step{{ID: "s1", LegID: "l9", Number: 1}}
	assert.ErrorContains(t, orphanStep.Validate(), "unknown leg")

	gap := good
	gap.Steps = []Step{{ID: "s1", LegID: "l1", Number: 1}, {ID: "s2", LegID: "l1", Number: 3}}
	assert.ErrorContains(t, gap.Validate(), "number 3 follows 1")

	dup := good
	dup.Steps = []Step{{ID: "r1", LegID: "l1", Number: 1}}
	assert.ErrorContains(t, dup.Validate(), "duplicate id")
}

func TestFingerprintGroups(t *testing.T) {
	routes := loadFixture(t)
	b := NewBuilder()
	for _, model := range directions.TrafficModels {
		q := testQuery()
		q.TrafficModel = model
		_, err := b.Add(q, routes, time.Now())
		require.NoError(t, err)
	}
	// One more copy of the first alternative only.
	_, err := b.Add(testQuery(), routes[:1], time.Now())
	require.NoError(t, err)

	groups := b.Result().FingerprintGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "I-90 W", groups[0].Summary)
	assert.Len(t, groups[0].RouteIDs, 4)
	assert.Equal(t, "WA-520 E", groups[1].Summary)
	assert.Len(t, groups[1].RouteIDs, 3)
}

func TestLineTracesSteps(t *testing.T) {
	b := NewBuilderWithIDs(sequentialIDs())
	_, err := b.Add(testQuery(), loadFixture(t), time.Now())
	require.NoError(t, err)

	res := b.Result()
	line := res.Line(res.Routes[0].ID)
	// Three contiguous steps give four distinct points.
	require.Len(t, line, 4)
	assert.Equal(t, res.Legs[0].Start, line[0])
	assert.Equal(t, res.Legs[0].End, line[3])
}

func TestRowsMatchHeaders(t *testing.T) {
	b := NewBuilderWithIDs(sequentialIDs())
	_, err := b.Add(testQuery(), loadFixture(t), time.Date(2026, time.October, 19, 9, 30, 0, 500, time.UTC))
	require.NoError(t, err)
	res := b.Result()

	assert.Len(t, res.Routes[0].Row(), len(RouteHeader()))
	assert.Len(t, res.Legs[0].Row(), len(LegHeader()))
	assert.Len(t, res.Steps[0].Row(), len(StepHeader()))

	row := res.Routes[0].Row()
	assert.Equal(t, "2026-10-21T14:00:00Z", row[4])
	assert.Equal(t, "2026-10-21", row[5])
	assert.Equal(t, "14:00:00", row[6])
	assert.Equal(t, "14:24:00", row[9])
	assert.Equal(t, "14:31:00", row[12])
	assert.Equal(t, "2026-10-19T09:30:00.0000005Z", row[13])

	legRow := res.Legs[0].Row()
	assert.Equal(t, "47.6101", legRow[2])
	assert.Equal(t, "-122.3421", legRow[3])

	stepRow := res.Steps[0].Row()
	assert.Equal(t, "1", stepRow[2])
	assert.Equal(t, "", stepRow[5])
}

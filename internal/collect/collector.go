// Package collect drives the directions queries over the departure grid and
// feeds every response into a tables.Builder.
package collect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/directions"
	"github.com/jwulff/commutes/internal/tables"
	"github.com/jwulff/commutes/internal/timegrid"
)

// Commute is a named origin/destination pair of resolved addresses.
type Commute struct {
	Name        string
	Origin      string
	Destination string
}

// Plan is one fully enumerated query with the addresses to send.
type Plan struct {
	tables.Query
	Origin      string
	Destination string
}

// Progress is reported after each completed query.
type Progress struct {
	Done   int
	Total  int
	Query  tables.Query
	Routes int
}

// Collector runs the query plan strictly one request at a time.
type Collector struct {
	fetcher directions.Fetcher
	builder *tables.Builder
	log     *zap.Logger
	now     func() time.Time
}

// New creates a collector with a fresh builder.
func New(fetcher directions.Fetcher, log *zap.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		builder: tables.NewBuilder(),
		log:     log,
		now:     time.Now,
	}
}

// Queries enumerates commute × slot × traffic model, in that nesting order.
func Queries(commutes []Commute, grid timegrid.Grid, models []string) []Plan {
	plans := make([]Plan, 0, len(commutes)*grid.Len()*len(models))
	for _, c := range commutes {
		for _, slot := range grid.Slots {
			for _, model := range models {
				plans = append(plans, Plan{
					Query: tables.Query{
						Commute:      c.Name,
						Label:        slot.Label,
						Departure:    slot.Time,
						TrafficModel: model,
					},
					Origin:      c.Origin,
					Destination: c.Destination,
				})
			}
		}
	}
	return plans
}

// Fetch runs one planned query and adds its routes to the builder.
func (c *Collector) Fetch(ctx context.Context, p Plan) (int, error) {
	routes, err := c.fetcher.Directions(ctx, directions.Request{
		Origin:        p.Origin,
		Destination:   p.Destination,
		DepartureTime: p.Departure,
		TrafficModel:  p.TrafficModel,
	})
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", p.Query, err)
	}
	return c.builder.Add(p.Query, routes, c.now())
}

// Run executes every plan in order. The first error aborts the run and
// nothing collected so far is returned.
func (c *Collector) Run(ctx context.Context, plans []Plan, progress func(Progress)) (tables.Result, error) {
	start := time.Now()
	c.log.Info("collecting routes", zap.Int("queries", len(plans)))

	for i, p := range plans {
		n, err := c.Fetch(ctx, p)
		if err != nil {
			c.log.Error("query failed",
				zap.String("query", p.Query.String()),
				zap.Int("completed", i),
				zap.Error(err),
			)
			return tables.Result{}, err
		}
		c.log.Debug("query done",
			zap.String("query", p.Query.String()),
			zap.Int("routes", n),
		)
		if progress != nil {
			progress(Progress{Done: i + 1, Total: len(plans), Query: p.Query, Routes: n})
		}
	}

	res := c.Result()
	c.log.Info("collection complete",
		zap.Int("routes", len(res.Routes)),
		zap.Int("legs", len(res.Legs)),
		zap.Int("steps", len(res.Steps)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Result returns what has been collected so far.
func (c *Collector) Result() tables.Result {
	return c.builder.Result()
}

// Command commutes queries driving directions over a grid of future
// departure times and saves the flattened route, leg and step tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/app"
	"github.com/jwulff/commutes/internal/collect"
	"github.com/jwulff/commutes/internal/config"
	"github.com/jwulff/commutes/internal/db"
	"github.com/jwulff/commutes/internal/directions"
	"github.com/jwulff/commutes/internal/export"
	"github.com/jwulff/commutes/internal/logging"
	"github.com/jwulff/commutes/internal/server"
	"github.com/jwulff/commutes/internal/tables"
	"github.com/jwulff/commutes/internal/timegrid"
)

var (
	configPath = flag.String("config", "", "Path to the YAML config. Defaults to the first of commutes.yml, commutes.yaml, config/commutes.yml")
	headless   = flag.Bool("headless", false, "Collect and save without the dashboard")
	serveAddr  = flag.String("serve", "", "After collecting, serve the tables over HTTP on this address (e.g. :8080)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "commutes:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so logs go to the file.
	log, err := logging.New(cfg.Log, !*headless)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	grid, err := timegrid.Generate(time.Now(), timegrid.Options{
		Days:      cfg.Grid.Days,
		StartHour: cfg.Grid.StartHour,
		EndHour:   cfg.Grid.EndHour,
		Interval:  cfg.Grid.Interval(),
	})
	if err != nil {
		return err
	}
	plans := collect.Queries(resolveCommutes(cfg), grid, cfg.TrafficModels)
	log.Info("starting commutes",
		zap.Int("slots", grid.Len()),
		zap.Int("queries", len(plans)),
		zap.Strings("traffic_models", cfg.TrafficModels),
		zap.Bool("headless", *headless),
	)

	out, err := buildOutputs(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	client := directions.NewClient(cfg.HTTP.BaseURL, cfg.APIKey, cfg.Timeout())
	collector := collect.New(client, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var res tables.Result
	if *headless {
		res, err = runHeadless(ctx, log, collector, plans, out)
	} else {
		res, err = runDashboard(ctx, log, collector, plans, out.sinks)
		if err == nil && out.store != nil {
			logStored(log, out.store)
		}
	}
	if err != nil {
		return err
	}

	if *serveAddr != "" {
		return server.Serve(ctx, *serveAddr, res, out.history(), log)
	}
	return nil
}

func runHeadless(ctx context.Context, log *zap.Logger, c *collect.Collector, plans []collect.Plan, out outputs) (tables.Result, error) {
	res, err := c.Run(ctx, plans, func(p collect.Progress) {
		if p.Done%25 == 0 || p.Done == p.Total {
			log.Info("progress", zap.Int("done", p.Done), zap.Int("total", p.Total))
		}
	})
	if err != nil {
		return tables.Result{}, err
	}
	if err := export.SaveAll(ctx, log, res, out.sinks...); err != nil {
		return tables.Result{}, err
	}
	log.Info("run complete",
		zap.Int("routes", len(res.Routes)),
		zap.Int("legs", len(res.Legs)),
		zap.Int("steps", len(res.Steps)),
		zap.Int("distinct_routes", len(res.FingerprintGroups())),
	)
	if out.store != nil {
		logStored(log, out.store)
	}
	return res, nil
}

// logStored summarizes everything the SQLite store holds across runs.
func logStored(log *zap.Logger, store *db.Store) {
	counts, err := store.Counts()
	if err != nil {
		log.Warn("count stored rows", zap.Error(err))
		return
	}
	groups, err := store.RouteGroups()
	if err != nil {
		log.Warn("group stored routes", zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.Int("routes", counts.Routes),
		zap.Int("legs", counts.Legs),
		zap.Int("steps", counts.Steps),
		zap.Int("distinct_routes", len(groups)),
	}
	if len(groups) > 0 {
		top := groups[0]
		fields = append(fields,
			zap.String("most_common", top.Summary),
			zap.Int("most_common_routes", top.Routes),
			zap.Int("min_traffic_seconds", top.MinTrafficSeconds),
			zap.Int("max_traffic_seconds", top.MaxTrafficSeconds),
		)
	}
	log.Info("stored history", fields...)
}

func runDashboard(ctx context.Context, log *zap.Logger, c *collect.Collector, plans []collect.Plan, sinks []export.Sink) (tables.Result, error) {
	m := app.New(ctx, app.Config{
		Collector: c,
		Plans:     plans,
		Sinks:     sinks,
		Log:       log,
	})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return tables.Result{}, fmt.Errorf("dashboard: %w", err)
	}

	done := final.(app.Model)
	if err := done.Err(); err != nil {
		return tables.Result{}, err
	}
	if done.Phase() != app.PhaseDone {
		return tables.Result{}, errors.New("quit before the run was saved")
	}
	return done.Result(), nil
}

func resolveCommutes(cfg *config.Config) []collect.Commute {
	out := make([]collect.Commute, len(cfg.Commutes))
	for i, c := range cfg.Commutes {
		out[i] = collect.Commute{
			Name:        c.Name,
			Origin:      cfg.Addresses[c.Origin],
			Destination: cfg.Addresses[c.Destination],
		}
	}
	return out
}

// outputs holds the configured sinks in save order and the SQLite store,
// when one is configured.
type outputs struct {
	sinks []export.Sink
	store *db.Store
}

func buildOutputs(cfg *config.Config) (outputs, error) {
	out := outputs{sinks: []export.Sink{export.CSV{Dir: cfg.Output.Dir}}}
	if cfg.Output.GeoJSON {
		out.sinks = append(out.sinks, export.GeoJSON{Dir: cfg.Output.Dir})
	}
	if cfg.Output.SQLite == "" {
		return out, nil
	}

	store, err := db.Open(cfg.Output.SQLite)
	if err != nil {
		return outputs{}, err
	}
	out.store = store
	out.sinks = append(out.sinks, store)
	return out, nil
}

// history returns the store as a server.History, or nil without one.
func (o outputs) history() server.History {
	if o.store == nil {
		return nil
	}
	return o.store
}

func (o outputs) Close() {
	if o.store != nil {
		_ = o.store.Close()
	}
}

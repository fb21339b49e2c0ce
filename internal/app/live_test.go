package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/collect"
	"github.com/jwulff/commutes/internal/config"
	"github.com/jwulff/commutes/internal/directions"
	"github.com/jwulff/commutes/internal/export"
	"github.com/jwulff/commutes/internal/timegrid"
)

// TestLiveDashboardFlow runs one real query through the dashboard model and
// writes the CSV tables to a temp dir.
// Skipped unless MAPS_API_KEY, LIVE_ORIGIN and LIVE_DESTINATION are set.
func TestLiveDashboardFlow(t *testing.T) {
	key := os.Getenv(config.APIKeyEnv)
	origin, destination := os.Getenv("LIVE_ORIGIN"), os.Getenv("LIVE_DESTINATION")
	if key == "" || origin == "" || destination == "" {
		t.Skip("live directions API not configured")
	}

	cfg := config.Default()
	client := directions.NewClient(cfg.HTTP.BaseURL, key, cfg.Timeout())
	grid, err := timegrid.Generate(time.Now(), timegrid.Options{
		Days: 1, StartHour: 17, EndHour: 18, Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	plans := collect.Queries(
		[]collect.Commute{{Name: "Live", Origin: origin, Destination: destination}},
		grid,
		[]string{directions.TrafficBestGuess},
	)

	dir := t.TempDir()
	m := New(context.Background(), Config{
		Collector: collect.New(client, zap.NewNop()),
		Plans:     plans,
		Sinks:     []export.Sink{export.CSV{Dir: dir}},
	})
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 140, Height: 50})

	m = drive(m)
	if m.Err() != nil {
		t.Fatalf("run: %v", m.Err())
	}
	m.expanded = [panelCount]bool{true, true, true}
	fmt.Println("=== Final View ===")
	fmt.Println(m.View())

	for _, name := range []string{export.RoutesFile, export.LegsFile, export.StepsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}

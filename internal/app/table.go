package app

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jwulff/commutes/internal/tables"
	"github.com/jwulff/commutes/internal/timegrid"
	"github.com/jwulff/commutes/internal/ui"
)

const (
	hashWidth        = 8
	instructionWidth = 48
	addressWidth     = 32
	clock            = "Mon 15:04"
)

// renderTable draws at most limit body rows, scrolled so that the selected
// row stays visible.
func renderTable(headers []string, rows [][]string, selected, limit, width int, focused bool) string {
	start := 0
	if selected >= limit {
		start = selected - limit + 1
	}
	end := min(len(rows), start+limit)
	visible := rows[start:end]

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.DividerStyle).
		Headers(headers...).
		Rows(visible...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return ui.TableHeaderStyle
			case focused && start+row == selected:
				return ui.TableSelectedStyle
			case start+row == selected:
				return ui.TableMarkedStyle
			default:
				return ui.TableCellStyle
			}
		})
	return t.Render()
}

func routeColumns(routes []tables.Route) ([]string, [][]string) {
	headers := []string{"Depart", "Model", "Summary", "Arrive", "Arrive (traffic)", "Hash"}
	rows := make([][]string, len(routes))
	for i, r := range routes {
		rows[i] = []string{
			r.Departure.Format(clock),
			r.TrafficModel,
			truncateToWidth(r.Summary, addressWidth),
			r.Arrival.Format(clock),
			r.ArrivalTraffic.Format(clock),
			shortHash(r.Fingerprint),
		}
	}
	return headers, rows
}

func groupColumns(res tables.Result) ([]string, [][]string) {
	headers := []string{"Hash", "Summary", "Routes", "Departures"}
	groups := res.FingerprintGroups()
	rows := make([][]string, len(groups))
	for i, g := range groups {
		seen := make(map[string]struct{})
		for _, id := range g.RouteIDs {
			if r, ok := res.Route(id); ok {
				seen[timegrid.Label(r.Departure)] = struct{}{}
			}
		}
		rows[i] = []string{
			shortHash(g.Fingerprint),
			truncateToWidth(g.Summary, addressWidth),
			humanize.Comma(int64(len(g.RouteIDs))),
			humanize.Comma(int64(len(seen))),
		}
	}
	return headers, rows
}

func legColumns(legs []tables.Leg) ([]string, [][]string) {
	headers := []string{"From", "To", "Distance", "Duration", "In traffic", "Crow flies", "Steps"}
	rows := make([][]string, len(legs))
	for i, l := range legs {
		rows[i] = []string{
			truncateToWidth(l.StartAddress, addressWidth),
			truncateToWidth(l.EndAddress, addressWidth),
			l.DistanceText,
			l.DurationText,
			l.TrafficText,
			humanize.SIWithDigits(l.CrowFliesMeters, 1, "m"),
			strconv.Itoa(l.StepsCount),
		}
	}
	return headers, rows
}

func stepColumns(steps []tables.Step) ([]string, [][]string) {
	headers := []string{"#", "Instruction", "Maneuver", "Distance", "Duration"}
	rows := make([][]string, len(steps))
	for i, s := range steps {
		rows[i] = []string{
			strconv.Itoa(s.Number),
			truncateToWidth(s.PlainInstruction, instructionWidth),
			s.Maneuver,
			s.DistanceText,
			s.DurationText,
		}
	}
	return headers, rows
}

func shortHash(h string) string {
	if len(h) > hashWidth {
		return h[:hashWidth]
	}
	return h
}

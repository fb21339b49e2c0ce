package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/collect"
	"github.com/jwulff/commutes/internal/export"
	"github.com/jwulff/commutes/internal/tables"
	"github.com/jwulff/commutes/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusRoutes PanelFocus = iota
	FocusLegs
	FocusSteps
	panelCount
)

func (f PanelFocus) String() string {
	switch f {
	case FocusRoutes:
		return "ROUTES"
	case FocusLegs:
		return "LEGS"
	case FocusSteps:
		return "STEPS"
	}
	return "?"
}

// Phase is where the run is.
type Phase int

const (
	PhaseFetching Phase = iota
	PhaseSaving
	PhaseDone
	PhaseFailed
)

// Config holds what the dashboard needs to drive a run.
type Config struct {
	Collector *collect.Collector
	Plans     []collect.Plan
	Sinks     []export.Sink
	Log       *zap.Logger
}

// Model is the root bubbletea model for the commutes dashboard.
type Model struct {
	ctx       context.Context
	collector *collect.Collector
	plans     []collect.Plan
	sinks     []export.Sink
	log       *zap.Logger

	// Run state
	phase   Phase
	next    int
	result  tables.Result
	err     error
	saveErr error

	// UI state
	focusedPanel PanelFocus
	expanded     [panelCount]bool
	selected     [panelCount]int
	grouped      bool
	width        int
	height       int
}

// New creates a Model that will run cfg.Plans when started.
func New(ctx context.Context, cfg Config) Model {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		ctx:          ctx,
		collector:    cfg.Collector,
		plans:        cfg.Plans,
		sinks:        cfg.Sinks,
		log:          log,
		focusedPanel: FocusRoutes,
	}
	m.expanded[FocusRoutes] = true
	return m
}

// Init starts the first query, or saves straight away when there is nothing
// to fetch.
func (m Model) Init() tea.Cmd {
	if len(m.plans) == 0 {
		return saveCmd(m.ctx, m.log, m.result, m.sinks)
	}
	return fetchCmd(m.ctx, m.collector, m.plans[0], 0)
}

// Result returns the tables collected so far.
func (m Model) Result() tables.Result { return m.result }

// Err returns the fetch or save error that ended the run, if any.
func (m Model) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.saveErr
}

// Phase returns the current run phase.
func (m Model) Phase() Phase { return m.phase }

// fetchCmd runs one planned query.
func fetchCmd(ctx context.Context, c *collect.Collector, p collect.Plan, index int) tea.Cmd {
	return func() tea.Msg {
		n, err := c.Fetch(ctx, p)
		if err != nil {
			return FetchErrorMsg{Plan: p, Err: err}
		}
		return QueryDoneMsg{Index: index, Routes: n}
	}
}

// saveCmd hands the finished tables to every sink.
func saveCmd(ctx context.Context, log *zap.Logger, res tables.Result, sinks []export.Sink) tea.Cmd {
	return func() tea.Msg {
		return SavedMsg{Err: export.SaveAll(ctx, log, res, sinks...)}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case QueryDoneMsg:
		if m.phase != PhaseFetching || msg.Index != m.next {
			return m, nil
		}
		m.next++
		m.result = m.collector.Result()
		m.clampSelection()
		if m.next < len(m.plans) {
			return m, fetchCmd(m.ctx, m.collector, m.plans[m.next], m.next)
		}
		m.phase = PhaseSaving
		m.log.Info("collection complete",
			zap.Int("queries", len(m.plans)),
			zap.Int("routes", len(m.result.Routes)),
		)
		return m, saveCmd(m.ctx, m.log, m.result, m.sinks)

	case FetchErrorMsg:
		m.phase = PhaseFailed
		m.err = msg.Err
		m.log.Error("query failed",
			zap.String("query", msg.Plan.Query.String()),
			zap.Int("completed", m.next),
			zap.Error(msg.Err),
		)
		return m, nil

	case SavedMsg:
		m.phase = PhaseDone
		m.saveErr = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		return m, tea.Quit

	case KeyTab:
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case KeyShiftTab:
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil

	case KeyEnter:
		m.expanded[m.focusedPanel] = !m.expanded[m.focusedPanel]
		return m, nil

	case KeyJ, KeyDown:
		if m.selected[m.focusedPanel] < m.rowCount(m.focusedPanel)-1 {
			m.selected[m.focusedPanel]++
			m.resetBelow(m.focusedPanel)
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selected[m.focusedPanel] > 0 {
			m.selected[m.focusedPanel]--
			m.resetBelow(m.focusedPanel)
		}
		return m, nil

	case KeyGroup:
		m.grouped = !m.grouped
		m.selected[FocusRoutes] = 0
		m.resetBelow(FocusRoutes)
		return m, nil
	}

	return m, nil
}

// resetBelow clears the selection of the panels that depend on p.
func (m *Model) resetBelow(p PanelFocus) {
	for q := p + 1; q < panelCount; q++ {
		m.selected[q] = 0
	}
}

func (m *Model) clampSelection() {
	for p := FocusRoutes; p < panelCount; p++ {
		if n := m.rowCount(p); m.selected[p] >= n {
			m.selected[p] = max(0, n-1)
		}
	}
}

func (m Model) rowCount(p PanelFocus) int {
	switch p {
	case FocusRoutes:
		if m.grouped {
			return len(m.result.FingerprintGroups())
		}
		return len(m.result.Routes)
	case FocusLegs:
		return len(m.currentLegs())
	case FocusSteps:
		return len(m.currentSteps())
	}
	return 0
}

// selectedRouteID is the route whose legs the Legs panel shows. In grouped
// mode that is the first route of the selected fingerprint group.
func (m Model) selectedRouteID() string {
	i := m.selected[FocusRoutes]
	if m.grouped {
		groups := m.result.FingerprintGroups()
		if i < len(groups) && len(groups[i].RouteIDs) > 0 {
			return groups[i].RouteIDs[0]
		}
		return ""
	}
	if i < len(m.result.Routes) {
		return m.result.Routes[i].ID
	}
	return ""
}

func (m Model) currentLegs() []tables.Leg {
	id := m.selectedRouteID()
	if id == "" {
		return nil
	}
	return m.result.LegsFor(id)
}

func (m Model) currentSteps() []tables.Step {
	legs := m.currentLegs()
	i := m.selected[FocusLegs]
	if i >= len(legs) {
		return nil
	}
	return m.result.StepsFor(legs[i].ID)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	rows := m.tableRows()
	for p := FocusRoutes; p < panelCount; p++ {
		sections = append(sections, m.renderPanel(p, rows))
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if m.err != nil || m.saveErr != nil {
		sections = append(sections, m.renderErrorBar())
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("COMMUTES")
	var mode string
	if m.grouped {
		mode = ui.DimStyle.Render(" [BY ROUTE HASH]")
	}
	return title + mode
}

func (m Model) renderStatusBar() string {
	total := len(m.plans)
	counts := ui.DimStyle.Render(fmt.Sprintf("  %s routes · %s legs · %s steps",
		humanize.Comma(int64(len(m.result.Routes))),
		humanize.Comma(int64(len(m.result.Legs))),
		humanize.Comma(int64(len(m.result.Steps))),
	))

	switch m.phase {
	case PhaseFetching:
		var current string
		if m.next < total {
			current = "  " + ui.DimStyle.Render(m.plans[m.next].Query.String())
		}
		return ui.FetchingStyle.Render("⟳ FETCHING ") +
			renderProgressBar(m.next, total) +
			fmt.Sprintf(" %d/%d", m.next, total) + counts + current
	case PhaseSaving:
		return ui.FetchingStyle.Render("⟳ SAVING") + counts
	case PhaseFailed:
		return ui.ErrorStyle.Render("✗ STOPPED") +
			ui.DimStyle.Render(fmt.Sprintf(" after %d/%d queries, nothing saved", m.next, total))
	}
	if m.saveErr != nil {
		return ui.ErrorStyle.Render("✗ SAVE FAILED") + counts
	}
	return ui.DoneStyle.Render("● SAVED") + counts + ui.DimStyle.Render("  "+m.sinkNames())
}

func (m Model) sinkNames() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, ", ")
}

func renderProgressBar(done, total int) string {
	const barLen = 20
	filled := 0
	if total > 0 {
		filled = done * barLen / total
	}

	var bar string
	for i := 0; i < barLen; i++ {
		if i < filled {
			bar += ui.ProgressDoneStyle.Render("█")
		} else {
			bar += ui.ProgressTodoStyle.Render("░")
		}
	}
	return bar
}

// tableRows is how many table rows each expanded panel gets.
func (m Model) tableRows() int {
	if m.height == 0 {
		return 10
	}
	open := 0
	for _, e := range m.expanded {
		if e {
			open++
		}
	}
	// header(1) + status(1) + dividers(2) + error(1) + footer(1) + panel titles(3)
	free := m.height - 9
	if open > 0 {
		// table border and header take 4 lines per open panel
		free = free/open - 4
	}
	return max(3, free)
}

func (m Model) renderPanel(p PanelFocus, rows int) string {
	marker := "▸"
	if m.expanded[p] {
		marker = "▾"
	}
	label := fmt.Sprintf("%s %s (%d)", marker, p, m.rowCount(p))
	var title string
	if m.focusedPanel == p {
		title = ui.PanelTitleActiveStyle.Render(label)
	} else {
		title = ui.PanelTitleStyle.Render(label)
	}
	if !m.expanded[p] {
		return title
	}

	headers, body := m.panelData(p)
	if len(body) == 0 {
		return title + "\n" + ui.DimStyle.Render("  "+m.emptyText(p))
	}
	return title + "\n" + renderTable(headers, body, m.selected[p], rows, m.width, m.focusedPanel == p)
}

func (m Model) emptyText(p PanelFocus) string {
	if m.phase == PhaseFetching && len(m.result.Routes) == 0 {
		return "Waiting for the first response..."
	}
	switch p {
	case FocusLegs:
		return "Select a route"
	case FocusSteps:
		return "Select a leg"
	}
	return "No routes returned"
}

func (m Model) panelData(p PanelFocus) ([]string, [][]string) {
	switch p {
	case FocusRoutes:
		if m.grouped {
			return groupColumns(m.result)
		}
		return routeColumns(m.result.Routes)
	case FocusLegs:
		return legColumns(m.currentLegs())
	case FocusSteps:
		return stepColumns(m.currentSteps())
	}
	return nil, nil
}

func (m Model) renderErrorBar() string {
	err := m.err
	if err == nil {
		err = m.saveErr
	}
	lines := wrapText(err.Error(), max(20, m.width-7))
	for i := range lines {
		lines[i] = ui.ErrorTextStyle.Render(lines[i])
	}
	return ui.ErrorStyle.Render("Error: ") + strings.Join(lines, "\n       ")
}

func (m Model) renderFooter() string {
	var parts []string
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Focus"))
	parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Expand"))
	parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Nav"))
	if m.grouped {
		parts = append(parts, ui.FooterKeyStyle.Render("g")+ui.FooterDescStyle.Render(" Ungroup"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("g")+ui.FooterDescStyle.Render(" Group"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	return strings.Join(parts, "  ")
}

// Helpers

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

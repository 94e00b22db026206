package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fleetwatch/internal/engine"
)

type fleetMode int

const (
	fleetHistory fleetMode = iota
	fleetPnl
)

// fleetModel renders fleet-wide aggregates: animated totals, queue depth,
// the windowed financial history chart and the daily PnL chart.
type fleetModel struct {
	rec *engine.Reconciler

	width  int
	height int

	mode    fleetMode
	endHist int // 0 = latest window
	endPnl  int

	pnl      map[string]int64
	pnlDates []string

	chart      barchart.Model
	chartBuilt bool
	lastLabels []string
	lastValues []float64
	window     engine.Window
}

func newFleetModel(rec *engine.Reconciler) fleetModel {
	return fleetModel{
		rec:   rec,
		chart: barchart.New(60, 12),
	}
}

func (m *fleetModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *fleetModel) setPnl(points map[string]int64) {
	m.pnl = points
	m.pnlDates = m.pnlDates[:0]
	for d := range points {
		m.pnlDates = append(m.pnlDates, d)
	}
	sort.Strings(m.pnlDates)
	m.endPnl = 0
}

func (m fleetModel) update(msg tea.Msg) (fleetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.shift(-1)
			m.rebuild()
		case key.Matches(msg, keys.Right):
			m.shift(+1)
			m.rebuild()
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Enter):
			if m.mode == fleetHistory {
				m.mode = fleetPnl
			} else {
				m.mode = fleetHistory
			}
			m.rebuild()
		}
	}
	return m, nil
}

func (m *fleetModel) shift(delta int) {
	n, end := m.seriesBounds()
	win := engine.SliceWindow(n, end)
	win = win.Shift(delta)
	if m.mode == fleetHistory {
		m.endHist = win.End
	} else {
		m.endPnl = win.End
	}
}

func (m *fleetModel) seriesBounds() (n, end int) {
	if m.mode == fleetHistory {
		return m.rec.FleetSeries().Len(), m.endHist
	}
	return len(m.pnlDates), m.endPnl
}

// rebuild redraws the chart only when the visible window actually changed;
// identical labels and values leave the rendered chart untouched so a
// steady poll stream does not cause flicker.
func (m *fleetModel) rebuild() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	n, end := m.seriesBounds()
	m.window = engine.SliceWindow(n, end)

	labels, bars, flat := m.windowBars()
	if m.chartBuilt && equalStrings(labels, m.lastLabels) && equalFloats(flat, m.lastValues) {
		return
	}
	m.lastLabels = labels
	m.lastValues = flat

	m.chart = barchart.New(chartWidth, chartHeight)
	m.chart.PushAll(bars)
	m.chart.Draw()
	m.chartBuilt = true
}

func (m *fleetModel) windowBars() (labels []string, bars []barchart.BarData, flat []float64) {
	if m.mode == fleetHistory {
		series := m.rec.FleetSeries()
		for i := m.window.Start; i < m.window.End; i++ {
			date, p := series.At(i)
			label := chartLabel(date)
			labels = append(labels, label)
			flat = append(flat, float64(p.Income), float64(p.Balance), float64(p.Withdrawal))
			bars = append(bars, barchart.BarData{
				Label: label,
				Values: []barchart.BarValue{
					{Name: "income", Value: toMillions(p.Income), Style: incomeStyle},
					{Name: "balance", Value: toMillions(p.Balance), Style: balanceStyle},
					{Name: "withdrawal", Value: toMillions(p.Withdrawal), Style: withdrawStyle},
				},
			})
		}
		return labels, bars, flat
	}

	for i := m.window.Start; i < m.window.End; i++ {
		date := m.pnlDates[i]
		amount := m.pnl[date]
		label := chartLabel(date)
		labels = append(labels, label)
		flat = append(flat, float64(amount))
		style := successStyle
		v := amount
		if v < 0 {
			style = errorStyle
			v = -v
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "pnl", Value: toMillions(v), Style: style}},
		})
	}
	return labels, bars, flat
}

func (m fleetModel) view() string {
	w := m.width - 4
	now := time.Now()

	historyTab := inactiveTabStyle.Render("History")
	pnlTab := inactiveTabStyle.Render("Daily PnL")
	if m.mode == fleetHistory {
		historyTab = activeTabStyle.Render("History")
	} else {
		pnlTab = activeTabStyle.Render("Daily PnL")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, historyTab, pnlTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Fleet"), "  ", modeTabs)

	income, balance, withdrawal := m.rec.TotalsAt(now)
	totals := fmt.Sprintf("%s %s   %s %s   %s %s",
		incomeStyle.Render("income"), engine.FormatRupiah(income),
		balanceStyle.Render("balance"), engine.FormatRupiah(balance),
		withdrawStyle.Render("withdrawal"), engine.FormatRupiah(withdrawal),
	)
	queue := mutedStyle.Render(fmt.Sprintf("queue: %d pending jobs", m.rec.QueueSize()))

	nav := m.renderNav()
	body := m.chart.View()
	if m.window.Len() == 0 {
		body = mutedStyle.Render("  No history yet")
	}

	legend := fmt.Sprintf("%s income  %s balance  %s withdrawal  %s",
		incomeStyle.Render("●"), balanceStyle.Render("●"), withdrawStyle.Render("●"),
		mutedStyle.Render("(millions)"))
	if m.mode == fleetPnl {
		legend = fmt.Sprintf("%s profit  %s loss  %s",
			successStyle.Render("●"), errorStyle.Render("●"), mutedStyle.Render("(millions)"))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", totals, queue, "", body, "", legend, "", nav,
		),
	)
}

func (m fleetModel) renderNav() string {
	prev := "←"
	if !m.window.HasPrev() {
		prev = mutedStyle.Render("←")
	}
	next := "→"
	if !m.window.HasNext() {
		next = mutedStyle.Render("→")
	}
	return mutedStyle.Render("  ") + prev + mutedStyle.Render(" page ") + next +
		mutedStyle.Render("  tab: switch mode")
}

func chartLabel(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("Jan 02")
	}
	return date
}

func toMillions(v int64) float64 {
	return float64(v) / 1e6
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

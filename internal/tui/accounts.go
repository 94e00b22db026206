package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fleetwatch/internal/api"
	"github.com/sadopc/fleetwatch/internal/engine"
)

// accountsModel renders one card per account with live progress, status
// badge, animated financial stats and the weekly attendance strip.
type accountsModel struct {
	rec        *engine.Reconciler
	dispatcher *engine.Dispatcher
	client     *api.Client
	timeout    time.Duration

	width  int
	height int

	cursor       int
	showCalendar bool
}

func newAccountsModel(rec *engine.Reconciler, disp *engine.Dispatcher, client *api.Client, timeout time.Duration) accountsModel {
	return accountsModel{rec: rec, dispatcher: disp, client: client, timeout: timeout}
}

func (m *accountsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m accountsModel) selected() (*engine.AccountView, bool) {
	views := m.rec.Views()
	if len(views) == 0 || m.cursor >= len(views) {
		return nil, false
	}
	return views[m.cursor], true
}

func (m accountsModel) update(msg tea.Msg) (accountsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rec.Views())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Calendar):
			m.showCalendar = !m.showCalendar
		case key.Matches(msg, keys.Run):
			return m, m.runSelected()
		case key.Matches(msg, keys.Sync):
			return m, m.syncSelected()
		}
	}
	return m, nil
}

func (m accountsModel) runSelected() tea.Cmd {
	view, ok := m.selected()
	if !ok {
		return nil
	}
	phone := view.Account.PhoneDisplay
	if phone == "" {
		return toast("Account has no phone number", true)
	}
	if view.Account.StatusRaw == "running" {
		return toast("Account is already running", true)
	}
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := client.RunSingle(ctx, phone)
		return actionMsg{kind: actionRun, phone: phone, reply: reply, err: err}
	}
}

func (m accountsModel) syncSelected() tea.Cmd {
	view, ok := m.selected()
	if !ok {
		return nil
	}
	phone := view.Account.PhoneDisplay
	if phone == "" {
		return toast("Account has no phone number", true)
	}
	if view.Account.IsSyncing {
		return toast("Sync already in progress", true)
	}
	// Manual syncs bypass the dispatcher throttle but still arm its
	// cooldown so the next automatic pass skips this account.
	m.dispatcher.MarkSynced(phone, time.Now())
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := client.SyncSingle(ctx, phone)
		return actionMsg{kind: actionSync, phone: phone, reply: reply, err: err}
	}
}

func toast(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (m accountsModel) view() string {
	w := m.width - 4
	views := m.rec.Views()
	if len(views) == 0 {
		return panelStyle.Width(w).Render(mutedStyle.Render("No accounts reported yet"))
	}

	now := time.Now()
	var cards []string
	for i, v := range views {
		cards = append(cards, m.renderCard(i, v, w, now))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m accountsModel) renderCard(i int, v *engine.AccountView, w int, now time.Time) string {
	acc := v.Account

	cursor := "  "
	style := panelStyle
	if i == m.cursor {
		cursor = "> "
		style = activePanelStyle
	}

	phone := titleStyle.Render("+62 " + acc.PhoneDisplay)
	badge := statusBadge(acc.Status)

	syncState := ""
	if acc.IsSyncing {
		syncState = warningStyle.Render(" ⟳ syncing")
	} else if last, ok := m.dispatcher.LastSync(acc.PhoneDisplay); ok {
		syncState = mutedStyle.Render(" synced " + last.Format("15:04"))
	}

	head := fmt.Sprintf("%s%s %s%s", cursor, phone, badge, syncState)

	progress := fmt.Sprintf("%s %d/%d (%d%%)",
		progressBar(acc.Pct, 20), acc.Completed, acc.Total, acc.Pct)

	income, balance, withdrawal, estimated := v.StatsAt(now)
	stats := fmt.Sprintf("%s %s   %s %s   %s %s",
		incomeStyle.Render("income"), engine.FormatRupiah(income),
		balanceStyle.Render("balance"), engine.FormatRupiah(balance),
		withdrawStyle.Render("withdrawal"), engine.FormatRupiah(withdrawal),
	)
	if acc.Estimation != nil {
		stats += fmt.Sprintf("   %s %s", mutedStyle.Render("est."), engine.FormatRupiah(estimated))
	}

	meta := mutedStyle.Render(fmt.Sprintf("%s · %d pts", acc.StatusLabel, acc.Points))

	rows := []string{head, progress, stats, meta, renderWeekStrip(v.Week)}

	if i == m.cursor && m.showCalendar {
		rows = append(rows, "", renderMonthGrid(acc.Calendar, now))
	}

	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func renderWeekStrip(cells []engine.DayCell) string {
	labels := []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
	var parts []string
	for i, c := range cells {
		if i >= len(labels) {
			break
		}
		parts = append(parts, dayCellStyle(c).Render(labels[i]))
	}
	return strings.Join(parts, " ")
}

func renderMonthGrid(attended []int, ref time.Time) string {
	cells := engine.MonthCells(attended, ref)

	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	offset := int(first.Weekday()-time.Monday+7) % 7

	rows := []string{mutedStyle.Render("Mo Tu We Th Fr Sa Su")}
	line := strings.Repeat("   ", offset)
	col := offset
	for _, c := range cells {
		line += dayCellStyle(c).Render(fmt.Sprintf("%2d", c.Day)) + " "
		col++
		if col == 7 {
			rows = append(rows, strings.TrimRight(line, " "))
			line, col = "", 0
		}
	}
	if line != "" {
		rows = append(rows, strings.TrimRight(line, " "))
	}
	return strings.Join(rows, "\n")
}

func dayCellStyle(c engine.DayCell) lipgloss.Style {
	if c.Today {
		return dayTodayStyle
	}
	switch c.Status {
	case engine.DayAttended:
		return dayAttendedStyle
	case engine.DayMissed:
		return dayMissedStyle
	}
	return dayNeutralStyle
}

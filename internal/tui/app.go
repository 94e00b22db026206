package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fleetwatch/internal/api"
	"github.com/sadopc/fleetwatch/internal/config"
	"github.com/sadopc/fleetwatch/internal/engine"
	"github.com/sadopc/fleetwatch/internal/export"
	"github.com/sadopc/fleetwatch/internal/model"
	"github.com/sadopc/fleetwatch/internal/store"
)

const (
	statAnimDuration = 800 * time.Millisecond
	frameInterval    = 50 * time.Millisecond
)

// App is the root Bubble Tea model.
type App struct {
	cfg    *config.Config
	store  *store.Store
	client *api.Client

	rec   *engine.Reconciler
	sched *engine.Scheduler
	disp  *engine.Dispatcher

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	accounts accountsModel
	fleet    fleetModel
	logs     logsModel
	settings settingsModel

	help   help.Model
	status string

	lastFleet     *model.Fleet
	firstDispatch bool
	animating     bool
}

func NewApp(cfg *config.Config, s *store.Store, client *api.Client) App {
	h := help.New()
	h.ShowAll = false

	now := time.Now()
	rec := engine.NewReconciler(statAnimDuration)
	sched := engine.NewScheduler(cfg.Poll.Foreground, cfg.Poll.Background, cfg.Sync.Interval, now)
	disp := engine.NewDispatcher(client, cfg.Sync.Cooldown, cfg.Sync.Pacing)

	// Seed charts from the local cache so a backend outage still shows
	// the last known series.
	if cached, err := s.LoadFleetHistory(); err == nil && len(cached) > 0 {
		rec.SeedFleet(cached)
	}

	app := App{
		cfg:      cfg,
		store:    s,
		client:   client,
		rec:      rec,
		sched:    sched,
		disp:     disp,
		accounts: newAccountsModel(rec, disp, client, cfg.Server.Timeout),
		fleet:    newFleetModel(rec),
		logs:     newLogsModel(client, cfg.Server.Timeout),
		settings: newSettingsModel(s, client, cfg),
		help:     h,
	}
	if cachedPnl, err := s.LoadPnlHistory(); err == nil && len(cachedPnl) > 0 {
		app.fleet.setPnl(cachedPnl)
	}
	return app
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		a.reconcileCmd(),
		a.historyCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// reconcileCmd claims the in-flight guard and fetches a fleet snapshot.
// It returns nil while a prior pass is outstanding: overlapping polls are
// dropped, not queued.
func (a App) reconcileCmd() tea.Cmd {
	if !a.rec.Begin() {
		return nil
	}
	client, timeout := a.client, a.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fleet, err := client.FetchFleet(ctx)
		return fleetMsg{fleet: fleet, err: err}
	}
}

func (a App) historyCmd() tea.Cmd {
	client, timeout := a.client, a.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		global, err := client.FetchGlobalHistory(ctx)
		if err != nil {
			return historyMsg{err: err}
		}
		pnl, err := client.FetchPnlHistory(ctx)
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{global: global, pnl: pnl}
	}
}

func (a App) dispatchCmd() tea.Cmd {
	if a.lastFleet == nil {
		return nil
	}
	// Fixed snapshot: the pass walks the accounts as they were when it
	// started, regardless of polls landing meanwhile.
	accounts := make([]model.Account, len(a.lastFleet.Accounts))
	copy(accounts, a.lastFleet.Accounts)
	disp, timeout := a.disp, a.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(accounts)+1)*timeout)
		defer cancel()
		return dispatchMsg{report: disp.DispatchAll(ctx, accounts)}
	}
}

func (a App) saveTodayCmd(date string, p model.HistoryPoint) tea.Cmd {
	s := a.store
	return func() tea.Msg {
		return historySavedMsg{err: s.UpsertFleetPoint(date, p)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.accounts.setSize(a.width, contentHeight)
		a.fleet.setSize(a.width, contentHeight)
		a.logs.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.fleet.rebuild()
		return a, nil

	case tea.FocusMsg:
		if a.sched.SetVisible(true, time.Now()) {
			return a, a.reconcileCmd()
		}
		return a, nil

	case tea.BlurMsg:
		a.sched.SetVisible(false, time.Now())
		return a, nil

	case tickMsg:
		cmds = append(cmds, tickCmd())
		pollDue, syncDue := a.sched.Tick(time.Time(msg))
		if pollDue {
			if cmd := a.reconcileCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if syncDue {
			if cmd := a.dispatchCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return a, tea.Batch(cmds...)

	case frameMsg:
		if a.rec.Animating(time.Time(msg)) {
			return a, frameCmd()
		}
		a.animating = false
		return a, nil

	case fleetMsg:
		return a.handleFleet(msg)

	case historyMsg:
		return a.handleHistory(msg)

	case dispatchMsg:
		if msg.report.Ran && msg.report.Dispatched > 0 {
			a.status = fmt.Sprintf("Auto-sync dispatched %d account(s)", msg.report.Dispatched)
		}
		return a, nil

	case actionMsg:
		return a.handleAction(msg)

	case settingsSavedMsg:
		if msg.err != nil {
			log.Printf("[WARN] save settings: %v", msg.err)
			a.status = "Settings saved locally; server rejected them"
		} else {
			a.status = "Settings saved"
		}
		if msg.baseURL != "" {
			a.client.BaseURL = msg.baseURL
		}
		return a, nil

	case historySavedMsg:
		if msg.err != nil {
			log.Printf("[WARN] cache history: %v", msg.err)
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateActiveView(msg)
}

func (a App) handleFleet(msg fleetMsg) (tea.Model, tea.Cmd) {
	a.rec.Finish()
	if msg.err != nil {
		log.Printf("[WARN] poll failed: %v", msg.err)
		a.rec.Fail()
		return a, nil
	}

	res := a.rec.Apply(msg.fleet, time.Now())
	a.lastFleet = msg.fleet

	if n := len(a.rec.Views()); a.accounts.cursor >= n && n > 0 {
		a.accounts.cursor = n - 1
	}

	var cmds []tea.Cmd
	cmds = append(cmds, a.saveTodayCmd(res.TodayDate, res.Today))

	for _, notice := range res.Notices {
		log.Printf("[INFO] %s", notice)
	}
	if len(res.Notices) > 0 {
		a.status = res.Notices[len(res.Notices)-1]
	}

	if !a.firstDispatch {
		a.firstDispatch = true
		if cmd := a.dispatchCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if res.Changed && a.activeView == viewFleet {
		a.fleet.rebuild()
	}
	if !a.animating && a.rec.Animating(time.Now()) {
		a.animating = true
		cmds = append(cmds, frameCmd())
	}
	return a, tea.Batch(cmds...)
}

func (a App) handleHistory(msg historyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The cached series stays on screen.
		log.Printf("[WARN] fetch history: %v", msg.err)
		return a, nil
	}
	a.rec.SeedFleet(msg.global)
	a.fleet.setPnl(msg.pnl)
	if a.activeView == viewFleet {
		a.fleet.rebuild()
	}
	s := a.store
	global, pnl := msg.global, msg.pnl
	return a, func() tea.Msg {
		if err := s.ReplaceFleetHistory(global); err != nil {
			return historySavedMsg{err: err}
		}
		return historySavedMsg{err: s.ReplacePnlHistory(pnl)}
	}
}

func (a App) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	verb := "Run"
	if msg.kind == actionSync {
		verb = "Sync"
	}
	switch {
	case msg.err != nil:
		log.Printf("[WARN] %s %s: %v", verb, msg.phone, msg.err)
		a.status = verb + " failed: could not reach server"
		return a, nil
	case !msg.reply.OK:
		a.status = fmt.Sprintf("%s rejected: %s", verb, msg.reply.Msg)
		return a, nil
	}
	a.status = fmt.Sprintf("%s queued for +62 %s", verb, msg.phone)
	// Post-action refresh so the affordance reflects the server promptly.
	return a, a.reconcileCmd()
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.exportPicking {
		return a.updateExportPicker(msg)
	}
	if a.isFormActive() {
		return a.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Refresh) && a.activeView != viewLogs:
		return a, tea.Batch(a.reconcileCmd(), a.historyCmd())
	case key.Matches(msg, keys.Logs) && a.activeView == viewAccounts:
		if view, ok := a.accounts.selected(); ok {
			a.activeView = viewLogs
			return a, a.logs.load(view.Account.PhoneDisplay)
		}
		return a, nil
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewAccounts
		return a, nil
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewFleet
		a.fleet.rebuild()
		return a, a.historyCmd()
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewLogs
		return a, nil
	case key.Matches(msg, keys.Tab4):
		a.activeView = viewSettings
		return a, a.settings.refresh()
	case key.Matches(msg, keys.Tab) && a.activeView != viewFleet:
		a.activeView = (a.activeView + 1) % 4
		return a, a.refreshCurrentView()
	case key.Matches(msg, keys.Back) && a.activeView != viewAccounts:
		a.activeView = viewAccounts
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewAccounts:
		a.accounts, cmd = a.accounts.update(msg)
	case viewFleet:
		a.fleet, cmd = a.fleet.update(msg)
	case viewLogs:
		a.logs, cmd = a.logs.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewFleet:
		a.fleet.rebuild()
		return a.historyCmd()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewAccounts:
		content = a.accounts.view()
	case viewFleet:
		content = a.fleet.view()
	case viewLogs:
		content = a.logs.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("fleetwatch")

	conn := successStyle.Render(" ● ")
	if a.rec.ConnIssue() {
		conn = errorStyle.Render(" ○ ")
	}
	queue := mutedStyle.Render(fmt.Sprintf("queue %d", a.rec.QueueSize()))

	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, conn, queue)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	syncing := 0
	for _, v := range a.rec.Views() {
		if v.Account.IsSyncing {
			syncing++
		}
	}
	syncInfo := ""
	if syncing > 0 {
		syncInfo = warningStyle.Render(fmt.Sprintf(" ⟳ %d syncing", syncing))
	}

	left := footerStyle.Render(helpView)
	right := syncInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	fleet := a.lastFleet
	s := a.store
	return func() tea.Msg {
		if fleet == nil {
			return statusMsg{text: "Nothing to export yet", isError: true}
		}
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("fleetwatch-export-%s.csv", dateStr))
			if err := export.ToCSV(fleet, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			history, _ := s.LoadFleetHistory()
			path = filepath.Join(home, fmt.Sprintf("fleetwatch-export-%s.json", dateStr))
			if err := export.ToJSON(fleet, history, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

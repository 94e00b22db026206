package tui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fleetwatch/internal/api"
	"github.com/sadopc/fleetwatch/internal/config"
	"github.com/sadopc/fleetwatch/internal/store"
)

type settingsModel struct {
	store  *store.Store
	client *api.Client
	cfg    *config.Config

	width  int
	height int

	settings   []store.Pref
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	baseURL    *string
	foreground *string
	background *string
	cooldown   *string
	pacing     *string
}

func newSettingsModel(s *store.Store, client *api.Client, cfg *config.Config) settingsModel {
	bu, fg, bg, cd, pc := "", "", "", "", ""
	return settingsModel{
		store:      s,
		client:     client,
		cfg:        cfg,
		baseURL:    &bu,
		foreground: &fg,
		background: &bg,
		cooldown:   &cd,
		pacing:     &pc,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type settingsDataMsg struct {
	settings []store.Pref
}

func (m settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := m.store.Prefs()
		return settingsDataMsg{settings: settings}
	}
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		m.settings = msg.settings
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return m.showForm()
		}
	}
	return m, nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	*m.baseURL = m.store.PrefOr(store.PrefServerURL, m.cfg.Server.BaseURL)
	*m.foreground = m.store.PrefOr(store.PrefPollForeground, secsOf(m.cfg.Poll.Foreground))
	*m.background = m.store.PrefOr(store.PrefPollBackground, secsOf(m.cfg.Poll.Background))
	*m.cooldown = m.store.PrefOr(store.PrefSyncCooldown, minsOf(m.cfg.Sync.Cooldown))
	*m.pacing = m.store.PrefOr(store.PrefSyncPacing, millisOf(m.cfg.Sync.Pacing))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Server URL").Value(m.baseURL),
		).Title("Backend"),
		huh.NewGroup(
			huh.NewInput().Title("Foreground poll (s)").Value(m.foreground),
			huh.NewInput().Title("Background poll (s)").Value(m.background),
			huh.NewInput().Title("Sync cooldown (min)").Value(m.cooldown),
			huh.NewInput().Title("Sync pacing (ms)").Value(m.pacing),
		).Title("Timing"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, tea.Batch(m.saveSettings(), m.refresh())
	}

	return m, cmd
}

func (m settingsModel) saveSettings() tea.Cmd {
	err := m.store.SavePrefs([]store.Pref{
		{Key: store.PrefServerURL, Value: *m.baseURL},
		{Key: store.PrefPollForeground, Value: *m.foreground},
		{Key: store.PrefPollBackground, Value: *m.background},
		{Key: store.PrefSyncCooldown, Value: *m.cooldown},
		{Key: store.PrefSyncPacing, Value: *m.pacing},
	})
	if err != nil {
		log.Printf("[WARN] persist settings locally: %v", err)
	}

	payload := map[string]any{
		"server_url":      *m.baseURL,
		"poll_foreground": atoiOr(*m.foreground, int(m.cfg.Poll.Foreground/time.Second)),
		"poll_background": atoiOr(*m.background, int(m.cfg.Poll.Background/time.Second)),
		"sync_cooldown":   atoiOr(*m.cooldown, int(m.cfg.Sync.Cooldown/time.Minute)),
		"sync_pacing":     atoiOr(*m.pacing, int(m.cfg.Sync.Pacing/time.Millisecond)),
	}
	client, timeout, baseURL := m.client, m.cfg.Server.Timeout, *m.baseURL
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.SaveSettings(ctx, payload)
		return settingsSavedMsg{baseURL: baseURL, err: err}
	}
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	rows := []string{title, ""}
	if len(m.settings) == 0 {
		rows = append(rows, mutedStyle.Render("  Using defaults from config file"))
	}
	for _, setting := range m.settings {
		label := lipgloss.NewStyle().Width(20).Render(setting.Key)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(setting.Value)))
	}
	rows = append(rows, "", hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func secsOf(d time.Duration) string   { return strconv.Itoa(int(d / time.Second)) }
func minsOf(d time.Duration) string   { return strconv.Itoa(int(d / time.Minute)) }
func millisOf(d time.Duration) string { return strconv.Itoa(int(d / time.Millisecond)) }

func atoiOr(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}

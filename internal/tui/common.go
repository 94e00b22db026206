package tui

import (
	"time"

	"github.com/sadopc/fleetwatch/internal/api"
	"github.com/sadopc/fleetwatch/internal/engine"
	"github.com/sadopc/fleetwatch/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewAccounts viewState = iota
	viewFleet
	viewLogs
	viewSettings
)

var viewNames = []string{"Accounts", "Fleet", "Logs", "Settings"}

// --- Messages ---

type tickMsg time.Time

// frameMsg drives stat animations at a faster cadence than the poll tick,
// and is only scheduled while an animation is in flight.
type frameMsg time.Time

type fleetMsg struct {
	fleet *model.Fleet
	err   error
}

type historyMsg struct {
	global map[string]model.HistoryPoint
	pnl    map[string]int64
	err    error
}

type logsMsg struct {
	phone string
	text  string
	err   error
}

type actionKind int

const (
	actionRun actionKind = iota
	actionSync
)

type actionMsg struct {
	kind  actionKind
	phone string
	reply *api.ActionReply
	err   error
}

type dispatchMsg struct {
	report engine.DispatchReport
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct {
	baseURL string
	err     error
}

type historySavedMsg struct {
	err error
}

// --- Helpers ---

func statusBadge(status string) string {
	switch status {
	case "ran":
		return badgeRanStyle.Render(" RAN ")
	case "due":
		return badgeDueStyle.Render(" DUE ")
	case "pending":
		return badgePendingStyle.Render(" PENDING ")
	}
	return badgeIdleStyle.Render(" - ")
}

func progressBar(pct, width int) string {
	if width < 2 {
		width = 2
	}
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	style := progressLowStyle
	switch {
	case pct >= 100:
		style = progressFullStyle
	case pct >= 50:
		style = progressMidStyle
	}
	return style.Render(bar)
}

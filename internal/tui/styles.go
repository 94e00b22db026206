package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
	colorIncome    = lipgloss.Color("#F59E0B")
	colorBalance   = lipgloss.Color("#06B6D4")
	colorWithdraw  = lipgloss.Color("#F97316")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Status badges
	badgeRanStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0B2E1B")).
			Background(colorSuccess)

	badgeDueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3A2A00")).
			Background(colorWarning)

	badgePendingStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorSubtle)

	badgeIdleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Progress bars
	progressLowStyle  = lipgloss.NewStyle().Foreground(colorError)
	progressMidStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	progressFullStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// Attendance cells
	dayAttendedStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	dayMissedStyle   = lipgloss.NewStyle().Foreground(colorError)
	dayNeutralStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	dayTodayStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)

	// Series colors for the fleet chart
	incomeStyle   = lipgloss.NewStyle().Foreground(colorIncome)
	balanceStyle  = lipgloss.NewStyle().Foreground(colorBalance)
	withdrawStyle = lipgloss.NewStyle().Foreground(colorWithdraw)
)

package model

// Account is one phone-linked automation session as reported by the backend.
// The client never mutates it; each poll delivers a fresh copy.
type Account struct {
	PhoneDisplay string      `json:"phone_display"`
	Completed    int         `json:"completed"`
	Total        int         `json:"total"`
	Pct          int         `json:"pct"`
	Status       string      `json:"status"`       // ran, due, pending
	StatusRaw    string      `json:"status_raw"`   // idle, queued, running
	StatusLabel  string      `json:"status_label"`
	Income       int64       `json:"income"`
	Balance      int64       `json:"balance"`
	Withdrawal   int64       `json:"withdrawal"`
	Estimation   *Estimation `json:"estimation,omitempty"`
	IsSyncing    bool        `json:"is_syncing"`
	Calendar     []int       `json:"calendar"` // day-numbers attended this month
	Points       int         `json:"points"`
}

// Estimation carries the server-side projected balance, when available.
type Estimation struct {
	EstimatedBalance int64 `json:"estimated_balance"`
}

// Key returns the identity key used to index accounts client-side.
func (a Account) Key() string { return a.PhoneDisplay }

// Fleet is the full working set returned by one poll. Each response
// replaces the previous one wholesale; partial snapshots do not exist.
type Fleet struct {
	Accounts  []Account `json:"accounts"`
	QueueSize int       `json:"queue_size"`
}

// HistoryPoint is one day of financial figures, per account or fleet-wide.
type HistoryPoint struct {
	Income     int64 `json:"income"`
	Balance    int64 `json:"balance"`
	Withdrawal int64 `json:"withdrawal"`
}

// Totals aggregates the fleet for the header and the fleet chart.
type Totals struct {
	Income     int64
	Balance    int64
	Withdrawal int64
	Estimated  int64
	Completed  int
	TaskTotal  int
	Points     int
}

// Add accumulates one account into the running totals.
func (t *Totals) Add(a Account) {
	t.Income += a.Income
	t.Balance += a.Balance
	t.Withdrawal += a.Withdrawal
	if a.Estimation != nil {
		t.Estimated += a.Estimation.EstimatedBalance
	}
	t.Completed += a.Completed
	t.TaskTotal += a.Total
	t.Points += a.Points
}

// Point converts the totals into a history point for the fleet series.
func (t Totals) Point() HistoryPoint {
	return HistoryPoint{Income: t.Income, Balance: t.Balance, Withdrawal: t.Withdrawal}
}

package engine

import (
	"fmt"
	"time"

	"github.com/sadopc/fleetwatch/internal/model"
)

// AccountView is the client-side handle for one rendered account card. The
// reconciler keeps these in an in-memory index keyed by phone, so lookups
// never depend on rendered output.
type AccountView struct {
	Account model.Account

	Income     *Animator
	Balance    *Animator
	Withdrawal *Animator
	Estimated  *Animator

	Week []DayCell
}

// StatsAt samples the animated stat values for rendering.
func (v *AccountView) StatsAt(now time.Time) (income, balance, withdrawal, estimated int64) {
	return v.Income.ValueAt(now), v.Balance.ValueAt(now),
		v.Withdrawal.ValueAt(now), v.Estimated.ValueAt(now)
}

// ApplyResult reports what one reconciliation pass changed.
type ApplyResult struct {
	Notices   []string
	TodayDate string
	Today     model.HistoryPoint
	Changed   bool
}

// Reconciler diffs each fleet snapshot against the previously rendered
// state and updates the view index with minimal churn: unchanged stats
// start no animations, and feeding the same snapshot twice is a no-op.
// A boolean in-flight guard is the only concurrency control; it drops
// overlapping passes instead of queueing them, because fetch latency can
// exceed the poll interval under load.
type Reconciler struct {
	animDur time.Duration

	inFlight  bool
	connIssue bool

	views        map[string]*AccountView
	order        []string
	queueSize    int
	totals       model.Totals
	haveSnapshot bool

	totalIncome     *Animator
	totalBalance    *Animator
	totalWithdrawal *Animator

	// Completion notices are de-duplicated per account per day, so day
	// rollover re-arms them and the set cannot grow without bound.
	notified map[string]bool

	fleet *Series
}

// NewReconciler creates a reconciler with the given stat animation duration.
func NewReconciler(animDur time.Duration) *Reconciler {
	zero := NewAnimator(0, 0, time.Time{}, 0)
	return &Reconciler{
		animDur:         animDur,
		views:           make(map[string]*AccountView),
		notified:        make(map[string]bool),
		fleet:           NewSeries(),
		totalIncome:     zero,
		totalBalance:    zero,
		totalWithdrawal: zero,
	}
}

// Begin claims the in-flight guard. It returns false when a pass is
// already running, in which case the caller must not fetch.
func (r *Reconciler) Begin() bool {
	if r.inFlight {
		return false
	}
	r.inFlight = true
	return true
}

// Finish releases the in-flight guard.
func (r *Reconciler) Finish() { r.inFlight = false }

// InFlight reports whether a pass is outstanding.
func (r *Reconciler) InFlight() bool { return r.inFlight }

// Fail records a failed fetch. Previously rendered state is left intact so
// the user keeps a stale-but-visible view, and only the connectivity
// indicator flips.
func (r *Reconciler) Fail() { r.connIssue = true }

// ConnIssue reports whether the last poll failed.
func (r *Reconciler) ConnIssue() bool { return r.connIssue }

// Apply reconciles a fresh snapshot into the view index at now.
func (r *Reconciler) Apply(fleet *model.Fleet, now time.Time) ApplyResult {
	res := ApplyResult{TodayDate: now.Format("2006-01-02")}
	r.connIssue = false

	if r.queueSize != fleet.QueueSize {
		r.queueSize = fleet.QueueSize
		res.Changed = true
	}

	next := make(map[string]*AccountView, len(fleet.Accounts))
	order := make([]string, 0, len(fleet.Accounts))
	var totals model.Totals

	for _, acc := range fleet.Accounts {
		key := acc.Key()
		if key == "" {
			continue
		}
		totals.Add(acc)

		view, known := r.views[key]
		if !known {
			view = r.newView(acc, now)
			res.Changed = true
		} else {
			if r.updateView(view, acc, now) {
				res.Changed = true
			}
		}
		view.Account = acc
		view.Week = WeekCells(acc.Calendar, now)

		if acc.Pct >= 100 {
			noteKey := key + "|" + res.TodayDate
			if !r.notified[noteKey] {
				r.notified[noteKey] = true
				res.Notices = append(res.Notices,
					fmt.Sprintf("Account %s completed today's tasks", key))
				res.Changed = true
			}
		}

		next[key] = view
		order = append(order, key)
	}

	// Accounts no longer reported drop out of the index wholesale; the
	// snapshot is a full replacement, never a merge.
	if len(next) != len(r.views) {
		res.Changed = true
	}
	r.views = next
	r.order = order

	if totals != r.totals || !r.haveSnapshot {
		if r.haveSnapshot {
			r.totalIncome = r.retarget(r.totalIncome, totals.Income, now)
			r.totalBalance = r.retarget(r.totalBalance, totals.Balance, now)
			r.totalWithdrawal = r.retarget(r.totalWithdrawal, totals.Withdrawal, now)
		} else {
			r.totalIncome = NewAnimator(totals.Income, totals.Income, now, 0)
			r.totalBalance = NewAnimator(totals.Balance, totals.Balance, now, 0)
			r.totalWithdrawal = NewAnimator(totals.Withdrawal, totals.Withdrawal, now, 0)
		}
		r.totals = totals
		res.Changed = true
	}
	r.haveSnapshot = true

	res.Today = totals.Point()
	r.fleet.Set(res.TodayDate, res.Today)
	return res
}

func (r *Reconciler) newView(acc model.Account, now time.Time) *AccountView {
	// First render shows values directly, no animation from zero.
	est := int64(0)
	if acc.Estimation != nil {
		est = acc.Estimation.EstimatedBalance
	}
	return &AccountView{
		Income:     NewAnimator(acc.Income, acc.Income, now, 0),
		Balance:    NewAnimator(acc.Balance, acc.Balance, now, 0),
		Withdrawal: NewAnimator(acc.Withdrawal, acc.Withdrawal, now, 0),
		Estimated:  NewAnimator(est, est, now, 0),
	}
}

func (r *Reconciler) updateView(v *AccountView, acc model.Account, now time.Time) bool {
	changed := false
	if a := r.retarget(v.Income, acc.Income, now); a != v.Income {
		v.Income = a
		changed = true
	}
	if a := r.retarget(v.Balance, acc.Balance, now); a != v.Balance {
		v.Balance = a
		changed = true
	}
	if a := r.retarget(v.Withdrawal, acc.Withdrawal, now); a != v.Withdrawal {
		v.Withdrawal = a
		changed = true
	}
	est := int64(0)
	if acc.Estimation != nil {
		est = acc.Estimation.EstimatedBalance
	}
	if a := r.retarget(v.Estimated, est, now); a != v.Estimated {
		v.Estimated = a
		changed = true
	}
	prev := v.Account
	if prev.Pct != acc.Pct || prev.Status != acc.Status ||
		prev.StatusRaw != acc.StatusRaw || prev.IsSyncing != acc.IsSyncing ||
		prev.Completed != acc.Completed || prev.Points != acc.Points {
		changed = true
	}
	return changed
}

// retarget replaces an animator when the target moved, seeding the new one
// from the value currently on screen so a mid-flight update never jumps.
func (r *Reconciler) retarget(a *Animator, target int64, now time.Time) *Animator {
	if a.Target() == target {
		return a
	}
	return NewAnimator(a.ValueAt(now), target, now, r.animDur)
}

// Views returns the account views in snapshot order.
func (r *Reconciler) Views() []*AccountView {
	out := make([]*AccountView, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.views[key])
	}
	return out
}

// View looks up one account by phone key.
func (r *Reconciler) View(key string) (*AccountView, bool) {
	v, ok := r.views[key]
	return v, ok
}

// QueueSize returns the last reported server-side job queue depth.
func (r *Reconciler) QueueSize() int { return r.queueSize }

// Totals returns the fleet-wide aggregates from the last snapshot.
func (r *Reconciler) Totals() model.Totals { return r.totals }

// TotalsAt samples the animated fleet totals for rendering.
func (r *Reconciler) TotalsAt(now time.Time) (income, balance, withdrawal int64) {
	return r.totalIncome.ValueAt(now), r.totalBalance.ValueAt(now), r.totalWithdrawal.ValueAt(now)
}

// FleetSeries exposes the fleet-wide history, with today kept in sync with
// live poll aggregates.
func (r *Reconciler) FleetSeries() *Series { return r.fleet }

// SeedFleet replaces the fleet history, typically from the server's
// persisted series or the local cache on startup.
func (r *Reconciler) SeedFleet(points map[string]model.HistoryPoint) {
	r.fleet.Replace(points)
}

// Animating reports whether any stat animation still needs frames.
func (r *Reconciler) Animating(now time.Time) bool {
	if !r.totalIncome.Done(now) || !r.totalBalance.Done(now) || !r.totalWithdrawal.Done(now) {
		return true
	}
	for _, v := range r.views {
		if !v.Income.Done(now) || !v.Balance.Done(now) ||
			!v.Withdrawal.Done(now) || !v.Estimated.Done(now) {
			return true
		}
	}
	return false
}

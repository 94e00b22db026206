package engine

import "time"

// Scheduler owns the polling cadence. It is a passive state machine driven
// by the caller's clock tick: exactly one logical repeating timer exists,
// and visibility transitions atomically replace its interval. While the
// window is hidden the auto-sync timer is disabled entirely, so no
// autonomous job dispatch happens unattended.
type Scheduler struct {
	foreground time.Duration
	background time.Duration
	syncEvery  time.Duration

	visible  bool
	nextPoll time.Time
	nextSync time.Time
}

// NewScheduler starts in the visible state with a poll due on the first tick.
func NewScheduler(foreground, background, syncEvery time.Duration, now time.Time) *Scheduler {
	return &Scheduler{
		foreground: foreground,
		background: background,
		syncEvery:  syncEvery,
		visible:    true,
		nextPoll:   now,
		nextSync:   now.Add(syncEvery),
	}
}

// SetVisible switches between foreground and background cadence. Gaining
// focus triggers an immediate out-of-band poll (returned as true) and
// re-arms the auto-sync timer; losing focus pushes the next poll out to the
// background interval and disarms auto-sync.
func (s *Scheduler) SetVisible(visible bool, now time.Time) (pollNow bool) {
	if visible == s.visible {
		return false
	}
	s.visible = visible
	if visible {
		s.nextPoll = now.Add(s.foreground)
		s.nextSync = now.Add(s.syncEvery)
		return true
	}
	s.nextPoll = now.Add(s.background)
	s.nextSync = time.Time{}
	return false
}

// Tick advances the schedule to now and reports which actions are due.
// A due poll that the caller ends up dropping (reconciliation still in
// flight) is not rescheduled early; the next interval simply tries again.
func (s *Scheduler) Tick(now time.Time) (pollDue, syncDue bool) {
	if !now.Before(s.nextPoll) {
		pollDue = true
		s.nextPoll = now.Add(s.interval())
	}
	if s.visible && !s.nextSync.IsZero() && !now.Before(s.nextSync) {
		syncDue = true
		s.nextSync = now.Add(s.syncEvery)
	}
	return pollDue, syncDue
}

// Visible reports the current visibility state.
func (s *Scheduler) Visible() bool { return s.visible }

func (s *Scheduler) interval() time.Duration {
	if s.visible {
		return s.foreground
	}
	return s.background
}

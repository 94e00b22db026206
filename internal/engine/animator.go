package engine

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Animator eases a displayed numeric label from an old value to a new one
// over a fixed duration. It holds no timer of its own; callers sample
// ValueAt from their frame tick. Equal start and end complete immediately
// so unchanged stats never schedule frames.
type Animator struct {
	start, end int64
	from       time.Time
	dur        time.Duration
}

// NewAnimator starts an animation at now. A zero duration, or start == end,
// yields an already-finished animator.
func NewAnimator(start, end int64, now time.Time, dur time.Duration) *Animator {
	if start == end {
		dur = 0
	}
	return &Animator{start: start, end: end, from: now, dur: dur}
}

// ValueAt returns the interpolated value at now, cubic ease-out, snapped
// exactly to the end value on completion.
func (a *Animator) ValueAt(now time.Time) int64 {
	if a.dur <= 0 {
		return a.end
	}
	t := float64(now.Sub(a.from)) / float64(a.dur)
	if t >= 1 {
		return a.end
	}
	if t < 0 {
		t = 0
	}
	// cubic ease-out: 1 - (1-t)^3
	u := 1 - t
	eased := 1 - u*u*u
	return a.start + int64(eased*float64(a.end-a.start))
}

// Done reports whether the animation has reached its end value.
func (a *Animator) Done(now time.Time) bool {
	return a.dur <= 0 || now.Sub(a.from) >= a.dur
}

// Target returns the end value.
func (a *Animator) Target() int64 { return a.end }

// FormatRupiah renders a value with a currency prefix and dotted thousands
// separators, e.g. "Rp 1.234.567".
func FormatRupiah(v int64) string {
	return "Rp " + strings.ReplaceAll(humanize.Comma(v), ",", ".")
}

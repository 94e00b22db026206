package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sadopc/fleetwatch/internal/api"
	"github.com/sadopc/fleetwatch/internal/model"
)

// SyncAPI is the slice of the backend client the dispatcher needs.
type SyncAPI interface {
	SyncSingle(ctx context.Context, phone string) (*api.ActionReply, error)
}

// Dispatcher issues sync jobs per account under a cooldown policy. Accounts
// are processed strictly sequentially with a pacing delay between requests
// so the backend never sees a burst. A failure for one account is logged
// and does not abort the rest.
type Dispatcher struct {
	api      SyncAPI
	cooldown time.Duration
	pacing   time.Duration

	mu       sync.Mutex
	busy     bool
	lastSync map[string]time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewDispatcher creates a dispatcher with the given cooldown and pacing.
func NewDispatcher(client SyncAPI, cooldown, pacing time.Duration) *Dispatcher {
	return &Dispatcher{
		api:      client,
		cooldown: cooldown,
		pacing:   pacing,
		lastSync: make(map[string]time.Time),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// DispatchReport summarizes one DispatchAll pass.
type DispatchReport struct {
	Dispatched int
	Skipped    int
	Failed     int
	Ran        bool // false when another pass was already in flight
}

// DispatchAll walks a fixed snapshot of accounts and issues at most one
// sync request per eligible account. Overlapping invocations are no-ops:
// the in-flight guard drops the second caller rather than queueing it.
func (d *Dispatcher) DispatchAll(ctx context.Context, accounts []model.Account) DispatchReport {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return DispatchReport{}
	}
	d.busy = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	report := DispatchReport{Ran: true}
	for _, acc := range accounts {
		if ctx.Err() != nil {
			break
		}
		phone := acc.Key()
		if phone == "" || acc.IsSyncing {
			// The server is the authority on jobs already in flight.
			report.Skipped++
			continue
		}
		if last, ok := d.last(phone); ok && d.now().Sub(last) < d.cooldown {
			report.Skipped++
			continue
		}

		// Recorded optimistically: even a failed attempt starts the
		// cooldown so a flaky account is not hammered every pass.
		d.record(phone, d.now())

		reply, err := d.api.SyncSingle(ctx, phone)
		switch {
		case err != nil:
			log.Printf("[WARN] sync dispatch %s: %v", phone, err)
			report.Failed++
		case !reply.OK:
			log.Printf("[WARN] sync dispatch %s rejected: %s", phone, reply.Msg)
			report.Failed++
		default:
			report.Dispatched++
		}

		d.sleep(d.pacing)
	}
	return report
}

// LastSync returns the recorded dispatch time for an account.
func (d *Dispatcher) LastSync(phone string) (time.Time, bool) {
	return d.last(phone)
}

// MarkSynced records a dispatch time, used when the user triggers a manual
// sync outside the dispatcher.
func (d *Dispatcher) MarkSynced(phone string, at time.Time) {
	d.record(phone, at)
}

func (d *Dispatcher) last(phone string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.lastSync[phone]
	return t, ok
}

func (d *Dispatcher) record(phone string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSync[phone] = at
}

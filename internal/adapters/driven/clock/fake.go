package clock

import (
	"sync"
	"time"

	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
)

// Ensure Fake implements the interface.
var _ driven.Clock = (*Fake)(nil)

// Fake is a manually advanced clock. Advance moves the current time and
// fires any timers and tickers whose deadlines it crosses, synchronously,
// so tests control heartbeat and reconnect timing exactly.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

// NewFake creates a fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward, firing due timers and tickers in
// deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next, ok := f.nextDeadlineLocked(target)
		if !ok {
			break
		}
		f.now = next
		f.fireDueLocked()
	}
	f.now = target
	f.mu.Unlock()
}

// nextDeadlineLocked finds the earliest pending deadline at or before
// target.
func (f *Fake) nextDeadlineLocked(target time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	consider := func(at time.Time) {
		if at.After(target) {
			return
		}
		if !found || at.Before(best) {
			best = at
			found = true
		}
	}
	for _, t := range f.timers {
		if !t.stopped {
			consider(t.deadline)
		}
	}
	for _, t := range f.tickers {
		if !t.stopped {
			consider(t.next)
		}
	}
	return best, found
}

// fireDueLocked delivers to every timer and ticker due at the current fake
// time. Channels are buffered so delivery never blocks the advancing
// goroutine.
func (f *Fake) fireDueLocked() {
	for _, t := range f.timers {
		if !t.stopped && !t.deadline.After(f.now) {
			t.stopped = true
			select {
			case t.ch <- f.now:
			default:
			}
		}
	}
	for _, t := range f.tickers {
		for !t.stopped && !t.next.After(f.now) {
			select {
			case t.ch <- f.now:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}

// NewTimer returns a one-shot fake timer firing after d.
func (f *Fake) NewTimer(d time.Duration) driven.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{
		clock:    f,
		deadline: f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.timers = append(f.timers, t)
	return t
}

// NewTicker returns a repeating fake ticker firing every d.
func (f *Fake) NewTicker(d time.Duration) driven.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		clock:    f,
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, t)
	return t
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasPending := !t.stopped
	t.stopped = true
	return wasPending
}

type fakeTicker struct {
	clock    *Fake
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

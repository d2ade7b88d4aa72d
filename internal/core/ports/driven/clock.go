package driven

import "time"

// Clock abstracts the time source behind the sync channel's heartbeat and
// reconnect timers, so tests can drive them deterministically with a fake.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTimer returns a one-shot timer firing after d.
	NewTimer(d time.Duration) Timer

	// NewTicker returns a repeating ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	// C is the firing channel.
	C() <-chan time.Time

	// Stop cancels the timer. Reports whether it was still pending.
	Stop() bool
}

// Ticker is a cancellable repeating timer handle.
type Ticker interface {
	// C is the firing channel.
	C() <-chan time.Time

	// Stop cancels the ticker.
	Stop()
}

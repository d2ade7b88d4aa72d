// Package clock provides the time source implementations behind the
// driven.Clock port: the real system clock and a controllable fake for
// deterministic tests of heartbeat and reconnect timing.
package clock

import (
	"time"

	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
)

// Ensure System implements the interface.
var _ driven.Clock = (*System)(nil)

// System is the real wall clock.
type System struct{}

// NewSystem creates a system clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current time.
func (*System) Now() time.Time {
	return time.Now()
}

// NewTimer returns a one-shot timer firing after d.
func (*System) NewTimer(d time.Duration) driven.Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

// NewTicker returns a repeating ticker firing every d.
func (*System) NewTicker(d time.Duration) driven.Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (t *systemTimer) C() <-chan time.Time { return t.t.C }
func (t *systemTimer) Stop() bool          { return t.t.Stop() }

type systemTicker struct {
	t *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time { return t.t.C }
func (t *systemTicker) Stop()               { t.t.Stop() }

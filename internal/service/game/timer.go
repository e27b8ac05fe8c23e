package game

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	timerPending int32 = iota
	timerFired
	timerCancelled
)

// Timer is a cancellable scheduled callback. The callback runs at most once
// and never after a successful Cancel; cancelling twice, or after the
// callback already ran, is a no-op.
type Timer struct {
	t     clockwork.Timer
	state atomic.Int32
}

func schedule(clock clockwork.Clock, d time.Duration, fn func()) *Timer {
	tm := &Timer{}
	tm.t = clock.AfterFunc(d, func() {
		if tm.state.CompareAndSwap(timerPending, timerFired) {
			fn()
		}
	})
	return tm
}

// Cancel reports whether this call stopped the timer before it fired.
func (tm *Timer) Cancel() bool {
	if tm == nil {
		return false
	}
	if !tm.state.CompareAndSwap(timerPending, timerCancelled) {
		return false
	}
	tm.t.Stop()
	return true
}

func (tm *Timer) Fired() bool {
	return tm != nil && tm.state.Load() == timerFired
}

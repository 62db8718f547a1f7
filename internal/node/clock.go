package node

import "time"

// Ticks is a monotonic millisecond counter that wraps around roughly
// every 49.7 days. Never compare Ticks values directly; use elapsed or
// reached.
type Ticks uint32

// Clock supplies the current tick count.
type Clock interface {
	Now() Ticks
}

// Sleeper performs the low-power suspend: execution of the whole
// context stops for the given duration. This is the only blocking
// operation in the system.
type Sleeper interface {
	Suspend(d time.Duration)
}

// add offsets t by a millisecond count, wrapping naturally.
func (t Ticks) add(ms int) Ticks {
	return t + Ticks(uint32(ms))
}

// elapsed returns the milliseconds from since to now. Wrap-safe as long
// as the real distance is under half the counter range.
func elapsed(now, since Ticks) uint32 {
	return uint32(now - since)
}

// reached reports whether now is at or past deadline, wrap-safe under
// the same distance assumption as elapsed.
func reached(now, deadline Ticks) bool {
	return int32(now-deadline) >= 0
}

// WallClock derives Ticks from the host monotonic clock.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a clock starting near zero ticks.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Now implements Clock. The uint32 truncation provides the wrap the
// rest of the package is written against.
func (c *WallClock) Now() Ticks {
	return Ticks(uint32(time.Since(c.start).Milliseconds()))
}

// TimerSleeper suspends by sleeping the host process.
type TimerSleeper struct{}

// Suspend implements Sleeper.
func (TimerSleeper) Suspend(d time.Duration) {
	time.Sleep(d)
}

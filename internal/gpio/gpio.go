// Package gpio defines the output-pin port consumed by the node core,
// including the hardware latch that keeps a pin level asserted through a
// low-power suspend without CPU involvement.
package gpio

import "sync"

// Level is a digital output level.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == Low {
		return "LOW"
	}
	return "HIGH"
}

// Driver is the GPIO port. Implementations are expected to tolerate
// releasing a hold that was never set.
type Driver interface {
	// SetOutput drives pin to level.
	SetOutput(pin int, level Level)

	// HoldDuringSleep latches the pin's current level in hardware so it
	// survives a low-power suspend.
	HoldDuringSleep(pin int)

	// ReleaseHold releases a sleep latch so the pin is software
	// controlled again.
	ReleaseHold(pin int)
}

// Sim is a recording Driver used by tests and by the host binary, where
// no physical pins exist.
type Sim struct {
	mu     sync.Mutex
	levels map[int]Level
	held   map[int]bool
}

// NewSim creates a simulator with all pins Low and unheld.
func NewSim() *Sim {
	return &Sim{levels: make(map[int]Level), held: make(map[int]bool)}
}

// SetOutput implements Driver. Writes to a held pin are ignored, as the
// hardware latch would ignore them.
func (s *Sim) SetOutput(pin int, level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[pin] {
		return
	}
	s.levels[pin] = level
}

// HoldDuringSleep implements Driver.
func (s *Sim) HoldDuringSleep(pin int) {
	s.mu.Lock()
	s.held[pin] = true
	s.mu.Unlock()
}

// ReleaseHold implements Driver.
func (s *Sim) ReleaseHold(pin int) {
	s.mu.Lock()
	delete(s.held, pin)
	s.mu.Unlock()
}

// Level returns the currently driven level of pin.
func (s *Sim) Level(pin int) Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// Held reports whether pin is latched for sleep.
func (s *Sim) Held(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[pin]
}

var _ Driver = (*Sim)(nil)

// Package sender implements the commanding peer: it transmits LED
// commands on a fixed retry cadence until the indicator acknowledges,
// then dwells before advancing to the next index. Unlike the indicator
// it never duty-cycles, so plain wall-clock timing is sufficient.
package sender

import (
	"fmt"
	"time"

	"github.com/radio-control/indicator/internal/config"
	"github.com/radio-control/indicator/internal/diag"
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/message"
)

const peerAddAttempts = 3

// Sender drives one indicator node through the command/ack protocol.
type Sender struct {
	link   link.Adapter
	log    *diag.Logger
	target link.Addr

	numLeds       int
	retryInterval time.Duration
	nextLedDelay  time.Duration
	maxRetries    int
	discover      bool

	// events carries frames from the receive handler's context into
	// Step. Overflow is dropped; only the latest ACK matters.
	events chan message.Frame

	current     int
	acked       bool
	retries     int
	lastSend    time.Time
	lastSuccess time.Time

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a sender for the given link and target address.
func New(lnk link.Adapter, log *diag.Logger, target link.Addr, numLeds int, cfg config.Sender) *Sender {
	return &Sender{
		link:          lnk,
		log:           log,
		target:        target,
		numLeds:       numLeds,
		retryInterval: time.Duration(cfg.RetryIntervalMs) * time.Millisecond,
		nextLedDelay:  time.Duration(cfg.NextLedDelayMs) * time.Millisecond,
		maxRetries:    cfg.MaxRetries,
		discover:      cfg.Discover,
		events:        make(chan message.Frame, 8),
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// Start brings the link up, registers the indicator as a peer and
// optionally probes it with a discovery frame.
func (s *Sender) Start() error {
	if err := s.link.Init(); err != nil {
		return fmt.Errorf("sender link init: %w", err)
	}
	s.link.OnReceive(s.handleReceive)
	s.registerPeer()
	if s.discover {
		probe := message.Frame{Type: message.TypeDiscovery, Value: 0}
		if err := s.link.Send(s.target, probe.Encode()); err != nil {
			s.log.Warnf("discovery probe to %s: %v", s.target, err)
		} else {
			s.log.Infof("discovery probe sent to %s", s.target)
		}
	}
	s.lastSuccess = s.now()
	return nil
}

// handleReceive runs on the link layer's context.
func (s *Sender) handleReceive(from link.Addr, payload []byte) {
	frame, err := message.Decode(payload)
	if err != nil {
		return
	}
	select {
	case s.events <- frame:
	default:
	}
}

// Step advances the retry loop by one iteration.
func (s *Sender) Step() {
	now := s.now()
	s.drain()

	if s.acked {
		if now.Sub(s.lastSuccess) >= s.nextLedDelay {
			s.advance(now)
		}
		return
	}

	if now.Sub(s.lastSend) < s.retryInterval {
		return
	}
	if s.retries >= s.maxRetries {
		// The indicator may have missed the whole burst while asleep;
		// move on rather than stalling the rotation.
		s.log.Warnf("no ack for LED %d after %d attempts, forcing progression", s.current, s.retries)
		s.advance(now)
		return
	}
	s.sendCommand()
	s.lastSend = now
	s.retries++
}

// Run loops Step until ctx is done.
func (s *Sender) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		s.Step()
		s.sleep(10 * time.Millisecond)
	}
}

// Current returns the LED index currently being commanded.
func (s *Sender) Current() int { return s.current }

// Acked reports whether the current index has been acknowledged.
func (s *Sender) Acked() bool { return s.acked }

func (s *Sender) drain() {
	for {
		select {
		case f := <-s.events:
			switch f.Type {
			case message.TypeAck:
				if !s.acked {
					s.log.Infof("ack received, LED %d confirmed", f.Value)
				}
				s.acked = true
				s.lastSuccess = s.now()
			case message.TypeDiscovery:
				s.log.Infof("discovery reply from %s", s.target)
			default:
			}
		default:
			return
		}
	}
}

func (s *Sender) advance(now time.Time) {
	s.current = (s.current + 1) % s.numLeds
	s.acked = false
	s.retries = 0
	s.lastSend = time.Time{}
	s.lastSuccess = now
	// Periodic peer refresh keeps the table entry from going stale.
	s.link.RemovePeer(s.target)
	s.registerPeer()
	s.log.Infof("moving to LED %d", s.current)
}

func (s *Sender) sendCommand() {
	frame := message.Frame{Type: message.TypeCommand, Value: uint8(s.current)}
	if err := s.link.Send(s.target, frame.Encode()); err != nil {
		s.log.Warnf("command LED %d to %s: %v", s.current, s.target, err)
		if !s.link.PeerExists(s.target) {
			s.registerPeer()
		}
		return
	}
	s.log.Debugf("command LED %d sent (attempt %d/%d)", s.current, s.retries+1, s.maxRetries)
}

func (s *Sender) registerPeer() {
	for i := 0; i < peerAddAttempts; i++ {
		if err := s.link.AddPeer(s.target); err == nil {
			return
		} else if i < peerAddAttempts-1 {
			s.log.Debugf("add peer %s failed, retrying: %v", s.target, err)
			s.sleep(500 * time.Millisecond)
		} else {
			s.log.Errorf("add peer %s failed after %d attempts: %v", s.target, peerAddAttempts, err)
		}
	}
}

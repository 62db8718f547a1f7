package node

import (
	"context"
	"time"

	"github.com/radio-control/indicator/internal/config"
	"github.com/radio-control/indicator/internal/diag"
	"github.com/radio-control/indicator/internal/gpio"
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/message"
	"github.com/radio-control/indicator/internal/store"
)

// rxEvent is one received frame as deposited by the receive handler.
type rxEvent struct {
	from  link.Addr
	frame message.Frame
}

// Node owns all mutable state of the indicator runtime. One instance of
// each state machine is ever in flight; there is no package-level state.
type Node struct {
	cfg *config.Config

	link    link.Adapter
	pins    gpio.Driver
	store   store.PeerStore
	clock   Clock
	sleeper Sleeper
	log     *diag.Logger

	// events is the latest-wins mailbox between the receive handler
	// and the tick loop. Capacity 1; the handler drops the stale event
	// when a newer one arrives before the loop drains it.
	events chan rxEvent

	// activeLed is the lit LED index, -1 for none. At most one LED is
	// ever lit.
	activeLed int

	// peer is the cached remembered peer, zero when never paired.
	peer link.Addr

	// Duty-cycle schedule
	lastFrameTime          Ticks
	nextSleepTime          Ticks
	consecutiveSleepCycles int
	forceExtendedAwake     bool

	lastStatusTime Ticks

	setup setupFSM
	test  ledTestFSM
	ack   ackFSM
	disc  discoveryFSM
	sleep sleepFSM
}

// New assembles a node from its collaborator ports. The remembered peer
// is loaded from the store immediately; the link is not touched until
// the setup machine runs.
func New(cfg *config.Config, lnk link.Adapter, pins gpio.Driver, ps store.PeerStore, clk Clock, slp Sleeper, log *diag.Logger) *Node {
	n := &Node{
		cfg:       cfg,
		link:      lnk,
		pins:      pins,
		store:     ps,
		clock:     clk,
		sleeper:   slp,
		log:       log,
		events:    make(chan rxEvent, 1),
		activeLed: -1,
	}
	n.sleep.heldPin = -1
	if addr, ok := ps.Load(); ok {
		n.peer = addr
		log.Infof("loaded remembered peer %s", addr)
	} else {
		log.Infof("no remembered peer")
	}
	return n
}

// handleReceive is registered with the link layer and runs on its
// context. It validates, decodes and deposits; it never sends and never
// blocks. Malformed or unknown frames are dropped here with no state
// change.
func (n *Node) handleReceive(from link.Addr, payload []byte) {
	frame, err := message.Decode(payload)
	if err != nil {
		return
	}
	ev := rxEvent{from: from, frame: frame}
	for {
		select {
		case n.events <- ev:
			return
		default:
		}
		// Mailbox full: evict the stale event, latest wins.
		select {
		case <-n.events:
		default:
		}
	}
}

// Tick advances the runtime by one step. It is the single entry point
// of the cooperative context and must be called from one goroutine
// only. A non-nil return is fatal and the caller must stop.
func (n *Node) Tick() error {
	now := n.clock.Now()

	// One defined drain point per iteration. Gated until both boot
	// machines are finished, so the self-test never races a command
	// and half-initialized radio state never handles one.
	if n.setup.complete() && n.test.done() {
		n.drainEvents(now)
	}

	n.test.step(n, now)

	if !n.setup.complete() {
		return n.setup.step(n, now)
	}

	n.ack.step(n, now)
	n.disc.step(n, now)
	n.stepDutyCycle(now)

	if elapsed(now, n.lastStatusTime) >= uint32(n.cfg.Timing.StatusIntervalMs) {
		n.logStatus(now)
		n.lastStatusTime = now
	}
	return nil
}

// Run ticks until ctx is cancelled or setup fails fatally. The pacing
// sleep between ticks is idle time, not protocol time; every protocol
// delay lives inside the machines as a deadline.
func (n *Node) Run(ctx context.Context) error {
	pace := time.Duration(n.cfg.Timing.TickPaceMs) * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := n.Tick(); err != nil {
			return err
		}
		time.Sleep(pace)
	}
}

// drainEvents dispatches at most one pending frame.
func (n *Node) drainEvents(now Ticks) {
	select {
	case ev := <-n.events:
		n.dispatch(ev, now)
	default:
	}
}

func (n *Node) dispatch(ev rxEvent, now Ticks) {
	switch ev.frame.Type {
	case message.TypeCommand:
		idx := int(ev.frame.Value)
		if idx >= n.cfg.NumLeds {
			n.log.Warnf("command for invalid LED index %d from %s, dropped", idx, ev.from)
			return
		}
		n.log.Infof("command: LED %d from %s", idx, ev.from)
		n.acceptFrame(now)
		n.peer = ev.from
		n.setActiveLed(idx)
		n.ack.trigger(n, ev.from)

	case message.TypeDiscovery:
		n.log.Infof("discovery request from %s", ev.from)
		n.acceptFrame(now)
		n.peer = ev.from
		if err := n.store.Save(ev.from); err != nil {
			n.log.Errorf("persist peer %s: %v", ev.from, err)
		}
		n.disc.trigger(n, ev.from)

	default:
		// An ACK addressed to us carries no meaning; drop it.
		n.log.Debugf("ignoring %s frame from %s", ev.frame.Type, ev.from)
	}
}

// acceptFrame records an accepted frame: it keeps the node awake for
// the post-frame window, clears the duty-cycle pressure counters, and
// cancels a sleep cycle still in its scan window.
func (n *Node) acceptFrame(now Ticks) {
	n.lastFrameTime = now
	n.nextSleepTime = now.add(n.cfg.Timing.AwakeAfterFrameMs)
	n.consecutiveSleepCycles = 0
	n.forceExtendedAwake = false
	if n.sleep.state == sleepPrepare {
		n.sleep.abort(n)
	}
}

// ledOn and ledOff translate the logical LED state to pin levels.
func (n *Node) ledOn() gpio.Level {
	if n.cfg.ActiveLow {
		return gpio.Low
	}
	return gpio.High
}

func (n *Node) ledOff() gpio.Level {
	if n.cfg.ActiveLow {
		return gpio.High
	}
	return gpio.Low
}

// setActiveLed switches the lit LED, keeping the mutual exclusion
// invariant: the previous LED goes off before the new one goes on.
func (n *Node) setActiveLed(idx int) {
	if n.activeLed == idx {
		return
	}
	if n.activeLed >= 0 {
		n.pins.SetOutput(n.cfg.LedPins[n.activeLed], n.ledOff())
	}
	n.pins.SetOutput(n.cfg.LedPins[idx], n.ledOn())
	n.activeLed = idx
}

// reassertLed re-drives the active LED level, used after a wake.
func (n *Node) reassertLed() {
	if n.activeLed >= 0 {
		n.pins.SetOutput(n.cfg.LedPins[n.activeLed], n.ledOn())
	}
}

func (n *Node) logStatus(now Ticks) {
	mode := "normal sleep cycling"
	switch {
	case n.forceExtendedAwake:
		mode = "extended awake"
	case elapsed(now, n.lastFrameTime) < uint32(n.cfg.Timing.AwakeAfterFrameMs):
		mode = "post-frame scanning"
	}
	n.log.Infof("status: led=%d peer=%s sleepCycles=%d mode=%s sinceFrame=%dms",
		n.activeLed, n.peer, n.consecutiveSleepCycles, mode, elapsed(now, n.lastFrameTime))
}

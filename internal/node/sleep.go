package node

import "time"

type sleepState uint8

const (
	sleepIdle sleepState = iota
	sleepPrepare    // GPIO latched, scan window open for in-flight frames
	sleepRadioDown  // woke up, link deinitialized, settling
	sleepModeCycle  // driver mode cycled, settling
	sleepChannelSet // channel reasserted, settling
)

// sleepFSM is the root scheduler's executor: it performs one
// prepare/suspend/wake/reinit cycle. The suspend inside the prepare
// branch is the sole blocking point in the whole system; every other
// state is an instantaneous step gated by a deadline.
type sleepFSM struct {
	state    sleepState
	deadline Ticks
	heldPin  int // latched pin during suspend, -1 when none
}

// begin opens the pre-sleep scan window. The current LED level is
// latched in hardware first so it survives the power-down.
func (f *sleepFSM) begin(n *Node, now Ticks) {
	if n.activeLed >= 0 {
		f.heldPin = n.cfg.LedPins[n.activeLed]
		n.pins.HoldDuringSleep(f.heldPin)
	} else {
		f.heldPin = -1
	}
	f.deadline = now.add(n.cfg.Timing.AwakeWindowMs)
	f.state = sleepPrepare
	n.log.Debugf("sleep: scanning %dms before suspend", n.cfg.Timing.AwakeWindowMs)
}

// abort cancels a cycle still in its scan window, releasing the latch.
// Past the scan window the radio is already down and the cycle must run
// to completion.
func (f *sleepFSM) abort(n *Node) {
	if f.heldPin >= 0 {
		n.pins.ReleaseHold(f.heldPin)
		f.heldPin = -1
	}
	f.state = sleepIdle
	n.log.Debugf("sleep: cycle aborted by incoming frame")
}

func (f *sleepFSM) step(n *Node, now Ticks) {
	switch f.state {
	case sleepIdle:

	case sleepPrepare:
		if !reached(now, f.deadline) {
			return
		}
		n.log.Infof("sleep: suspending for %dms", n.cfg.Timing.SleepDurationMs)
		n.sleeper.Suspend(time.Duration(n.cfg.Timing.SleepDurationMs) * time.Millisecond)

		// Wakeup: the clock moved while we were gone, re-read it.
		now = n.clock.Now()
		if f.heldPin >= 0 {
			n.pins.ReleaseHold(f.heldPin)
			f.heldPin = -1
		}
		n.reassertLed()
		n.link.Deinit()
		f.deadline = now.add(n.cfg.Timing.ReinitSettleMs)
		f.state = sleepRadioDown

	case sleepRadioDown:
		if !reached(now, f.deadline) {
			return
		}
		// The driver cycles its mode internally; give it settling time.
		f.deadline = now.add(n.cfg.Timing.ReinitSettleMs)
		f.state = sleepModeCycle

	case sleepModeCycle:
		if !reached(now, f.deadline) {
			return
		}
		n.link.SetChannel(n.cfg.Channel)
		f.deadline = now.add(n.cfg.Timing.ReinitSettleMs)
		f.state = sleepChannelSet

	case sleepChannelSet:
		if !reached(now, f.deadline) {
			return
		}
		if err := n.link.Init(); err != nil {
			// Unlike boot, a post-wake init failure is survivable: the
			// next cycle's reinit tries again.
			n.log.Errorf("sleep: link reinit failed: %v", err)
		} else {
			n.link.OnReceive(n.handleReceive)
			if !n.peer.IsZero() {
				if err := n.link.AddPeer(n.peer); err != nil {
					n.log.Warnf("sleep: re-adding peer %s: %v", n.peer, err)
				}
			}
		}
		f.finish(n, now)
	}
}

// finish completes a cycle: count it, and either schedule the next one
// after a short awake window or trip the safety valve that bounds
// worst-case unreachability.
func (f *sleepFSM) finish(n *Node, now Ticks) {
	f.state = sleepIdle
	n.consecutiveSleepCycles++
	if n.consecutiveSleepCycles >= n.cfg.Timing.MaxSleepCycles {
		n.forceExtendedAwake = true
		n.consecutiveSleepCycles = 0
		n.log.Infof("sleep: %d consecutive cycles, forcing extended awake", n.cfg.Timing.MaxSleepCycles)
		return
	}
	n.nextSleepTime = now.add(n.cfg.Timing.AwakeWindowMs)
}

// stepDutyCycle evaluates the sleep policy once per tick and advances
// an in-flight cycle.
func (n *Node) stepDutyCycle(now Ticks) {
	if n.sleep.state != sleepIdle {
		n.sleep.step(n, now)
		return
	}

	// Recent frame: stay fully awake.
	if elapsed(now, n.lastFrameTime) < uint32(n.cfg.Timing.AwakeAfterFrameMs) {
		n.consecutiveSleepCycles = 0
		return
	}

	if n.forceExtendedAwake {
		if elapsed(now, n.lastFrameTime) >= uint32(n.cfg.Timing.ExtendedAwakeMs) {
			n.forceExtendedAwake = false
			n.consecutiveSleepCycles = 0
			n.nextSleepTime = now.add(n.cfg.Timing.ExtendedAwakeGraceMs)
			n.log.Infof("sleep: ending extended awake period")
		}
		return
	}

	if !reached(now, n.nextSleepTime) {
		return
	}

	// Awake-window gate: never power the radio down under an in-flight
	// reply run.
	if !n.ack.idle() || !n.disc.idle() {
		return
	}

	n.sleep.begin(n, now)
}

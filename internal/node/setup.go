package node

import (
	"errors"
	"fmt"
)

// ErrRadioInitFatal reports that the link stack refused to initialize
// at boot. There is no recovery; the process must exit and be
// restarted by its supervisor.
var ErrRadioInitFatal = errors.New("radio init failed at boot")

type setupState uint8

const (
	setupSerialWait setupState = iota
	setupWifiInit
	setupDisconnectWait
	setupChannelWait
	setupRadioInit
	setupComplete
)

// setupFSM brings the link stack up in discrete, timed steps. Each
// dwell models hardware settling after the preceding mode change; none
// of the steps suspend.
type setupFSM struct {
	state    setupState
	deadline Ticks
	started  bool
}

func (f *setupFSM) complete() bool {
	return f.state == setupComplete
}

func (f *setupFSM) step(n *Node, now Ticks) error {
	switch f.state {
	case setupSerialWait:
		if !f.started {
			f.started = true
			f.deadline = now.add(n.cfg.Timing.SerialSettleMs)
			n.log.Infof("setup: waiting for serial to settle")
			return nil
		}
		if reached(now, f.deadline) {
			f.state = setupWifiInit
		}

	case setupWifiInit:
		// Mode selection is the driver's concern; this state exists
		// for its settling time.
		f.state = setupDisconnectWait
		f.deadline = now.add(n.cfg.Timing.ModeSettleMs)

	case setupDisconnectWait:
		if reached(now, f.deadline) {
			n.link.SetChannel(n.cfg.Channel)
			f.state = setupChannelWait
			f.deadline = now.add(n.cfg.Timing.ChannelSettleMs)
		}

	case setupChannelWait:
		if reached(now, f.deadline) {
			f.state = setupRadioInit
		}

	case setupRadioInit:
		if err := n.link.Init(); err != nil {
			return fmt.Errorf("%w: %v", ErrRadioInitFatal, err)
		}
		n.link.OnReceive(n.handleReceive)
		if !n.peer.IsZero() {
			if err := n.link.AddPeer(n.peer); err != nil {
				n.log.Warnf("setup: re-adding remembered peer %s: %v", n.peer, err)
			}
		}
		// Start inside an awake window so a command sent right after
		// boot is not lost to an immediate sleep.
		n.lastFrameTime = now
		n.nextSleepTime = now.add(n.cfg.Timing.AwakeAfterFrameMs)
		n.lastStatusTime = now
		f.state = setupComplete
		n.log.Infof("setup: link up on channel %d", n.cfg.Channel)

	case setupComplete:
	}
	return nil
}

package node

import (
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/message"
)

type ackState uint8

const (
	ackIdle ackState = iota
	ackPeerSetup
	ackSend
	ackWait
)

// ackFSM answers an accepted command with a bounded, spaced burst of
// ACK frames. The burst is the only defense against loss; there is no
// ack-of-the-ack. Every failure path ends in idle: acknowledging is
// best-effort and never fatal.
type ackFSM struct {
	state  ackState
	target link.Addr
	reg    peerRegistration
	sent   int
	gap    Ticks
}

func (f *ackFSM) idle() bool {
	return f.state == ackIdle
}

// trigger starts (or restarts) an acknowledgment run. A command
// arriving mid-run abandons the remaining sends of the old run: last
// command wins.
func (f *ackFSM) trigger(n *Node, target link.Addr) {
	if f.state != ackIdle {
		n.log.Debugf("ack: restarting run for %s", target)
	}
	f.state = ackPeerSetup
	f.target = target
	f.sent = 0
	f.reg.reset()
}

func (f *ackFSM) step(n *Node, now Ticks) {
	switch f.state {
	case ackIdle:

	case ackPeerSetup:
		switch f.reg.step(n, now, f.target) {
		case peerReady:
			f.state = ackSend
		case peerFailed:
			// The command still counted; only the reply is lost. The
			// sender's own retry loop covers it.
			f.state = ackIdle
		case peerPending:
		}

	case ackSend:
		if !n.link.PeerExists(f.target) {
			f.reg.reset()
			f.state = ackPeerSetup
			return
		}
		frame := message.Frame{Type: message.TypeAck, Value: uint8(n.activeLed)}
		if err := n.link.Send(f.target, frame.Encode()); err != nil {
			n.log.Warnf("ack %d/%d to %s: %v", f.sent+1, n.cfg.Timing.AckCount, f.target, err)
		} else {
			n.log.Debugf("ack %d/%d sent to %s", f.sent+1, n.cfg.Timing.AckCount, f.target)
		}
		f.sent++
		f.gap = now.add(n.cfg.Timing.AckSpacingMs)
		f.state = ackWait

	case ackWait:
		if !reached(now, f.gap) {
			return
		}
		if f.sent >= n.cfg.Timing.AckCount {
			f.state = ackIdle
			n.log.Debugf("ack run for %s complete", f.target)
			return
		}
		f.state = ackSend
	}
}

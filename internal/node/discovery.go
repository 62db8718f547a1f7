package node

import (
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/message"
)

type discoveryState uint8

const (
	discIdle discoveryState = iota
	discPeerSetup
	discSend
)

// discoveryFSM replies exactly once to a pairing request, with the same
// peer add/retry policy as the ack machine. Persisting the new peer
// happens at dispatch; the machine only owns the reply.
type discoveryFSM struct {
	state  discoveryState
	target link.Addr
	reg    peerRegistration
}

func (f *discoveryFSM) idle() bool {
	return f.state == discIdle
}

func (f *discoveryFSM) trigger(n *Node, target link.Addr) {
	f.state = discPeerSetup
	f.target = target
	f.reg.reset()
}

func (f *discoveryFSM) step(n *Node, now Ticks) {
	switch f.state {
	case discIdle:

	case discPeerSetup:
		switch f.reg.step(n, now, f.target) {
		case peerReady:
			f.state = discSend
		case peerFailed:
			f.state = discIdle
		case peerPending:
		}

	case discSend:
		frame := message.Frame{Type: message.TypeDiscovery, Value: 0}
		if err := n.link.Send(f.target, frame.Encode()); err != nil {
			n.log.Warnf("discovery reply to %s: %v", f.target, err)
		} else {
			n.log.Infof("discovery reply sent to %s", f.target)
		}
		f.state = discIdle
	}
}

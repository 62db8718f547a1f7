package node

import "github.com/radio-control/indicator/internal/link"

// peerOutcome is the result of one peer-registration step.
type peerOutcome uint8

const (
	peerPending peerOutcome = iota // waiting out the retry delay
	peerReady                      // target registered, proceed
	peerFailed                     // retried and rejected again, abort
)

// peerRegistration implements the shared add/retry policy of the reply
// machines: remove any stale table entry, re-add, retry once after a
// short delay on rejection, give up on the second rejection.
type peerRegistration struct {
	retried  bool
	deadline Ticks
}

func (r *peerRegistration) reset() {
	r.retried = false
}

func (r *peerRegistration) step(n *Node, now Ticks, target link.Addr) peerOutcome {
	if r.retried && !reached(now, r.deadline) {
		return peerPending
	}
	if n.link.PeerExists(target) {
		n.link.RemovePeer(target)
	}
	if err := n.link.AddPeer(target); err != nil {
		if r.retried {
			n.log.Warnf("peer %s rejected twice: %v", target, err)
			return peerFailed
		}
		r.retried = true
		r.deadline = now.add(n.cfg.Timing.PeerRetryDelayMs)
		n.log.Debugf("peer %s rejected, retrying: %v", target, err)
		return peerPending
	}
	return peerReady
}

// Package fake provides an in-memory link adapter for tests: it records
// every call, keeps a real peer table, and can be scripted to reject
// init, peer registration, or sends.
package fake

import (
	"fmt"

	"github.com/radio-control/indicator/internal/link"
)

// Sent records one transmitted payload.
type Sent struct {
	To      link.Addr
	Payload []byte
}

// Adapter implements link.Adapter for testing purposes.
type Adapter struct {
	peers   map[link.Addr]struct{}
	handler link.RxHandler
	sent    []Sent

	// Call counters
	InitCalls   int
	DeinitCalls int
	Channels    []uint8

	// Failure scripting: each counter fails that many upcoming calls.
	failInit    int
	failAddPeer int
	failSend    int

	up bool
}

// New creates a fake adapter with an empty peer table.
func New() *Adapter {
	return &Adapter{peers: make(map[link.Addr]struct{})}
}

// Init implements link.Adapter.
func (a *Adapter) Init() error {
	a.InitCalls++
	if a.failInit > 0 {
		a.failInit--
		return fmt.Errorf("%w: scripted failure", link.ErrInitFailed)
	}
	a.up = true
	return nil
}

// Deinit implements link.Adapter. It clears the registered handler the
// way the real stack does, so callers must re-register after Init.
func (a *Adapter) Deinit() {
	a.DeinitCalls++
	a.up = false
	a.handler = nil
}

// SetChannel implements link.Adapter.
func (a *Adapter) SetChannel(ch uint8) {
	a.Channels = append(a.Channels, ch)
}

// AddPeer implements link.Adapter.
func (a *Adapter) AddPeer(addr link.Addr) error {
	if a.failAddPeer > 0 {
		a.failAddPeer--
		return fmt.Errorf("%w: scripted failure", link.ErrPeerRejected)
	}
	a.peers[addr] = struct{}{}
	return nil
}

// RemovePeer implements link.Adapter.
func (a *Adapter) RemovePeer(addr link.Addr) {
	delete(a.peers, addr)
}

// PeerExists implements link.Adapter.
func (a *Adapter) PeerExists(addr link.Addr) bool {
	_, ok := a.peers[addr]
	return ok
}

// Send implements link.Adapter.
func (a *Adapter) Send(addr link.Addr, payload []byte) error {
	if !a.up {
		return fmt.Errorf("%w: link down", link.ErrSendFailed)
	}
	if _, ok := a.peers[addr]; !ok {
		return fmt.Errorf("%w: %s", link.ErrUnknownPeer, addr)
	}
	if a.failSend > 0 {
		a.failSend--
		return fmt.Errorf("%w: scripted failure", link.ErrSendFailed)
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	a.sent = append(a.sent, Sent{To: addr, Payload: p})
	return nil
}

// OnReceive implements link.Adapter.
func (a *Adapter) OnReceive(h link.RxHandler) {
	a.handler = h
}

// Test helpers

// Deliver invokes the registered receive handler as the radio stack
// would. Payloads delivered while the link is down or no handler is
// registered are dropped, mirroring a powered-off radio.
func (a *Adapter) Deliver(from link.Addr, payload []byte) {
	if !a.up || a.handler == nil {
		return
	}
	a.handler(from, payload)
}

// Sent returns a copy of the transmit log.
func (a *Adapter) Sent() []Sent {
	out := make([]Sent, len(a.sent))
	copy(out, a.sent)
	return out
}

// ClearSent resets the transmit log.
func (a *Adapter) ClearSent() {
	a.sent = nil
}

// FailInit makes the next n Init calls fail.
func (a *Adapter) FailInit(n int) { a.failInit = n }

// FailAddPeer makes the next n AddPeer calls fail.
func (a *Adapter) FailAddPeer(n int) { a.failAddPeer = n }

// FailSend makes the next n Send calls fail.
func (a *Adapter) FailSend(n int) { a.failSend = n }

// Up reports whether the link stack is initialized.
func (a *Adapter) Up() bool { return a.up }

// Handler reports whether a receive handler is registered.
func (a *Adapter) Handler() bool { return a.handler != nil }

// Compile-time assertion that Adapter implements link.Adapter.
var _ link.Adapter = (*Adapter)(nil)

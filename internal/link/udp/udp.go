// Package udp carries the 2-byte indicator frames over UDP datagrams so
// the node and its peer can interoperate on a LAN the way the original
// devices did over the short-range radio. Each datagram is the sender's
// 6-byte link address followed by the frame payload; the transport
// enforces the radio semantics of registering a peer before sending to
// it and learns return endpoints from incoming datagrams.
package udp

import (
	"fmt"
	"net"
	"sync"

	"github.com/radio-control/indicator/internal/link"
)

const maxDatagram = link.AddrLen + 64

// Transport implements link.Adapter over a UDP socket.
type Transport struct {
	mu        sync.Mutex
	self      link.Addr
	listen    string
	conn      *net.UDPConn
	handler   link.RxHandler
	peers     map[link.Addr]struct{}
	endpoints map[link.Addr]*net.UDPAddr
	channel   uint8
	done      chan struct{}
}

// New creates a transport for the given local link address, bound to the
// listen host:port once Init is called.
func New(self link.Addr, listen string) *Transport {
	return &Transport{
		self:      self,
		listen:    listen,
		peers:     make(map[link.Addr]struct{}),
		endpoints: make(map[link.Addr]*net.UDPAddr),
	}
}

// AddEndpoint seeds the address book with a known peer endpoint, used
// for the first contact before any datagram has been received from it.
func (t *Transport) AddEndpoint(addr link.Addr, hostport string) error {
	ua, err := net.ResolveUDPAddr("udp", hostport)
	if err != nil {
		return fmt.Errorf("endpoint %s for %s: %w", hostport, addr, err)
	}
	t.mu.Lock()
	t.endpoints[addr] = ua
	t.mu.Unlock()
	return nil
}

// Init implements link.Adapter: binds the socket and starts the read
// loop. Init after Deinit rebinds, matching the radio stack's
// deinit/init cycling across sleep.
func (t *Transport) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	ua, err := net.ResolveUDPAddr("udp", t.listen)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", link.ErrInitFailed, t.listen, err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return fmt.Errorf("%w: %v", link.ErrInitFailed, err)
	}
	t.conn = conn
	t.done = make(chan struct{})
	go t.readLoop(conn, t.done)
	return nil
}

// Deinit implements link.Adapter: closes the socket and drops the
// handler, so callers must re-register after the next Init.
func (t *Transport) Deinit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return
	}
	close(t.done)
	t.conn.Close()
	t.conn = nil
	t.handler = nil
}

// SetChannel implements link.Adapter. Channels have no UDP meaning; the
// value is retained for diagnostics only.
func (t *Transport) SetChannel(ch uint8) {
	t.mu.Lock()
	t.channel = ch
	t.mu.Unlock()
}

// AddPeer implements link.Adapter. Registration fails when no endpoint
// is known for the address, mirroring a driver rejecting an
// unreachable peer.
func (t *Transport) AddPeer(addr link.Addr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.endpoints[addr]; !ok {
		return fmt.Errorf("%w: no endpoint for %s", link.ErrPeerRejected, addr)
	}
	t.peers[addr] = struct{}{}
	return nil
}

// RemovePeer implements link.Adapter.
func (t *Transport) RemovePeer(addr link.Addr) {
	t.mu.Lock()
	delete(t.peers, addr)
	t.mu.Unlock()
}

// PeerExists implements link.Adapter.
func (t *Transport) PeerExists(addr link.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.peers[addr]
	return ok
}

// Send implements link.Adapter.
func (t *Transport) Send(addr link.Addr, payload []byte) error {
	t.mu.Lock()
	conn := t.conn
	_, registered := t.peers[addr]
	ep := t.endpoints[addr]
	t.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: link down", link.ErrSendFailed)
	}
	if !registered {
		return fmt.Errorf("%w: %s", link.ErrUnknownPeer, addr)
	}
	if ep == nil {
		return fmt.Errorf("%w: no endpoint for %s", link.ErrSendFailed, addr)
	}

	buf := make([]byte, 0, link.AddrLen+len(payload))
	buf = append(buf, t.self[:]...)
	buf = append(buf, payload...)
	if _, err := conn.WriteToUDP(buf, ep); err != nil {
		return fmt.Errorf("%w: %v", link.ErrSendFailed, err)
	}
	return nil
}

// OnReceive implements link.Adapter.
func (t *Transport) OnReceive(h link.RxHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// LocalAddr returns the bound UDP address, or nil before Init.
func (t *Transport) LocalAddr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	return t.conn.LocalAddr()
}

func (t *Transport) readLoop(conn *net.UDPConn, done chan struct{}) {
	buf := make([]byte, maxDatagram)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-done:
				return
			default:
				// Transient read error; the socket is still open.
				continue
			}
		}
		if n < link.AddrLen {
			continue
		}
		var from link.Addr
		copy(from[:], buf[:link.AddrLen])

		payload := make([]byte, n-link.AddrLen)
		copy(payload, buf[link.AddrLen:n])

		t.mu.Lock()
		t.endpoints[from] = src
		h := t.handler
		t.mu.Unlock()

		if h != nil {
			h(from, payload)
		}
	}
}

// Compile-time assertion that Transport implements link.Adapter.
var _ link.Adapter = (*Transport)(nil)

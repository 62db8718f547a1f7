// Package link defines the southbound port to the short-range radio
// link: synchronous send/receive/peer-table primitives over 6-byte
// addresses. The physical driver behind the port owns all radio-mode
// handling; the core only sequences the calls and their settling times.
package link

import (
	"fmt"
	"strings"
)

// AddrLen is the length of a link-layer address.
const AddrLen = 6

// Addr is a 6-byte link-layer address.
type Addr [AddrLen]byte

// IsZero reports whether the address is the all-zero (unset) address.
func (a Addr) IsZero() bool {
	return a == Addr{}
}

// String renders the address in the conventional AA:BB:CC:DD:EE:FF form.
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// ParseAddr parses an address in AA:BB:CC:DD:EE:FF form (case
// insensitive, ':' or '-' separated).
func ParseAddr(s string) (Addr, error) {
	var a Addr
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) != AddrLen {
		return Addr{}, fmt.Errorf("address %q: want %d octets, got %d", s, AddrLen, len(parts))
	}
	for i, p := range parts {
		var b byte
		if _, err := fmt.Sscanf(p, "%02x", &b); err != nil || len(p) != 2 {
			return Addr{}, fmt.Errorf("address %q: bad octet %q", s, p)
		}
		a[i] = b
	}
	return a, nil
}

// RxHandler is invoked by the link layer when a payload arrives. It runs
// on the link layer's own context and must return quickly without
// sending; replies are deferred to the owning tick loop.
type RxHandler func(from Addr, payload []byte)

// Adapter is the stable contract to the radio link driver.
//
// Send requires the destination to be registered via AddPeer first, and
// reports failure synchronously through its return value; there is no
// delivery confirmation beyond the link layer's own. SetChannel carries
// no result: channel selection is fire-and-forget and takes effect after
// a hardware settling delay the caller is responsible for.
type Adapter interface {
	// Init brings the link stack up. It is called once at boot and
	// again after every low-power suspend.
	Init() error

	// Deinit tears the link stack down before a suspend.
	Deinit()

	// SetChannel selects the radio channel.
	SetChannel(ch uint8)

	// AddPeer registers addr in the peer table, a precondition for Send.
	AddPeer(addr Addr) error

	// RemovePeer drops addr from the peer table. Removing an
	// unregistered peer is a no-op.
	RemovePeer(addr Addr)

	// PeerExists reports whether addr is currently registered.
	PeerExists(addr Addr) bool

	// Send transmits payload to a registered peer.
	Send(addr Addr, payload []byte) error

	// OnReceive registers the asynchronous receive handler. Init does
	// not preserve handlers across Deinit; callers re-register after
	// every reinitialization.
	OnReceive(h RxHandler)
}

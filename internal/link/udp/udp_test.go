package udp

import (
	"errors"
	"testing"
	"time"

	"github.com/radio-control/indicator/internal/link"
)

var (
	addrA = link.Addr{0xAA, 0, 0, 0, 0, 1}
	addrB = link.Addr{0xBB, 0, 0, 0, 0, 2}
)

type rx struct {
	from    link.Addr
	payload []byte
}

// pair brings up two transports on loopback and cross-seeds their
// address books from the kernel-assigned ports.
func pair(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	a := New(addrA, "127.0.0.1:0")
	b := New(addrB, "127.0.0.1:0")
	if err := a.Init(); err != nil {
		t.Fatalf("a.Init: %v", err)
	}
	t.Cleanup(a.Deinit)
	if err := b.Init(); err != nil {
		t.Fatalf("b.Init: %v", err)
	}
	t.Cleanup(b.Deinit)

	if err := a.AddEndpoint(addrB, b.LocalAddr().String()); err != nil {
		t.Fatal(err)
	}
	if err := b.AddEndpoint(addrA, a.LocalAddr().String()); err != nil {
		t.Fatal(err)
	}
	return a, b
}

func waitRx(t *testing.T, ch <-chan rx) rx {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
		return rx{}
	}
}

func TestSendReceive(t *testing.T) {
	a, b := pair(t)

	got := make(chan rx, 4)
	b.OnReceive(func(from link.Addr, payload []byte) {
		got <- rx{from, payload}
	})
	if err := a.AddPeer(addrB); err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	if err := a.Send(addrB, []byte{1, 2}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	r := waitRx(t, got)
	if r.from != addrA {
		t.Errorf("sender address %v, want %v", r.from, addrA)
	}
	if len(r.payload) != 2 || r.payload[0] != 1 || r.payload[1] != 2 {
		t.Errorf("payload % X, want 01 02", r.payload)
	}
}

func TestSendRequiresRegisteredPeer(t *testing.T) {
	a, _ := pair(t)
	if err := a.Send(addrB, []byte{1, 0}); !errors.Is(err, link.ErrUnknownPeer) {
		t.Errorf("send without AddPeer = %v, want ErrUnknownPeer", err)
	}
}

func TestAddPeerRequiresEndpoint(t *testing.T) {
	a, _ := pair(t)
	unknown := link.Addr{0xCC, 0, 0, 0, 0, 3}
	if err := a.AddPeer(unknown); !errors.Is(err, link.ErrPeerRejected) {
		t.Errorf("AddPeer without endpoint = %v, want ErrPeerRejected", err)
	}
}

func TestEndpointLearnedFromDatagram(t *testing.T) {
	a, b := pair(t)

	got := make(chan rx, 4)
	b.OnReceive(func(from link.Addr, payload []byte) {
		got <- rx{from, payload}
	})
	a.AddPeer(addrB)
	if err := a.Send(addrB, []byte{3, 0}); err != nil {
		t.Fatal(err)
	}
	waitRx(t, got)

	// b now knows a's endpoint from the datagram source and can answer
	// even though its seed entry is replaced.
	back := make(chan rx, 4)
	a.OnReceive(func(from link.Addr, payload []byte) {
		back <- rx{from, payload}
	})
	if err := b.AddPeer(addrA); err != nil {
		t.Fatalf("AddPeer after learning: %v", err)
	}
	if err := b.Send(addrA, []byte{2, 1}); err != nil {
		t.Fatalf("reply Send: %v", err)
	}
	r := waitRx(t, back)
	if r.from != addrB {
		t.Errorf("reply sender %v, want %v", r.from, addrB)
	}
}

func TestDeinitDropsHandlerAndRebinds(t *testing.T) {
	a, b := pair(t)

	got := make(chan rx, 4)
	b.OnReceive(func(from link.Addr, payload []byte) {
		got <- rx{from, payload}
	})

	b.Deinit()
	if b.LocalAddr() != nil {
		t.Fatal("LocalAddr non-nil after Deinit")
	}
	if err := a.Send(addrB, []byte{1, 0}); !errors.Is(err, link.ErrUnknownPeer) {
		// a's peer table is untouched by b's lifecycle; only the missing
		// AddPeer matters here.
		t.Logf("send while peer down: %v", err)
	}

	if err := b.Init(); err != nil {
		t.Fatalf("rebind Init: %v", err)
	}
	// Rebind picks a new port; reseed a's address book.
	if err := a.AddEndpoint(addrB, b.LocalAddr().String()); err != nil {
		t.Fatal(err)
	}
	a.AddPeer(addrB)
	if err := a.Send(addrB, []byte{1, 0}); err != nil {
		t.Fatalf("Send after rebind: %v", err)
	}

	// Handler was dropped by Deinit, so nothing may arrive.
	select {
	case r := <-got:
		t.Fatalf("handler survived Deinit, got %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSendWhileDown(t *testing.T) {
	a := New(addrA, "127.0.0.1:0")
	if err := a.Send(addrB, []byte{1, 0}); !errors.Is(err, link.ErrSendFailed) {
		t.Errorf("send before Init = %v, want ErrSendFailed", err)
	}
}

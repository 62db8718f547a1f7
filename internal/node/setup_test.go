package node

import (
	"errors"
	"testing"

	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/store"
)

func TestSetupDwellOrdering(t *testing.T) {
	h := newHarness(t)

	// Serial (500ms) + mode (300ms) settling: channel not touched yet.
	h.stepMs(t, 700)
	if len(h.lnk.Channels) != 0 {
		t.Fatal("channel set before mode settling finished")
	}

	// Past the mode dwell the channel is set, but the radio stays down
	// through the channel dwell.
	h.stepMs(t, 150)
	if len(h.lnk.Channels) != 1 {
		t.Fatal("channel not set after mode settling")
	}
	if h.lnk.InitCalls != 0 {
		t.Fatal("radio initialized before channel settling")
	}

	h.stepMs(t, 150)
	if h.lnk.InitCalls != 1 {
		t.Errorf("InitCalls = %d after full settle, want 1", h.lnk.InitCalls)
	}
	if !h.n.setup.complete() {
		t.Error("setup not complete after radio init")
	}
}

func TestSetupInitFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.lnk.FailInit(1)

	var got error
	for i := 0; i < 5000; i++ {
		h.clk.t++
		if got = h.n.Tick(); got != nil {
			break
		}
	}
	if !errors.Is(got, ErrRadioInitFatal) {
		t.Fatalf("boot with failing radio = %v, want ErrRadioInitFatal", got)
	}
}

func TestSetupReAddsRememberedPeer(t *testing.T) {
	remembered := link.Addr{0x24, 0x6F, 0x28, 0xAA, 0x10, 0x02}
	ps := &store.MemStore{}
	if err := ps.Save(remembered); err != nil {
		t.Fatal(err)
	}

	h := newHarnessWithStore(t, ps)
	if h.n.peer != remembered {
		t.Fatal("remembered peer not loaded at construction")
	}
	h.boot(t)

	if !h.lnk.PeerExists(remembered) {
		t.Error("remembered peer not re-registered after link init")
	}
}

func TestSetupPeerAddFailureNonFatal(t *testing.T) {
	ps := &store.MemStore{}
	ps.Save(link.Addr{1, 2, 3, 4, 5, 6})

	h := newHarnessWithStore(t, ps)
	h.lnk.FailAddPeer(1)
	h.boot(t)

	if !h.n.setup.complete() {
		t.Error("rejected peer registration blocked boot")
	}
}

func TestSetupStartsInsideAwakeWindow(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	// A freshly booted node must not sleep before the post-frame window
	// elapses, so an immediate command is never lost.
	if elapsed(h.clk.t, h.n.lastFrameTime) >= uint32(h.n.cfg.Timing.AwakeAfterFrameMs) {
		t.Error("boot did not stamp the awake window")
	}
	if len(h.slp.suspends) != 0 {
		t.Error("node suspended during boot")
	}
}

package node

import (
	"testing"
	"time"

	"github.com/radio-control/indicator/internal/gpio"
	"github.com/radio-control/indicator/internal/message"
)

// stepUntilSuspends runs the node until the suspend count reaches want.
func (h *harness) stepUntilSuspends(t *testing.T, want int) {
	t.Helper()
	for i := 0; i < 120000; i++ {
		if len(h.slp.suspends) >= want {
			return
		}
		h.stepMs(t, 1)
	}
	t.Fatalf("suspend count stuck at %d, want %d", len(h.slp.suspends), want)
}

// stepUntilSleepIdle runs the post-wake reinit out.
func (h *harness) stepUntilSleepIdle(t *testing.T) {
	t.Helper()
	for i := 0; i < 1000 && h.n.sleep.state != sleepIdle; i++ {
		h.stepMs(t, 1)
	}
	if h.n.sleep.state != sleepIdle {
		t.Fatal("sleep cycle never finished")
	}
}

func TestStaysAwakeInsidePostFrameWindow(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	for !reached(h.clk.t, h.n.nextSleepTime) {
		h.stepMs(t, 1)
	}
	if len(h.slp.suspends) != 0 {
		t.Fatal("suspended before the post-frame window elapsed")
	}

	// Sleep gate open: one scan window later the node suspends.
	h.stepMs(t, 310)
	if len(h.slp.suspends) != 1 {
		t.Fatalf("suspends = %d after scan window, want 1", len(h.slp.suspends))
	}
	if h.slp.suspends[0] != 1700*time.Millisecond {
		t.Errorf("suspend duration %v, want 1.7s", h.slp.suspends[0])
	}
}

func TestSleepCycleHoldsLedAndReinitsRadio(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	h.deliver(message.TypeCommand, 1, senderAddr)
	h.stepMs(t, 200) // let the ack run finish

	var heldDuringSuspend bool
	var levelDuringSuspend gpio.Level
	h.slp.onSuspend = func() {
		heldDuringSuspend = h.pins.Held(26)
		levelDuringSuspend = h.pins.Level(26)
	}

	h.stepUntilSuspends(t, 1)
	if !heldDuringSuspend {
		t.Error("LED pin not latched across the suspend")
	}
	if levelDuringSuspend != on {
		t.Error("latched pin not at the lit level")
	}

	h.stepUntilSleepIdle(t)
	if h.pins.Held(26) {
		t.Error("latch not released after wake")
	}
	if h.pins.Level(26) != on {
		t.Error("LED not re-driven after wake")
	}
	if h.lnk.DeinitCalls != 1 {
		t.Errorf("DeinitCalls = %d, want 1", h.lnk.DeinitCalls)
	}
	if h.lnk.InitCalls != 2 {
		t.Errorf("InitCalls = %d, want boot + reinit", h.lnk.InitCalls)
	}
	if len(h.lnk.Channels) != 2 {
		t.Errorf("channel set %d times, want boot + reinit", len(h.lnk.Channels))
	}
	if !h.lnk.Handler() {
		t.Error("receive handler not re-registered after wake")
	}
	if !h.lnk.PeerExists(senderAddr) {
		t.Error("peer not re-registered after wake")
	}
}

func TestCycleCapForcesExtendedAwake(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	h.stepUntilSuspends(t, 10)
	h.stepUntilSleepIdle(t)

	if !h.n.forceExtendedAwake {
		t.Fatal("cycle cap did not trip the extended awake valve")
	}
	if h.n.consecutiveSleepCycles != 0 {
		t.Errorf("cycle counter = %d after the cap, want 0", h.n.consecutiveSleepCycles)
	}

	// The node has been frameless far longer than the extended window,
	// so the next policy tick ends the period and schedules the grace.
	h.stepMs(t, 1)
	if h.n.forceExtendedAwake {
		t.Fatal("extended awake not released")
	}

	// Grace (100ms) plus scan window (300ms) gate the next suspend.
	h.stepMs(t, 300)
	if len(h.slp.suspends) != 10 {
		t.Errorf("suspended %d times during the grace, want still 10", len(h.slp.suspends))
	}
	h.stepMs(t, 200)
	if len(h.slp.suspends) != 11 {
		t.Errorf("suspends = %d after grace and window, want 11", len(h.slp.suspends))
	}
}

func TestFrameAbortsSleepPrepare(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	h.deliver(message.TypeCommand, 0, senderAddr)
	h.stepMs(t, 200)

	for i := 0; i < 10000 && h.n.sleep.state != sleepPrepare; i++ {
		h.stepMs(t, 1)
	}
	if h.n.sleep.state != sleepPrepare {
		t.Fatal("node never entered the pre-sleep scan window")
	}
	if !h.pins.Held(25) {
		t.Fatal("LED not latched at the start of the scan window")
	}

	h.deliver(message.TypeCommand, 0, senderAddr)
	h.stepMs(t, 2)

	if h.n.sleep.state != sleepIdle {
		t.Fatal("in-flight frame did not cancel the cycle")
	}
	if h.pins.Held(25) {
		t.Error("latch not released on abort")
	}
	if len(h.slp.suspends) != 0 {
		t.Error("node suspended despite the abort")
	}

	// The frame restarted the full post-frame window.
	h.stepMs(t, 2500)
	if len(h.slp.suspends) != 0 {
		t.Error("node slept inside the restarted window")
	}
}

func TestPostWakeReinitFailureSurvivable(t *testing.T) {
	h := newHarness(t)
	h.boot(t)

	h.stepUntilSuspends(t, 1)
	h.lnk.FailInit(1)
	h.stepUntilSleepIdle(t)

	if h.lnk.Up() {
		t.Fatal("link reported up after a failed reinit")
	}

	// The next cycle's reinit recovers the link.
	h.stepUntilSuspends(t, 2)
	h.stepUntilSleepIdle(t)
	if !h.lnk.Up() {
		t.Error("link not recovered by the following cycle")
	}
	if !h.lnk.Handler() {
		t.Error("handler not re-registered on recovery")
	}
}

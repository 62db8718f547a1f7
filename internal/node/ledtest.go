package node

type ledTestState uint8

const (
	testStart ledTestState = iota
	testLedOn
	testLedOff
	testAllOn
	testDone
)

// ledTestFSM runs the one-shot boot self-test: each LED on/off in index
// order, then one flash of the whole bank. Pure elapsed-time
// comparisons, no suspends, no protocol effect.
type ledTestFSM struct {
	state    ledTestState
	index    int
	deadline Ticks
}

func (f *ledTestFSM) done() bool {
	return f.state == testDone
}

func (f *ledTestFSM) step(n *Node, now Ticks) {
	switch f.state {
	case testStart:
		n.log.Infof("led test: starting")
		n.pins.SetOutput(n.cfg.LedPins[0], n.ledOn())
		f.deadline = now.add(n.cfg.Timing.LedTestOnMs)
		f.state = testLedOn

	case testLedOn:
		if !reached(now, f.deadline) {
			return
		}
		n.pins.SetOutput(n.cfg.LedPins[f.index], n.ledOff())
		f.deadline = now.add(n.cfg.Timing.LedTestOffMs)
		f.state = testLedOff

	case testLedOff:
		if !reached(now, f.deadline) {
			return
		}
		f.index++
		if f.index < n.cfg.NumLeds {
			n.pins.SetOutput(n.cfg.LedPins[f.index], n.ledOn())
			f.deadline = now.add(n.cfg.Timing.LedTestOnMs)
			f.state = testLedOn
			return
		}
		for _, pin := range n.cfg.LedPins {
			n.pins.SetOutput(pin, n.ledOn())
		}
		f.deadline = now.add(n.cfg.Timing.LedTestFlashMs)
		f.state = testAllOn

	case testAllOn:
		if !reached(now, f.deadline) {
			return
		}
		for _, pin := range n.cfg.LedPins {
			n.pins.SetOutput(pin, n.ledOff())
		}
		f.state = testDone
		n.log.Infof("led test: complete")

	case testDone:
	}
}

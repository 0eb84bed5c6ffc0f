package device

import (
	"runtime/interrupt"
)

// interruptGate is a sync.Locker that masks interrupts while held. Encoder channels use it so the
// main loop can read a count without an edge handler changing it halfway through
type interruptGate struct {
	state interrupt.State
}

func (g *interruptGate) Lock() {
	g.state = interrupt.Disable()
}

func (g *interruptGate) Unlock() {
	interrupt.Restore(g.state)
}

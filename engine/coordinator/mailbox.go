package coordinator

import (
	"sync/atomic"

	"github.com/soniform/soniform/engine/forces"
)

// forceMailbox is the single-producer/single-consumer handoff between
// the audio-input context and the simulation context. The simulation
// cadence only ever wants the newest forces, so the bound is one
// slot: a Put overwrites (drops) any unread value, which is exactly
// the drop-oldest backpressure policy, and both ends are wait-free.
// Neither side ever blocks and no lock exists for a lower-priority
// thread to hold.
type forceMailbox struct {
	slot    atomic.Pointer[forces.Forces]
	dropped atomic.Uint64
}

// Put publishes the newest forces. Called from the audio context;
// never blocks.
func (m *forceMailbox) Put(f forces.Forces) {
	if prev := m.slot.Swap(&f); prev != nil {
		m.dropped.Add(1)
	}
}

// Take removes and returns the pending forces, or nil when the
// simulation tick has outrun the audio cadence. Called from the
// simulation context; never blocks.
func (m *forceMailbox) Take() *forces.Forces {
	return m.slot.Swap(nil)
}

// Dropped reports how many published values were overwritten before
// the simulation read them.
func (m *forceMailbox) Dropped() uint64 {
	return m.dropped.Load()
}

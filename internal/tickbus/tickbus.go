// Package tickbus implements the machine's single synchronization point: a
// fan-out object the CPU calls once per M-cycle, before every memory
// access, to advance the timer, the PPU, and the OAM DMA engine in fixed
// order.
package tickbus

import (
	"github.com/colinhartley/dmgcore/internal/bus"
	"github.com/colinhartley/dmgcore/internal/ppu"
	"github.com/colinhartley/dmgcore/internal/timer"
)

// TickBus holds non-owning handles to the peripherals it drives.
type TickBus struct {
	Bus   *bus.Bus
	Timer *timer.Timer
	PPU   *ppu.PPU
}

// New constructs a TickBus wired to the machine's existing peripherals.
func New(b *bus.Bus, tm *timer.Timer, p *ppu.PPU) *TickBus {
	return &TickBus{Bus: b, Timer: tm, PPU: p}
}

// Tick implements cpu.Ticker. It must never be reentrant: the CPU calls it
// exactly once per M-cycle before touching memory.
func (t *TickBus) Tick() {
	t.Timer.MCycle(t.Bus)
	t.PPU.MCycle(t.Bus)
	t.Bus.DMAMCycle()
}

package tickbus

import (
	"testing"

	"github.com/colinhartley/dmgcore/internal/bus"
	"github.com/colinhartley/dmgcore/internal/cart"
	"github.com/colinhartley/dmgcore/internal/ppu"
	"github.com/colinhartley/dmgcore/internal/timer"
)

func TestTickAdvancesAllThreePeripherals(t *testing.T) {
	b := bus.New(cart.NewROMOnly(make([]byte, 0x8000)))
	p := ppu.New()
	tb := New(b, timer.New(), p)
	b.Write(0xFF46, 0xC0) // arm OAM DMA

	for i := 0; i < 64; i++ {
		tb.Tick()
	}
	if b.DIV() != 1 {
		t.Fatalf("DIV got %d want 1 after 64 ticks", b.DIV())
	}
	// 64 ticks move the PPU 256 dots into line 0, past the end of Draw.
	if p.CurrentMode() != ppu.HBlank {
		t.Fatalf("PPU mode got %v want HBlank after 64 ticks", p.CurrentMode())
	}
	// The DMA engine left its setup cycle and is still copying.
	if got := b.Read(0xFE00); got != 0xFF {
		t.Fatalf("OAM read got %02x want FF while DMA is active", got)
	}
}

func TestTickDrivesDMAEngine(t *testing.T) {
	b := bus.New(cart.NewROMOnly(make([]byte, 0x8000)))
	tb := New(b, timer.New(), ppu.New())

	b.Write(0xC000, 0x42)
	b.Write(0xFF46, 0xC0)
	for i := 0; i < 161; i++ {
		tb.Tick()
	}
	if got := b.Read(0xFE00); got != 0x42 {
		t.Fatalf("OAM[0] got %02x want 42 after DMA driven through Tick", got)
	}
}

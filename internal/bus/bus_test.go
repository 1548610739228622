package bus

import (
	"testing"

	"github.com/colinhartley/dmgcore/internal/cart"
	"github.com/colinhartley/dmgcore/internal/ppu"
)

func newTestBus() *Bus {
	rom := make([]byte, 0x8000)
	return New(cart.NewROMOnly(rom))
}

func TestIFReadMasksTopThreeBits(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF0F, 0x05)
	if got := b.Read(0xFF0F); got != 0xE5 {
		t.Fatalf("IF got %02x want E5", got)
	}
}

func TestIFWriteReadYieldsORWithE0ForEveryByte(t *testing.T) {
	b := newTestBus()
	for v := 0; v < 256; v++ {
		b.Write(0xFF0F, byte(v))
		if got, want := b.Read(0xFF0F), byte(v)|0xE0; got != want {
			t.Fatalf("IF write %02x read back %02x want %02x", v, got, want)
		}
	}
}

func TestDIVReadsZeroAfterAnyWrite(t *testing.T) {
	b := newTestBus()
	for v := 0; v < 256; v++ {
		b.io[0x04] = 0x5A
		b.Write(0xFF04, byte(v))
		if got := b.Read(0xFF04); got != 0 {
			t.Fatalf("DIV after write %02x got %02x want 0", v, got)
		}
		b.ConsumeDivReset()
	}
}

func TestSTATBit7AlwaysReadsSet(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF41, 0x00)
	if got := b.Read(0xFF41); got&0x80 == 0 {
		t.Fatalf("STAT bit 7 should always read 1, got %02x", got)
	}
}

func TestSTATLowThreeBitsAreReadOnly(t *testing.T) {
	b := newTestBus()
	b.io[0x41] = 0x03 // mode bits as the PPU last reported them
	b.Write(0xFF41, 0xFC)
	if got := b.io[0x41] & 0x07; got != 0x03 {
		t.Fatalf("STAT low bits got %02x want preserved 03", got)
	}
}

func TestDIVWriteResetsToZero(t *testing.T) {
	b := newTestBus()
	b.io[0x04] = 0x42
	b.Write(0xFF04, 0x99)
	if got := b.Read(0xFF04); got != 0 {
		t.Fatalf("DIV after write got %02x want 0", got)
	}
	if !b.ConsumeDivReset() {
		t.Fatalf("expected timer to observe a DIV reset")
	}
}

func TestLYWriteIsIgnored(t *testing.T) {
	b := newTestBus()
	b.io[0x44] = 0x50
	b.Write(0xFF44, 0x00)
	if got := b.Read(0xFF44); got != 0x50 {
		t.Fatalf("LY got %02x want unchanged 50", got)
	}
}

func TestWRAMAndEchoRegionAlias(t *testing.T) {
	b := newTestBus()
	b.Write(0xC010, 0x7A)
	if got := b.Read(0xE010); got != 0x7A {
		t.Fatalf("echo RAM got %02x want 7A", got)
	}
	b.Write(0xE020, 0x5C)
	if got := b.Read(0xC020); got != 0x5C {
		t.Fatalf("WRAM via echo write got %02x want 5C", got)
	}
}

func TestDMACopiesOAMAfterOneCycleDelayAndMasksReadsWhileActive(t *testing.T) {
	b := newTestBus()
	for i := 0; i < 160; i++ {
		b.wram[0x0100+i] = byte(i + 1)
	}
	b.Write(0xFF46, 0xC1) // source 0xC100

	b.DMAMCycle() // arm: one-cycle setup delay, nothing copied yet
	if b.oam[0] != 0 {
		t.Fatalf("DMA copied during its setup delay")
	}
	if got := b.Read(0xFE00); got != 0xFF {
		t.Fatalf("OAM read during active DMA got %02x want FF", got)
	}

	for i := 0; i < 160; i++ {
		b.DMAMCycle()
	}
	if b.dmaActive {
		t.Fatalf("DMA should have completed after 160 M-cycles")
	}
	for i := 0; i < 160; i++ {
		if b.oam[i] != byte(i+1) {
			t.Fatalf("OAM[%d] got %02x want %02x", i, b.oam[i], i+1)
		}
	}
	if got := b.Read(0xFE00); got != 1 {
		t.Fatalf("OAM read after DMA completion got %02x want 01", got)
	}
}

func TestP1ReadsComplementOfPressedBitsInSelectedGroup(t *testing.T) {
	b := newTestBus()
	b.SetButton(JoypA, true)
	b.SetButton(JoypRight, true)

	b.Write(0xFF00, 0x10) // select action buttons (bit 5=0)
	if got := b.Read(0xFF00); got != 0xDE {
		t.Fatalf("P1 action-group read got %02x want DE", got)
	}

	b.Write(0xFF00, 0x20) // select direction buttons (bit 4=0)
	if got := b.Read(0xFF00); got != 0xEE {
		t.Fatalf("P1 direction-group read got %02x want EE", got)
	}
}

func TestVBlankInterruptFiresOnLine144Crossing(t *testing.T) {
	b := newTestBus()
	b.io[0x40] = 0x80 // LCD on
	b.ie = 0xFF
	b.PPUReport(143, ppu.VBlank)
	b.PPUReport(144, ppu.VBlank)
	if b.ActiveInterrupts()&(1<<IntVBlank) == 0 {
		t.Fatalf("expected VBlank interrupt to be requested on 143->144 crossing")
	}
}

func TestSTATInterruptIsLevelTriggeredWithEdgeDetection(t *testing.T) {
	b := newTestBus()
	b.ie = 0xFF
	b.io[0x41] = 0x08 // HBlank STAT interrupt enabled
	b.PPUReport(0, ppu.HBlank)
	if b.ActiveInterrupts()&(1<<IntSTAT) == 0 {
		t.Fatalf("expected STAT interrupt on entering HBlank with its enable bit set")
	}
	b.ClearInterruptFlag(IntSTAT)
	b.PPUReport(0, ppu.HBlank)
	if b.ActiveInterrupts()&(1<<IntSTAT) != 0 {
		t.Fatalf("STAT interrupt should not re-fire while the level stays high")
	}
}

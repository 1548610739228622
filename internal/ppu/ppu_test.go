package ppu

import "testing"

// fakeHost is a minimal Host whose VRAM/OAM/registers are plain fields a
// test can poke directly.
type fakeHost struct {
	vram              [0x2000]byte
	lcdc, scx, scy    byte
	wx, wy, lyc       byte
	bgp, obp0, obp1   byte
	oam               [40][4]byte
	reportedLY        []byte
	reportedMode      []Mode
}

func (h *fakeHost) VRAMByte(addr uint16) byte { return h.vram[addr-0x8000] }
func (h *fakeHost) OAMEntry(i int) (y, x, tile, flags byte) {
	e := h.oam[i]
	return e[0], e[1], e[2], e[3]
}
func (h *fakeHost) LCDC() byte { return h.lcdc }
func (h *fakeHost) SCX() byte  { return h.scx }
func (h *fakeHost) SCY() byte  { return h.scy }
func (h *fakeHost) WX() byte   { return h.wx }
func (h *fakeHost) WY() byte   { return h.wy }
func (h *fakeHost) LYC() byte  { return h.lyc }
func (h *fakeHost) BGP() byte  { return h.bgp }
func (h *fakeHost) OBP0() byte { return h.obp0 }
func (h *fakeHost) OBP1() byte { return h.obp1 }
func (h *fakeHost) PPUReport(ly byte, mode Mode) {
	h.reportedLY = append(h.reportedLY, ly)
	h.reportedMode = append(h.reportedMode, mode)
}

func newEnabledHost() *fakeHost {
	return &fakeHost{lcdc: 0x91, bgp: 0xE4, obp0: 0xE4, obp1: 0xE4}
}

func TestModeSequenceWithinALine(t *testing.T) {
	p := New()
	h := newEnabledHost()

	p.MCycle(h) // xdot=4: OAMScan
	if p.CurrentMode() != OAMScan {
		t.Fatalf("mode got %v want OAMScan", p.CurrentMode())
	}
	for p.xdot < XDotOAMScan {
		p.MCycle(h)
	}
	if p.CurrentMode() != OAMScan && p.CurrentMode() != Draw {
		t.Fatalf("unexpected mode at OAMScan boundary: %v", p.CurrentMode())
	}
	for p.xdot < XDotDraw {
		p.MCycle(h)
	}
	if p.CurrentMode() != Draw && p.CurrentMode() != HBlank {
		t.Fatalf("unexpected mode at Draw boundary: %v", p.CurrentMode())
	}
}

func TestVBlankEntryAtLine144(t *testing.T) {
	p := New()
	h := newEnabledHost()
	for i := 0; i < (XDotMax/4)*LYVBlank; i++ {
		p.MCycle(h)
	}
	if p.LY() != LYVBlank {
		t.Fatalf("LY got %d want %d", p.LY(), LYVBlank)
	}
	if p.CurrentMode() != VBlank {
		t.Fatalf("mode got %v want VBlank", p.CurrentMode())
	}
}

func TestFrameDoneOncePer154Lines(t *testing.T) {
	p := New()
	h := newEnabledHost()
	mcyclesPerFrame := (XDotMax / 4) * LYMax
	for i := 0; i < mcyclesPerFrame-1; i++ {
		p.MCycle(h)
		if p.FrameDone {
			t.Fatalf("frame_done set early at m-cycle %d", i)
		}
	}
	p.MCycle(h)
	if !p.FrameDone {
		t.Fatalf("frame_done should be set after a full 154-line sweep")
	}
	if p.FrameCount != 1 {
		t.Fatalf("frame count got %d want 1", p.FrameCount)
	}
}

func TestLCDOffBlanksFramebuffer(t *testing.T) {
	p := New()
	h := newEnabledHost()
	p.MCycle(h) // LCD on: the PPU is now running
	p.lcd[0] = 2
	h.lcdc = 0x00
	p.MCycle(h) // first M-cycle with the LCD off blanks the framebuffer
	if p.CurrentMode() != HBlank {
		t.Fatalf("disabled LCD should report HBlank, got %v", p.CurrentMode())
	}
	if p.lcd[0] != LCDOffColor {
		t.Fatalf("framebuffer not blanked when the LCD turned off: lcd[0]=%d", p.lcd[0])
	}
}

func TestBackgroundScanlineReadsTilemap(t *testing.T) {
	p := New()
	h := newEnabledHost()
	// Tile 0 at 0x8000: all pixels color index 3 (both bitplanes 0xFF).
	for i := 0; i < 16; i++ {
		h.vram[i] = 0xFF
	}
	// Tilemap at 0x9800 defaults to tile 0 (zero value), which is fine.
	p.renderScanline(h)
	for x := 0; x < ScreenWidth; x++ {
		if p.lcd[x] != 3 {
			t.Fatalf("pixel %d got %d want 3 (tile data all-set)", x, p.lcd[x])
		}
	}
}

func TestObjectPixelWinsOverTransparentBackground(t *testing.T) {
	p := New()
	h := newEnabledHost()
	h.lcdc = 0x93 // LCD on, BG on, OBJ on
	// Background tile 0 is all zero (transparent/color 0) by default VRAM.
	// Object 0: y=16 (covers ly=0), x=8 (covers screen x 0..7), tile 1 all color-3.
	for i := 0; i < 16; i++ {
		h.vram[0x10+i] = 0xFF // tile 1 at 0x8010
	}
	h.oam[0] = [4]byte{16, 8, 1, 0}
	p.renderScanline(h)
	if p.lcd[0] == 0 {
		t.Fatalf("expected object pixel to be visible over transparent background")
	}
}

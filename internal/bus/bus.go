// Package bus implements the unified memory map: it owns every addressable
// byte a CPU instruction can touch (video/work RAM, OAM, the IO register
// file, HRAM, IE) plus the OAM DMA engine and the joypad register, and it
// is the single point that turns cartridge, timer, and PPU activity into
// IE/IF interrupt state.
package bus

import (
	"fmt"
	"io"

	"github.com/colinhartley/dmgcore/internal/cart"
	"github.com/colinhartley/dmgcore/internal/ppu"
)

// Joypad bit layout within the button-state byte: bit=1 means pressed.
const (
	JoypRight  = 1 << 0
	JoypLeft   = 1 << 1
	JoypUp     = 1 << 2
	JoypDown   = 1 << 3
	JoypA      = 1 << 4
	JoypB      = 1 << 5
	JoypSelect = 1 << 6
	JoypStart  = 1 << 7
)

// Interrupt bit numbers within IE/IF.
const (
	IntVBlank = 0
	IntSTAT   = 1
	IntTimer  = 2
	IntSerial = 3
	IntJoypad = 4
)

const (
	ioLen   = 0x80
	hramLen = 0x7F
)

// Bus is the machine's single owner of addressable state.
type Bus struct {
	cart cart.Cartridge

	vram [0x2000]byte // 0x8000-0x9FFF
	wram [0x2000]byte // 0xC000-0xDFFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F
	io   [ioLen]byte  // 0xFF00-0xFF7F
	hram [hramLen]byte
	ie   byte

	buttons byte // bit=1 pressed, layout above

	dmaPending bool // armed, one-cycle setup delay before the first copy
	dmaActive  bool
	dmaSrcHigh byte
	dmaOffset  int

	divResetPending bool
	statLineHigh    bool // previous level of the STAT interrupt OR, for edge detection

	serial io.Writer
}

// New constructs a Bus wired to the given cartridge, with IO registers at
// their documented post-boot values: LCD already on and scanning out the
// tail of the boot frame's vertical blank.
func New(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.io[0x00] = 0xCF // P1: no buttons pressed, both groups selected
	b.io[0x02] = 0x7E
	b.io[0x0F] = 0xE1
	b.io[0x40] = 0x91
	b.io[0x41] = 0x85
	b.io[0x44] = 0x90
	b.io[0x46] = 0xFF
	b.io[0x47] = 0xFC
	return b
}

// SetSerialWriter installs the sink for the SB/SC side-channel; nil
// disables the side-channel entirely. Defaults to nothing until installed.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serial = w }

// SetButton sets or clears one joypad bit.
func (b *Bus) SetButton(bit byte, pressed bool) {
	if pressed {
		b.buttons |= bit
	} else {
		b.buttons &^= bit
	}
}

// Read implements cpu.Memory: the full fall-through address decode, with
// the echo region remapped onto WRAM first.
func (b *Bus) Read(addr uint16) byte {
	if addr >= 0xE000 && addr <= 0xFDFF {
		addr -= 0x2000
	}
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.vram[addr-0x8000]
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFEA0:
		if b.dmaActive {
			return 0xFF
		}
		return b.oam[addr-0xFE00]
	case addr < 0xFF00:
		return 0xFF // unmapped, never fatal
	case addr < 0xFF80:
		return b.readIO(addr - 0xFF00)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.ie
	}
}

// Write implements cpu.Memory.
func (b *Bus) Write(addr uint16, v byte) {
	if addr >= 0xE000 && addr <= 0xFDFF {
		addr -= 0x2000
	}
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, v)
	case addr < 0xA000:
		b.vram[addr-0x8000] = v
	case addr < 0xC000:
		b.cart.Write(addr, v)
	case addr < 0xE000:
		b.wram[addr-0xC000] = v
	case addr < 0xFEA0:
		if !b.dmaActive {
			b.oam[addr-0xFE00] = v
		}
	case addr < 0xFF00:
		// unmapped, dropped
	case addr < 0xFF80:
		b.writeIO(addr-0xFF00, v)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = v
	default:
		b.ie = v
	}
}

func (b *Bus) readIO(off uint16) byte {
	switch off {
	case 0x00:
		return b.readP1()
	case 0x0F:
		return b.io[0x0F] | 0xE0
	case 0x41:
		return b.io[0x41] | 0x80
	default:
		return b.io[off]
	}
}

func (b *Bus) writeIO(off uint16, v byte) {
	switch off {
	case 0x00:
		b.io[0x00] = (b.io[0x00] & 0xCF) | (v & 0x30)
	case 0x02:
		b.io[0x02] = v
		if v == 0x81 {
			if b.serial != nil {
				fmt.Fprintf(b.serial, "%c", b.io[0x01])
			}
			b.io[0x02] = 0
		}
	case 0x04:
		b.io[0x04] = 0
		b.divResetPending = true
	case 0x41:
		b.io[0x41] = (b.io[0x41] & 0x07) | (v & 0xF8)
	case 0x44:
		// LY is read-only.
	case 0x46:
		b.io[0x46] = v
		b.dmaSrcHigh = v
		b.dmaPending = true
		b.dmaActive = false
		b.dmaOffset = 0
	default:
		b.io[off] = v
	}
}

func (b *Bus) readP1() byte {
	sel := b.io[0x00]
	low := byte(0x0F)
	if sel&0x10 == 0 { // direction group selected
		low &^= b.buttons & 0x0F
	}
	if sel&0x20 == 0 { // action group selected
		low &^= (b.buttons >> 4) & 0x0F
	}
	return 0xF0 | (sel & 0x30) | low
}

// ActiveInterrupts implements cpu.InterruptSource.
func (b *Bus) ActiveInterrupts() byte {
	return b.ie & b.io[0x0F] & 0x1F
}

// ClearInterruptFlag implements cpu.InterruptSource.
func (b *Bus) ClearInterruptFlag(bit uint) {
	b.io[0x0F] &^= 1 << bit
}

// RequestInterrupt sets bit n of IF.
func (b *Bus) RequestInterrupt(bit uint) {
	b.io[0x0F] |= 1 << bit
}

// DMAMCycle advances the OAM DMA engine by one M-cycle; the tick bus
// invokes it once per tick.
func (b *Bus) DMAMCycle() {
	if b.dmaPending {
		b.dmaPending = false
		b.dmaActive = true
		b.dmaOffset = 0
		return
	}
	if !b.dmaActive {
		return
	}
	src := uint16(b.dmaSrcHigh)<<8 + uint16(b.dmaOffset)
	b.oam[b.dmaOffset] = b.dmaReadSource(src)
	b.dmaOffset++
	if b.dmaOffset >= 160 {
		b.dmaActive = false
	}
}

// dmaReadSource reads the DMA source byte directly, bypassing the CPU-facing
// OAM 0xFF mask: the DMA engine's own reads are never masked by its own
// activity, only the CPU-visible Read path is.
func (b *Bus) dmaReadSource(addr uint16) byte {
	if addr >= 0xE000 && addr <= 0xFDFF {
		addr -= 0x2000
	}
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.vram[addr-0x8000]
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFEA0:
		return b.oam[addr-0xFE00]
	default:
		return 0xFF
	}
}

// --- timer.Host ---

func (b *Bus) DIV() byte      { return b.io[0x04] }
func (b *Bus) SetDIV(v byte)  { b.io[0x04] = v }
func (b *Bus) TIMA() byte     { return b.io[0x05] }
func (b *Bus) SetTIMA(v byte) { b.io[0x05] = v }
func (b *Bus) TMA() byte      { return b.io[0x06] }
func (b *Bus) TAC() byte      { return b.io[0x07] }

func (b *Bus) ConsumeDivReset() bool {
	v := b.divResetPending
	b.divResetPending = false
	return v
}

// --- ppu.Host ---

func (b *Bus) VRAMByte(addr uint16) byte { return b.vram[addr-0x8000] }

func (b *Bus) OAMEntry(i int) (y, x, tile, flags byte) {
	off := i * 4
	return b.oam[off], b.oam[off+1], b.oam[off+2], b.oam[off+3]
}

func (b *Bus) LCDC() byte { return b.io[0x40] }
func (b *Bus) SCY() byte  { return b.io[0x42] }
func (b *Bus) SCX() byte  { return b.io[0x43] }
func (b *Bus) LYC() byte  { return b.io[0x45] }
func (b *Bus) BGP() byte  { return b.io[0x47] }
func (b *Bus) OBP0() byte { return b.io[0x48] }
func (b *Bus) OBP1() byte { return b.io[0x49] }
func (b *Bus) WY() byte   { return b.io[0x4A] }
func (b *Bus) WX() byte   { return b.io[0x4B] }

// PPUReport is the PPU's per-M-cycle callback: it mirrors LY/STAT and
// raises VBlank (edge-triggered) and STAT (level-triggered) interrupts.
func (b *Bus) PPUReport(ly byte, mode ppu.Mode) {
	prevLY := b.io[0x44]
	b.io[0x44] = ly

	coincidence := ly == b.io[0x45]
	stat := b.io[0x41]
	stat = (stat &^ 0x07) | byte(mode)
	if coincidence {
		stat |= 0x04
	}
	b.io[0x41] = stat

	if prevLY < 144 && ly == 144 {
		b.RequestInterrupt(IntVBlank)
	}

	statHigh := (coincidence && stat&0x40 != 0) ||
		(mode == ppu.HBlank && stat&0x08 != 0) ||
		(mode == ppu.VBlank && stat&0x10 != 0) ||
		(mode == ppu.OAMScan && stat&0x20 != 0)
	if statHigh && !b.statLineHigh {
		b.RequestInterrupt(IntSTAT)
	}
	b.statLineHigh = statHigh
}

package cart

import "log"

// ROMOnly implements a simple cartridge without MBC or external RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000: // ROM fixed area
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF: // no external RAM
		return 0xFF
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	// No MBC registers and no external RAM: every write here is an
	// unsupported cartridge write, logged and dropped rather than fatal.
	log.Printf("cart: unsupported write %02X to %04X on ROM-only cartridge", value, addr)
}

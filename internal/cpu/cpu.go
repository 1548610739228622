// Package cpu implements the Sharp SM83 instruction set: decoding,
// M-cycle-accurate bus timing, and interrupt/HALT/STOP handling.
package cpu

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// Memory is the CPU's view of the address space. Reads and writes here are
// bare accesses; CPU code never calls these directly except from inside the
// tick-then-access helpers below.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Ticker advances every peripheral by exactly one M-cycle. The CPU calls it
// once before each memory access so cycle accuracy holds by construction.
type Ticker interface {
	Tick()
}

// InterruptSource exposes the interrupt-enable/interrupt-flag state the CPU
// polls at instruction boundaries.
type InterruptSource interface {
	ActiveInterrupts() byte // IE & IF
	ClearInterruptFlag(bit uint)
}

// CPU holds SM83 register state and drives decode/execute against a Memory
// and Ticker supplied at construction.
type CPU struct {
	A, B, C, D, E, H, L byte
	F                   byte
	SP, PC              uint16

	IME       bool
	eiPending bool
	halted    bool
	haltBug   bool
	stopped   bool

	Mem  Memory
	Tick Ticker
	Ints InterruptSource

	TotalMCycles int64
	FrameMCycles int64
}

// New constructs a CPU wired to the given memory, tick bus, and interrupt
// source. Registers are left zeroed; call one of the Reset* methods to
// establish a known power-on state.
func New(mem Memory, tick Ticker, ints InterruptSource) *CPU {
	return &CPU{Mem: mem, Tick: tick, Ints: ints}
}

// ResetDMG0 establishes the post-boot register state this core boots
// into directly (no boot ROM is modeled): the values the DMG-0 boot ROM
// leaves behind the instant the CPU starts executing the cartridge at
// 0x0100.
func (c *CPU) ResetDMG0() {
	c.A, c.F = 0x01, 0x00
	c.B, c.C = 0xFF, 0x13
	c.D, c.E = 0x00, 0xC1
	c.H, c.L = 0x84, 0x03
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.eiPending = false
	c.halted = false
	c.haltBug = false
	c.stopped = false
}

func (c *CPU) flag(mask byte) bool { return c.F&mask != 0 }

func (c *CPU) setFlag(mask byte, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
	c.F &= 0xF0
}

// Z, N, HF, Cy read the four condition flags.
func (c *CPU) Z() bool  { return c.flag(flagZ) }
func (c *CPU) N() bool  { return c.flag(flagN) }
func (c *CPU) HF() bool { return c.flag(flagH) }
func (c *CPU) Cy() bool { return c.flag(flagC) }

func (c *CPU) reg8(r Reg8) byte {
	switch r {
	case RegA:
		return c.A
	case RegB:
		return c.B
	case RegC:
		return c.C
	case RegD:
		return c.D
	case RegE:
		return c.E
	case RegH:
		return c.H
	case RegL:
		return c.L
	}
	return 0
}

func (c *CPU) setReg8(r Reg8, v byte) {
	switch r {
	case RegA:
		c.A = v
	case RegB:
		c.B = v
	case RegC:
		c.C = v
	case RegD:
		c.D = v
	case RegE:
		c.E = v
	case RegH:
		c.H = v
	case RegL:
		c.L = v
	}
}

func (c *CPU) reg16(r Reg16) uint16 {
	switch r {
	case RegBC:
		return uint16(c.B)<<8 | uint16(c.C)
	case RegDE:
		return uint16(c.D)<<8 | uint16(c.E)
	case RegHL:
		return uint16(c.H)<<8 | uint16(c.L)
	case RegSP:
		return c.SP
	case RegAF:
		return uint16(c.A)<<8 | uint16(c.F)
	}
	return 0
}

func (c *CPU) setReg16(r Reg16, v uint16) {
	hi, lo := byte(v>>8), byte(v)
	switch r {
	case RegBC:
		c.B, c.C = hi, lo
	case RegDE:
		c.D, c.E = hi, lo
	case RegHL:
		c.H, c.L = hi, lo
	case RegSP:
		c.SP = v
	case RegAF:
		c.A, c.F = hi, lo&0xF0
	}
}

// --- tick-then-access memory helpers ---

func (c *CPU) readCycle(addr uint16) byte {
	c.Tick.Tick()
	c.TotalMCycles++
	c.FrameMCycles++
	return c.Mem.Read(addr)
}

func (c *CPU) writeCycle(addr uint16, v byte) {
	c.Tick.Tick()
	c.TotalMCycles++
	c.FrameMCycles++
	c.Mem.Write(addr, v)
}

// internalDelay spends one M-cycle with no memory access (the tick bus
// still advances timers/PPU/DMA).
func (c *CPU) internalDelay() {
	c.Tick.Tick()
	c.TotalMCycles++
	c.FrameMCycles++
}

func (c *CPU) fetch8() byte {
	v := c.readCycle(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	return v
}

// fetchOperand8 is used for the trailing bytes of an instruction (after the
// opcode itself), which always advance PC normally.
func (c *CPU) fetchOperand8() byte {
	v := c.readCycle(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchOperand16() uint16 {
	lo := c.fetchOperand8()
	hi := c.fetchOperand8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.writeCycle(c.SP, byte(v>>8))
	c.SP--
	c.writeCycle(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.readCycle(c.SP)
	c.SP++
	hi := c.readCycle(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// interruptVector maps a bit index (0..4) to its service address.
var interruptVector = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// Step executes exactly one instruction (or one M-cycle of HALT, or an
// interrupt service sequence), mirroring the per-instruction contract: poll
// interrupts, resolve EI-pending, fetch, dispatch.
func (c *CPU) Step() {
	if c.stopped {
		return
	}

	active := c.Ints.ActiveInterrupts() & 0x1F
	if (c.IME || c.halted) && active != 0 {
		c.halted = false
		if c.IME {
			bit := lowestSetBit(active)
			c.Ints.ClearInterruptFlag(uint(bit))
			c.IME = false
			c.internalDelay()
			c.internalDelay()
			c.push16(c.PC)
			c.PC = interruptVector[bit]
			c.internalDelay()
			return
		}
	}

	if c.halted {
		c.internalDelay()
		return
	}

	if c.eiPending {
		c.IME = true
		c.eiPending = false
	}

	opcode := c.fetch8()
	var instr *instruction
	if opcode == 0xCB {
		sub := c.fetchOperand8()
		instr = &cbTable[sub]
	} else {
		instr = &opcodeTable[opcode]
	}
	instr.handler(c, instr)
}

func lowestSetBit(b byte) int {
	for i := 0; i < 8; i++ {
		if b&(1<<uint(i)) != 0 {
			return i
		}
	}
	return 0
}

func (c *CPU) checkCond(cc Cond) bool {
	switch cc {
	case CondNZ:
		return !c.Z()
	case CondZ:
		return c.Z()
	case CondNC:
		return !c.Cy()
	case CondC:
		return c.Cy()
	}
	return true
}

// getOperand8 reads an 8-bit value from any operand kind valid as a byte
// source. SP+e8 and 16-bit operands are not handled here; handlers that use
// them read the registers directly.
func (c *CPU) getOperand8(op Operand) byte {
	switch o := op.(type) {
	case Reg8:
		return c.reg8(o)
	case IndHL:
		addr := c.reg16(RegHL)
		v := c.readCycle(addr)
		c.applyHLPost(o.Post)
		return v
	case ImmU8:
		return c.fetchOperand8()
	case MemImm8:
		off := c.fetchOperand8()
		return c.readCycle(0xFF00 + uint16(off))
	case MemImm16:
		addr := c.fetchOperand16()
		return c.readCycle(addr)
	case MemC:
		return c.readCycle(0xFF00 + uint16(c.C))
	}
	return 0
}

func (c *CPU) setOperand8(op Operand, v byte) {
	switch o := op.(type) {
	case Reg8:
		c.setReg8(o, v)
	case IndHL:
		addr := c.reg16(RegHL)
		c.writeCycle(addr, v)
		c.applyHLPost(o.Post)
	case MemImm8:
		off := c.fetchOperand8()
		c.writeCycle(0xFF00+uint16(off), v)
	case MemImm16:
		addr := c.fetchOperand16()
		c.writeCycle(addr, v)
	case MemC:
		c.writeCycle(0xFF00+uint16(c.C), v)
	}
}

func (c *CPU) applyHLPost(post HLPost) {
	switch post {
	case HLInc:
		c.setReg16(RegHL, c.reg16(RegHL)+1)
	case HLDec:
		c.setReg16(RegHL, c.reg16(RegHL)-1)
	}
}

// DebugState is the Game-Boy-Doctor-style snapshot used by the optional
// trace surface (see internal/emu).
type DebugState struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	PCMem                  [4]byte
}

// Snapshot reads the four bytes at PC without ticking the bus, for tracing.
func (c *CPU) Snapshot(peek func(addr uint16) byte) DebugState {
	var pcmem [4]byte
	for i := range pcmem {
		pcmem[i] = peek(c.PC + uint16(i))
	}
	return DebugState{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC, PCMem: pcmem,
	}
}

// Halted, Stopped, IMEEnabled report CPU run-state for tests and tracing.
func (c *CPU) Halted() bool     { return c.halted }
func (c *CPU) Stopped() bool    { return c.stopped }
func (c *CPU) IMEEnabled() bool { return c.IME }

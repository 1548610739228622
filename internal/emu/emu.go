// Package emu provides the machine glue: it constructs and wires the Bus,
// Timer, PPU, TickBus, and CPU around a loaded cartridge, and drives the
// outer per-frame/per-instruction loop.
package emu

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/colinhartley/dmgcore/internal/bus"
	"github.com/colinhartley/dmgcore/internal/cart"
	"github.com/colinhartley/dmgcore/internal/cpu"
	"github.com/colinhartley/dmgcore/internal/ppu"
	"github.com/colinhartley/dmgcore/internal/tickbus"
	"github.com/colinhartley/dmgcore/internal/timer"
)

// Button enumerates the eight joypad inputs.
type Button int

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

var buttonBits = [...]byte{
	bus.JoypRight, bus.JoypLeft, bus.JoypUp, bus.JoypDown,
	bus.JoypA, bus.JoypB, bus.JoypSelect, bus.JoypStart,
}

// mcyclesPerFrame is one full 154-line PPU sweep at 4 dots per M-cycle.
const mcyclesPerFrame = (ppu.XDotMax / 4) * ppu.LYMax

// DebugState is the register snapshot behind the Game-Boy-Doctor-style
// trace line both cmd/ tools print.
type DebugState = cpu.DebugState

// Machine owns the whole wired core: cartridge, bus, timer, PPU, tick bus,
// and CPU. Peripherals hold non-owning handles back to the bus; the Machine
// is the sole owner of all of them.
type Machine struct {
	cfg Config

	cart cart.Cartridge
	bus  *bus.Bus
	tm   *timer.Timer
	ppu  *ppu.PPU
	tb   *tickbus.TickBus
	cpu  *cpu.CPU

	romPath string
}

// New constructs an unloaded Machine; call LoadCartridge or LoadROMFromFile
// before stepping it.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// LoadCartridge wires a fresh Bus/Timer/PPU/TickBus/CPU around rom and
// resets both CPU and PPU to the DMG-0 post-boot state. boot is accepted
// for interface symmetry with a future boot-ROM path but unused: this core
// always starts post-boot rather than executing one.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	if len(rom) == 0 {
		return fmt.Errorf("emu: empty ROM")
	}
	_ = boot
	m.cart = cart.NewCartridge(rom)
	m.bus = bus.New(m.cart)
	m.tm = timer.New()
	m.ppu = ppu.New()
	m.tb = tickbus.New(m.bus, m.tm, m.ppu)
	m.cpu = cpu.New(m.bus, m.tb, m.bus)
	m.cpu.ResetDMG0()
	m.ppu.ResetDMG0()
	return nil
}

// LoadROMFromFile reads rom from disk and wires it via LoadCartridge.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data, nil); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// ROMPath returns the path LoadROMFromFile loaded from, or "" if the
// cartridge was constructed directly from bytes.
func (m *Machine) ROMPath() string { return m.romPath }

// SetSerialWriter installs the sink for the SB/SC side-channel. Passing nil
// silences it.
func (m *Machine) SetSerialWriter(w io.Writer) { m.bus.SetSerialWriter(w) }

// SetButton presses or releases one joypad button; callable at any
// instruction boundary.
func (m *Machine) SetButton(b Button, pressed bool) {
	m.bus.SetButton(buttonBits[b], pressed)
}

// StepInstruction retires exactly one CPU instruction.
func (m *Machine) StepInstruction() {
	if m.cfg.Trace {
		log.Print(TraceLine(m.cpu.Snapshot(m.bus.Read)))
	}
	m.cpu.Step()
}

// StepFrame runs instructions until the PPU signals frame_done, or until an
// M-cycle safety cap is hit to guarantee progress while the LCD is
// disabled. frame_done is cleared on entry, so each call waits for a fresh
// frame; it is left set on return when the frame completed.
func (m *Machine) StepFrame() {
	m.ppu.FrameDone = false
	m.cpu.FrameMCycles = 0
	start := m.cpu.TotalMCycles
	for !m.ppu.FrameDone {
		m.StepInstruction()
		if m.cpu.TotalMCycles-start > 2*mcyclesPerFrame {
			break
		}
	}
}

// FrameDone reports whether the PPU has completed a full 154-line sweep
// since the last time the flag was cleared.
func (m *Machine) FrameDone() bool { return m.ppu.FrameDone }

// ClearFrameDone acknowledges a completed frame for callers driving the
// machine through StepInstruction rather than StepFrame.
func (m *Machine) ClearFrameDone() { m.ppu.FrameDone = false }

// FrameCount returns the number of full frames the PPU has produced.
func (m *Machine) FrameCount() int64 { return m.ppu.FrameCount }

// ResetFrameCounter zeroes the PPU frame counter and the CPU's
// current-frame M-cycle accumulator.
func (m *Machine) ResetFrameCounter() {
	m.ppu.FrameCount = 0
	m.cpu.FrameMCycles = 0
}

// StepFrameNoRender steps exactly like StepFrame; it exists as its own
// entry point for callers — such as the conformance harness — that only
// care about serial output and never read the framebuffer.
func (m *Machine) StepFrameNoRender() {
	m.StepFrame()
}

// Framebuffer copies the PPU's indexed 160x144 buffer into dest as RGBA8
// using palette, clipping to w x h.
func (m *Machine) Framebuffer(dest []byte, w, h int, palette ppu.RGBAPalette) {
	m.ppu.LCDToRGBA(dest, w, h, palette)
}

// DebugState returns a trace snapshot for the instruction about to execute.
func (m *Machine) DebugState() DebugState {
	return m.cpu.Snapshot(m.bus.Read)
}

// SaveBattery returns a copy of the cartridge's external RAM, or nil if it
// has none or doesn't implement cart.BatteryBacked.
func (m *Machine) SaveBattery() []byte {
	if bb, ok := m.cart.(cart.BatteryBacked); ok {
		return bb.SaveRAM()
	}
	return nil
}

// LoadBattery restores previously saved external RAM into the cartridge, if
// it supports battery-backed RAM.
func (m *Machine) LoadBattery(data []byte) {
	if bb, ok := m.cart.(cart.BatteryBacked); ok {
		bb.LoadRAM(data)
	}
}

// TraceLine formats a DebugState in the canonical Game-Boy-Doctor layout so
// every tool printing traces produces diff-identical output.
func TraceLine(s DebugState) string {
	return fmt.Sprintf(
		"A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X PCMEM:%02X,%02X,%02X,%02X",
		s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L, s.SP, s.PC,
		s.PCMem[0], s.PCMem[1], s.PCMem[2], s.PCMem[3],
	)
}

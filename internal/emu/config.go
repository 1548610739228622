package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace bool // log a Game-Boy-Doctor-style line per instruction
}

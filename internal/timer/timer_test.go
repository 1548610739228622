package timer

import "testing"

type fakeHost struct {
	div, tima, tma, tac byte
	ifRequested         []uint
	divReset            bool
}

func (f *fakeHost) DIV() byte      { return f.div }
func (f *fakeHost) SetDIV(v byte)  { f.div = v }
func (f *fakeHost) TIMA() byte     { return f.tima }
func (f *fakeHost) SetTIMA(v byte) { f.tima = v }
func (f *fakeHost) TMA() byte      { return f.tma }
func (f *fakeHost) TAC() byte      { return f.tac }
func (f *fakeHost) RequestInterrupt(bit uint) {
	f.ifRequested = append(f.ifRequested, bit)
}
func (f *fakeHost) ConsumeDivReset() bool {
	v := f.divReset
	f.divReset = false
	return v
}

func tick(tm *Timer, h *fakeHost, n int) {
	for i := 0; i < n; i++ {
		tm.MCycle(h)
	}
}

func TestDIVIncrementsEvery64MCycles(t *testing.T) {
	tm := New()
	h := &fakeHost{}
	tick(tm, h, 63)
	if h.div != 0 {
		t.Fatalf("DIV incremented early: %d", h.div)
	}
	tick(tm, h, 1)
	if h.div != 1 {
		t.Fatalf("DIV got %d want 1", h.div)
	}
	tick(tm, h, 64*255)
	if h.div != 0 {
		t.Fatalf("DIV should wrap at 256: got %d", h.div)
	}
}

func TestTIMAOverflowReloadsFromTMAAndRaisesInterrupt(t *testing.T) {
	tm := New()
	h := &fakeHost{tac: 0x05, tima: 0xFF, tma: 0x7A} // enabled, 4 M-cycles/tick
	tick(tm, h, 4)
	if h.tima != 0x7A {
		t.Fatalf("TIMA after overflow got %02x want 7A", h.tima)
	}
	if len(h.ifRequested) != 1 || h.ifRequested[0] != 2 {
		t.Fatalf("expected one TIMER interrupt request, got %v", h.ifRequested)
	}
}

func TestDIVWriteResetsBothSubdividers(t *testing.T) {
	tm := New()
	h := &fakeHost{tac: 0x05}
	tick(tm, h, 3) // advance count_tima partway (3 of 4)
	h.divReset = true
	tick(tm, h, 1) // consumes the reset; should not itself complete the TIMA tick
	if h.tima != 0 {
		t.Fatalf("TIMA should not have ticked across a DIV reset: %02x", h.tima)
	}
	tick(tm, h, 3)
	if h.tima != 0 {
		t.Fatalf("count_tima should have restarted from zero: tima=%02x", h.tima)
	}
	tick(tm, h, 1)
	if h.tima != 1 {
		t.Fatalf("TIMA should tick once count_tima restarts and reaches its limit: %02x", h.tima)
	}
}

func TestTimerDisabledNeverTicksTIMA(t *testing.T) {
	tm := New()
	h := &fakeHost{tac: 0x00, tima: 0}
	tick(tm, h, 1000)
	if h.tima != 0 {
		t.Fatalf("TIMA ticked while TAC enable bit clear: %02x", h.tima)
	}
}

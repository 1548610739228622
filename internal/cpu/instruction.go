package cpu

// instruction is one row of the 512-entry (256 base + 256 CB-prefixed)
// decode table: a mnemonic for tracing, a handler, up to two operands, and
// the M-cycle budget for the taken and not-taken control-flow paths (equal
// for any non-branching instruction). Handlers tick the bus once per memory
// access or internal delay, so the budgets here are the contract the
// handlers must realize, not a count that is charged up front.
type instruction struct {
	mnemonic  string
	handler   func(c *CPU, ins *instruction)
	op1, op2  Operand
	cycles    int
	altCycles int
}

var opcodeTable [256]instruction
var cbTable [256]instruction

func init() {
	buildBaseTable()
	buildCBTable()
}

package cpu

// The base and CB-prefixed opcode tables are built once at package init
// from the standard SM83 block structure (opcode bits 7..6 pick a block,
// 5..3 a row, 2..0 a column) rather than written out as 512 hand-authored
// literals: blocks 1 and 2 of the base table and the whole CB table are
// fully regular, so a loop reproduces them exactly and a reviewer can check
// the loop against the one irregular block (3) and the scattered block 0
// instead of auditing 512 rows by eye.

var r8ByIndex = [8]Operand{
	Reg8(RegB), Reg8(RegC), Reg8(RegD), Reg8(RegE),
	Reg8(RegH), Reg8(RegL), IndHL{HLNone}, Reg8(RegA),
}

var rpByIndex = [4]Reg16{RegBC, RegDE, RegHL, RegSP}
var rp2ByIndex = [4]Reg16{RegBC, RegDE, RegHL, RegAF}
var ccByIndex = [4]Cond{CondNZ, CondZ, CondNC, CondC}

func buildBaseTable() {
	buildBlock0()
	buildBlock1()
	buildBlock2()
	buildBlock3()
}

// Block 1: 0x40-0x7F, LD r,r' over all 8x8 combinations except 0x76 (HALT).
func buildBlock1() {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			opcode := 0x40 + y*8 + x
			if opcode == 0x76 {
				continue
			}
			cycles := 1
			if x == 6 || y == 6 {
				cycles = 2
			}
			opcodeTable[opcode] = instruction{"LD", opLd8, r8ByIndex[y], r8ByIndex[x], cycles, cycles}
		}
	}
	opcodeTable[0x76] = instruction{"HALT", opHalt, None{}, None{}, 1, 1}
}

// Block 2: 0x80-0xBF, ALU A,r' in the fixed order ADD/ADC/SUB/SBC/AND/XOR/OR/CP.
func buildBlock2() {
	handlers := [8]func(c *CPU, ins *instruction){opAdd, opAdc, opSub, opSbc, opAnd, opXor, opOr, opCp}
	names := [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}
	for row := 0; row < 8; row++ {
		for x := 0; x < 8; x++ {
			opcode := 0x80 + row*8 + x
			cycles := 1
			if x == 6 {
				cycles = 2
			}
			opcodeTable[opcode] = instruction{names[row], handlers[row], None{}, r8ByIndex[x], cycles, cycles}
		}
	}
}

// Block 0: 0x00-0x3F. Irregular enough to list explicitly.
func buildBlock0() {
	set := func(op byte, mnemonic string, h func(*CPU, *instruction), op1, op2 Operand, cyc, alt int) {
		opcodeTable[op] = instruction{mnemonic, h, op1, op2, cyc, alt}
	}
	set(0x00, "NOP", opNop, None{}, None{}, 1, 1)
	set(0x01, "LD", opLD16Imm, RegBC, ImmU16{}, 3, 3)
	set(0x02, "LD", opLdMemBCA, None{}, None{}, 2, 2)
	set(0x03, "INC", opInc16, RegBC, None{}, 2, 2)
	set(0x04, "INC", opInc8, Reg8(RegB), None{}, 1, 1)
	set(0x05, "DEC", opDec8, Reg8(RegB), None{}, 1, 1)
	set(0x06, "LD", opLd8, Reg8(RegB), ImmU8{}, 2, 2)
	set(0x07, "RLCA", opRlca, None{}, None{}, 1, 1)
	set(0x08, "LD", opLdMemSP, None{}, None{}, 5, 5)
	set(0x09, "ADD", opAddHL, None{}, RegBC, 2, 2)
	set(0x0A, "LD", opLdAMemBC, None{}, None{}, 2, 2)
	set(0x0B, "DEC", opDec16, RegBC, None{}, 2, 2)
	set(0x0C, "INC", opInc8, Reg8(RegC), None{}, 1, 1)
	set(0x0D, "DEC", opDec8, Reg8(RegC), None{}, 1, 1)
	set(0x0E, "LD", opLd8, Reg8(RegC), ImmU8{}, 2, 2)
	set(0x0F, "RRCA", opRrca, None{}, None{}, 1, 1)

	set(0x10, "STOP", opStop, None{}, None{}, 1, 1)
	set(0x11, "LD", opLD16Imm, RegDE, ImmU16{}, 3, 3)
	set(0x12, "LD", opLdMemDEA, None{}, None{}, 2, 2)
	set(0x13, "INC", opInc16, RegDE, None{}, 2, 2)
	set(0x14, "INC", opInc8, Reg8(RegD), None{}, 1, 1)
	set(0x15, "DEC", opDec8, Reg8(RegD), None{}, 1, 1)
	set(0x16, "LD", opLd8, Reg8(RegD), ImmU8{}, 2, 2)
	set(0x17, "RLA", opRla, None{}, None{}, 1, 1)
	set(0x18, "JR", opJR, CondNone, None{}, 3, 3)
	set(0x19, "ADD", opAddHL, None{}, RegDE, 2, 2)
	set(0x1A, "LD", opLdAMemDE, None{}, None{}, 2, 2)
	set(0x1B, "DEC", opDec16, RegDE, None{}, 2, 2)
	set(0x1C, "INC", opInc8, Reg8(RegE), None{}, 1, 1)
	set(0x1D, "DEC", opDec8, Reg8(RegE), None{}, 1, 1)
	set(0x1E, "LD", opLd8, Reg8(RegE), ImmU8{}, 2, 2)
	set(0x1F, "RRA", opRra, None{}, None{}, 1, 1)

	set(0x20, "JR", opJR, CondNZ, None{}, 3, 2)
	set(0x21, "LD", opLD16Imm, RegHL, ImmU16{}, 3, 3)
	set(0x22, "LD", opLd8, IndHL{HLInc}, Reg8(RegA), 2, 2)
	set(0x23, "INC", opInc16, RegHL, None{}, 2, 2)
	set(0x24, "INC", opInc8, Reg8(RegH), None{}, 1, 1)
	set(0x25, "DEC", opDec8, Reg8(RegH), None{}, 1, 1)
	set(0x26, "LD", opLd8, Reg8(RegH), ImmU8{}, 2, 2)
	set(0x27, "DAA", opDaa, None{}, None{}, 1, 1)
	set(0x28, "JR", opJR, CondZ, None{}, 3, 2)
	set(0x29, "ADD", opAddHL, None{}, RegHL, 2, 2)
	set(0x2A, "LD", opLd8, Reg8(RegA), IndHL{HLInc}, 2, 2)
	set(0x2B, "DEC", opDec16, RegHL, None{}, 2, 2)
	set(0x2C, "INC", opInc8, Reg8(RegL), None{}, 1, 1)
	set(0x2D, "DEC", opDec8, Reg8(RegL), None{}, 1, 1)
	set(0x2E, "LD", opLd8, Reg8(RegL), ImmU8{}, 2, 2)
	set(0x2F, "CPL", opCpl, None{}, None{}, 1, 1)

	set(0x30, "JR", opJR, CondNC, None{}, 3, 2)
	set(0x31, "LD", opLD16Imm, RegSP, ImmU16{}, 3, 3)
	set(0x32, "LD", opLd8, IndHL{HLDec}, Reg8(RegA), 2, 2)
	set(0x33, "INC", opInc16, RegSP, None{}, 2, 2)
	set(0x34, "INC", opInc8, IndHL{HLNone}, None{}, 3, 3)
	set(0x35, "DEC", opDec8, IndHL{HLNone}, None{}, 3, 3)
	set(0x36, "LD", opLd8, IndHL{HLNone}, ImmU8{}, 3, 3)
	set(0x37, "SCF", opScf, None{}, None{}, 1, 1)
	set(0x38, "JR", opJR, CondC, None{}, 3, 2)
	set(0x39, "ADD", opAddHL, None{}, RegSP, 2, 2)
	set(0x3A, "LD", opLd8, Reg8(RegA), IndHL{HLDec}, 2, 2)
	set(0x3B, "DEC", opDec16, RegSP, None{}, 2, 2)
	set(0x3C, "INC", opInc8, Reg8(RegA), None{}, 1, 1)
	set(0x3D, "DEC", opDec8, Reg8(RegA), None{}, 1, 1)
	set(0x3E, "LD", opLd8, Reg8(RegA), ImmU8{}, 2, 2)
	set(0x3F, "CCF", opCcf, None{}, None{}, 1, 1)
}

// Block 3: 0xC0-0xFF. Irregular control flow, stack ops, and the n-variants
// of the ALU block; listed explicitly.
func buildBlock3() {
	set := func(op byte, mnemonic string, h func(*CPU, *instruction), op1, op2 Operand, cyc, alt int) {
		opcodeTable[op] = instruction{mnemonic, h, op1, op2, cyc, alt}
	}
	set(0xC0, "RET", opRetCC, CondNZ, None{}, 5, 2)
	set(0xC1, "POP", opPop, RegBC, None{}, 3, 3)
	set(0xC2, "JP", opJP, CondNZ, None{}, 4, 3)
	set(0xC3, "JP", opJP, CondNone, None{}, 4, 4)
	set(0xC4, "CALL", opCall, CondNZ, None{}, 6, 3)
	set(0xC5, "PUSH", opPush, RegBC, None{}, 4, 4)
	set(0xC6, "ADD", opAdd, None{}, ImmU8{}, 2, 2)
	set(0xC7, "RST", opRst, Lit3(0), None{}, 4, 4)
	set(0xC8, "RET", opRetCC, CondZ, None{}, 5, 2)
	set(0xC9, "RET", opRet, None{}, None{}, 4, 4)
	set(0xCA, "JP", opJP, CondZ, None{}, 4, 3)
	set(0xCB, "PREFIX", opNop, None{}, None{}, 0, 0) // never dispatched; Step() special-cases 0xCB
	set(0xCC, "CALL", opCall, CondZ, None{}, 6, 3)
	set(0xCD, "CALL", opCall, CondNone, None{}, 6, 6)
	set(0xCE, "ADC", opAdc, None{}, ImmU8{}, 2, 2)
	set(0xCF, "RST", opRst, Lit3(1), None{}, 4, 4)

	set(0xD0, "RET", opRetCC, CondNC, None{}, 5, 2)
	set(0xD1, "POP", opPop, RegDE, None{}, 3, 3)
	set(0xD2, "JP", opJP, CondNC, None{}, 4, 3)
	set(0xD3, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xD4, "CALL", opCall, CondNC, None{}, 6, 3)
	set(0xD5, "PUSH", opPush, RegDE, None{}, 4, 4)
	set(0xD6, "SUB", opSub, None{}, ImmU8{}, 2, 2)
	set(0xD7, "RST", opRst, Lit3(2), None{}, 4, 4)
	set(0xD8, "RET", opRetCC, CondC, None{}, 5, 2)
	set(0xD9, "RETI", opReti, None{}, None{}, 4, 4)
	set(0xDA, "JP", opJP, CondC, None{}, 4, 3)
	set(0xDB, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xDC, "CALL", opCall, CondC, None{}, 6, 3)
	set(0xDD, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xDE, "SBC", opSbc, None{}, ImmU8{}, 2, 2)
	set(0xDF, "RST", opRst, Lit3(3), None{}, 4, 4)

	set(0xE0, "LDH", opLd8, MemImm8{}, Reg8(RegA), 3, 3)
	set(0xE1, "POP", opPop, RegHL, None{}, 3, 3)
	set(0xE2, "LD", opLd8, MemC{}, Reg8(RegA), 2, 2)
	set(0xE3, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xE4, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xE5, "PUSH", opPush, RegHL, None{}, 4, 4)
	set(0xE6, "AND", opAnd, None{}, ImmU8{}, 2, 2)
	set(0xE7, "RST", opRst, Lit3(4), None{}, 4, 4)
	set(0xE8, "ADD", opAddSpE8, None{}, None{}, 4, 4)
	set(0xE9, "JP", opJPHL, None{}, None{}, 1, 1)
	set(0xEA, "LD", opLd8, MemImm16{}, Reg8(RegA), 4, 4)
	set(0xEB, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xEC, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xED, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xEE, "XOR", opXor, None{}, ImmU8{}, 2, 2)
	set(0xEF, "RST", opRst, Lit3(5), None{}, 4, 4)

	set(0xF0, "LDH", opLd8, Reg8(RegA), MemImm8{}, 3, 3)
	set(0xF1, "POP", opPop, RegAF, None{}, 3, 3)
	set(0xF2, "LD", opLd8, Reg8(RegA), MemC{}, 2, 2)
	set(0xF3, "DI", opDi, None{}, None{}, 1, 1)
	set(0xF4, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xF5, "PUSH", opPush, RegAF, None{}, 4, 4)
	set(0xF6, "OR", opOr, None{}, ImmU8{}, 2, 2)
	set(0xF7, "RST", opRst, Lit3(6), None{}, 4, 4)
	set(0xF8, "LD", opLdHlSpE8, None{}, None{}, 3, 3)
	set(0xF9, "LD", opLdSpHl, None{}, None{}, 2, 2)
	set(0xFA, "LD", opLd8, Reg8(RegA), MemImm16{}, 4, 4)
	set(0xFB, "EI", opEi, None{}, None{}, 1, 1)
	set(0xFC, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xFD, "ILLEGAL", opIllegal, None{}, None{}, 1, 1)
	set(0xFE, "CP", opCp, None{}, ImmU8{}, 2, 2)
	set(0xFF, "RST", opRst, Lit3(7), None{}, 4, 4)
}

// buildCBTable fills all 256 CB-prefixed rows: eight 8-wide bands of
// rotate/shift/swap (0x00-0x3F), then BIT/RES/SET over the remaining three
// bands, each addressing bit (opcode>>3)&7 of r8ByIndex[opcode&7].
func buildCBTable() {
	shiftHandlers := [8]func(*CPU, *instruction){opRlc, opRrc, opRl, opRr, opSla, opSra, opSwap, opSrl}
	shiftNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	for row := 0; row < 8; row++ {
		for x := 0; x < 8; x++ {
			opcode := row*8 + x
			cycles := 2
			if x == 6 {
				cycles = 4
			}
			cbTable[opcode] = instruction{shiftNames[row], shiftHandlers[row], r8ByIndex[x], None{}, cycles, cycles}
		}
	}
	for bit := 0; bit < 8; bit++ {
		for x := 0; x < 8; x++ {
			cycles := 2
			if x == 6 {
				cycles = 3
			}
			cbTable[0x40+bit*8+x] = instruction{"BIT", opBit, Lit3(bit), r8ByIndex[x], cycles, cycles}

			cycles2 := 2
			if x == 6 {
				cycles2 = 4
			}
			cbTable[0x80+bit*8+x] = instruction{"RES", opRes, Lit3(bit), r8ByIndex[x], cycles2, cycles2}
			cbTable[0xC0+bit*8+x] = instruction{"SET", opSet, Lit3(bit), r8ByIndex[x], cycles2, cycles2}
		}
	}
}

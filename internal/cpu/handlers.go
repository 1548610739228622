package cpu

import "log"

// This file holds the instruction handlers the opcode tables dispatch to.
// Each handler reads its operands through the generic get/set helpers where
// possible, so cycle accounting stays centralized in cpu.go's tick-then-
// access primitives; control-flow and 16-bit handlers touch registers
// directly since their operand shapes fall outside the 8-bit get/set model.

func opLd8(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op2)
	c.setOperand8(ins.op1, v)
}

func opLdAMemBC(c *CPU, ins *instruction) { c.A = c.readCycle(c.reg16(RegBC)) }
func opLdMemBCA(c *CPU, ins *instruction) { c.writeCycle(c.reg16(RegBC), c.A) }
func opLdAMemDE(c *CPU, ins *instruction) { c.A = c.readCycle(c.reg16(RegDE)) }
func opLdMemDEA(c *CPU, ins *instruction) { c.writeCycle(c.reg16(RegDE), c.A) }

func opLD16Imm(c *CPU, ins *instruction) {
	v := c.fetchOperand16()
	c.setReg16(ins.op1.(Reg16), v)
}

func opLdMemSP(c *CPU, ins *instruction) {
	addr := c.fetchOperand16()
	c.writeCycle(addr, byte(c.SP))
	c.writeCycle(addr+1, byte(c.SP>>8))
}

func opLdSpHl(c *CPU, ins *instruction) {
	c.SP = c.reg16(RegHL)
	c.internalDelay()
}

func opLdHlSpE8(c *CPU, ins *instruction) {
	e := int8(c.fetchOperand8())
	res, h, cy := addSPSigned(c.SP, e)
	c.setReg16(RegHL, res)
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
	c.internalDelay()
}

func opAddSpE8(c *CPU, ins *instruction) {
	e := int8(c.fetchOperand8())
	res, h, cy := addSPSigned(c.SP, e)
	c.SP = res
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
	c.internalDelay()
	c.internalDelay()
}

func opAddHL(c *CPU, ins *instruction) {
	r := ins.op2.(Reg16)
	res, h, cy := add16(c.reg16(RegHL), c.reg16(r))
	c.setReg16(RegHL, res)
	c.setFlag(flagN, false)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
	c.internalDelay()
}

func opInc16(c *CPU, ins *instruction) {
	r := ins.op1.(Reg16)
	c.setReg16(r, c.reg16(r)+1)
	c.internalDelay()
}

func opDec16(c *CPU, ins *instruction) {
	r := ins.op1.(Reg16)
	c.setReg16(r, c.reg16(r)-1)
	c.internalDelay()
}

func opInc8(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, z, h := inc8(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, z)
	c.setFlag(flagN, false)
	c.setFlag(flagH, h)
}

func opDec8(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, z, h := dec8(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, z)
	c.setFlag(flagN, true)
	c.setFlag(flagH, h)
}

func opAdd(c *CPU, ins *instruction) { aluOp(c, ins, add8) }
func opAdc(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op2)
	res, z, n, h, cy := adc8(c.A, v, c.Cy())
	c.A = res
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}
func opSub(c *CPU, ins *instruction) { aluOp(c, ins, sub8) }
func opSbc(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op2)
	res, z, n, h, cy := sbc8(c.A, v, c.Cy())
	c.A = res
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}
func opAnd(c *CPU, ins *instruction) { aluOp(c, ins, and8) }
func opOr(c *CPU, ins *instruction)  { aluOp(c, ins, or8) }
func opXor(c *CPU, ins *instruction) { aluOp(c, ins, xor8) }

func opCp(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op2)
	_, z, n, h, cy := sub8(c.A, v)
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}

func aluOp(c *CPU, ins *instruction, f func(a, b byte) (byte, bool, bool, bool, bool)) {
	v := c.getOperand8(ins.op2)
	res, z, n, h, cy := f(c.A, v)
	c.A = res
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}

func opRlca(c *CPU, ins *instruction) {
	res, cy := rlc(c.A)
	c.A = res
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRrca(c *CPU, ins *instruction) {
	res, cy := rrc(c.A)
	c.A = res
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRla(c *CPU, ins *instruction) {
	res, cy := rl(c.A, c.Cy())
	c.A = res
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRra(c *CPU, ins *instruction) {
	res, cy := rr(c.A, c.Cy())
	c.A = res
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}

func opRlc(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := rlc(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRrc(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := rrc(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRl(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := rl(v, c.Cy())
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opRr(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := rr(v, c.Cy())
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opSla(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := sla(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opSra(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := sra(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opSrl(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res, cy := srl(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, cy)
}
func opSwap(c *CPU, ins *instruction) {
	v := c.getOperand8(ins.op1)
	res := swap(v)
	c.setOperand8(ins.op1, res)
	c.setFlag(flagZ, res == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
}

func opBit(c *CPU, ins *instruction) {
	bit := byte(ins.op1.(Lit3))
	v := c.getOperand8(ins.op2)
	c.setFlag(flagZ, v&(1<<bit) == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, true)
}
func opRes(c *CPU, ins *instruction) {
	bit := byte(ins.op1.(Lit3))
	v := c.getOperand8(ins.op2)
	c.setOperand8(ins.op2, v&^(1<<bit))
}
func opSet(c *CPU, ins *instruction) {
	bit := byte(ins.op1.(Lit3))
	v := c.getOperand8(ins.op2)
	c.setOperand8(ins.op2, v|(1<<bit))
}

func opJP(c *CPU, ins *instruction) {
	addr := c.fetchOperand16()
	if c.checkCond(ins.op1.(Cond)) {
		c.PC = addr
		c.internalDelay()
	}
}

func opJPHL(c *CPU, ins *instruction) {
	c.PC = c.reg16(RegHL)
}

func opJR(c *CPU, ins *instruction) {
	e := int8(c.fetchOperand8())
	if c.checkCond(ins.op1.(Cond)) {
		c.PC = uint16(int32(c.PC) + int32(e))
		c.internalDelay()
	}
}

func opCall(c *CPU, ins *instruction) {
	addr := c.fetchOperand16()
	if c.checkCond(ins.op1.(Cond)) {
		c.internalDelay()
		c.push16(c.PC)
		c.PC = addr
	}
}

func opRet(c *CPU, ins *instruction) {
	c.PC = c.pop16()
	c.internalDelay()
}

func opRetCC(c *CPU, ins *instruction) {
	c.internalDelay()
	if c.checkCond(ins.op1.(Cond)) {
		c.PC = c.pop16()
		c.internalDelay()
	}
}

func opReti(c *CPU, ins *instruction) {
	c.PC = c.pop16()
	c.IME = true
	c.internalDelay()
}

func opRst(c *CPU, ins *instruction) {
	n := byte(ins.op1.(Lit3))
	c.internalDelay()
	c.push16(c.PC)
	c.PC = uint16(n) * 8
}

func opPush(c *CPU, ins *instruction) {
	c.internalDelay()
	c.push16(c.reg16(ins.op1.(Reg16)))
}

func opPop(c *CPU, ins *instruction) {
	c.setReg16(ins.op1.(Reg16), c.pop16())
}

func opNop(c *CPU, ins *instruction) {}

func opHalt(c *CPU, ins *instruction) {
	active := c.Ints.ActiveInterrupts() & 0x1F
	if !c.IME && active != 0 {
		c.haltBug = true
	} else {
		c.halted = true
	}
}

func opStop(c *CPU, ins *instruction) {
	c.PC++ // skip STOP's mandatory (and ignored) padding byte
	c.stopped = true
}

func opDi(c *CPU, ins *instruction) {
	c.IME = false
	c.eiPending = false
}

func opEi(c *CPU, ins *instruction) {
	c.eiPending = true
}

func opCpl(c *CPU, ins *instruction) {
	c.A = ^c.A
	c.setFlag(flagN, true)
	c.setFlag(flagH, true)
}

func opCcf(c *CPU, ins *instruction) {
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, !c.Cy())
}

func opScf(c *CPU, ins *instruction) {
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, true)
}

func opDaa(c *CPU, ins *instruction) {
	res, z, h, cy := daa(c.A, c.N(), c.HF(), c.Cy())
	c.A = res
	c.setFlag(flagZ, z)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}

// opIllegal models the real-hardware-lockup opcodes as a logged one-cycle
// no-op rather than modeling the lockup (see the error-handling design for
// illegal opcodes).
func opIllegal(c *CPU, ins *instruction) {
	log.Printf("cpu: illegal opcode at PC=%04X, treated as no-op", c.PC-1)
}

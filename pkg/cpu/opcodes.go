package cpu

// opcode describes one of the 256 possible opcode bytes: its addressing
// mode, base cycle cost, and the function that carries it out. Unofficial
// opcodes share a single NOP-equivalent entry; this core never decodes
// their real (and often unstable) hardware behavior.
type opcode struct {
	name    string
	mode    AddressingMode
	cycles  uint8
	execute func(c *CPU, mode AddressingMode) uint8
}

func extraCycle(crossed bool) uint8 {
	if crossed {
		return 1
	}
	return 0
}

// opcodeTable is indexed directly by opcode byte, matching the 256-entry
// layout real 6502 decode ROMs use rather than a sparse map.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opcode {
	var t [256]opcode
	for i := range t {
		t[i] = opcode{"NOP", Implied, 2, opNOP}
	}

	set := func(op uint8, name string, mode AddressingMode, cycles uint8, fn func(c *CPU, mode AddressingMode) uint8) {
		t[op] = opcode{name, mode, cycles, fn}
	}

	// ADC
	set(0x69, "ADC", Immediate, 2, opADC)
	set(0x65, "ADC", ZeroPage, 3, opADC)
	set(0x75, "ADC", ZeroPageX, 4, opADC)
	set(0x6D, "ADC", Absolute, 4, opADC)
	set(0x7D, "ADC", AbsoluteX, 4, opADC)
	set(0x79, "ADC", AbsoluteY, 4, opADC)
	set(0x61, "ADC", IndexedIndirect, 6, opADC)
	set(0x71, "ADC", IndirectIndexed, 5, opADC)

	// AND
	set(0x29, "AND", Immediate, 2, opAND)
	set(0x25, "AND", ZeroPage, 3, opAND)
	set(0x35, "AND", ZeroPageX, 4, opAND)
	set(0x2D, "AND", Absolute, 4, opAND)
	set(0x3D, "AND", AbsoluteX, 4, opAND)
	set(0x39, "AND", AbsoluteY, 4, opAND)
	set(0x21, "AND", IndexedIndirect, 6, opAND)
	set(0x31, "AND", IndirectIndexed, 5, opAND)

	// ASL
	set(0x0A, "ASL", Accumulator, 2, opASL)
	set(0x06, "ASL", ZeroPage, 5, opASL)
	set(0x16, "ASL", ZeroPageX, 6, opASL)
	set(0x0E, "ASL", Absolute, 6, opASL)
	set(0x1E, "ASL", AbsoluteX, 7, opASL)

	// Branches
	set(0x90, "BCC", Relative, 2, opBCC)
	set(0xB0, "BCS", Relative, 2, opBCS)
	set(0xF0, "BEQ", Relative, 2, opBEQ)
	set(0x30, "BMI", Relative, 2, opBMI)
	set(0xD0, "BNE", Relative, 2, opBNE)
	set(0x10, "BPL", Relative, 2, opBPL)
	set(0x50, "BVC", Relative, 2, opBVC)
	set(0x70, "BVS", Relative, 2, opBVS)

	// BIT
	set(0x24, "BIT", ZeroPage, 3, opBIT)
	set(0x2C, "BIT", Absolute, 4, opBIT)

	// BRK
	set(0x00, "BRK", Implied, 7, opBRK)

	// Flag clear/set
	set(0x18, "CLC", Implied, 2, opCLC)
	set(0xD8, "CLD", Implied, 2, opCLD)
	set(0x58, "CLI", Implied, 2, opCLI)
	set(0xB8, "CLV", Implied, 2, opCLV)
	set(0x38, "SEC", Implied, 2, opSEC)
	set(0xF8, "SED", Implied, 2, opSED)
	set(0x78, "SEI", Implied, 2, opSEI)

	// CMP
	set(0xC9, "CMP", Immediate, 2, opCMP)
	set(0xC5, "CMP", ZeroPage, 3, opCMP)
	set(0xD5, "CMP", ZeroPageX, 4, opCMP)
	set(0xCD, "CMP", Absolute, 4, opCMP)
	set(0xDD, "CMP", AbsoluteX, 4, opCMP)
	set(0xD9, "CMP", AbsoluteY, 4, opCMP)
	set(0xC1, "CMP", IndexedIndirect, 6, opCMP)
	set(0xD1, "CMP", IndirectIndexed, 5, opCMP)

	// CPX / CPY
	set(0xE0, "CPX", Immediate, 2, opCPX)
	set(0xE4, "CPX", ZeroPage, 3, opCPX)
	set(0xEC, "CPX", Absolute, 4, opCPX)
	set(0xC0, "CPY", Immediate, 2, opCPY)
	set(0xC4, "CPY", ZeroPage, 3, opCPY)
	set(0xCC, "CPY", Absolute, 4, opCPY)

	// DEC / DEX / DEY
	set(0xC6, "DEC", ZeroPage, 5, opDEC)
	set(0xD6, "DEC", ZeroPageX, 6, opDEC)
	set(0xCE, "DEC", Absolute, 6, opDEC)
	set(0xDE, "DEC", AbsoluteX, 7, opDEC)
	set(0xCA, "DEX", Implied, 2, opDEX)
	set(0x88, "DEY", Implied, 2, opDEY)

	// EOR
	set(0x49, "EOR", Immediate, 2, opEOR)
	set(0x45, "EOR", ZeroPage, 3, opEOR)
	set(0x55, "EOR", ZeroPageX, 4, opEOR)
	set(0x4D, "EOR", Absolute, 4, opEOR)
	set(0x5D, "EOR", AbsoluteX, 4, opEOR)
	set(0x59, "EOR", AbsoluteY, 4, opEOR)
	set(0x41, "EOR", IndexedIndirect, 6, opEOR)
	set(0x51, "EOR", IndirectIndexed, 5, opEOR)

	// INC / INX / INY
	set(0xE6, "INC", ZeroPage, 5, opINC)
	set(0xF6, "INC", ZeroPageX, 6, opINC)
	set(0xEE, "INC", Absolute, 6, opINC)
	set(0xFE, "INC", AbsoluteX, 7, opINC)
	set(0xE8, "INX", Implied, 2, opINX)
	set(0xC8, "INY", Implied, 2, opINY)

	// JMP / JSR
	set(0x4C, "JMP", Absolute, 3, opJMP)
	set(0x6C, "JMP", Indirect, 5, opJMP)
	set(0x20, "JSR", Absolute, 6, opJSR)

	// LDA / LDX / LDY
	set(0xA9, "LDA", Immediate, 2, opLDA)
	set(0xA5, "LDA", ZeroPage, 3, opLDA)
	set(0xB5, "LDA", ZeroPageX, 4, opLDA)
	set(0xAD, "LDA", Absolute, 4, opLDA)
	set(0xBD, "LDA", AbsoluteX, 4, opLDA)
	set(0xB9, "LDA", AbsoluteY, 4, opLDA)
	set(0xA1, "LDA", IndexedIndirect, 6, opLDA)
	set(0xB1, "LDA", IndirectIndexed, 5, opLDA)

	set(0xA2, "LDX", Immediate, 2, opLDX)
	set(0xA6, "LDX", ZeroPage, 3, opLDX)
	set(0xB6, "LDX", ZeroPageY, 4, opLDX)
	set(0xAE, "LDX", Absolute, 4, opLDX)
	set(0xBE, "LDX", AbsoluteY, 4, opLDX)

	set(0xA0, "LDY", Immediate, 2, opLDY)
	set(0xA4, "LDY", ZeroPage, 3, opLDY)
	set(0xB4, "LDY", ZeroPageX, 4, opLDY)
	set(0xAC, "LDY", Absolute, 4, opLDY)
	set(0xBC, "LDY", AbsoluteX, 4, opLDY)

	// LSR
	set(0x4A, "LSR", Accumulator, 2, opLSR)
	set(0x46, "LSR", ZeroPage, 5, opLSR)
	set(0x56, "LSR", ZeroPageX, 6, opLSR)
	set(0x4E, "LSR", Absolute, 6, opLSR)
	set(0x5E, "LSR", AbsoluteX, 7, opLSR)

	// NOP (official)
	set(0xEA, "NOP", Implied, 2, opNOP)

	// ORA
	set(0x09, "ORA", Immediate, 2, opORA)
	set(0x05, "ORA", ZeroPage, 3, opORA)
	set(0x15, "ORA", ZeroPageX, 4, opORA)
	set(0x0D, "ORA", Absolute, 4, opORA)
	set(0x1D, "ORA", AbsoluteX, 4, opORA)
	set(0x19, "ORA", AbsoluteY, 4, opORA)
	set(0x01, "ORA", IndexedIndirect, 6, opORA)
	set(0x11, "ORA", IndirectIndexed, 5, opORA)

	// Stack
	set(0x48, "PHA", Implied, 3, opPHA)
	set(0x08, "PHP", Implied, 3, opPHP)
	set(0x68, "PLA", Implied, 4, opPLA)
	set(0x28, "PLP", Implied, 4, opPLP)

	// ROL / ROR
	set(0x2A, "ROL", Accumulator, 2, opROL)
	set(0x26, "ROL", ZeroPage, 5, opROL)
	set(0x36, "ROL", ZeroPageX, 6, opROL)
	set(0x2E, "ROL", Absolute, 6, opROL)
	set(0x3E, "ROL", AbsoluteX, 7, opROL)

	set(0x6A, "ROR", Accumulator, 2, opROR)
	set(0x66, "ROR", ZeroPage, 5, opROR)
	set(0x76, "ROR", ZeroPageX, 6, opROR)
	set(0x6E, "ROR", Absolute, 6, opROR)
	set(0x7E, "ROR", AbsoluteX, 7, opROR)

	// RTI / RTS
	set(0x40, "RTI", Implied, 6, opRTI)
	set(0x60, "RTS", Implied, 6, opRTS)

	// SBC
	set(0xE9, "SBC", Immediate, 2, opSBC)
	set(0xE5, "SBC", ZeroPage, 3, opSBC)
	set(0xF5, "SBC", ZeroPageX, 4, opSBC)
	set(0xED, "SBC", Absolute, 4, opSBC)
	set(0xFD, "SBC", AbsoluteX, 4, opSBC)
	set(0xF9, "SBC", AbsoluteY, 4, opSBC)
	set(0xE1, "SBC", IndexedIndirect, 6, opSBC)
	set(0xF1, "SBC", IndirectIndexed, 5, opSBC)

	// STA / STX / STY
	set(0x85, "STA", ZeroPage, 3, opSTA)
	set(0x95, "STA", ZeroPageX, 4, opSTA)
	set(0x8D, "STA", Absolute, 4, opSTA)
	set(0x9D, "STA", AbsoluteX, 5, opSTA)
	set(0x99, "STA", AbsoluteY, 5, opSTA)
	set(0x81, "STA", IndexedIndirect, 6, opSTA)
	set(0x91, "STA", IndirectIndexed, 6, opSTA)

	set(0x86, "STX", ZeroPage, 3, opSTX)
	set(0x96, "STX", ZeroPageY, 4, opSTX)
	set(0x8E, "STX", Absolute, 4, opSTX)

	set(0x84, "STY", ZeroPage, 3, opSTY)
	set(0x94, "STY", ZeroPageX, 4, opSTY)
	set(0x8C, "STY", Absolute, 4, opSTY)

	// Register transfers
	set(0xAA, "TAX", Implied, 2, opTAX)
	set(0xA8, "TAY", Implied, 2, opTAY)
	set(0xBA, "TSX", Implied, 2, opTSX)
	set(0x8A, "TXA", Implied, 2, opTXA)
	set(0x9A, "TXS", Implied, 2, opTXS)
	set(0x98, "TYA", Implied, 2, opTYA)

	return t
}

func opADC(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.adc(value)
	return extraCycle(crossed)
}

func (c *CPU) adc(value uint8) {
	carryIn := uint16(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	result := uint16(c.A) + uint16(value) + carryIn
	c.setFlag(FlagCarry, result > 0xFF)
	c.setFlag(FlagOverflow, (^(uint16(c.A)^uint16(value))&(uint16(c.A)^result))&0x80 != 0)
	c.A = uint8(result)
	c.updateZN(c.A)
}

func opSBC(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.adc(^value)
	return extraCycle(crossed)
}

func opAND(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.A &= value
	c.updateZN(c.A)
	return extraCycle(crossed)
}

func opORA(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.A |= value
	c.updateZN(c.A)
	return extraCycle(crossed)
}

func opEOR(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.A ^= value
	c.updateZN(c.A)
	return extraCycle(crossed)
}

func opASL(c *CPU, mode AddressingMode) uint8 {
	if mode == Accumulator {
		c.setFlag(FlagCarry, c.A&0x80 != 0)
		c.A <<= 1
		c.updateZN(c.A)
		return 0
	}
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr)
	c.setFlag(FlagCarry, v&0x80 != 0)
	v <<= 1
	c.Bus.Write(addr, v)
	c.updateZN(v)
	return 0
}

func opLSR(c *CPU, mode AddressingMode) uint8 {
	if mode == Accumulator {
		c.setFlag(FlagCarry, c.A&0x01 != 0)
		c.A >>= 1
		c.updateZN(c.A)
		return 0
	}
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr)
	c.setFlag(FlagCarry, v&0x01 != 0)
	v >>= 1
	c.Bus.Write(addr, v)
	c.updateZN(v)
	return 0
}

func opROL(c *CPU, mode AddressingMode) uint8 {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	if mode == Accumulator {
		carryOut := c.A&0x80 != 0
		c.A = c.A<<1 | carryIn
		c.setFlag(FlagCarry, carryOut)
		c.updateZN(c.A)
		return 0
	}
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr)
	carryOut := v&0x80 != 0
	v = v<<1 | carryIn
	c.Bus.Write(addr, v)
	c.setFlag(FlagCarry, carryOut)
	c.updateZN(v)
	return 0
}

func opROR(c *CPU, mode AddressingMode) uint8 {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 0x80
	}
	if mode == Accumulator {
		carryOut := c.A&0x01 != 0
		c.A = c.A>>1 | carryIn
		c.setFlag(FlagCarry, carryOut)
		c.updateZN(c.A)
		return 0
	}
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr)
	carryOut := v&0x01 != 0
	v = v>>1 | carryIn
	c.Bus.Write(addr, v)
	c.setFlag(FlagCarry, carryOut)
	c.updateZN(v)
	return 0
}

func (c *CPU) compare(reg, value uint8) {
	result := reg - value
	c.setFlag(FlagCarry, reg >= value)
	c.setFlag(FlagZero, result == 0)
	c.setFlag(FlagNegative, result&0x80 != 0)
}

func opCMP(c *CPU, mode AddressingMode) uint8 {
	value, crossed := c.load(mode)
	c.compare(c.A, value)
	return extraCycle(crossed)
}

func opCPX(c *CPU, mode AddressingMode) uint8 {
	value, _ := c.load(mode)
	c.compare(c.X, value)
	return 0
}

func opCPY(c *CPU, mode AddressingMode) uint8 {
	value, _ := c.load(mode)
	c.compare(c.Y, value)
	return 0
}

func opBIT(c *CPU, mode AddressingMode) uint8 {
	value, _ := c.load(mode)
	c.setFlag(FlagZero, c.A&value == 0)
	c.setFlag(FlagOverflow, value&0x40 != 0)
	c.setFlag(FlagNegative, value&0x80 != 0)
	return 0
}

func opDEC(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr) - 1
	c.Bus.Write(addr, v)
	c.updateZN(v)
	return 0
}

func opINC(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	v := c.Bus.Read(addr) + 1
	c.Bus.Write(addr, v)
	c.updateZN(v)
	return 0
}

func opDEX(c *CPU, _ AddressingMode) uint8 { c.X--; c.updateZN(c.X); return 0 }
func opDEY(c *CPU, _ AddressingMode) uint8 { c.Y--; c.updateZN(c.Y); return 0 }
func opINX(c *CPU, _ AddressingMode) uint8 { c.X++; c.updateZN(c.X); return 0 }
func opINY(c *CPU, _ AddressingMode) uint8 { c.Y++; c.updateZN(c.Y); return 0 }

func opLDA(c *CPU, mode AddressingMode) uint8 {
	v, crossed := c.load(mode)
	c.A = v
	c.updateZN(c.A)
	return extraCycle(crossed)
}

func opLDX(c *CPU, mode AddressingMode) uint8 {
	v, crossed := c.load(mode)
	c.X = v
	c.updateZN(c.X)
	return extraCycle(crossed)
}

func opLDY(c *CPU, mode AddressingMode) uint8 {
	v, crossed := c.load(mode)
	c.Y = v
	c.updateZN(c.Y)
	return extraCycle(crossed)
}

func opSTA(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	c.Bus.Write(addr, c.A)
	return 0
}

func opSTX(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	c.Bus.Write(addr, c.X)
	return 0
}

func opSTY(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	c.Bus.Write(addr, c.Y)
	return 0
}

func opTAX(c *CPU, _ AddressingMode) uint8 { c.X = c.A; c.updateZN(c.X); return 0 }
func opTAY(c *CPU, _ AddressingMode) uint8 { c.Y = c.A; c.updateZN(c.Y); return 0 }
func opTXA(c *CPU, _ AddressingMode) uint8 { c.A = c.X; c.updateZN(c.A); return 0 }
func opTYA(c *CPU, _ AddressingMode) uint8 { c.A = c.Y; c.updateZN(c.A); return 0 }
func opTSX(c *CPU, _ AddressingMode) uint8 { c.X = c.SP; c.updateZN(c.X); return 0 }
func opTXS(c *CPU, _ AddressingMode) uint8 { c.SP = c.X; return 0 } // flags unaffected

func opPHA(c *CPU, _ AddressingMode) uint8 { c.push(c.A); return 0 }
func opPHP(c *CPU, _ AddressingMode) uint8 { c.push(c.P | FlagBreak | FlagUnused); return 0 }

func opPLA(c *CPU, _ AddressingMode) uint8 {
	c.A = c.pop()
	c.updateZN(c.A)
	return 0
}

func opPLP(c *CPU, _ AddressingMode) uint8 {
	c.P = c.pop()&^(FlagBreak) | FlagUnused
	return 0
}

func opJMP(c *CPU, mode AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(mode)
	c.PC = addr
	return 0
}

func opJSR(c *CPU, _ AddressingMode) uint8 {
	addr, _ := c.effectiveAddress(Absolute)
	c.pushWord(c.PC - 1)
	c.PC = addr
	return 0
}

func opRTS(c *CPU, _ AddressingMode) uint8 {
	c.PC = c.popWord() + 1
	return 0
}

func opRTI(c *CPU, _ AddressingMode) uint8 {
	c.P = c.pop()&^(FlagBreak) | FlagUnused
	c.PC = c.popWord()
	return 0
}

func opBRK(c *CPU, _ AddressingMode) uint8 {
	c.PC++ // BRK is a 2-byte instruction; the second byte is a padding/signature byte
	c.serviceInterrupt(vectorIRQ, true)
	return 0
}

func opBCC(c *CPU, _ AddressingMode) uint8 { return c.branch(!c.getFlag(FlagCarry)) }
func opBCS(c *CPU, _ AddressingMode) uint8 { return c.branch(c.getFlag(FlagCarry)) }
func opBEQ(c *CPU, _ AddressingMode) uint8 { return c.branch(c.getFlag(FlagZero)) }
func opBNE(c *CPU, _ AddressingMode) uint8 { return c.branch(!c.getFlag(FlagZero)) }
func opBMI(c *CPU, _ AddressingMode) uint8 { return c.branch(c.getFlag(FlagNegative)) }
func opBPL(c *CPU, _ AddressingMode) uint8 { return c.branch(!c.getFlag(FlagNegative)) }
func opBVC(c *CPU, _ AddressingMode) uint8 { return c.branch(!c.getFlag(FlagOverflow)) }
func opBVS(c *CPU, _ AddressingMode) uint8 { return c.branch(c.getFlag(FlagOverflow)) }

func opCLC(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagCarry, false); return 0 }
func opCLD(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagDecimal, false); return 0 }
func opCLI(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagInterrupt, false); return 0 }
func opCLV(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagOverflow, false); return 0 }
func opSEC(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagCarry, true); return 0 }
func opSED(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagDecimal, true); return 0 }
func opSEI(c *CPU, _ AddressingMode) uint8 { c.setFlag(FlagInterrupt, true); return 0 }

func opNOP(c *CPU, _ AddressingMode) uint8 { return 0 }

package cpu

import "fmt"

// operandLength returns how many bytes of operand follow the opcode byte
// for the given addressing mode.
func operandLength(mode AddressingMode) int {
	switch mode {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY,
		IndexedIndirect, IndirectIndexed, Relative:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	}
	return 0
}

// Disassemble decodes the instruction at addr into a single line of text,
// in the traditional "AAAA  OP XX XX  MNEMONIC OPERAND" trace format used by
// nestest-style logs. It does not mutate CPU state; it reads through the bus
// the same way Step does.
func (c *CPU) Disassemble(addr uint16) string {
	op := c.Bus.Read(addr)
	info := &opcodeTable[op]
	length := operandLength(info.mode)

	var operand string
	switch length {
	case 0:
		operand = ""
	case 1:
		b := c.Bus.Read(addr + 1)
		operand = formatOperand(info.mode, addr, b, 0)
	case 2:
		lo := c.Bus.Read(addr + 1)
		hi := c.Bus.Read(addr + 2)
		operand = formatOperand(info.mode, addr, lo, hi)
	}

	bytes := fmt.Sprintf("%02X", op)
	for i := 1; i <= length; i++ {
		bytes += fmt.Sprintf(" %02X", c.Bus.Read(addr+uint16(i)))
	}

	if operand == "" {
		return fmt.Sprintf("%04X  %-8s %s", addr, bytes, info.name)
	}
	return fmt.Sprintf("%04X  %-8s %s %s", addr, bytes, info.name, operand)
}

func formatOperand(mode AddressingMode, addr uint16, lo, hi uint8) string {
	switch mode {
	case Immediate:
		return fmt.Sprintf("#$%02X", lo)
	case ZeroPage:
		return fmt.Sprintf("$%02X", lo)
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", lo)
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", lo)
	case Absolute:
		return fmt.Sprintf("$%02X%02X", hi, lo)
	case AbsoluteX:
		return fmt.Sprintf("$%02X%02X,X", hi, lo)
	case AbsoluteY:
		return fmt.Sprintf("$%02X%02X,Y", hi, lo)
	case Indirect:
		return fmt.Sprintf("($%02X%02X)", hi, lo)
	case IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", lo)
	case IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", lo)
	case Relative:
		target := uint16(int32(addr) + 2 + int32(int8(lo)))
		return fmt.Sprintf("$%04X", target)
	}
	return ""
}

package cpu

// AddressingMode identifies how an opcode's operand byte(s) map to an
// effective address or immediate value.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
	Relative
)

// effectiveAddress computes the operand address for mode, advancing PC past
// the operand bytes. pageCrossed reports whether an indexed access crossed a
// page boundary, which costs the CPU an extra cycle on read instructions.
func (c *CPU) effectiveAddress(mode AddressingMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case ZeroPage:
		addr = uint16(c.Bus.Read(c.PC))
		c.PC++

	case ZeroPageX:
		addr = uint16(c.Bus.Read(c.PC)+c.X) & 0xFF
		c.PC++

	case ZeroPageY:
		addr = uint16(c.Bus.Read(c.PC)+c.Y) & 0xFF
		c.PC++

	case Absolute:
		addr = c.read16(c.PC)
		c.PC += 2

	case AbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		pageCrossed = (base & 0xFF00) != (addr & 0xFF00)

	case AbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		pageCrossed = (base & 0xFF00) != (addr & 0xFF00)

	case Indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		// The indirect-JMP page-boundary bug: when ptr's low byte is $FF,
		// the high byte of the target wraps within the same page instead
		// of crossing into the next one.
		lo := uint16(c.Bus.Read(ptr))
		hi := uint16(c.Bus.Read((ptr & 0xFF00) | ((ptr + 1) & 0x00FF)))
		addr = hi<<8 | lo

	case IndexedIndirect:
		ptr := (c.Bus.Read(c.PC) + c.X) & 0xFF
		c.PC++
		lo := uint16(c.Bus.Read(uint16(ptr)))
		hi := uint16(c.Bus.Read(uint16((ptr + 1) & 0xFF)))
		addr = hi<<8 | lo

	case IndirectIndexed:
		ptr := c.Bus.Read(c.PC)
		c.PC++
		base := uint16(c.Bus.Read(uint16(ptr)))
		base |= uint16(c.Bus.Read(uint16(ptr+1))) << 8
		addr = base + uint16(c.Y)
		pageCrossed = (base & 0xFF00) != (addr & 0xFF00)
	}

	return addr, pageCrossed
}

// load reads the operand for mode, handling Accumulator/Immediate directly
// and deferring to effectiveAddress for memory operands.
func (c *CPU) load(mode AddressingMode) (value uint8, pageCrossed bool) {
	switch mode {
	case Accumulator:
		return c.A, false
	case Immediate:
		v := c.Bus.Read(c.PC)
		c.PC++
		return v, false
	default:
		addr, crossed := c.effectiveAddress(mode)
		return c.Bus.Read(addr), crossed
	}
}

// branch applies a relative-offset branch if condition is true, returning
// the extra cycles owed: 0 if not taken, 1 if taken, 2 if taken across a
// page boundary.
func (c *CPU) branch(condition bool) uint8 {
	offset := int8(c.Bus.Read(c.PC))
	c.PC++
	if !condition {
		return 0
	}
	oldPC := c.PC
	c.PC = uint16(int32(c.PC) + int32(offset))
	if oldPC&0xFF00 != c.PC&0xFF00 {
		return 2
	}
	return 1
}

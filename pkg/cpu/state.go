package cpu

import "encoding/binary"

// SaveState serializes the CPU's architectural registers, cycle count, and
// latched interrupt lines.
func (c *CPU) SaveState() []uint8 {
	buf := make([]uint8, 0, 16)
	buf = append(buf, c.A, c.X, c.Y, c.SP, c.P)
	var pc [2]uint8
	binary.LittleEndian.PutUint16(pc[:], c.PC)
	buf = append(buf, pc[:]...)
	var cycles [8]uint8
	binary.LittleEndian.PutUint64(cycles[:], c.Cycles)
	buf = append(buf, cycles[:]...)
	b := uint8(0)
	if c.pendingNMI {
		b |= 0x01
	}
	if c.pendingIRQ {
		b |= 0x02
	}
	buf = append(buf, b)
	return buf
}

// LoadState restores state written by SaveState.
func (c *CPU) LoadState(data []uint8) {
	c.A, c.X, c.Y, c.SP, c.P = data[0], data[1], data[2], data[3], data[4]
	c.PC = binary.LittleEndian.Uint16(data[5:7])
	c.Cycles = binary.LittleEndian.Uint64(data[7:15])
	b := data[15]
	c.pendingNMI = b&0x01 != 0
	c.pendingIRQ = b&0x02 != 0
}

package apu

import "encoding/binary"

type apuStateWriter struct{ buf []uint8 }

func (w *apuStateWriter) u8(v uint8) { w.buf = append(w.buf, v) }
func (w *apuStateWriter) u16(v uint16) {
	var b [2]uint8
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *apuStateWriter) u32(v uint32) {
	var b [4]uint8
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *apuStateWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

type apuStateReader struct {
	data []uint8
	pos  int
}

func (r *apuStateReader) u8() uint8 {
	v := r.data[r.pos]
	r.pos++
	return v
}
func (r *apuStateReader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}
func (r *apuStateReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}
func (r *apuStateReader) boolean() bool { return r.u8() != 0 }

func (w *apuStateWriter) envelope(e *envelope) {
	w.boolean(e.startFlag)
	w.boolean(e.loop)
	w.boolean(e.constantMode)
	w.u8(e.volumeParam)
	w.u8(e.divider)
	w.u8(e.decayLevel)
}

func (r *apuStateReader) envelope(e *envelope) {
	e.startFlag = r.boolean()
	e.loop = r.boolean()
	e.constantMode = r.boolean()
	e.volumeParam = r.u8()
	e.divider = r.u8()
	e.decayLevel = r.u8()
}

func (w *apuStateWriter) pulse(p *pulseChannel) {
	w.boolean(p.enabled)
	w.envelope(&p.env)
	w.u8(p.dutyCycle)
	w.u8(p.dutySeq)
	w.u16(p.timerPeriod)
	w.u16(p.timerValue)
	w.u8(p.lengthCounter)
	w.boolean(p.lengthHalt)
	w.boolean(p.sweepEnabled)
	w.u8(p.sweepPeriod)
	w.boolean(p.sweepNegate)
	w.u8(p.sweepShift)
	w.u8(p.sweepDivider)
	w.boolean(p.sweepReload)
	w.boolean(p.sweepOnesComplement)
}

func (r *apuStateReader) pulse(p *pulseChannel) {
	p.enabled = r.boolean()
	r.envelope(&p.env)
	p.dutyCycle = r.u8()
	p.dutySeq = r.u8()
	p.timerPeriod = r.u16()
	p.timerValue = r.u16()
	p.lengthCounter = r.u8()
	p.lengthHalt = r.boolean()
	p.sweepEnabled = r.boolean()
	p.sweepPeriod = r.u8()
	p.sweepNegate = r.boolean()
	p.sweepShift = r.u8()
	p.sweepDivider = r.u8()
	p.sweepReload = r.boolean()
	p.sweepOnesComplement = r.boolean()
}

// SaveState serializes every channel's registers and the frame sequencer's
// position, enough to resume sample generation bit-for-bit.
func (a *APU) SaveState() []uint8 {
	w := &apuStateWriter{}
	w.pulse(&a.pulse1)
	w.pulse(&a.pulse2)

	w.boolean(a.triangle.enabled)
	w.u16(a.triangle.timerPeriod)
	w.u16(a.triangle.timerValue)
	w.u8(a.triangle.sequencePos)
	w.u8(a.triangle.lengthCounter)
	w.boolean(a.triangle.lengthHalt)
	w.u8(a.triangle.linearCounter)
	w.u8(a.triangle.linearReloadValue)
	w.boolean(a.triangle.linearReloadFlag)

	w.boolean(a.noise.enabled)
	w.envelope(&a.noise.env)
	w.boolean(a.noise.modeFlag)
	w.u16(a.noise.timerPeriod)
	w.u16(a.noise.timerValue)
	w.u16(a.noise.shiftRegister)
	w.u8(a.noise.lengthCounter)
	w.boolean(a.noise.lengthHalt)

	d := &a.dmc
	w.boolean(d.enabled)
	w.boolean(d.irqEnabled)
	w.boolean(d.loop)
	w.boolean(d.irqPending)
	w.u8(d.rateIndex)
	w.u16(d.timerPeriod)
	w.u16(d.timerValue)
	w.u16(d.sampleAddress)
	w.u16(d.sampleLength)
	w.u16(d.currentAddress)
	w.u16(d.bytesRemaining)
	w.u8(d.sampleBuffer)
	w.boolean(d.sampleBufferFull)
	w.u8(d.shiftRegister)
	w.u8(d.bitsRemaining)
	w.u8(d.outputLevel)
	w.boolean(d.silence)

	w.u8(a.frameCounterMode)
	w.boolean(a.frameIRQInhibit)
	w.boolean(a.frameIRQPending)
	w.u32(a.frameCycle)
	w.u16(a.stallCycles)

	return w.buf
}

// LoadState restores state written by SaveState.
func (a *APU) LoadState(data []uint8) {
	r := &apuStateReader{data: data}
	r.pulse(&a.pulse1)
	r.pulse(&a.pulse2)

	a.triangle.enabled = r.boolean()
	a.triangle.timerPeriod = r.u16()
	a.triangle.timerValue = r.u16()
	a.triangle.sequencePos = r.u8()
	a.triangle.lengthCounter = r.u8()
	a.triangle.lengthHalt = r.boolean()
	a.triangle.linearCounter = r.u8()
	a.triangle.linearReloadValue = r.u8()
	a.triangle.linearReloadFlag = r.boolean()

	a.noise.enabled = r.boolean()
	r.envelope(&a.noise.env)
	a.noise.modeFlag = r.boolean()
	a.noise.timerPeriod = r.u16()
	a.noise.timerValue = r.u16()
	a.noise.shiftRegister = r.u16()
	a.noise.lengthCounter = r.u8()
	a.noise.lengthHalt = r.boolean()

	d := &a.dmc
	d.enabled = r.boolean()
	d.irqEnabled = r.boolean()
	d.loop = r.boolean()
	d.irqPending = r.boolean()
	d.rateIndex = r.u8()
	d.timerPeriod = r.u16()
	d.timerValue = r.u16()
	d.sampleAddress = r.u16()
	d.sampleLength = r.u16()
	d.currentAddress = r.u16()
	d.bytesRemaining = r.u16()
	d.sampleBuffer = r.u8()
	d.sampleBufferFull = r.boolean()
	d.shiftRegister = r.u8()
	d.bitsRemaining = r.u8()
	d.outputLevel = r.u8()
	d.silence = r.boolean()

	a.frameCounterMode = r.u8()
	a.frameIRQInhibit = r.boolean()
	a.frameIRQPending = r.boolean()
	a.frameCycle = r.u32()
	a.stallCycles = r.u16()
}

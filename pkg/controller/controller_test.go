package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrobeLatchAndSerialReadout(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)

	c.Write(1)
	c.Write(0)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, U, D, L, R
	for i, bit := range want {
		assert.Equal(t, bit, c.Read(), "button bit %d", i)
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, uint8(1), c.Read(), "reads past the eighth return 1")
	}
}

func TestStrobeHighAlwaysReturnsA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(1)

	assert.Equal(t, uint8(1), c.Read())
	assert.Equal(t, uint8(1), c.Read(), "reads don't advance while the strobe is high")

	c.SetButton(ButtonA, false)
	assert.Equal(t, uint8(0), c.Read(), "strobe-high reads track the live A state")
}

func TestLatchedStateSurvivesButtonRelease(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.Write(1)
	c.Write(0)
	c.SetButton(ButtonB, false)

	assert.Equal(t, uint8(0), c.Read()) // A
	assert.Equal(t, uint8(1), c.Read(), "B was held at latch time")
}

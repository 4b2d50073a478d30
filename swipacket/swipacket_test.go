package swipacket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferRoundTrip(t *testing.T) {
	var b Buffer
	b.SetNumControllers(2)

	c0 := Controller{
		Number:        0,
		LeftStick:     [2]uint8{10, 20},
		RightStick:    [2]uint8{30, 40},
		Accelerometer: [3]float32{0.5, -0.5, 1},
		Gyroscope:     [3]float32{90, -45, 0.25},
	}
	c0.Press(ButtonA)
	c0.Press(ButtonMinus)
	c1 := Controller{Number: 1}
	c1.Press(ButtonX)

	b.SetController(0, c0)
	b.SetController(1, c1)

	got0, ok := b.Controller(0)
	require.True(t, ok)
	assert.Equal(t, c0, got0)
	assert.True(t, got0.Pressed(ButtonA))
	assert.True(t, got0.Pressed(ButtonMinus))
	assert.False(t, got0.Pressed(ButtonX))

	got1, ok := b.Controller(1)
	require.True(t, ok)
	assert.Equal(t, c1, got1)

	_, ok = b.Controller(2)
	assert.False(t, ok)
}

func TestButtonBits(t *testing.T) {
	// Bit positions are part of the wire contract.
	assert.Equal(t, Button(0), ButtonMinus)
	assert.Equal(t, Button(7), ButtonLeft)
	assert.Equal(t, Button(14), ButtonA)
	assert.Equal(t, Button(15), ButtonX)
}

func TestSendableLength(t *testing.T) {
	var b Buffer
	assert.Len(t, b.Sendable(), 1)

	b.SetNumControllers(3)
	assert.Len(t, b.Sendable(), 1+3*31)
	assert.Len(t, b.Bytes(), BufferSize)

	// Counts above the maximum clamp rather than overflow.
	b.SetNumControllers(20)
	assert.Equal(t, MaxControllers, b.NumControllers())
	assert.Len(t, b.Sendable(), BufferSize)
}

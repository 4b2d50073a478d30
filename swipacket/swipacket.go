// Package swipacket implements the byte-exact layout of the swi companion
// protocol, a denser format carrying up to eight controllers with 16-bit
// button masks. Like znet, the layout is a compatibility contract and the
// codec never relies on in-memory struct layout.
package swipacket

import (
	"encoding/binary"
	"math"
)

const (
	// MaxControllers is the most controllers one buffer can carry.
	MaxControllers = 8

	controllerSize = 31
	// BufferSize is the full encoded size of a packet buffer.
	BufferSize = 1 + controllerSize*MaxControllers
)

// Button is one of the named swi buttons; the value is its bit position in
// the 16-bit mask.
type Button uint8

const (
	ButtonMinus Button = iota
	ButtonLStick
	ButtonRStick
	ButtonPlus
	ButtonUp
	ButtonRight
	ButtonDown
	ButtonLeft
	ButtonZL
	ButtonZR
	ButtonL
	ButtonR
	ButtonY
	ButtonB
	ButtonA
	ButtonX
)

// Controller is the decoded form of one controller slot.
type Controller struct {
	Number        uint8
	Buttons       uint16
	LeftStick     [2]uint8
	RightStick    [2]uint8
	Accelerometer [3]float32
	Gyroscope     [3]float32
}

func (c *Controller) Press(b Button) {
	c.Buttons |= 1 << b
}

func (c Controller) Pressed(b Button) bool {
	return c.Buttons&(1<<b) != 0
}

// Buffer is a packet buffer ready for transmission. The zero value is an
// empty packet.
type Buffer struct {
	buf [BufferSize]byte
}

// NumControllers reports the controller count, capped at MaxControllers.
func (b *Buffer) NumControllers() int {
	n := int(b.buf[0])
	if n > MaxControllers {
		return MaxControllers
	}
	return n
}

func (b *Buffer) SetNumControllers(n int) {
	if n > MaxControllers {
		n = MaxControllers
	}
	b.buf[0] = uint8(n)
}

// Controller decodes slot i; ok is false past the controller count.
func (b *Buffer) Controller(i int) (Controller, bool) {
	if i < 0 || i >= b.NumControllers() {
		return Controller{}, false
	}
	buf := b.buf[1+controllerSize*i:]
	c := Controller{
		Number:     buf[0],
		Buttons:    binary.LittleEndian.Uint16(buf[1:]),
		LeftStick:  [2]uint8{buf[3], buf[4]},
		RightStick: [2]uint8{buf[5], buf[6]},
	}
	for j := 0; j < 3; j++ {
		c.Accelerometer[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[7+4*j:]))
		c.Gyroscope[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[19+4*j:]))
	}
	return c, true
}

// SetController encodes ctrl into slot i. Out-of-range slots clamp to the
// last one.
func (b *Buffer) SetController(i int, ctrl Controller) {
	if i < 0 {
		i = 0
	}
	if i >= MaxControllers {
		i = MaxControllers - 1
	}
	buf := b.buf[1+controllerSize*i:]
	buf[0] = ctrl.Number
	binary.LittleEndian.PutUint16(buf[1:], ctrl.Buttons)
	buf[3] = ctrl.LeftStick[0]
	buf[4] = ctrl.LeftStick[1]
	buf[5] = ctrl.RightStick[0]
	buf[6] = ctrl.RightStick[1]
	for j := 0; j < 3; j++ {
		binary.LittleEndian.PutUint32(buf[7+4*j:], math.Float32bits(ctrl.Accelerometer[j]))
		binary.LittleEndian.PutUint32(buf[19+4*j:], math.Float32bits(ctrl.Gyroscope[j]))
	}
}

// Bytes exposes the full backing buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf[:]
}

// Sendable returns the prefix that actually needs transmitting: the count
// byte plus the populated controller slots.
func (b *Buffer) Sendable() []byte {
	return b.buf[:1+controllerSize*b.NumControllers()]
}

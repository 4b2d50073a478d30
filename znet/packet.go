// Package znet implements the byte-exact packet layout of the znet input
// distribution protocol. A packet carries the state of up to four devices
// and is the interoperability boundary between input senders and receivers;
// field order, widths and byte order must be reproduced exactly.
//
// Transport is out of scope here: the codec produces and consumes byte
// slices, moving them is the caller's concern.
package znet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/zinput/zinput-go/device"
)

const (
	// NameSize is the width of the fixed, NUL-padded sender name field.
	NameSize = 16
	// MaxDevices is the most devices one packet can carry.
	MaxDevices = 4

	headerSize = NameSize + 1
	deviceSize = 8 + 8 + 6*4

	// PacketSize is the encoded size of a packet carrying MaxDevices.
	PacketSize = headerSize + MaxDevices*deviceSize
)

var ErrMalformedPacket = errors.New("malformed packet")

// Device is one wire device record: controller plus motion state.
type Device struct {
	Controller device.Controller
	Motion     device.Motion
}

// Packet is the decoded form of one znet packet. NumDevices says how many
// leading entries of Devices are meaningful.
type Packet struct {
	Name       [NameSize]byte
	NumDevices uint8
	Devices    [MaxDevices]Device
}

// SetName stores a sender name, truncated to NameSize and NUL-padded.
func (p *Packet) SetName(name string) {
	p.Name = [NameSize]byte{}
	copy(p.Name[:], name)
}

// SenderName returns the name field with NUL padding stripped.
func (p *Packet) SenderName() string {
	for i, b := range p.Name {
		if b == 0 {
			return string(p.Name[:i])
		}
	}
	return string(p.Name[:])
}

// MarshalBinary encodes the packet little-endian. Only the sendable prefix
// is emitted: the header plus NumDevices records.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if p.NumDevices > MaxDevices {
		return nil, fmt.Errorf("%w: device count %d exceeds %d", ErrMalformedPacket, p.NumDevices, MaxDevices)
	}
	buf := make([]byte, headerSize+int(p.NumDevices)*deviceSize)
	copy(buf, p.Name[:])
	buf[NameSize] = p.NumDevices
	for i := 0; i < int(p.NumDevices); i++ {
		encodeDevice(buf[headerSize+i*deviceSize:], &p.Devices[i])
	}
	return buf, nil
}

// UnmarshalBinary decodes a packet, accepting the truncated sendable form.
// Entries beyond the device count are reset to zero.
func (p *Packet) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrMalformedPacket, len(data), headerSize)
	}
	num := data[NameSize]
	if num > MaxDevices {
		return fmt.Errorf("%w: device count %d exceeds %d", ErrMalformedPacket, num, MaxDevices)
	}
	if want := headerSize + int(num)*deviceSize; len(data) < want {
		return fmt.Errorf("%w: %d bytes, want %d for %d devices", ErrMalformedPacket, len(data), want, num)
	}

	*p = Packet{NumDevices: num}
	copy(p.Name[:], data[:NameSize])
	for i := 0; i < int(num); i++ {
		decodeDevice(&p.Devices[i], data[headerSize+i*deviceSize:])
	}
	return nil
}

func encodeDevice(buf []byte, d *Device) {
	c := &d.Controller
	binary.LittleEndian.PutUint64(buf[0:], c.Buttons)
	buf[8] = c.LeftStickX
	buf[9] = c.LeftStickY
	buf[10] = c.RightStickX
	buf[11] = c.RightStickY
	buf[12] = c.L1Analog
	buf[13] = c.R1Analog
	buf[14] = c.L2Analog
	buf[15] = c.R2Analog

	m := &d.Motion
	putFloat32(buf[16:], m.GyroPitch)
	putFloat32(buf[20:], m.GyroRoll)
	putFloat32(buf[24:], m.GyroYaw)
	putFloat32(buf[28:], m.AccelX)
	putFloat32(buf[32:], m.AccelY)
	putFloat32(buf[36:], m.AccelZ)
}

func decodeDevice(d *Device, buf []byte) {
	c := &d.Controller
	c.Buttons = binary.LittleEndian.Uint64(buf[0:])
	c.LeftStickX = buf[8]
	c.LeftStickY = buf[9]
	c.RightStickX = buf[10]
	c.RightStickY = buf[11]
	c.L1Analog = buf[12]
	c.R1Analog = buf[13]
	c.L2Analog = buf[14]
	c.R2Analog = buf[15]

	m := &d.Motion
	m.GyroPitch = getFloat32(buf[16:])
	m.GyroRoll = getFloat32(buf[20:])
	m.GyroYaw = getFloat32(buf[24:])
	m.AccelX = getFloat32(buf[28:])
	m.AccelY = getFloat32(buf[32:])
	m.AccelZ = getFloat32(buf[36:])
}

func putFloat32(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}

func getFloat32(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}

// FromDevices builds a packet from up to MaxDevices merged device views,
// taking the first controller and motion record of each. Devices beyond the
// limit are dropped.
func FromDevices(name string, devs []*device.Device) *Packet {
	p := &Packet{}
	p.SetName(name)
	for _, d := range devs {
		if p.NumDevices == MaxDevices {
			break
		}
		if d == nil {
			continue
		}
		wire := Device{Controller: device.DefaultController()}
		if len(d.Controllers) > 0 {
			wire.Controller = d.Controllers[0]
		}
		if len(d.Motions) > 0 {
			wire.Motion = d.Motions[0]
		}
		p.Devices[p.NumDevices] = wire
		p.NumDevices++
	}
	return p
}

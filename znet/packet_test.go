package znet

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinput/zinput-go/device"
)

func TestPacketGoldenBytes(t *testing.T) {
	p := &Packet{NumDevices: 1}
	p.SetName("pad")
	p.Devices[0] = Device{
		Controller: device.Controller{
			Buttons:     device.ButtonA.Mask() | device.ButtonCapture.Mask(),
			LeftStickX:  1,
			LeftStickY:  2,
			RightStickX: 3,
			RightStickY: 4,
			L1Analog:    5,
			R1Analog:    6,
			L2Analog:    7,
			R2Analog:    8,
		},
		Motion: device.Motion{GyroYaw: 1.5, AccelZ: -1},
	}

	got, err := p.MarshalBinary()
	require.NoError(t, err)

	want := make([]byte, 17+40)
	copy(want, "pad")
	want[16] = 1
	binary.LittleEndian.PutUint64(want[17:], 1|1<<21)
	copy(want[25:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	binary.LittleEndian.PutUint32(want[41:], math.Float32bits(1.5)) // gyro yaw
	binary.LittleEndian.PutUint32(want[53:], math.Float32bits(-1))  // accel z
	assert.Equal(t, want, got)
}

func TestPacketRoundTrip(t *testing.T) {
	p := &Packet{NumDevices: 3}
	p.SetName("sender-01")
	for i := 0; i < 3; i++ {
		p.Devices[i] = Device{
			Controller: device.Controller{Buttons: uint64(i + 1), LeftStickX: uint8(10 * i)},
			Motion:     device.Motion{GyroPitch: float32(i) * 0.25, AccelY: -0.5},
		}
	}

	data, err := p.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 17+3*40)

	var got Packet
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, *p, got)
	assert.Equal(t, "sender-01", got.SenderName())
}

func TestPacketEmpty(t *testing.T) {
	p := &Packet{}
	p.SetName("idle")

	data, err := p.MarshalBinary()
	require.NoError(t, err)
	// A zero-device packet is just the header, the disconnect signal.
	assert.Len(t, data, 17)

	var got Packet
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, uint8(0), got.NumDevices)
}

func TestPacketUnmarshalErrors(t *testing.T) {
	var p Packet
	assert.ErrorIs(t, p.UnmarshalBinary(make([]byte, 5)), ErrMalformedPacket)

	data := make([]byte, PacketSize)
	data[16] = 5 // count out of range
	assert.ErrorIs(t, p.UnmarshalBinary(data), ErrMalformedPacket)

	data[16] = 2
	assert.ErrorIs(t, p.UnmarshalBinary(data[:17+40]), ErrMalformedPacket)
	assert.NoError(t, p.UnmarshalBinary(data[:17+2*40]))
}

func TestPacketMarshalRejectsBadCount(t *testing.T) {
	p := &Packet{NumDevices: MaxDevices + 1}
	_, err := p.MarshalBinary()
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestFromDevices(t *testing.T) {
	ctrl := device.DefaultController()
	ctrl.Press(device.ButtonStart)
	devs := []*device.Device{
		{Controllers: []device.Controller{ctrl}},
		{Motions: []device.Motion{{GyroRoll: 2}}},
	}

	p := FromDevices("agg", devs)
	assert.Equal(t, uint8(2), p.NumDevices)
	assert.Equal(t, ctrl, p.Devices[0].Controller)
	// Missing components encode as neutral state.
	assert.Equal(t, device.Motion{}, p.Devices[0].Motion)
	assert.Equal(t, device.DefaultController(), p.Devices[1].Controller)
	assert.Equal(t, float32(2), p.Devices[1].Motion.GyroRoll)
}

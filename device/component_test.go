package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMask(t *testing.T) {
	var m Mask
	for _, k := range Kinds {
		assert.False(t, m.Has(k))
		m = m.With(k)
		assert.True(t, m.Has(k))
	}
	assert.Equal(t, MaskAll, m)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"Controller", KindController},
		{"controller", KindController},
		{"touch_pad", KindTouchPad},
		{"touchPad", KindTouchPad},
		{"analogs", KindAnalogs},
		{"buttons", KindButtons},
		{"motion", KindMotion},
	}
	for _, tc := range tests {
		got, err := ParseKind(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseKind("mouse")
	assert.Error(t, err)
}

func TestButtonBits(t *testing.T) {
	// Bit positions are part of the wire contract.
	assert.Equal(t, uint8(0), ButtonA.Bit())
	assert.Equal(t, uint8(3), ButtonY.Bit())
	assert.Equal(t, uint8(8), ButtonStart.Bit())
	assert.Equal(t, uint8(18), ButtonLStick.Bit())
	assert.Equal(t, uint8(21), ButtonCapture.Bit())

	var mask uint64
	for _, b := range ButtonList {
		mask |= b.Mask()
	}
	assert.Equal(t, ButtonMask, mask)

	b, ok := ButtonFromBit(21)
	require.True(t, ok)
	assert.Equal(t, ButtonCapture, b)
	_, ok = ButtonFromBit(22)
	assert.False(t, ok)
}

func TestControllerPress(t *testing.T) {
	c := DefaultController()
	assert.Equal(t, StickCenter, c.LeftStickX)
	assert.Equal(t, StickCenter, c.RightStickY)

	c.Press(ButtonA)
	c.Press(ButtonHome)
	assert.True(t, c.Pressed(ButtonA))
	assert.True(t, c.Pressed(ButtonHome))
	c.Release(ButtonA)
	assert.False(t, c.Pressed(ButtonA))
	assert.True(t, c.Pressed(ButtonHome))
}

func TestDeviceInfoNewDevice(t *testing.T) {
	info := NewDeviceInfo("pad").WithID("pad-1")
	info.AddController(ControllerInfo{}.WithButtons(ButtonA, ButtonB).WithAnalog(AnalogLStick))
	info.AddMotion(MotionInfo{HasGyro: true, HasAccel: true})
	info.AddTouchPad(TouchPadInfo{Shape: TouchPadShapeRectangle, IsButton: true})

	d := info.NewDevice()
	assert.Equal(t, 1, d.Len(KindController))
	assert.Equal(t, 1, d.Len(KindMotion))
	assert.Equal(t, 1, d.Len(KindTouchPad))
	assert.Equal(t, 0, d.Len(KindButtons))
	assert.Equal(t, 0, d.Len(KindAnalogs))
	assert.Equal(t, DefaultController(), d.Controllers[0])

	assert.True(t, info.Controllers[0].HasButton(ButtonA))
	assert.False(t, info.Controllers[0].HasButton(ButtonX))
	assert.True(t, info.Controllers[0].HasAnalog(AnalogLStick))
	assert.Equal(t, 1, info.Len(KindMotion))
}

func TestDeviceFilter(t *testing.T) {
	d := &Device{
		Controllers: []Controller{{Buttons: ButtonA.Mask()}},
		Motions:     []Motion{{GyroYaw: 1}},
		TouchPads:   []TouchPad{{TouchX: 5}},
	}

	got := d.Filter(KindController.Mask() | KindTouchPad.Mask())
	assert.Equal(t, 1, got.Len(KindController))
	assert.Equal(t, 1, got.Len(KindTouchPad))
	assert.Equal(t, 0, got.Len(KindMotion))

	// The filtered copy shares no storage with the original.
	got.Controllers[0].Buttons = 0
	assert.Equal(t, ButtonA.Mask(), d.Controllers[0].Buttons)
}

func TestDeviceClone(t *testing.T) {
	d := &Device{
		Controllers: []Controller{{Buttons: 1}},
		TouchPads:   []TouchPad{{TouchX: 5}},
	}
	c := d.Clone()
	require.Equal(t, d, c)
	c.Controllers[0].Buttons = 2
	assert.Equal(t, uint64(1), d.Controllers[0].Buttons)
}

package device

import (
	"fmt"
	"math"
)

// Controller is the primary gamepad component: one button bitmask plus eight
// analog byte fields. Field order and widths are part of the wire contract
// and must not change.
type Controller struct {
	Buttons     uint64 `json:"buttons"`
	LeftStickX  uint8  `json:"leftStickX"`
	LeftStickY  uint8  `json:"leftStickY"`
	RightStickX uint8  `json:"rightStickX"`
	RightStickY uint8  `json:"rightStickY"`
	L1Analog    uint8  `json:"l1Analog"`
	R1Analog    uint8  `json:"r1Analog"`
	L2Analog    uint8  `json:"l2Analog"`
	R2Analog    uint8  `json:"r2Analog"`
}

// StickCenter is the neutral value for a stick axis.
const StickCenter uint8 = 127

// DefaultController returns a controller at rest: no buttons, sticks
// centered, triggers released.
func DefaultController() Controller {
	return Controller{
		LeftStickX:  StickCenter,
		LeftStickY:  StickCenter,
		RightStickX: StickCenter,
		RightStickY: StickCenter,
	}
}

func (c *Controller) Press(b Button) {
	c.Buttons |= b.Mask()
}

func (c *Controller) Release(b Button) {
	c.Buttons &^= b.Mask()
}

func (c Controller) Pressed(b Button) bool {
	return c.Buttons&b.Mask() != 0
}

// Button is one of the named controller buttons. The value is the bit
// position inside the 64-bit button mask; positions 0-21 are fixed by the
// wire contract, the remaining bits must stay zero.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonStart
	ButtonSelect
	ButtonL1
	ButtonR1
	ButtonL2
	ButtonR2
	ButtonL3
	ButtonR3
	ButtonL4
	ButtonR4
	ButtonLStick
	ButtonRStick
	ButtonHome
	ButtonCapture

	buttonCount = 22
)

// ButtonList enumerates every named button in bit order.
var ButtonList = [buttonCount]Button{
	ButtonA, ButtonB, ButtonX, ButtonY,
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	ButtonStart, ButtonSelect,
	ButtonL1, ButtonR1, ButtonL2, ButtonR2,
	ButtonL3, ButtonR3, ButtonL4, ButtonR4,
	ButtonLStick, ButtonRStick, ButtonHome, ButtonCapture,
}

// ButtonMask is the set of all valid button bits.
const ButtonMask uint64 = 1<<buttonCount - 1

func (b Button) Bit() uint8 {
	return uint8(b)
}

func (b Button) Mask() uint64 {
	return 1 << b
}

// ButtonFromBit maps a bit position back to its button.
func ButtonFromBit(bit uint8) (Button, bool) {
	if bit >= buttonCount {
		return 0, false
	}
	return Button(bit), true
}

var buttonNames = [buttonCount]string{
	"A", "B", "X", "Y",
	"Up", "Down", "Left", "Right",
	"Start", "Select",
	"L1", "R1", "L2", "R2",
	"L3", "R3", "L4", "R4",
	"LStick", "RStick", "Home", "Capture",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Analog identifies one of the controller's analog inputs, used as a
// capability bit in ControllerInfo.
type Analog uint8

const (
	AnalogLStick Analog = iota
	AnalogRStick
	AnalogL1
	AnalogR1
	AnalogL2
	AnalogR2

	analogCount = 6
)

var analogNames = [analogCount]string{"LStick", "RStick", "L1", "R1", "L2", "R2"}

func (a Analog) Bit() uint8 {
	return uint8(a)
}

func (a Analog) String() string {
	if int(a) < len(analogNames) {
		return analogNames[a]
	}
	return fmt.Sprintf("Analog(%d)", uint8(a))
}

// ControllerInfo advertises which buttons and analogs a controller component
// actually reports.
type ControllerInfo struct {
	Buttons uint64 `json:"buttons"`
	Analogs uint8  `json:"analogs"`
}

func (i ControllerInfo) WithButton(b Button) ControllerInfo {
	i.Buttons |= b.Mask()
	return i
}

func (i ControllerInfo) WithButtons(bs ...Button) ControllerInfo {
	for _, b := range bs {
		i.Buttons |= b.Mask()
	}
	return i
}

func (i ControllerInfo) WithAnalog(a Analog) ControllerInfo {
	i.Analogs |= 1 << a.Bit()
	return i
}

func (i ControllerInfo) WithAnalogs(as ...Analog) ControllerInfo {
	for _, a := range as {
		i.Analogs |= 1 << a.Bit()
	}
	return i
}

func (i ControllerInfo) HasButton(b Button) bool {
	return i.Buttons&b.Mask() != 0
}

func (i ControllerInfo) HasAnalog(a Analog) bool {
	return i.Analogs&(1<<a.Bit()) != 0
}

// ControllerConfig transforms raw controller records into cooked ones: stick
// deadzone and calibration, trigger ranges and button remapping.
type ControllerConfig struct {
	LeftStick  StickConfig `json:"leftStick"`
	RightStick StickConfig `json:"rightStick"`
	L1Range    [2]uint8    `json:"l1Range"`
	R1Range    [2]uint8    `json:"r1Range"`
	L2Range    [2]uint8    `json:"l2Range"`
	R2Range    [2]uint8    `json:"r2Range"`
	Remap      []uint8     `json:"remap,omitempty"`
}

// DefaultControllerConfig returns the identity configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		L1Range: [2]uint8{0, 255},
		R1Range: [2]uint8{0, 255},
		L2Range: [2]uint8{0, 255},
		R2Range: [2]uint8{0, 255},
	}
}

func (c *ControllerConfig) apply(ctrl *Controller) {
	ctrl.LeftStickX, ctrl.LeftStickY = c.LeftStick.apply(ctrl.LeftStickX, ctrl.LeftStickY)
	ctrl.RightStickX, ctrl.RightStickY = c.RightStick.apply(ctrl.RightStickX, ctrl.RightStickY)
	ctrl.L1Analog = applyRange(ctrl.L1Analog, c.L1Range)
	ctrl.R1Analog = applyRange(ctrl.R1Analog, c.R1Range)
	ctrl.L2Analog = applyRange(ctrl.L2Analog, c.L2Range)
	ctrl.R2Analog = applyRange(ctrl.R2Analog, c.R2Range)

	if len(c.Remap) == 0 {
		return
	}
	var out uint64
	for i := 0; i < 64; i++ {
		if ctrl.Buttons&(1<<i) == 0 {
			continue
		}
		target := uint8(i)
		if i < len(c.Remap) {
			target = c.Remap[i]
		}
		out |= 1 << (target & 63)
	}
	ctrl.Buttons = out
}

// StickConfig applies a radial deadzone and an optional 32-sample range
// calibration ring to a stick axis pair.
type StickConfig struct {
	Deadzone uint8     `json:"deadzone"`
	Samples  []float32 `json:"samples,omitempty"`
}

func (s *StickConfig) apply(x, y uint8) (uint8, uint8) {
	if s.Deadzone == 0 && len(s.Samples) == 0 {
		return x, y
	}

	dzf := float32(s.Deadzone) / 255.0
	xf := (float32(x) - 127.5) / 127.5
	yf := (float32(y) - 127.5) / 127.5
	scalar := float32(math.Sqrt(float64(xf*xf + yf*yf)))

	max := float32(1.0)
	if len(s.Samples) == 32 {
		angle := float32(math.Atan2(float64(yf), float64(xf)))
		if angle < 0 {
			angle = 2*math.Pi + angle
		}
		max = sampleRing(s.Samples, angle)
	}

	rng := max - dzf
	if rng <= 0 {
		return 128, 128
	}

	newScalar := (clamp32(scalar, dzf, max) - dzf) / rng
	xf = (xf / scalar) * newScalar
	yf = (yf / scalar) * newScalar

	return uint8(xf*127.5 + 127.5), uint8(yf*127.5 + 127.5)
}

func sampleRing(samples []float32, angle float32) float32 {
	const step = math.Pi * 2.0 / 32.0

	var i1, i2 int
	var influence float32
	for i := 0; i < 32; i++ {
		minAngle := float32(i) * step
		maxAngle := float32(i+1) * step
		if minAngle <= angle && angle < maxAngle {
			i1 = i
			i2 = (i + 1) % 32
			influence = (angle - minAngle) / (maxAngle - minAngle)
			break
		}
	}

	return samples[i1]*(1.0-influence) + samples[i2]*influence
}

func applyRange(v uint8, r [2]uint8) uint8 {
	if r[0] == 0 && r[1] == 255 {
		return v
	}
	min := float32(r[0])
	max := float32(r[1])
	rng := max - min
	if rng <= 0 {
		return 0
	}
	return uint8(((clamp32(float32(v), min, max) - min) / rng) * 255.0)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

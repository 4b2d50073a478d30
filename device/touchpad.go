package device

// TouchPadShape describes the physical geometry of a touch pad.
type TouchPadShape uint8

const (
	TouchPadShapeCircle TouchPadShape = iota
	TouchPadShapeRectangle
)

func (s TouchPadShape) String() string {
	switch s {
	case TouchPadShapeCircle:
		return "circle"
	case TouchPadShapeRectangle:
		return "rectangle"
	}
	return "unknown"
}

// TouchPad is a single touch pad component.
type TouchPad struct {
	TouchX  uint16 `json:"touchX"`
	TouchY  uint16 `json:"touchY"`
	Pressed bool   `json:"pressed"`
	Touched bool   `json:"touched"`
}

// TouchPadInfo advertises a touch pad's shape and whether it is clickable.
type TouchPadInfo struct {
	Shape    TouchPadShape `json:"shape"`
	IsButton bool          `json:"isButton"`
}

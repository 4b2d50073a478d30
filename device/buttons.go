package device

// Buttons is a bare 64-bit button bitmask for devices that report buttons
// outside of a full controller component.
type Buttons struct {
	Buttons uint64 `json:"buttons"`
}

func (b *Buttons) Press(bit uint8) {
	b.Buttons |= 1 << (bit & 63)
}

func (b Buttons) Pressed(bit uint8) bool {
	return b.Buttons&(1<<(bit&63)) != 0
}

// ButtonsInfo advertises which bits a button set reports.
type ButtonsInfo struct {
	Buttons uint64 `json:"buttons"`
}

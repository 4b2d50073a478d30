// Package device defines the component model for aggregated input devices
// and the merge operation that combines several partial device views into a
// single logical device.
package device

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Kind identifies one of the component categories a device can report.
type Kind uint8

const (
	KindAnalogs Kind = iota
	KindButtons
	KindController
	KindMotion
	KindTouchPad

	kindCount = 5
)

var kindNames = [kindCount]string{
	KindAnalogs:    "Analogs",
	KindButtons:    "Buttons",
	KindController: "Controller",
	KindMotion:     "Motion",
	KindTouchPad:   "TouchPad",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a component kind from its name. Any casing accepted by
// strcase works, so config keys like "touch_pad" and "touchPad" both resolve.
func ParseKind(s string) (Kind, error) {
	name := strcase.ToCamel(s)
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown component kind %q", s)
}

// Mask selects a set of component kinds, one bit per kind.
type Mask uint8

// MaskAll selects every known component kind.
const MaskAll Mask = 1<<kindCount - 1

func (k Kind) Mask() Mask {
	return 1 << k
}

func (m Mask) Has(k Kind) bool {
	return m&k.Mask() != 0
}

func (m Mask) With(k Kind) Mask {
	return m | k.Mask()
}

// Kinds lists every component kind in registry order.
var Kinds = [kindCount]Kind{KindAnalogs, KindButtons, KindController, KindMotion, KindTouchPad}

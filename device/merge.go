package device

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a caller construction error: an empty input
	// list, a nil view, or an ambiguous singular component.
	ErrInvalidInput = errors.New("invalid merge input")
	// ErrUnsupportedKind reports a mask bit outside the known kind set.
	ErrUnsupportedKind = errors.New("unsupported component kind")
)

// Merge combines the input device views into out, recomputing exactly the
// component kinds selected by mask and leaving every other kind untouched.
//
// Per masked kind the first view in `in` with a non-empty sequence is the
// source of truth; its records are copied into out as a batch and later
// views are ignored. Views never contribute jointly to one kind, so callers
// set priority by ordering `in`. If no view supplies a masked kind, out
// keeps whatever it held before the call, which makes repeated merges carry
// state across ticks.
//
// Merge fails without touching out when `in` is empty or contains a nil
// view, when mask selects an unknown kind, or when any single view reports
// more than one record for a singular kind (Controller, Motion). Inputs are
// never mutated and no references to them are retained.
//
// Merge performs no synchronisation: concurrent calls are safe only when
// they target distinct outputs. Input views may be shared between such
// calls as long as nothing writes to them.
func Merge(mask Mask, in []*Device, out *Device) error {
	if len(in) == 0 {
		return fmt.Errorf("%w: no input views", ErrInvalidInput)
	}
	if extra := mask &^ MaskAll; extra != 0 {
		return fmt.Errorf("%w: mask bits %#x", ErrUnsupportedKind, uint8(extra))
	}
	for i, view := range in {
		if view == nil {
			return fmt.Errorf("%w: input view %d is nil", ErrInvalidInput, i)
		}
	}

	// Validate everything up front: a failed merge must not partially
	// commit.
	for _, k := range Kinds {
		if !mask.Has(k) || !kindTable[k].singular {
			continue
		}
		for i, view := range in {
			if n := kindTable[k].length(view); n > 1 {
				return fmt.Errorf("%w: input view %d reports %d %s records, want at most 1",
					ErrInvalidInput, i, n, k)
			}
		}
	}

	for _, k := range Kinds {
		if !mask.Has(k) {
			continue
		}
		for _, view := range in {
			if kindTable[k].length(view) == 0 {
				continue
			}
			kindTable[k].clone(out, view)
			break
		}
	}
	return nil
}

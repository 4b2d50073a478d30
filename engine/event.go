package engine

import (
	"github.com/google/uuid"

	"github.com/zinput/zinput-go/device"
)

// EventKind classifies engine events for subscription filtering.
type EventKind uint8

const (
	EventDeviceUpdate EventKind = iota
	EventDeviceAdded
	EventDeviceRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventDeviceUpdate:
		return "device-update"
	case EventDeviceAdded:
		return "device-added"
	case EventDeviceRemoved:
		return "device-removed"
	}
	return "unknown"
}

// Event is one engine notification. Mask is meaningful for DeviceUpdate and
// names the component kinds that changed; Info is set for DeviceAdded.
type Event struct {
	Kind EventKind
	ID   uuid.UUID
	Mask device.Mask
	Info *device.DeviceInfo
}

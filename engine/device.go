package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zinput/zinput-go/device"
)

// internalDevice keeps two copies of the state: raw as reported by the
// producer, and cooked with the device config applied. Views read cooked
// state by default.
type internalDevice struct {
	id   uuid.UUID
	info *device.DeviceInfo

	claimed atomic.Bool

	mu     sync.RWMutex
	raw    *device.Device
	cooked *device.Device
	config device.Config
}

func newInternalDevice(id uuid.UUID, info *device.DeviceInfo) *internalDevice {
	return &internalDevice{
		id:     id,
		info:   info,
		raw:    info.NewDevice(),
		cooked: info.NewDevice(),
	}
}

func (d *internalDevice) claim(e *Engine) (*DeviceHandle, bool) {
	if !d.claimed.CompareAndSwap(false, true) {
		return nil, false
	}
	return &DeviceHandle{eng: e, dev: d}, true
}

// recook must be called with mu held.
func (d *internalDevice) recook() {
	d.raw.CopyInto(d.cooked)
	d.config.Apply(d.cooked)
}

// DeviceHandle is the exclusive writer side of a device. Only one handle
// exists per device; Close releases it and removes the device.
type DeviceHandle struct {
	eng    *Engine
	dev    *internalDevice
	closed atomic.Bool
}

func (h *DeviceHandle) ID() uuid.UUID {
	return h.dev.id
}

func (h *DeviceHandle) Info() *device.DeviceInfo {
	return h.dev.info
}

func (h *DeviceHandle) View() *DeviceView {
	return &DeviceView{dev: h.dev}
}

// Update applies fn to the raw device state, re-applies the device config
// and notifies subscribers that the kinds in mask changed. fn must not
// retain the device pointer past the call.
func (h *DeviceHandle) Update(ctx context.Context, mask device.Mask, fn func(*device.Device)) {
	d := h.dev
	d.mu.Lock()
	fn(d.raw)
	d.recook()
	d.mu.Unlock()

	h.eng.bus.Publish(ctx, EventDeviceUpdate, Event{Kind: EventDeviceUpdate, ID: d.id, Mask: mask})
}

// Close releases the handle and removes the device from the engine.
func (h *DeviceHandle) Close(ctx context.Context) {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.eng.removeDevice(ctx, h.dev.id)
	h.dev.claimed.Store(false)
}

// DeviceView is shared read access to a device plus its configuration.
type DeviceView struct {
	dev *internalDevice
}

func (v *DeviceView) ID() uuid.UUID {
	return v.dev.id
}

func (v *DeviceView) Info() *device.DeviceInfo {
	return v.dev.info
}

// State calls fn with the cooked device state under a read lock. fn must not
// retain the pointer or mutate through it.
func (v *DeviceView) State(fn func(*device.Device)) {
	v.dev.mu.RLock()
	fn(v.dev.cooked)
	v.dev.mu.RUnlock()
}

// RawState is State without the device config applied.
func (v *DeviceView) RawState(fn func(*device.Device)) {
	v.dev.mu.RLock()
	fn(v.dev.raw)
	v.dev.mu.RUnlock()
}

func (v *DeviceView) Config() device.Config {
	v.dev.mu.RLock()
	defer v.dev.mu.RUnlock()
	return v.dev.config
}

// SetConfig swaps the device configuration and recomputes cooked state.
func (v *DeviceView) SetConfig(cfg device.Config) {
	v.dev.mu.Lock()
	v.dev.config = cfg
	v.dev.recook()
	v.dev.mu.Unlock()
}

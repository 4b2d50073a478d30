// Package engine keeps the registry of live input devices. Producers claim
// an exclusive handle per device and push updates through it; consumers hold
// shared views and subscribe to update events carrying the changed-kind
// mask that drives merging downstream.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/zinput/zinput-go/device"
	"github.com/zinput/zinput-go/pkg/bus"
)

type EventBus = bus.Bus[EventKind, Event]

type Engine struct {
	log     *zap.Logger
	devices *xsync.MapOf[uuid.UUID, *internalDevice]
	bus     *EventBus
	ready   chan struct{}
}

func New(log *zap.Logger) *Engine {
	return &Engine{
		log:     log,
		devices: xsync.NewMapOf[uuid.UUID, *internalDevice](),
		bus:     bus.NewBus[EventKind, Event](log.Named("bus")),
		ready:   make(chan struct{}),
	}
}

// Start runs the engine until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	select {
	case <-ctx.Done():
		return nil
	case <-e.bus.Ready():
	}
	close(e.ready)
	e.log.Info("Engine started")
	<-ctx.Done()
	return nil
}

func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// NewDevice registers a device and returns its exclusive handle. The caller
// must Close the handle to remove the device again.
func (e *Engine) NewDevice(ctx context.Context, info *device.DeviceInfo) (*DeviceHandle, error) {
	if info == nil || info.Name == "" {
		return nil, fmt.Errorf("device info must have a name")
	}
	dev := newInternalDevice(uuid.New(), info)
	e.devices.Store(dev.id, dev)

	handle, ok := dev.claim(e)
	if !ok {
		// claim on a freshly stored device cannot race
		e.devices.Delete(dev.id)
		return nil, fmt.Errorf("device %s already claimed", dev.id)
	}

	e.log.Info("Device added", zap.String("id", dev.id.String()), zap.String("name", info.Name))
	e.bus.Publish(ctx, EventDeviceAdded, Event{Kind: EventDeviceAdded, ID: dev.id, Info: info})
	return handle, nil
}

// GetDevice returns a shared view of a registered device.
func (e *Engine) GetDevice(id uuid.UUID) (*DeviceView, bool) {
	dev, ok := e.devices.Load(id)
	if !ok {
		return nil, false
	}
	return &DeviceView{dev: dev}, true
}

// Devices returns views of every registered device.
func (e *Engine) Devices() []*DeviceView {
	var views []*DeviceView
	e.devices.Range(func(_ uuid.UUID, dev *internalDevice) bool {
		views = append(views, &DeviceView{dev: dev})
		return true
	})
	return views
}

// Subscribe returns engine events of the given kinds (or all kinds when none
// are given) until ctx is cancelled.
func (e *Engine) Subscribe(ctx context.Context, kinds ...EventKind) <-chan bus.Message[EventKind, Event] {
	return e.bus.Subscribe(ctx, kinds...)
}

func (e *Engine) removeDevice(ctx context.Context, id uuid.UUID) {
	if _, ok := e.devices.LoadAndDelete(id); !ok {
		return
	}
	e.log.Info("Device removed", zap.String("id", id.String()))
	e.bus.Publish(ctx, EventDeviceRemoved, Event{Kind: EventDeviceRemoved, ID: id})
}

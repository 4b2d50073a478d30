package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zinput/zinput-go/device"
)

func startEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eng := New(zap.NewNop())
	go func() {
		_ = eng.Start(ctx)
	}()
	<-eng.Ready()
	return eng, ctx
}

func padInfo(name string) *device.DeviceInfo {
	info := device.NewDeviceInfo(name)
	info.AddController(device.ControllerInfo{}.WithButtons(device.ButtonA, device.ButtonB))
	return info
}

func TestDeviceLifecycle(t *testing.T) {
	eng, ctx := startEngine(t)
	events := eng.Subscribe(ctx)

	handle, err := eng.NewDevice(ctx, padInfo("pad"))
	require.NoError(t, err)

	msg := <-events
	assert.Equal(t, EventDeviceAdded, msg.Message.Kind)
	assert.Equal(t, handle.ID(), msg.Message.ID)
	require.NotNil(t, msg.Message.Info)
	assert.Equal(t, "pad", msg.Message.Info.Name)

	view, ok := eng.GetDevice(handle.ID())
	require.True(t, ok)
	view.State(func(d *device.Device) {
		require.Len(t, d.Controllers, 1)
		assert.Equal(t, device.DefaultController(), d.Controllers[0])
	})

	handle.Update(ctx, device.KindController.Mask(), func(d *device.Device) {
		d.Controllers[0].Press(device.ButtonA)
	})
	msg = <-events
	assert.Equal(t, EventDeviceUpdate, msg.Message.Kind)
	assert.Equal(t, device.KindController.Mask(), msg.Message.Mask)
	view.State(func(d *device.Device) {
		assert.True(t, d.Controllers[0].Pressed(device.ButtonA))
	})

	handle.Close(ctx)
	msg = <-events
	assert.Equal(t, EventDeviceRemoved, msg.Message.Kind)
	_, ok = eng.GetDevice(handle.ID())
	assert.False(t, ok)
	assert.Empty(t, eng.Devices())
}

func TestDeviceConfigCooksState(t *testing.T) {
	eng, ctx := startEngine(t)

	handle, err := eng.NewDevice(ctx, padInfo("pad"))
	require.NoError(t, err)
	view := handle.View()

	cfg := device.DefaultControllerConfig()
	cfg.Remap = make([]uint8, 64)
	for i := range cfg.Remap {
		cfg.Remap[i] = uint8(i)
	}
	cfg.Remap[device.ButtonA.Bit()] = device.ButtonB.Bit()
	view.SetConfig(device.Config{Controllers: []device.ControllerConfig{cfg}})

	handle.Update(ctx, device.KindController.Mask(), func(d *device.Device) {
		d.Controllers[0].Press(device.ButtonA)
	})

	view.RawState(func(d *device.Device) {
		assert.True(t, d.Controllers[0].Pressed(device.ButtonA))
	})
	view.State(func(d *device.Device) {
		assert.True(t, d.Controllers[0].Pressed(device.ButtonB))
		assert.False(t, d.Controllers[0].Pressed(device.ButtonA))
	})
}

func TestNewDeviceRequiresName(t *testing.T) {
	eng, ctx := startEngine(t)
	_, err := eng.NewDevice(ctx, nil)
	assert.Error(t, err)
	_, err = eng.NewDevice(ctx, device.NewDeviceInfo(""))
	assert.Error(t, err)
}

func TestSubscribeFiltersKinds(t *testing.T) {
	eng, ctx := startEngine(t)
	updates := eng.Subscribe(ctx, EventDeviceUpdate)

	handle, err := eng.NewDevice(ctx, padInfo("pad"))
	require.NoError(t, err)
	handle.Update(ctx, device.KindController.Mask(), func(d *device.Device) {
		d.Controllers[0].Press(device.ButtonB)
	})

	// The added event must not show up on an update-only subscription.
	msg := <-updates
	assert.Equal(t, EventDeviceUpdate, msg.Message.Kind)
}

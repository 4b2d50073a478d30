package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zinput/zinput-go/device"
	"github.com/zinput/zinput-go/engine"
)

func startTestApp(t *testing.T) (*App, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eng := engine.New(zap.NewNop())
	go func() {
		_ = eng.Start(ctx)
	}()
	<-eng.Ready()
	return &App{log: zap.NewNop(), eng: eng}, ctx
}

func remapConfig(from, to device.Button) device.Config {
	cfg := device.DefaultControllerConfig()
	cfg.Remap = make([]uint8, 64)
	for i := range cfg.Remap {
		cfg.Remap[i] = uint8(i)
	}
	cfg.Remap[from.Bit()] = to.Bit()
	return device.Config{Controllers: []device.ControllerConfig{cfg}}
}

func addDevice(t *testing.T, a *App, ctx context.Context, name, id string) *engine.DeviceView {
	t.Helper()
	info := device.NewDeviceInfo(name).WithID(id)
	info.AddController(device.ControllerInfo{}.WithButtons(device.ButtonA, device.ButtonB))
	handle, err := a.eng.NewDevice(ctx, info)
	require.NoError(t, err)
	a.configureNewDevice(engine.Event{Kind: engine.EventDeviceAdded, ID: handle.ID(), Info: info})
	view, ok := a.eng.GetDevice(handle.ID())
	require.True(t, ok)
	return view
}

func TestConfigureNewDeviceUsesLatestConfigs(t *testing.T) {
	a, ctx := startTestApp(t)
	cfg := remapConfig(device.ButtonA, device.ButtonB)

	a.setDeviceConfigs(DevicesFile{"pad-1": cfg})
	view := addDevice(t, a, ctx, "padA", "pad-1")
	assert.Equal(t, cfg, view.Config())

	// A reload that drops the entry must stop applying it to new devices.
	a.setDeviceConfigs(DevicesFile{})
	view2 := addDevice(t, a, ctx, "padB", "pad-1")
	assert.Equal(t, device.Config{}, view2.Config())
}

func TestDeviceConfigReloadConcurrentWithNewDevices(t *testing.T) {
	a, ctx := startTestApp(t)
	cfg := remapConfig(device.ButtonA, device.ButtonB)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a.setDeviceConfigs(DevicesFile{"pad-1": cfg})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			info := device.NewDeviceInfo(fmt.Sprintf("pad%d", i)).WithID("pad-1")
			info.AddController(device.ControllerInfo{}.WithButton(device.ButtonA))
			handle, err := a.eng.NewDevice(ctx, info)
			if err != nil {
				return
			}
			a.configureNewDevice(engine.Event{Kind: engine.EventDeviceAdded, ID: handle.ID(), Info: info})
		}
	}()
	wg.Wait()
}

package virtsvc

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zinput/zinput-go/device"
	"github.com/zinput/zinput-go/engine"
)

// virtualDevice aggregates its attached sources into one output device.
// All methods run on the plugin's event goroutine; no internal locking.
type virtualDevice struct {
	log *zap.Logger
	eng *engine.Engine

	name        string
	sourceNames []string

	// parallel to sourceNames; nil when the source is not connected
	sources []*engine.DeviceView
	scratch []*device.Device

	// merged accumulates across ticks so unsupplied kinds carry over
	merged *device.Device
	out    *engine.DeviceHandle
}

func newVirtualDevice(log *zap.Logger, eng *engine.Engine, cfg VirtualDeviceConfig) *virtualDevice {
	v := &virtualDevice{
		log:         log,
		eng:         eng,
		name:        cfg.Name,
		sourceNames: cfg.Sources,
		sources:     make([]*engine.DeviceView, len(cfg.Sources)),
		scratch:     make([]*device.Device, len(cfg.Sources)),
		merged:      &device.Device{},
	}
	for i := range v.scratch {
		v.scratch[i] = &device.Device{}
	}
	return v
}

func (v *virtualDevice) attach(ctx context.Context, view *engine.DeviceView) {
	if v.out != nil && view.ID() == v.out.ID() {
		return
	}
	changed := false
	for i, name := range v.sourceNames {
		if v.sources[i] == nil && view.Info().Name == name {
			v.sources[i] = view
			changed = true
			break
		}
	}
	if changed {
		v.rebuild(ctx)
	}
}

func (v *virtualDevice) detach(ctx context.Context, id uuid.UUID) {
	changed := false
	for i, src := range v.sources {
		if src != nil && src.ID() == id {
			v.sources[i] = nil
			changed = true
		}
	}
	if changed {
		v.rebuild(ctx)
	}
}

func (v *virtualDevice) hasSource(id uuid.UUID) bool {
	for _, src := range v.sources {
		if src != nil && src.ID() == id {
			return true
		}
	}
	return false
}

// rebuild re-registers the output device whenever the attached source set
// changes, since its advertised capabilities depend on the sources.
func (v *virtualDevice) rebuild(ctx context.Context) {
	if v.out != nil {
		v.out.Close(ctx)
		v.out = nil
	}
	v.merged = &device.Device{}

	attached := 0
	for _, src := range v.sources {
		if src != nil {
			attached++
		}
	}
	if attached == 0 {
		v.log.Info("Virtual device idle, no sources attached")
		return
	}

	info := v.buildInfo()
	out, err := v.eng.NewDevice(ctx, info)
	if err != nil {
		v.log.Error("Failed to register virtual device", zap.Error(err))
		return
	}
	v.out = out
	v.log.Info("Virtual device registered",
		zap.String("id", out.ID().String()), zap.Int("sources", attached))

	// Seed the output from the current source state.
	v.tick(ctx, device.MaskAll)
}

// buildInfo advertises, per component kind, the first attached source that
// declares it. Declared components always carry state, so that source is
// exactly the one Merge picks every tick; anything broader would advertise
// capabilities the merged output never holds.
func (v *virtualDevice) buildInfo() *device.DeviceInfo {
	info := device.NewDeviceInfo(v.name)
	for _, src := range v.sources {
		if src == nil {
			continue
		}
		si := src.Info()
		if len(si.Controllers) > 0 && len(info.Controllers) == 0 {
			info.Controllers = slices.Clone(si.Controllers)
		}
		if len(si.Motions) > 0 && len(info.Motions) == 0 {
			info.Motions = slices.Clone(si.Motions)
		}
		if len(si.AnalogSets) > 0 && len(info.AnalogSets) == 0 {
			info.AnalogSets = slices.Clone(si.AnalogSets)
		}
		if len(si.ButtonSets) > 0 && len(info.ButtonSets) == 0 {
			info.ButtonSets = slices.Clone(si.ButtonSets)
		}
		if len(si.TouchPads) > 0 && len(info.TouchPads) == 0 {
			info.TouchPads = slices.Clone(si.TouchPads)
		}
	}
	return info
}

// tick snapshots every attached source and merges the masked kinds into the
// output. A failed merge drops the tick; the output keeps its last
// known-good state.
func (v *virtualDevice) tick(ctx context.Context, mask device.Mask) {
	if v.out == nil {
		return
	}
	views := make([]*device.Device, 0, len(v.sources))
	for i, src := range v.sources {
		if src == nil {
			continue
		}
		src.State(func(d *device.Device) {
			d.CopyInto(v.scratch[i])
		})
		views = append(views, v.scratch[i])
	}
	if len(views) == 0 {
		return
	}

	if err := device.Merge(mask, views, v.merged); err != nil {
		v.log.Warn("Merge failed, dropping tick", zap.Error(err))
		return
	}
	v.out.Update(ctx, mask, func(d *device.Device) {
		v.merged.CopyInto(d)
	})
}

func (v *virtualDevice) shutdown(ctx context.Context) {
	if v.out != nil {
		v.out.Close(ctx)
		v.out = nil
	}
}

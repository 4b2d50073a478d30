// Package virtsvc implements the virtual controller plugin: it aggregates
// the components of several source devices into one logical output device,
// re-merging on every source update tick.
package virtsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/zinput/zinput-go/engine"
)

// PluginType is the id under which the service registers itself.
const PluginType = "vcon"

// Register adds the vcon plugin type to a registry.
func Register(reg *engine.PluginRegistry) {
	reg.Register(PluginType, func(config json.RawMessage, p engine.PluginProvider) (engine.Plugin, error) {
		var cfg Config
		if len(config) > 0 {
			if err := json.Unmarshal(config, &cfg); err != nil {
				return nil, fmt.Errorf("vcon config: %w", err)
			}
		}
		return New(p.Log.Named(PluginType), cfg), nil
	})
}

// Config lists the virtual devices to maintain.
type Config struct {
	Devices []VirtualDeviceConfig `json:"devices"`
}

// VirtualDeviceConfig names one virtual device and its sources. Sources are
// matched against device names; their order is the merge priority, the
// earlier source wins when several report the same component kind.
type VirtualDeviceConfig struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

type Service struct {
	log *zap.Logger
	cfg Config

	eng   *engine.Engine
	vdevs []*virtualDevice

	mu     sync.Mutex
	status engine.Status
}

func New(log *zap.Logger, cfg Config) *Service {
	return &Service{log: log, cfg: cfg}
}

var _ engine.Plugin = (*Service)(nil)

func (s *Service) Init(ctx context.Context, eng *engine.Engine) error {
	s.eng = eng
	s.vdevs = s.vdevs[:0]
	for _, vc := range s.cfg.Devices {
		if vc.Name == "" || len(vc.Sources) == 0 {
			return fmt.Errorf("virtual device needs a name and at least one source")
		}
		s.vdevs = append(s.vdevs, newVirtualDevice(s.log.Named(vc.Name), eng, vc))
	}

	// Devices registered before this plugin started.
	for _, view := range eng.Devices() {
		for _, v := range s.vdevs {
			v.attach(ctx, view)
		}
	}

	s.setStatus(engine.Status{State: engine.PluginRunning})
	s.log.Info("Virtual controller service started", zap.Int("devices", len(s.vdevs)))
	return nil
}

func (s *Service) Stop() {
	ctx := context.Background()
	for _, v := range s.vdevs {
		v.shutdown(ctx)
	}
	s.setStatus(engine.Status{State: engine.PluginStopped})
}

func (s *Service) Status() engine.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) setStatus(st engine.Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Service) Name() string {
	return PluginType
}

func (s *Service) Kind() engine.PluginKind {
	return engine.PluginFrontend
}

func (s *Service) Events() []engine.EventKind {
	return []engine.EventKind{engine.EventDeviceAdded, engine.EventDeviceRemoved, engine.EventDeviceUpdate}
}

func (s *Service) HandleEvent(ctx context.Context, ev engine.Event) {
	switch ev.Kind {
	case engine.EventDeviceAdded:
		view, ok := s.eng.GetDevice(ev.ID)
		if !ok {
			return
		}
		for _, v := range s.vdevs {
			v.attach(ctx, view)
		}
	case engine.EventDeviceRemoved:
		for _, v := range s.vdevs {
			v.detach(ctx, ev.ID)
		}
	case engine.EventDeviceUpdate:
		for _, v := range s.vdevs {
			if v.hasSource(ev.ID) {
				v.tick(ctx, ev.Mask)
			}
		}
	}
}

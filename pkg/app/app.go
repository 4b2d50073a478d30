// Package app wires the zinput daemon together: engine, config service,
// plugin registry and the database.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/zinput/zinput-go/device"
	"github.com/zinput/zinput-go/engine"
	"github.com/zinput/zinput-go/internal/configsvc"
	"github.com/zinput/zinput-go/internal/virtsvc"
)

// DevicesFile maps stable device IDs to their configuration (devices.yml).
type DevicesFile map[string]device.Config

type App struct {
	config Config
	log    *zap.Logger

	db        *badger.DB
	store     *configsvc.Store
	configSvc *configsvc.Service
	eng       *engine.Engine
	registry  *engine.PluginRegistry

	// mu guards deviceCfgs; the watcher callback swaps it while the
	// device-added goroutine reads it.
	mu         sync.Mutex
	deviceCfgs DevicesFile
}

func NewApp(config Config) (*App, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbOptions := badger.DefaultOptions(filepath.Join(config.DataDir, "db"))
	dbOptions.Logger = &badgerLogger{l: logger.Named("badger")}
	db, err := badger.Open(dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	eng := engine.New(logger.Named("engine"))
	reg := engine.NewPluginRegistry(engine.PluginProvider{Log: logger})
	virtsvc.Register(reg)

	return &App{
		config:    config,
		log:       logger,
		db:        db,
		store:     configsvc.NewStore(db),
		configSvc: configsvc.New(logger.Named("config")),
		eng:       eng,
		registry:  reg,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) Engine() *engine.Engine {
	return a.eng
}

func (a *App) ConfigStore() *configsvc.Store {
	return a.store
}

// Run starts the daemon and blocks until ctx is cancelled. Startup fails on
// invalid configuration; configuration that becomes invalid afterwards is
// logged and the last valid one stays in effect.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.configSvc.Start(groupCtx)
	})
	group.Go(func() error {
		return a.eng.Start(groupCtx)
	})
	select {
	case <-groupCtx.Done():
		return group.Wait()
	case <-a.configSvc.Ready():
	}
	select {
	case <-groupCtx.Done():
		return group.Wait()
	case <-a.eng.Ready():
	}

	if err := a.startPlugins(groupCtx, group); err != nil {
		cancel()
		group.Wait()
		return err
	}
	if err := a.watchDeviceConfigs(groupCtx, group); err != nil {
		cancel()
		group.Wait()
		return err
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}

func (a *App) startPlugins(ctx context.Context, group *errgroup.Group) error {
	cfg, err := configsvc.Register(a.configSvc, a.config.PluginsConfig, PluginsFile{},
		func(_ PluginsFile, _ error) {
			a.log.Warn("Plugin configuration changed, restart to apply")
		})
	if err != nil {
		return fmt.Errorf("failed to load plugin config: %w", err)
	}

	for _, pc := range cfg.Plugins {
		p, err := a.registry.New(pc.Type, pc.Config)
		if err != nil {
			return fmt.Errorf("failed to create plugin %q: %w", pc.Type, err)
		}
		a.log.Info("Starting plugin", zap.String("name", p.Name()), zap.String("kind", string(p.Kind())))
		group.Go(func() error {
			return engine.RunPlugin(ctx, a.eng, p)
		})
	}
	return nil
}

// watchDeviceConfigs applies devices.yml to present and future devices and
// autoloads stored configs for devices that ask for it.
func (a *App) watchDeviceConfigs(ctx context.Context, group *errgroup.Group) error {
	cfg, err := configsvc.Register(a.configSvc, a.config.DevicesConfig, DevicesFile{},
		func(newCfg DevicesFile, err error) {
			if err != nil {
				a.log.Error("Invalid devices config, keeping previous", zap.Error(err))
				return
			}
			a.setDeviceConfigs(newCfg)
			a.applyDeviceConfigs(newCfg)
		})
	if err != nil {
		return fmt.Errorf("failed to load devices config: %w", err)
	}
	a.setDeviceConfigs(cfg)
	a.applyDeviceConfigs(cfg)

	events := a.eng.Subscribe(ctx, engine.EventDeviceAdded)
	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-events:
				if !ok {
					return nil
				}
				a.configureNewDevice(msg.Message)
			}
		}
	})
	return nil
}

func (a *App) setDeviceConfigs(cfgs DevicesFile) {
	a.mu.Lock()
	a.deviceCfgs = cfgs
	a.mu.Unlock()
}

func (a *App) deviceConfig(id string) (device.Config, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg, ok := a.deviceCfgs[id]
	return cfg, ok
}

func (a *App) applyDeviceConfigs(cfgs DevicesFile) {
	for _, view := range a.eng.Devices() {
		id := view.Info().ID
		if id == "" {
			continue
		}
		if cfg, ok := cfgs[id]; ok {
			view.SetConfig(cfg)
		}
	}
}

func (a *App) configureNewDevice(ev engine.Event) {
	if ev.Info == nil || ev.Info.ID == "" {
		return
	}
	view, ok := a.eng.GetDevice(ev.ID)
	if !ok {
		return
	}
	if cfg, ok := a.deviceConfig(ev.Info.ID); ok {
		view.SetConfig(cfg)
		return
	}
	if ev.Info.AutoloadConfig {
		cfg, err := a.store.Load(ev.Info.ID, "default")
		if err != nil {
			a.log.Debug("No stored config for device", zap.String("id", ev.Info.ID))
			return
		}
		view.SetConfig(cfg)
	}
}

type badgerLogger struct {
	l *zap.Logger
}

func (l badgerLogger) Errorf(msg string, args ...any) {
	l.l.Error(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Warningf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Infof(msg string, args ...any) {
	l.l.Info(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Debugf(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}

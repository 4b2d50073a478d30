package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zinput/zinput-go/pkg/registry"
)

// PluginKind groups plugins by role. Backends feed devices into the engine,
// frontends consume merged devices; anything else uses a custom kind string.
type PluginKind string

const (
	PluginBackend  PluginKind = "backend"
	PluginFrontend PluginKind = "frontend"
)

// PluginState is a plugin's lifecycle state.
type PluginState uint8

const (
	PluginStopped PluginState = iota
	PluginRunning
	PluginFailed
)

type Status struct {
	State PluginState
	Err   error
}

func (s Status) String() string {
	switch s.State {
	case PluginRunning:
		return "running"
	case PluginFailed:
		if s.Err != nil {
			return fmt.Sprintf("error: %s", s.Err)
		}
		return "error"
	default:
		return "stopped"
	}
}

// Plugin is a device producer or consumer attached to the engine. Init is
// called once before any events are delivered; HandleEvent receives exactly
// the event kinds listed by Events.
type Plugin interface {
	Init(ctx context.Context, eng *Engine) error
	Stop()
	Status() Status
	Name() string
	Kind() PluginKind
	Events() []EventKind
	HandleEvent(ctx context.Context, ev Event)
}

// PluginProvider carries the dependencies handed to plugin constructors.
type PluginProvider struct {
	Log *zap.Logger
}

// PluginRegistry maps plugin type ids to constructors taking a raw config
// payload.
type PluginRegistry = registry.Registry[Plugin, PluginProvider]

func NewPluginRegistry(p PluginProvider) *PluginRegistry {
	return registry.New[Plugin, PluginProvider](p)
}

// RunPlugin initialises a plugin and forwards its subscribed engine events
// to it until ctx is cancelled, then stops it. Plugins that subscribe to no
// event kinds just run until cancellation.
func RunPlugin(ctx context.Context, eng *Engine, p Plugin) error {
	if err := p.Init(ctx, eng); err != nil {
		return fmt.Errorf("plugin %s: init: %w", p.Name(), err)
	}
	defer p.Stop()

	kinds := p.Events()
	if len(kinds) == 0 {
		<-ctx.Done()
		return nil
	}
	events := eng.Subscribe(ctx, kinds...)

	// Events are queued in between so the subscription stays drained while
	// HandleEvent runs. A handler may publish events of its own; if the
	// subscription backed up, that publish and the bus delivery worker
	// would block on each other.
	queue := make(chan Event)
	go func() {
		defer close(queue)
		var pending []Event
		for {
			var out chan Event
			var next Event
			if len(pending) > 0 {
				out = queue
				next = pending[0]
			}
			select {
			case msg, ok := <-events:
				if !ok {
					return
				}
				pending = append(pending, msg.Message)
			case out <- next:
				pending = pending[1:]
			}
		}
	}()

	for ev := range queue {
		p.HandleEvent(ctx, ev)
	}
	return nil
}

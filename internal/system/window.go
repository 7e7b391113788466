package system

import (
	"context"

	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	"github.com/sgengine/sge/internal/core/event"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/input"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// CloseRequestSystem stops every window when Escape is held. Clearing
// WindowState.Running is what ends the engine loop.
type CloseRequestSystem struct {
	store *world.Store
	input input.Snapshot
}

func NewCloseRequestSystem(hub *input.Hub) *CloseRequestSystem {
	return &CloseRequestSystem{input: hub.Monitor([]input.Key{input.KeyEscape}, nil)}
}

func (s *CloseRequestSystem) Name() string         { return NameCloseRequest }
func (s *CloseRequestSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *CloseRequestSystem) Mode() coresys.Mode   { return coresys.Parallel }
func (s *CloseRequestSystem) WriteSet() []string   { return []string{component.KindWindowState} }

func (s *CloseRequestSystem) Configure(store *world.Store, _ *scene.Bindings) error {
	s.store = store
	return nil
}

func (s *CloseRequestSystem) Run(_ context.Context) error {
	if s.input.IsKeyDown(input.KeyEscape) {
		stopAll(s.store)
	}
	return nil
}

func stopAll(store *world.Store) {
	store.Windows.Each(func(_ ecs.EntityID, w *component.WindowState) {
		w.Running = false
	})
}

// EventDispatchSystem delivers the window events queued since the last tick
// and applies them to every WindowState.
type EventDispatchSystem struct {
	store *world.Store
	bus   *event.Bus
	log   *zap.Logger
}

func NewEventDispatchSystem(bus *event.Bus, log *zap.Logger) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus, log: log}
}

func (s *EventDispatchSystem) Name() string         { return NameEventDispatch }
func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *EventDispatchSystem) Mode() coresys.Mode   { return coresys.Serial }
func (s *EventDispatchSystem) WriteSet() []string   { return []string{component.KindWindowState} }

func (s *EventDispatchSystem) Configure(store *world.Store, _ *scene.Bindings) error {
	s.store = store
	event.Subscribe(s.bus, func(e event.Resized) {
		store.Windows.Each(func(_ ecs.EntityID, w *component.WindowState) {
			w.Width, w.Height = e.Width, e.Height
			w.ViewportChanged = true
		})
	})
	event.Subscribe(s.bus, func(event.CloseRequested) {
		s.log.Info("close requested by window")
		stopAll(store)
	})
	return nil
}

func (s *EventDispatchSystem) Run(_ context.Context) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}

package system

import (
	"context"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// IntegratorSystem advances every Kinematics+Transform entity by one step:
// p += v*dt + a*dt*dt/2. Velocity is not integrated. Without a timer binding
// the first Clock is used; dt is 0 only when the world has no clock.
type IntegratorSystem struct {
	store *world.Store
	clock ecs.EntityID
}

func NewIntegratorSystem() *IntegratorSystem { return &IntegratorSystem{} }

func (s *IntegratorSystem) Name() string         { return NameIntegrator }
func (s *IntegratorSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *IntegratorSystem) Mode() coresys.Mode   { return coresys.Parallel }
func (s *IntegratorSystem) WriteSet() []string   { return []string{component.KindTransform} }

func (s *IntegratorSystem) Configure(store *world.Store, b *scene.Bindings) error {
	clock, err := optionalEntity(store, b, NameIntegrator, "timer")
	if err != nil {
		return err
	}
	if clock.IsZero() {
		clock, _, _ = store.Clocks.First()
	}
	s.store, s.clock = store, clock
	return nil
}

func (s *IntegratorSystem) Run(_ context.Context) error {
	dt := float32(s.store.DeltaTime(s.clock))
	ecs.Each2(s.store.Kinematics, s.store.Transforms, func(_ ecs.EntityID, k *component.Kinematics, t *component.Transform) {
		t.Position = t.Position.
			Add(k.Velocity.Mul(dt)).
			Add(k.Acceleration.Mul(0.5 * dt * dt))
	})
	return nil
}

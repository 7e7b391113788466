package system

import (
	"context"
	"time"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// TimeAdvanceSystem updates the Clock component from the wall clock.
// LastFrame is seconds since the system was configured; DT is the distance
// from the previous LastFrame, so two runs in the same instant yield DT 0.
type TimeAdvanceSystem struct {
	store *world.Store
	now   func() time.Time
	epoch time.Time
	clock ecs.EntityID
}

// NewTimeAdvanceSystem uses now as the clock source; nil means time.Now.
func NewTimeAdvanceSystem(now func() time.Time) *TimeAdvanceSystem {
	if now == nil {
		now = time.Now
	}
	return &TimeAdvanceSystem{now: now}
}

func (s *TimeAdvanceSystem) Name() string         { return NameTimeAdvance }
func (s *TimeAdvanceSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *TimeAdvanceSystem) Mode() coresys.Mode   { return coresys.Parallel }
func (s *TimeAdvanceSystem) WriteSet() []string   { return []string{component.KindClock} }
func (s *TimeAdvanceSystem) Clock() ecs.EntityID  { return s.clock }

func (s *TimeAdvanceSystem) Configure(store *world.Store, b *scene.Bindings) error {
	clock, err := bindEntity(store, b, NameTimeAdvance, "timer", false)
	if err != nil {
		return err
	}
	s.bind(store, clock)
	return nil
}

func (s *TimeAdvanceSystem) bind(store *world.Store, clock ecs.EntityID) {
	s.store = store
	s.clock = clock
	s.epoch = s.now()
	if !store.Clocks.Has(clock) {
		store.Clocks.Set(clock, &component.Clock{})
	}
}

func (s *TimeAdvanceSystem) Run(_ context.Context) error {
	c, ok := s.store.Clocks.Get(s.clock)
	if !ok {
		return nil
	}
	current := s.now().Sub(s.epoch).Seconds()
	c.DT = current - c.LastFrame
	if c.DT < 0 {
		c.DT = 0
	}
	c.LastFrame = current
	return nil
}

package system

import (
	"context"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/scripting"
	"github.com/sgengine/sge/internal/world"
)

// ScriptSystem calls the Lua update(dt) hook once per tick. Serial: the VM
// is single-goroutine.
type ScriptSystem struct {
	store *world.Store
	lua   *scripting.Engine
	clock ecs.EntityID
}

func NewScriptSystem(lua *scripting.Engine) *ScriptSystem {
	return &ScriptSystem{lua: lua}
}

func (s *ScriptSystem) Name() string         { return NameScript }
func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *ScriptSystem) Mode() coresys.Mode   { return coresys.Serial }
func (s *ScriptSystem) WriteSet() []string   { return []string{component.KindKinematics} }

func (s *ScriptSystem) Configure(store *world.Store, b *scene.Bindings) error {
	clock, err := optionalEntity(store, b, NameScript, "timer")
	if err != nil {
		return err
	}
	if clock.IsZero() {
		clock, _, _ = store.Clocks.First()
	}
	s.store, s.clock = store, clock
	return nil
}

func (s *ScriptSystem) Run(_ context.Context) error {
	return s.lua.Update(s.store.DeltaTime(s.clock))
}

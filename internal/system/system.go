// Package system holds the engine's concrete systems. Each one is a
// coresys.System carrying its own phase and mode; systems that need entity
// bindings from systems.yml implement Configurable.
package system

import (
	"fmt"

	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// Names double as the block keys in systems.yml.
const (
	NameEventDispatch       = "EventDispatch"
	NameTimeAdvance         = "TimeAdvance"
	NameCloseRequest        = "CloseRequest"
	NameInputDrivenMovement = "InputDrivenMovement"
	NameIntegrator          = "Integrator"
	NameViewportCamera      = "ViewportCamera"
	NameScript              = "Script"
	NameRenderer            = "Renderer"
	NameStartupAssetLoad    = "StartupAssetLoad"
	NameSnapshotRestore     = "SnapshotRestore"
	NameSnapshotSave        = "SnapshotSave"
	NameShutdownTeardown    = "ShutdownTeardown"
)

// Configurable systems resolve their entity bindings once, after the scene
// has been applied and before the Start phase runs.
type Configurable interface {
	Configure(store *world.Store, b *scene.Bindings) error
}

// Runnable is what the engine registers: a system with fixed tags.
type Runnable interface {
	coresys.System
	coresys.Tagged
}

// bindEntity resolves system.key to a live entity. "none" resolves to
// ecs.Null when optional is set.
func bindEntity(store *world.Store, b *scene.Bindings, system, key string, optional bool) (ecs.EntityID, error) {
	idx, err := b.Entity(system, key)
	if err != nil {
		return ecs.Null, err
	}
	if idx == 0 {
		if optional {
			return ecs.Null, nil
		}
		return ecs.Null, fmt.Errorf("%s.%s: an entity is required", system, key)
	}
	id, ok := store.Lookup(idx)
	if !ok {
		return ecs.Null, fmt.Errorf("%s.%s: entity %d does not exist", system, key, idx)
	}
	return id, nil
}

// optionalEntity is bindEntity for keys that may be absent altogether.
func optionalEntity(store *world.Store, b *scene.Bindings, system, key string) (ecs.EntityID, error) {
	if b == nil || !b.HasKey(system, key) {
		return ecs.Null, nil
	}
	return bindEntity(store, b, system, key, true)
}

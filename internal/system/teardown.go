package system

import (
	"context"

	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/render"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// ShutdownTeardownSystem releases every GPU resource still referenced by the
// world and drops the CPU-side meshes.
type ShutdownTeardownSystem struct {
	store  *world.Store
	device render.Device
	log    *zap.Logger
}

func NewShutdownTeardownSystem(device render.Device, log *zap.Logger) *ShutdownTeardownSystem {
	return &ShutdownTeardownSystem{device: device, log: log}
}

func (s *ShutdownTeardownSystem) Name() string         { return NameShutdownTeardown }
func (s *ShutdownTeardownSystem) Phase() coresys.Phase { return coresys.PhaseStop }
func (s *ShutdownTeardownSystem) Mode() coresys.Mode   { return coresys.Serial }

func (s *ShutdownTeardownSystem) Configure(store *world.Store, _ *scene.Bindings) error {
	s.store = store
	return nil
}

func (s *ShutdownTeardownSystem) Run(_ context.Context) error {
	buffers := map[render.BufferHandle]struct{}{}
	programs := map[render.ProgramHandle]struct{}{}

	var ids []ecs.EntityID
	s.store.Vertices.Each(func(id ecs.EntityID, vb *component.VertexBuffer) {
		buffers[vb.Handle] = struct{}{}
		ids = append(ids, id)
	})
	for _, id := range ids {
		s.store.Vertices.Remove(id)
	}

	ids = ids[:0]
	s.store.Indices.Each(func(id ecs.EntityID, ib *component.IndexBuffer) {
		buffers[ib.Handle] = struct{}{}
		ids = append(ids, id)
	})
	for _, id := range ids {
		s.store.Indices.Remove(id)
	}

	ids = ids[:0]
	s.store.Programs.Each(func(id ecs.EntityID, p *component.Program) {
		programs[p.Handle] = struct{}{}
		ids = append(ids, id)
	})
	for _, id := range ids {
		s.store.Programs.Remove(id)
	}

	ids = ids[:0]
	s.store.Meshes.Each(func(id ecs.EntityID, _ *component.Mesh) { ids = append(ids, id) })
	for _, id := range ids {
		s.store.Meshes.Remove(id)
	}

	for h := range buffers {
		if h.Valid() {
			s.device.DestroyBuffer(h)
		}
	}
	for h := range programs {
		if h.Valid() {
			s.device.DestroyProgram(h)
		}
	}
	s.log.Info("graphics released", zap.Int("buffers", len(buffers)), zap.Int("programs", len(programs)))
	return nil
}

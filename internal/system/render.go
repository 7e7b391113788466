package system

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/render"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// RenderSystem submits one draw call per Transform+VertexBuffer+Program
// entity, framed by the camera's matrices. Serial: backends are not shared
// across goroutines.
type RenderSystem struct {
	store   *world.Store
	backend render.Backend
	camera  ecs.EntityID
}

func NewRenderSystem(backend render.Backend) *RenderSystem {
	return &RenderSystem{backend: backend}
}

func (s *RenderSystem) Name() string         { return NameRenderer }
func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *RenderSystem) Mode() coresys.Mode   { return coresys.Serial }
func (s *RenderSystem) WriteSet() []string   { return nil }

// Configure binds the camera. Without one the frame uses identity matrices.
func (s *RenderSystem) Configure(store *world.Store, b *scene.Bindings) error {
	camera, err := optionalEntity(store, b, NameRenderer, "camera")
	if err != nil {
		return err
	}
	if camera.IsZero() {
		camera, _, _ = store.Cameras.First()
	}
	s.store, s.camera = store, camera
	return nil
}

func (s *RenderSystem) Run(_ context.Context) error {
	view, proj := mgl32.Ident4(), mgl32.Ident4()
	if cam, ok := s.store.Cameras.Get(s.camera); ok {
		view, proj = cam.View, cam.Projection
	}

	s.backend.BeginFrame(view, proj)
	ecs.Each3(s.store.Transforms, s.store.Vertices, s.store.Programs,
		func(id ecs.EntityID, t *component.Transform, vb *component.VertexBuffer, p *component.Program) {
			dc := render.DrawCall{Model: t.Matrix(), Vertex: vb.Handle, Program: p.Handle}
			if ib, ok := s.store.Indices.Get(id); ok {
				dc.Index = ib.Handle
			}
			s.backend.Submit(dc)
		})
	if err := s.backend.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	return nil
}

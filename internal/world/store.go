package world

import (
	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
)

// Store is the shared world every system reads and writes. It owns one typed
// component store per component kind, all registered for bulk removal.
//
// No locking: the scheduler's bands decide who may write what. Creating or
// destroying entities and attaching or removing components changes the
// underlying maps, so only Start/Stop systems and Serial systems may do that.
type Store struct {
	*ecs.World

	Clocks      *ecs.PtrComponentStore[component.Clock]
	Transforms  *ecs.PtrComponentStore[component.Transform]
	Kinematics  *ecs.PtrComponentStore[component.Kinematics]
	Windows     *ecs.PtrComponentStore[component.WindowState]
	Links       *ecs.PtrComponentStore[component.AttachmentLink]
	Disabled    *ecs.PtrComponentStore[component.MovementDisabled]
	Cameras     *ecs.PtrComponentStore[component.Camera]
	Tags        *ecs.PtrComponentStore[component.Tag]
	Controllers *ecs.PtrComponentStore[component.PrimaryController]
	Meshes      *ecs.PtrComponentStore[component.Mesh]
	Vertices    *ecs.PtrComponentStore[component.VertexBuffer]
	Indices     *ecs.PtrComponentStore[component.IndexBuffer]
	Programs    *ecs.PtrComponentStore[component.Program]
}

func NewStore() *Store {
	s := &Store{
		World:       ecs.NewWorld(),
		Clocks:      ecs.NewPtrComponentStore[component.Clock](component.KindClock),
		Transforms:  ecs.NewPtrComponentStore[component.Transform](component.KindTransform),
		Kinematics:  ecs.NewPtrComponentStore[component.Kinematics](component.KindKinematics),
		Windows:     ecs.NewPtrComponentStore[component.WindowState](component.KindWindowState),
		Links:       ecs.NewPtrComponentStore[component.AttachmentLink](component.KindAttachmentLink),
		Disabled:    ecs.NewPtrComponentStore[component.MovementDisabled](component.KindMovementDisabled),
		Cameras:     ecs.NewPtrComponentStore[component.Camera](component.KindCamera),
		Tags:        ecs.NewPtrComponentStore[component.Tag](component.KindTag),
		Controllers: ecs.NewPtrComponentStore[component.PrimaryController](component.KindPrimaryController),
		Meshes:      ecs.NewPtrComponentStore[component.Mesh](component.KindMesh),
		Vertices:    ecs.NewPtrComponentStore[component.VertexBuffer](component.KindVertexBuffer),
		Indices:     ecs.NewPtrComponentStore[component.IndexBuffer](component.KindIndexBuffer),
		Programs:    ecs.NewPtrComponentStore[component.Program](component.KindProgram),
	}
	reg := s.Registry()
	reg.Register(s.Clocks)
	reg.Register(s.Transforms)
	reg.Register(s.Kinematics)
	reg.Register(s.Windows)
	reg.Register(s.Links)
	reg.Register(s.Disabled)
	reg.Register(s.Cameras)
	reg.Register(s.Tags)
	reg.Register(s.Controllers)
	reg.Register(s.Meshes)
	reg.Register(s.Vertices)
	reg.Register(s.Indices)
	reg.Register(s.Programs)
	return s
}

// DeltaTime returns the clock's delta for entity clock, or 0 when that
// entity has no Clock.
func (s *Store) DeltaTime(clock ecs.EntityID) float64 {
	if c, ok := s.Clocks.Get(clock); ok {
		return c.DT
	}
	return 0
}

// Clock returns the first Clock component, or nil when no entity has one.
func (s *Store) Clock() *component.Clock {
	_, c, ok := s.Clocks.First()
	if !ok {
		return nil
	}
	return c
}

// AnyRunning reports whether at least one window entity is still running.
func (s *Store) AnyRunning() bool {
	running := false
	s.Windows.Each(func(_ ecs.EntityID, w *component.WindowState) {
		if w.Running {
			running = true
		}
	})
	return running
}

// FindByTag returns the first entity whose Tag name matches.
func (s *Store) FindByTag(name string) (ecs.EntityID, bool) {
	found := ecs.Null
	s.Tags.Each(func(id ecs.EntityID, t *component.Tag) {
		if found.IsZero() && t.Name == name {
			found = id
		}
	})
	return found, !found.IsZero()
}

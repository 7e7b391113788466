package system

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/input"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// MoveSpeed is the velocity magnitude of input-driven movement.
const MoveSpeed = 5

var moveKeys = []input.Key{input.KeyW, input.KeyS, input.KeyA, input.KeyD}

// InputDrivenMovementSystem steers the focus entity from W/S/A/D. When the
// focus is attached to a target, the target is steered instead. A held
// middle button pans a detached camera; scroll adjusts its zoom.
type InputDrivenMovementSystem struct {
	store *world.Store
	input input.Snapshot
	focus ecs.EntityID
}

// NewInputDrivenMovementSystem subscribes a monitor for the movement keys on hub.
func NewInputDrivenMovementSystem(hub *input.Hub) *InputDrivenMovementSystem {
	return &InputDrivenMovementSystem{
		input: hub.Monitor(moveKeys, []input.Button{input.ButtonMiddle}),
	}
}

func (s *InputDrivenMovementSystem) Name() string         { return NameInputDrivenMovement }
func (s *InputDrivenMovementSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *InputDrivenMovementSystem) Mode() coresys.Mode   { return coresys.Parallel }

func (s *InputDrivenMovementSystem) WriteSet() []string {
	return []string{component.KindKinematics, component.KindCamera, component.KindTransform}
}

// Configure binds the focus entity. With focus "none" the first entity
// tagged PrimaryController is used.
func (s *InputDrivenMovementSystem) Configure(store *world.Store, b *scene.Bindings) error {
	focus, err := optionalEntity(store, b, NameInputDrivenMovement, "focus")
	if err != nil {
		return err
	}
	s.store, s.focus = store, focus
	return nil
}

// target is the entity whose velocity is driven, and whether the focus is
// detached (follows nothing).
func (s *InputDrivenMovementSystem) target() (ecs.EntityID, bool) {
	focus := s.focus
	if focus.IsZero() {
		focus, _, _ = s.store.Controllers.First()
	}
	if link, ok := s.store.Links.Get(focus); ok && s.store.Alive(link.Target) {
		return link.Target, false
	}
	return focus, true
}

func (s *InputDrivenMovementSystem) Run(_ context.Context) error {
	target, detached := s.target()
	if target.IsZero() {
		return nil
	}

	if k, ok := s.store.Kinematics.Get(target); ok && !s.store.Disabled.Has(target) {
		k.Velocity = s.direction().Mul(MoveSpeed)
	}

	panX, panY := s.input.MouseOffset()
	if detached && s.input.IsMouseButtonDown(input.ButtonMiddle) && (panX != 0 || panY != 0) {
		pan := mgl32.Vec3{-float32(panX), float32(panY), 0}
		if t, ok := s.store.Transforms.Get(target); ok {
			t.Position = t.Position.Add(pan)
		} else if cam, ok := s.store.Cameras.Get(target); ok {
			cam.Position = cam.Position.Add(pan)
		}
	}

	if _, dy := s.input.ScrollDelta(); dy != 0 {
		if cam, ok := s.store.Cameras.Get(s.cameraEntity()); ok {
			cam.Zoom += float32(dy)
			if cam.Zoom < 0 {
				cam.Zoom = 0
			}
		}
	}
	return nil
}

// direction is the normalized sum of the held movement axes.
func (s *InputDrivenMovementSystem) direction() mgl32.Vec3 {
	var v mgl32.Vec3
	if s.input.IsKeyDown(input.KeyW) {
		v = v.Add(mgl32.Vec3{0, 1, 0})
	}
	if s.input.IsKeyDown(input.KeyS) {
		v = v.Sub(mgl32.Vec3{0, 1, 0})
	}
	if s.input.IsKeyDown(input.KeyA) {
		v = v.Sub(mgl32.Vec3{1, 0, 0})
	}
	if s.input.IsKeyDown(input.KeyD) {
		v = v.Add(mgl32.Vec3{1, 0, 0})
	}
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

func (s *InputDrivenMovementSystem) cameraEntity() ecs.EntityID {
	if !s.focus.IsZero() {
		return s.focus
	}
	id, _, _ := s.store.Cameras.First()
	return id
}

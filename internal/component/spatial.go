package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sgengine/sge/internal/core/ecs"
)

// Transform places an entity in world space.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns an identity transform at pos.
func NewTransform(pos mgl32.Vec3) *Transform {
	return &Transform{Position: pos, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns translate * rotate * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Kinematics is the motion state integrated into a Transform each tick.
type Kinematics struct {
	Velocity     mgl32.Vec3
	Acceleration mgl32.Vec3
}

// AttachmentLink is a weak reference to a follow target. ecs.Null means
// unattached. It never keeps the target alive.
type AttachmentLink struct {
	Target ecs.EntityID
}

// MovementDisabled suppresses input-driven velocity for its entity.
type MovementDisabled struct{}

// PrimaryController marks the entity the player steers.
type PrimaryController struct{}

// Tag is a human readable label.
type Tag struct {
	Name string
}

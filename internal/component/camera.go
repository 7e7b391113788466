package component

import "github.com/go-gl/mathgl/mgl32"

// Camera holds the view parameters and the matrices derived from them.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	Smooth   bool
	Zoom     float32

	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// Package render defines the graphics boundary the engine talks to. Backends
// own pipelines and shader compilation; systems only create resources,
// submit draw calls, and release resources.
package render

import "github.com/go-gl/mathgl/mgl32"

// BufferHandle names a GPU buffer. Zero is invalid.
type BufferHandle uint32

// ProgramHandle names a linked shader program. Zero is invalid.
type ProgramHandle uint32

func (h BufferHandle) Valid() bool  { return h != 0 }
func (h ProgramHandle) Valid() bool { return h != 0 }

// ProgramSource describes the shaders that make up a program.
type ProgramSource struct {
	Name           string
	VertexShader   string
	FragmentShader string
}

// Device creates and releases GPU resources.
type Device interface {
	CreateVertexBuffer(name string, positions []mgl32.Vec3) (BufferHandle, error)
	CreateIndexBuffer(name string, indices []uint16) (BufferHandle, error)
	CreateProgram(src ProgramSource) (ProgramHandle, error)
	DestroyBuffer(h BufferHandle)
	DestroyProgram(h ProgramHandle)
}

// DrawCall submits one object. Index is optional.
type DrawCall struct {
	Model   mgl32.Mat4
	Vertex  BufferHandle
	Index   BufferHandle
	Program ProgramHandle
}

// Backend records one frame at a time.
type Backend interface {
	BeginFrame(view, projection mgl32.Mat4)
	Submit(dc DrawCall)
	EndFrame() error
}

// Renderer is what the render system and the asset loader need.
type Renderer interface {
	Device
	Backend
}

package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sgengine/sge/internal/render"
)

// Vertex is one mesh vertex as stored in model files.
type Vertex struct {
	Pos      mgl32.Vec3
	TexCoord mgl32.Vec4
}

// Mesh is CPU-side geometry kept until teardown.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint16
}

// VertexBuffer references GPU-resident vertex data.
type VertexBuffer struct {
	Handle render.BufferHandle
	Count  int
}

// IndexBuffer references GPU-resident index data.
type IndexBuffer struct {
	Handle render.BufferHandle
	Count  int
}

// Program references a linked shader program.
type Program struct {
	Handle render.ProgramHandle
}

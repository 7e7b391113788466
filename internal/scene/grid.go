package scene

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Grid describes a flat cols×rows vertex grid on the z=0 plane, one unit
// between neighbours, with two triangles per cell.
type Grid struct {
	Cols, Rows     int
	PregenID       uint32
	VertexShader   string
	FragmentShader string
}

// Vertices returns how many vertices the grid has.
func (g Grid) Vertices() int { return g.Cols * g.Rows }

// Triangles returns how many triangles the grid has.
func (g Grid) Triangles() int { return 2 * (g.Cols - 1) * (g.Rows - 1) }

// Encode renders the grid as a model file.
func (g Grid) Encode() ([]byte, error) {
	if g.Cols < 2 || g.Rows < 2 {
		return nil, fmt.Errorf("grid %dx%d: need at least 2x2 vertices", g.Cols, g.Rows)
	}
	if g.Vertices() > math.MaxUint16+1 {
		return nil, fmt.Errorf("grid %dx%d: %d vertices do not fit 16-bit indices", g.Cols, g.Rows, g.Vertices())
	}
	if g.PregenID == 0 {
		return nil, fmt.Errorf("grid: PregenID must be > 0")
	}

	mesh := &meshDoc{
		PregenID: g.PregenID,
		NumVerts: g.Vertices(),
		Vertices: make([]float32, 0, 3*g.Vertices()),
		Indices:  make([]uint16, 0, 3*g.Triangles()),
	}
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			mesh.Vertices = append(mesh.Vertices, float32(x), float32(y), 0)
		}
	}
	at := func(x, y int) uint16 { return uint16(y*g.Cols + x) }
	for y := 0; y < g.Rows-1; y++ {
		for x := 0; x < g.Cols-1; x++ {
			mesh.Indices = append(mesh.Indices,
				at(x, y), at(x, y+1), at(x+1, y+1),
				at(x, y), at(x+1, y+1), at(x+1, y))
		}
	}
	mesh.NumIndices = len(mesh.Indices)

	vs, fs := g.VertexShader, g.FragmentShader
	if vs == "" {
		vs = "vs_flat"
	}
	if fs == "" {
		fs = "fs_flat"
	}
	return yaml.Marshal(&modelFile{
		Mesh: mesh,
		ShaderProgram: &programDoc{
			PregenID:         g.PregenID,
			VertexShader:     vs,
			FragmentShader:   fs,
			UseModelViewProj: true,
			LayoutElements:   []string{"float32", "3"},
		},
	})
}

package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/render"
)

type meshDoc struct {
	PregenID   uint32    `yaml:"PregenID"`
	NumVerts   int       `yaml:"NumVerts"`
	Vertices   []float32 `yaml:"Vertices,flow"`
	NumIndices int       `yaml:"NumIndices"`
	Indices    []uint16  `yaml:"Indices,flow"`
}

type programDoc struct {
	PregenID         uint32   `yaml:"PregenID"`
	VertexShader     string   `yaml:"VertexShader"`
	FragmentShader   string   `yaml:"FragmentShader"`
	UseModelViewProj bool     `yaml:"UseModelViewProj"`
	LayoutElements   []string `yaml:"LayoutElements,flow"`
}

type modelFile struct {
	Mesh          *meshDoc    `yaml:"Mesh"`
	ShaderProgram *programDoc `yaml:"ShaderProgram"`
}

// MeshAsset is a decoded Mesh block.
type MeshAsset struct {
	PregenID uint32
	Mesh     component.Mesh
}

// ProgramAsset is a decoded ShaderProgram block.
type ProgramAsset struct {
	PregenID         uint32
	Source           render.ProgramSource
	UseModelViewProj bool
	Layout           []string
}

// Model is everything one model file declares. Program is nil when the file
// has no ShaderProgram block.
type Model struct {
	Mesh    *MeshAsset
	Program *ProgramAsset
}

// LoadModel reads a model file. The Mesh block is required.
func LoadModel(path string) (*Model, error) {
	f, err := readModel(path)
	if err != nil {
		return nil, err
	}
	if f.Mesh == nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("missing Mesh block")}
	}
	m := &Model{}
	if m.Mesh, err = decodeMesh(path, f.Mesh); err != nil {
		return nil, err
	}
	if f.ShaderProgram != nil {
		if m.Program, err = decodeProgram(path, f.ShaderProgram); err != nil {
			return nil, err
		}
		if m.Program.PregenID != m.Mesh.PregenID {
			return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("program PregenID %d does not match mesh %d", m.Program.PregenID, m.Mesh.PregenID)}
		}
	}
	return m, nil
}

// LoadMesh reads only the Mesh block of a model file.
func LoadMesh(path string) (*MeshAsset, error) {
	f, err := readModel(path)
	if err != nil {
		return nil, err
	}
	if f.Mesh == nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("missing Mesh block")}
	}
	return decodeMesh(path, f.Mesh)
}

// LoadProgram reads only the ShaderProgram block of a model file.
func LoadProgram(path string) (*ProgramAsset, error) {
	f, err := readModel(path)
	if err != nil {
		return nil, err
	}
	if f.ShaderProgram == nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("missing ShaderProgram block")}
	}
	return decodeProgram(path, f.ShaderProgram)
}

func readModel(path string) (*modelFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("read model: %w", err)}
	}
	var f modelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("parse model: %w", err)}
	}
	return &f, nil
}

// decodeMesh accepts either 3 floats per vertex (position only) or 7
// (position followed by an xyzw texture coordinate).
func decodeMesh(path string, d *meshDoc) (*MeshAsset, error) {
	fail := func(format string, args ...any) (*MeshAsset, error) {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf(format, args...)}
	}
	if d.PregenID == 0 {
		return fail("mesh PregenID must be > 0")
	}
	if d.NumVerts <= 0 {
		return fail("mesh NumVerts must be > 0")
	}
	if len(d.Vertices)%d.NumVerts != 0 {
		return fail("%d vertex floats do not divide into %d vertices", len(d.Vertices), d.NumVerts)
	}
	stride := len(d.Vertices) / d.NumVerts
	if stride != 3 && stride != 7 {
		return fail("vertex stride %d, want 3 or 7", stride)
	}
	if d.NumIndices != len(d.Indices) {
		return fail("NumIndices %d but %d indices listed", d.NumIndices, len(d.Indices))
	}
	for _, idx := range d.Indices {
		if int(idx) >= d.NumVerts {
			return fail("index %d out of range for %d vertices", idx, d.NumVerts)
		}
	}

	verts := make([]component.Vertex, d.NumVerts)
	for i := range verts {
		f := d.Vertices[i*stride:]
		verts[i].Pos = mgl32.Vec3{f[0], f[1], f[2]}
		if stride == 7 {
			verts[i].TexCoord = mgl32.Vec4{f[3], f[4], f[5], f[6]}
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &MeshAsset{
		PregenID: d.PregenID,
		Mesh:     component.Mesh{Name: name, Vertices: verts, Indices: d.Indices},
	}, nil
}

func decodeProgram(path string, d *programDoc) (*ProgramAsset, error) {
	if d.PregenID == 0 {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("program PregenID must be > 0")}
	}
	if d.VertexShader == "" || d.FragmentShader == "" {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("program needs VertexShader and FragmentShader")}
	}
	if len(d.LayoutElements)%2 != 0 {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("LayoutElements must be type/count pairs")}
	}
	return &ProgramAsset{
		PregenID: d.PregenID,
		Source: render.ProgramSource{
			Name:           filepath.Base(path),
			VertexShader:   d.VertexShader,
			FragmentShader: d.FragmentShader,
		},
		UseModelViewProj: d.UseModelViewProj,
		Layout:           d.LayoutElements,
	}, nil
}

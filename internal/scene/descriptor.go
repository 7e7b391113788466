package scene

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// vec3 decodes a three element sequence.
type vec3 mgl32.Vec3

func (v *vec3) UnmarshalYAML(n *yaml.Node) error {
	var raw []float32
	if err := n.Decode(&raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("line %d: want 3 components, got %d", n.Line, len(raw))
	}
	*v = vec3{raw[0], raw[1], raw[2]}
	return nil
}

// quat decodes a [w, x, y, z] sequence.
type quat mgl32.Quat

func (q *quat) UnmarshalYAML(n *yaml.Node) error {
	var raw []float32
	if err := n.Decode(&raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("line %d: rotation wants [w, x, y, z], got %d values", n.Line, len(raw))
	}
	*q = quat{W: raw[0], V: mgl32.Vec3{raw[1], raw[2], raw[3]}}
	return nil
}

// entityRef is a pre-generated entity index, or 0 for "none".
type entityRef uint32

func (r *entityRef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: entity reference must be a scalar", n.Line)
	}
	if n.Value == "none" || n.Value == "" {
		*r = 0
		return nil
	}
	v, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: entity reference %q: %w", n.Line, n.Value, err)
	}
	*r = entityRef(v)
	return nil
}

type transformDoc struct {
	Position vec3  `yaml:"position"`
	Rotation *quat `yaml:"rotation"`
	Scale    *vec3 `yaml:"scale"`
}

type physicsDoc struct {
	Velocity     vec3 `yaml:"velocity"`
	Acceleration vec3 `yaml:"acceleration"`
}

type cameraDoc struct {
	Position vec3    `yaml:"position"`
	Front    vec3    `yaml:"front"`
	Up       vec3    `yaml:"up"`
	Right    vec3    `yaml:"right"`
	Smooth   bool    `yaml:"smooth"`
	Zoom     float32 `yaml:"zoom"`
}

type timeDoc struct {
	DT        float64 `yaml:"dt"`
	LastFrame float64 `yaml:"lastFrame"`
}

type windowDoc struct {
	SizeChange bool `yaml:"sizeChange"`
	Running    bool `yaml:"running"`
}

// entityDoc is one entry of the Entities block. Absent blocks mean the
// entity does not carry that component.
type entityDoc struct {
	PregenID          uint32        `yaml:"PregenID"`
	Transform         *transformDoc `yaml:"Transform"`
	Physics           *physicsDoc   `yaml:"Physics"`
	CameraComponent   *cameraDoc    `yaml:"CameraComponent"`
	AttachedTo        *entityRef    `yaml:"AttachedTo"`
	PrimaryController *bool         `yaml:"PrimaryController"`
	MovementDisabled  *bool         `yaml:"MovementDisabled"`
	Tag               *string       `yaml:"Tag"`
	Time              *timeDoc      `yaml:"Time"`
	WindowPtr         *windowDoc    `yaml:"WindowPtr"`
}

type entitiesFile struct {
	Entities map[string]entityDoc `yaml:"Entities"`
}

type systemsFile struct {
	Systems map[string]map[string]yaml.Node `yaml:"Systems"`
}

// Package scene loads the declarative YAML descriptors that populate the
// world at boot: the entity list, the per-system bindings and the model
// asset files.
package scene

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	"github.com/sgengine/sge/internal/world"
)

// ConfigLoadError reports a descriptor that is missing, malformed or
// inconsistent.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load scene %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// EntitySpec is one named entity of the descriptor.
type EntitySpec struct {
	Name string
	doc  entityDoc
}

// PregenID is the index the entity must occupy.
func (s EntitySpec) PregenID() uint32 { return s.doc.PregenID }

// Snapshot is the parsed entity descriptor, ordered by PregenID.
type Snapshot struct {
	path     string
	Entities []EntitySpec
}

// LoadConfig reads the entity descriptor and the system bindings.
func LoadConfig(entitiesPath, systemsPath string) (*Snapshot, *Bindings, error) {
	snap, err := LoadEntities(entitiesPath)
	if err != nil {
		return nil, nil, err
	}
	b, err := LoadBindings(systemsPath)
	if err != nil {
		return nil, nil, err
	}
	return snap, b, nil
}

// LoadEntities parses an entities.yml file.
func LoadEntities(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("read entities: %w", err)}
	}
	var f entitiesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("parse entities: %w", err)}
	}
	if f.Entities == nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("missing Entities block")}
	}

	snap := &Snapshot{path: path, Entities: make([]EntitySpec, 0, len(f.Entities))}
	seen := make(map[uint32]string, len(f.Entities))
	for name, doc := range f.Entities {
		if doc.PregenID == 0 {
			return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("entity %q: PregenID must be > 0", name)}
		}
		if other, dup := seen[doc.PregenID]; dup {
			return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("entities %q and %q share PregenID %d", other, name, doc.PregenID)}
		}
		seen[doc.PregenID] = name
		snap.Entities = append(snap.Entities, EntitySpec{Name: name, doc: doc})
	}
	sort.Slice(snap.Entities, func(i, j int) bool {
		return snap.Entities[i].doc.PregenID < snap.Entities[j].doc.PregenID
	})
	for _, e := range snap.Entities {
		if e.doc.AttachedTo == nil || *e.doc.AttachedTo == 0 {
			continue
		}
		if _, ok := seen[uint32(*e.doc.AttachedTo)]; !ok {
			return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("entity %q: AttachedTo %d is not declared", e.Name, *e.doc.AttachedTo)}
		}
	}
	return snap, nil
}

// Apply creates every entity at its pre-generated index and attaches the
// declared components. It returns the created handles by entity name.
func (s *Snapshot) Apply(store *world.Store) (map[string]ecs.EntityID, error) {
	ids := make(map[string]ecs.EntityID, len(s.Entities))
	for _, e := range s.Entities {
		id, err := store.CreateWithIndex(e.doc.PregenID)
		if err != nil {
			return nil, &ConfigLoadError{Path: s.path, Err: fmt.Errorf("entity %q: %w", e.Name, err)}
		}
		ids[e.Name] = id
	}
	for _, e := range s.Entities {
		attach(store, ids[e.Name], e.doc)
	}
	return ids, nil
}

func attach(store *world.Store, id ecs.EntityID, d entityDoc) {
	if d.Transform != nil {
		t := component.NewTransform(mgl32.Vec3(d.Transform.Position))
		if d.Transform.Rotation != nil {
			t.Rotation = mgl32.Quat(*d.Transform.Rotation)
		}
		if d.Transform.Scale != nil {
			t.Scale = mgl32.Vec3(*d.Transform.Scale)
		}
		store.Transforms.Set(id, t)
	}
	if d.Physics != nil {
		store.Kinematics.Set(id, &component.Kinematics{
			Velocity:     mgl32.Vec3(d.Physics.Velocity),
			Acceleration: mgl32.Vec3(d.Physics.Acceleration),
		})
	}
	if c := d.CameraComponent; c != nil {
		store.Cameras.Set(id, &component.Camera{
			Position:   mgl32.Vec3(c.Position),
			Front:      mgl32.Vec3(c.Front),
			Up:         mgl32.Vec3(c.Up),
			Right:      mgl32.Vec3(c.Right),
			Smooth:     c.Smooth,
			Zoom:       c.Zoom,
			View:       mgl32.Ident4(),
			Projection: mgl32.Ident4(),
		})
	}
	if d.AttachedTo != nil {
		target := ecs.Null
		if *d.AttachedTo != 0 {
			target, _ = store.Lookup(uint32(*d.AttachedTo))
		}
		store.Links.Set(id, &component.AttachmentLink{Target: target})
	}
	if d.PrimaryController != nil && *d.PrimaryController {
		store.Controllers.Set(id, &component.PrimaryController{})
	}
	if d.MovementDisabled != nil && *d.MovementDisabled {
		store.Disabled.Set(id, &component.MovementDisabled{})
	}
	if d.Tag != nil {
		store.Tags.Set(id, &component.Tag{Name: *d.Tag})
	}
	if d.Time != nil {
		store.Clocks.Set(id, &component.Clock{DT: d.Time.DT, LastFrame: d.Time.LastFrame})
	}
	if d.WindowPtr != nil {
		store.Windows.Set(id, &component.WindowState{
			Running:         d.WindowPtr.Running,
			ViewportChanged: d.WindowPtr.SizeChange,
		})
	}
}

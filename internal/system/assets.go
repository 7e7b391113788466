package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/render"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// StartupAssetLoadSystem uploads the model files named in the
// StartupAssetLoad block of systems.yml. Each consumed file is removed from
// the translation table, so scanning the directory again loads nothing twice.
// Files whose name contains the sentinel, and dot files, are never loaded.
type StartupAssetLoadSystem struct {
	store    *world.Store
	device   render.Device
	log      *zap.Logger
	dir      string
	sentinel string
	pending  map[string]uint32 // file name -> pre-generated entity index
}

func NewStartupAssetLoadSystem(device render.Device, dir, sentinel string, log *zap.Logger) *StartupAssetLoadSystem {
	return &StartupAssetLoadSystem{device: device, dir: dir, sentinel: sentinel, log: log}
}

func (s *StartupAssetLoadSystem) Name() string         { return NameStartupAssetLoad }
func (s *StartupAssetLoadSystem) Phase() coresys.Phase { return coresys.PhaseStart }
func (s *StartupAssetLoadSystem) Mode() coresys.Mode   { return coresys.Serial }

func (s *StartupAssetLoadSystem) Configure(store *world.Store, b *scene.Bindings) error {
	s.store = store
	if !b.Has(NameStartupAssetLoad) {
		s.pending = map[string]uint32{}
		return nil
	}
	table, err := b.Assets(NameStartupAssetLoad)
	if err != nil {
		return err
	}
	s.pending = table
	return nil
}

// Pending returns how many translation entries are still unconsumed.
func (s *StartupAssetLoadSystem) Pending() int { return len(s.pending) }

func (s *StartupAssetLoadSystem) skip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return s.sentinel != "" && strings.Contains(name, s.sentinel)
}

func (s *StartupAssetLoadSystem) Run(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scan models: %w", err)
	}
	loaded := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || s.skip(name) {
			continue
		}
		idx, ok := s.pending[name]
		if !ok {
			continue
		}
		if err := s.load(filepath.Join(s.dir, name), idx); err != nil {
			return err
		}
		delete(s.pending, name)
		loaded++
	}

	if len(s.pending) > 0 {
		missing := make([]string, 0, len(s.pending))
		for name := range s.pending {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		s.log.Warn("model files not found", zap.String("dir", s.dir), zap.Strings("files", missing))
	}
	s.log.Info("models loaded", zap.Int("count", loaded))
	return nil
}

func (s *StartupAssetLoadSystem) load(path string, idx uint32) error {
	id, ok := s.store.Lookup(idx)
	if !ok {
		return fmt.Errorf("model %s: entity %d does not exist", path, idx)
	}
	model, err := scene.LoadModel(path)
	if err != nil {
		return err
	}
	mesh := model.Mesh.Mesh

	positions := make([]mgl32.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = v.Pos
	}
	vb, err := s.device.CreateVertexBuffer(mesh.Name, positions)
	if err != nil {
		return fmt.Errorf("model %s: %w", path, err)
	}
	s.store.Meshes.Set(id, &mesh)
	s.store.Vertices.Set(id, &component.VertexBuffer{Handle: vb, Count: len(positions)})

	if len(mesh.Indices) > 0 {
		ib, err := s.device.CreateIndexBuffer(mesh.Name, mesh.Indices)
		if err != nil {
			return fmt.Errorf("model %s: %w", path, err)
		}
		s.store.Indices.Set(id, &component.IndexBuffer{Handle: ib, Count: len(mesh.Indices)})
	}

	if model.Program != nil {
		prog, err := s.device.CreateProgram(model.Program.Source)
		if err != nil {
			return fmt.Errorf("model %s: %w", path, err)
		}
		s.store.Programs.Set(id, &component.Program{Handle: prog})
	}
	if !s.store.Transforms.Has(id) {
		s.store.Transforms.Set(id, component.NewTransform(mgl32.Vec3{}))
	}

	s.log.Debug("model loaded",
		zap.String("file", path),
		zap.Stringer("entity", id),
		zap.Int("vertices", len(positions)),
		zap.Int("indices", len(mesh.Indices)))
	return nil
}

package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/world"
)

func newStoreWithMover(t *testing.T) *world.Store {
	t.Helper()
	s := world.NewStore()
	id, err := s.CreateWithIndex(5)
	require.NoError(t, err)
	s.Transforms.Set(id, component.NewTransform(mgl32.Vec3{1, 2, 3}))
	s.Kinematics.Set(id, &component.Kinematics{})
	s.Tags.Set(id, &component.Tag{Name: "mover"})
	return s
}

func TestEngine_UpdateDrivesWorld(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mover.lua"), []byte(`
local id = world.find("mover")
function update(dt)
  local x, y, z = world.position(id)
  world.set_velocity(id, x * 2, dt, z)
end
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	s := newStoreWithMover(t)
	e, err := NewEngine(dir, s, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.True(t, e.HasUpdate())
	require.NoError(t, e.Update(0.5))

	id, _ := s.Lookup(5)
	k, _ := s.Kinematics.Get(id)
	assert.Equal(t, mgl32.Vec3{2, 0.5, 3}, k.Velocity)
}

func TestEngine_MissingEntities(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), world.NewStore(), zap.NewNop())
	require.NoError(t, err, "missing script dir is not an error")
	defer e.Close()

	assert.False(t, e.HasUpdate())
	assert.NoError(t, e.Update(1))

	require.NoError(t, e.DoString(`
assert(world.position(9) == nil)
assert(world.set_velocity(9, 1, 1, 1) == false)
assert(world.find("ghost") == nil)
assert(API_VERSION == 1)
`))
}

func TestEngine_ScriptErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("this is not lua"), 0o644))
	_, err := NewEngine(dir, world.NewStore(), zap.NewNop())
	assert.Error(t, err)

	e, err := NewEngine(t.TempDir(), world.NewStore(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.DoString(`function update(dt) error("boom") end`))
	err = e.Update(0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

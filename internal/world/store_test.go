package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
)

func TestStore_DestroyClearsEveryStore(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()
	s.Transforms.Set(e, component.NewTransform(mgl32.Vec3{1, 2, 3}))
	s.Kinematics.Set(e, &component.Kinematics{})
	s.Disabled.Set(e, &component.MovementDisabled{})
	s.Tags.Set(e, &component.Tag{Name: "crate"})

	assert.ElementsMatch(t,
		[]string{component.KindTransform, component.KindKinematics, component.KindMovementDisabled, component.KindTag},
		s.Registry().ComponentsOf(e))

	require.True(t, s.Destroy(e))
	assert.Empty(t, s.Registry().ComponentsOf(e))
}

func TestStore_DeltaTimeWithoutClock(t *testing.T) {
	s := NewStore()
	assert.Zero(t, s.DeltaTime(ecs.Null))

	clock := s.CreateEntity()
	s.Clocks.Set(clock, &component.Clock{DT: 0.016})
	assert.InDelta(t, 0.016, s.DeltaTime(clock), 1e-9)
}

func TestStore_Clock(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Clock())

	clock := s.CreateEntity()
	s.Clocks.Set(clock, &component.Clock{LastFrame: 2})
	require.NotNil(t, s.Clock())
	assert.Equal(t, 2.0, s.Clock().LastFrame)
}

func TestStore_AnyRunning(t *testing.T) {
	s := NewStore()
	assert.False(t, s.AnyRunning(), "no window entity")

	w := s.CreateEntity()
	s.Windows.Set(w, &component.WindowState{Running: true})
	assert.True(t, s.AnyRunning())

	ws, _ := s.Windows.Get(w)
	ws.Running = false
	assert.False(t, s.AnyRunning())
}

func TestStore_FindByTag(t *testing.T) {
	s := NewStore()
	_, ok := s.FindByTag("player")
	assert.False(t, ok)

	p := s.CreateEntity()
	s.Tags.Set(p, &component.Tag{Name: "player"})
	got, ok := s.FindByTag("player")
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

func TestTransformMatrix(t *testing.T) {
	tr := component.NewTransform(mgl32.Vec3{2, 3, 4})
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.InDelta(t, 4, p.X(), 1e-5)
	assert.InDelta(t, 5, p.Y(), 1e-5)
	assert.InDelta(t, 6, p.Z(), 1e-5)
}

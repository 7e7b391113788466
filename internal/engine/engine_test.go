package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/config"
	"github.com/sgengine/sge/internal/core/event"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/system"
	"github.com/sgengine/sge/internal/window"
)

const entitiesYAML = `
Entities:
  Window:
    PregenID: 1
    WindowPtr:
      sizeChange: true
      running: true
  Clock:
    PregenID: 2
    Time:
      dt: 0
      lastFrame: 0
  Body:
    PregenID: 4
    Transform:
      position: [0, 0, 0]
    Physics:
      velocity: [1, 0, 0]
      acceleration: [0, 0, 0]
`

const systemsYAML = `
Systems:
  TimeAdvance:
    timer: 2
  Integrator:
    timer: 2
`

// stepClock advances half a second on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(500 * time.Millisecond)
	return c.t
}

// probe is a configurable test system that counts its runs.
type probe struct {
	name  string
	phase coresys.Phase
	mode  coresys.Mode
	err   error

	mu   sync.Mutex
	runs int
}

func (p *probe) Name() string         { return p.name }
func (p *probe) Phase() coresys.Phase { return p.phase }
func (p *probe) Mode() coresys.Mode   { return p.mode }

func (p *probe) Run(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs++
	return p.err
}

func (p *probe) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

type fixture struct {
	eng  *Engine
	win  *window.Headless
	bus  *event.Bus
	body string
}

func newFixture(t *testing.T, cfg config.EngineConfig) *fixture {
	t.Helper()
	dir := t.TempDir()
	ents := filepath.Join(dir, "entities.yml")
	syss := filepath.Join(dir, "systems.yml")
	require.NoError(t, os.WriteFile(ents, []byte(entitiesYAML), 0o644))
	require.NoError(t, os.WriteFile(syss, []byte(systemsYAML), 0o644))
	snap, b, err := scene.LoadConfig(ents, syss)
	require.NoError(t, err)

	bus := event.NewBus()
	win := window.NewHeadless(80, 24, bus)
	eng := New(Deps{Config: cfg, Window: win, Scene: snap, Bindings: b, Log: zap.NewNop()})

	clock := &stepClock{}
	require.NoError(t, eng.Register(system.NewEventDispatchSystem(bus, zap.NewNop()), 0))
	require.NoError(t, eng.Register(system.NewTimeAdvanceSystem(clock.Now), 1))
	require.NoError(t, eng.Register(system.NewIntegratorSystem(), 5))
	require.NoError(t, eng.Register(system.NewRenderSystem(win.Renderer()), 9))
	return &fixture{eng: eng, win: win, bus: bus, body: "Body"}
}

func (f *fixture) position(t *testing.T) mgl32.Vec3 {
	t.Helper()
	tr, ok := f.eng.Store().Transforms.Get(f.eng.Entities()[f.body])
	require.True(t, ok)
	return tr.Position
}

func TestEngine_RunsUntilFrameLimit(t *testing.T) {
	f := newFixture(t, config.EngineConfig{MaxFrames: 2})
	ctx := context.Background()

	assert.Equal(t, Uninitialized, f.eng.State())
	require.NoError(t, f.eng.Boot(ctx))
	assert.Equal(t, Booted, f.eng.State())

	ws, ok := f.eng.Store().Windows.Get(f.eng.Entities()["Window"])
	require.True(t, ok)
	assert.Equal(t, 80, ws.Width, "window size is copied at boot")
	assert.Equal(t, 24, ws.Height)

	require.NoError(t, f.eng.Run(ctx))
	assert.Equal(t, Running, f.eng.State())
	assert.Equal(t, uint64(2), f.eng.Ticks())
	assert.InDelta(t, 1.0, f.position(t).X(), 1e-5, "two ticks of half a second at unit speed")
	assert.Equal(t, 2, f.win.Recorder().Frames())

	require.NoError(t, f.eng.Shutdown(ctx))
	assert.Equal(t, Terminated, f.eng.State())
	assert.True(t, f.win.Closed())
}

func TestEngine_StopsWhenWindowCloses(t *testing.T) {
	f := newFixture(t, config.EngineConfig{})
	ctx := context.Background()
	require.NoError(t, f.eng.Boot(ctx))

	f.win.RequestClose()
	require.NoError(t, f.eng.Run(ctx))
	assert.Equal(t, uint64(1), f.eng.Ticks(), "the close lands during the first tick")
	assert.False(t, f.eng.Store().AnyRunning())
}

func TestEngine_ResizeReachesWindowState(t *testing.T) {
	f := newFixture(t, config.EngineConfig{MaxFrames: 1})
	ctx := context.Background()
	require.NoError(t, f.eng.Boot(ctx))

	f.win.Resize(120, 40)
	require.NoError(t, f.eng.Run(ctx))
	ws, _ := f.eng.Store().Windows.Get(f.eng.Entities()["Window"])
	assert.Equal(t, 120, ws.Width)
	assert.Equal(t, 40, ws.Height)
	assert.True(t, ws.ViewportChanged)
}

func TestEngine_StopsOnCancel(t *testing.T) {
	f := newFixture(t, config.EngineConfig{TickRate: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.eng.Boot(ctx))

	done := make(chan error, 1)
	go func() { done <- f.eng.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine loop did not stop after cancel")
	}
	assert.NotZero(t, f.eng.Ticks())
}

func TestEngine_TickFailureEndsRun(t *testing.T) {
	f := newFixture(t, config.EngineConfig{})
	bad := &probe{name: "bad", phase: coresys.PhaseRunning, mode: coresys.Parallel, err: errors.New("boom")}
	require.NoError(t, f.eng.Register(bad, 3))
	ctx := context.Background()
	require.NoError(t, f.eng.Boot(ctx))

	err := f.eng.Run(ctx)
	var tf *coresys.TickFailure
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, "bad", tf.System)
	assert.Equal(t, uint64(1), tf.Tick)
}

func TestEngine_StartupFailureStillShutsDown(t *testing.T) {
	f := newFixture(t, config.EngineConfig{})
	start := &probe{name: "start", phase: coresys.PhaseStart, mode: coresys.Serial, err: errors.New("no assets")}
	stop := &probe{name: "stop", phase: coresys.PhaseStop, mode: coresys.Serial}
	require.NoError(t, f.eng.Register(start, 0))
	require.NoError(t, f.eng.Register(stop, 0))
	ctx := context.Background()

	err := f.eng.Boot(ctx)
	var sf *coresys.StartupFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "start", sf.System)
	assert.Equal(t, Uninitialized, f.eng.State())

	var se *StateError
	assert.ErrorAs(t, f.eng.Run(ctx), &se, "cannot run without a successful boot")

	require.NoError(t, f.eng.Shutdown(ctx))
	assert.Equal(t, 1, stop.Runs())
}

func TestEngine_ShutdownOnlyOnce(t *testing.T) {
	f := newFixture(t, config.EngineConfig{MaxFrames: 1})
	stop := &probe{name: "stop", phase: coresys.PhaseStop, mode: coresys.Serial}
	require.NoError(t, f.eng.Register(stop, 0))
	ctx := context.Background()
	require.NoError(t, f.eng.Boot(ctx))
	require.NoError(t, f.eng.Run(ctx))

	require.NoError(t, f.eng.Shutdown(ctx))
	assert.ErrorIs(t, f.eng.Shutdown(ctx), ErrTerminated)
	assert.Equal(t, 1, stop.Runs())

	assert.ErrorIs(t, f.eng.Boot(ctx), ErrTerminated)
	assert.ErrorIs(t, f.eng.Run(ctx), ErrTerminated)
	assert.ErrorIs(t, f.eng.Register(stop, 1), ErrTerminated)
}

func TestEngine_ShutdownFailureIsReported(t *testing.T) {
	f := newFixture(t, config.EngineConfig{MaxFrames: 1})
	stop := &probe{name: "stop", phase: coresys.PhaseStop, mode: coresys.Serial, err: errors.New("leak")}
	after := &probe{name: "after", phase: coresys.PhaseStop, mode: coresys.Serial}
	require.NoError(t, f.eng.Register(stop, 0))
	require.NoError(t, f.eng.Register(after, 1))
	ctx := context.Background()
	require.NoError(t, f.eng.Boot(ctx))
	require.NoError(t, f.eng.Run(ctx))

	err := f.eng.Shutdown(ctx)
	var pf *coresys.ShutdownPartialFailure
	require.ErrorAs(t, err, &pf)
	require.Len(t, pf.Failed, 1)
	assert.Equal(t, "stop", pf.Failed[0].System)
	assert.Equal(t, 1, after.Runs(), "a failing stop system does not skip the rest")
	assert.True(t, f.win.Closed())
}

func TestEngine_RegisterAfterBoot(t *testing.T) {
	f := newFixture(t, config.EngineConfig{})
	require.NoError(t, f.eng.Boot(context.Background()))
	var se *StateError
	require.ErrorAs(t, f.eng.Register(&probe{name: "late"}, 0), &se)
	assert.Equal(t, Booted, se.State)
}

func TestEngine_ConfigureErrorFailsBoot(t *testing.T) {
	dir := t.TempDir()
	ents := filepath.Join(dir, "entities.yml")
	syss := filepath.Join(dir, "systems.yml")
	require.NoError(t, os.WriteFile(ents, []byte(entitiesYAML), 0o644))
	require.NoError(t, os.WriteFile(syss, []byte("Systems:\n  TimeAdvance:\n    timer: 9\n"), 0o644))
	snap, b, err := scene.LoadConfig(ents, syss)
	require.NoError(t, err)

	eng := New(Deps{Scene: snap, Bindings: b})
	require.NoError(t, eng.Register(system.NewTimeAdvanceSystem(nil), 1))
	err = eng.Boot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), system.NameTimeAdvance)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "State(9)", State(9).String())
}

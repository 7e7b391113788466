package window

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/core/event"
	"github.com/sgengine/sge/internal/input"
	"github.com/sgengine/sge/internal/render"
)

func TestTranslateKey(t *testing.T) {
	cases := []struct {
		key  tcell.Key
		r    rune
		want input.Key
	}{
		{tcell.KeyRune, 'w', input.KeyW},
		{tcell.KeyRune, 'W', input.KeyW},
		{tcell.KeyRune, 'a', input.KeyA},
		{tcell.KeyRune, 's', input.KeyS},
		{tcell.KeyRune, 'd', input.KeyD},
		{tcell.KeyRune, ' ', input.KeySpace},
		{tcell.KeyRune, 'x', input.KeyUnknown},
		{tcell.KeyEscape, 0, input.KeyEscape},
		{tcell.KeyUp, 0, input.KeyUp},
		{tcell.KeyEnter, 0, input.KeyEnter},
		{tcell.KeyF1, 0, input.KeyUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, translateKey(c.key, c.r), "%v %q", c.key, c.r)
	}
}

func TestWheelDelta(t *testing.T) {
	assert.Equal(t, 1.0, wheelDelta(tcell.WheelUp))
	assert.Equal(t, -1.0, wheelDelta(tcell.WheelDown))
	assert.Zero(t, wheelDelta(tcell.ButtonPrimary))
}

func TestProject(t *testing.T) {
	c, ok := project(mgl32.Ident4(), mgl32.Vec3{0, 0, 0}, 81, 41)
	require.True(t, ok)
	assert.Equal(t, cell{40, 20}, c)

	c, ok = project(mgl32.Ident4(), mgl32.Vec3{-1, 1, 0}, 81, 41)
	require.True(t, ok)
	assert.Equal(t, cell{0, 0}, c, "top left")

	_, ok = project(mgl32.Ident4(), mgl32.Vec3{2, 0, 0}, 81, 41)
	assert.False(t, ok, "outside clip volume")
}

func TestLine(t *testing.T) {
	assert.Equal(t, []cell{{0, 0}, {1, 0}, {2, 0}}, line(cell{0, 0}, cell{2, 0}))
	assert.Equal(t, []cell{{2, 2}, {1, 1}, {0, 0}}, line(cell{2, 2}, cell{0, 0}))
	assert.Equal(t, []cell{{3, 3}}, line(cell{3, 3}, cell{3, 3}))
}

func TestHeadless_PumpDeliversQueuedEvents(t *testing.T) {
	bus := event.NewBus()
	w := NewHeadless(80, 24, bus)

	var resized []event.Resized
	closes := 0
	event.Subscribe(bus, func(e event.Resized) { resized = append(resized, e) })
	event.Subscribe(bus, func(event.CloseRequested) { closes++ })

	w.Resize(100, 40)
	w.RequestClose()
	assert.Zero(t, bus.Pending(), "nothing emitted before Pump")

	w.Pump()
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, []event.Resized{{Width: 100, Height: 40}}, resized)
	assert.Equal(t, 1, closes)
	width, height := w.Size()
	assert.Equal(t, 100, width)
	assert.Equal(t, 40, height)

	require.NoError(t, w.Close())
	assert.True(t, w.Closed())
}

func newSimTerminal(t *testing.T, hub *input.Hub, bus *event.Bus) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term, err := newTerminal(sim, "test", hub, bus, zap.NewNop())
	require.NoError(t, err)
	sim.SetSize(40, 20)
	t.Cleanup(func() { term.Close() })
	return term, sim
}

func TestTerminal_HandleTranslatesEvents(t *testing.T) {
	hub := input.NewHub(input.WithHold(time.Hour))
	mon := hub.Monitor([]input.Key{input.KeyW, input.KeyEscape}, []input.Button{input.ButtonMiddle})
	bus := event.NewBus()
	term, _ := newSimTerminal(t, hub, bus)

	closes := 0
	var resized event.Resized
	event.Subscribe(bus, func(event.CloseRequested) { closes++ })
	event.Subscribe(bus, func(e event.Resized) { resized = e })

	term.handle(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone))
	term.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	term.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	term.handle(tcell.NewEventResize(60, 30))
	term.handle(tcell.NewEventMouse(5, 5, tcell.ButtonMiddle, tcell.ModNone))

	assert.True(t, mon.IsKeyDown(input.KeyW))
	assert.True(t, mon.IsKeyDown(input.KeyEscape))
	assert.True(t, mon.IsMouseButtonDown(input.ButtonMiddle))

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, closes)
	assert.Equal(t, event.Resized{Width: 60, Height: 30}, resized)
	w, h := term.Size()
	assert.Equal(t, 60, w)
	assert.Equal(t, 30, h)
}

func TestTerminal_RendersFrame(t *testing.T) {
	term, _ := newSimTerminal(t, input.NewHub(), event.NewBus())
	var r render.Renderer = term.Renderer()

	vb, err := r.CreateVertexBuffer("tri", []mgl32.Vec3{{0, 0, 0}, {0.5, 0, 0}, {0, 0.5, 0}})
	require.NoError(t, err)
	ib, err := r.CreateIndexBuffer("tri", []uint16{0, 1, 2})
	require.NoError(t, err)
	prog, err := r.CreateProgram(render.ProgramSource{Name: "p", VertexShader: "v", FragmentShader: "f"})
	require.NoError(t, err)

	r.BeginFrame(mgl32.Ident4(), mgl32.Ident4())
	r.Submit(render.DrawCall{Model: mgl32.Ident4(), Vertex: vb, Index: ib, Program: prog})
	require.NoError(t, r.EndFrame())
	assert.Equal(t, 1, term.Frames())

	assert.Error(t, r.EndFrame(), "end without begin")
}

func TestTerminal_CloseIsIdempotent(t *testing.T) {
	term, _ := newSimTerminal(t, input.NewHub(), event.NewBus())
	require.NoError(t, term.Close())
	require.NoError(t, term.Close())
}

package window

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/core/event"
	"github.com/sgengine/sge/internal/input"
	"github.com/sgengine/sge/internal/render"
)

// Terminal is a tcell-backed window. Geometry is rasterized as wireframe
// glyphs: vertices are projected through projection*view*model onto the cell
// grid and triangle edges are drawn between them.
type Terminal struct {
	*render.Recorder

	screen tcell.Screen
	title  string
	hub    *input.Hub
	bus    *event.Bus
	log    *zap.Logger

	events    chan tcell.Event
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	width  int
	height int

	edge   tcell.Style
	vertex tcell.Style
	banner tcell.Style
}

// NewTerminal takes over the controlling terminal.
func NewTerminal(title string, hub *input.Hub, bus *event.Bus, log *zap.Logger) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &DeviceInitError{Backend: "terminal", Err: err}
	}
	return newTerminal(screen, title, hub, bus, log)
}

func newTerminal(screen tcell.Screen, title string, hub *input.Hub, bus *event.Bus, log *zap.Logger) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, &DeviceInitError{Backend: "terminal", Err: err}
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		Recorder: render.NewRecorder(),
		screen:   screen,
		title:    title,
		hub:      hub,
		bus:      bus,
		log:      log,
		events:   make(chan tcell.Event, 100),
		done:     make(chan struct{}),
		edge:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
		vertex:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
		banner:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true),
	}
	t.width, t.height = screen.Size()
	go t.poll()
	return t, nil
}

func (t *Terminal) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Pump drains every event received since the last call.
func (t *Terminal) Pump() {
	for {
		select {
		case ev := <-t.events:
			t.handle(ev)
		default:
			return
		}
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		t.mu.Lock()
		t.width, t.height = w, h
		t.mu.Unlock()
		t.screen.Sync()
		event.Emit(t.bus, event.Resized{Width: w, Height: h})
		t.log.Debug("terminal resized", zap.Int("width", w), zap.Int("height", h))

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			event.Emit(t.bus, event.CloseRequested{})
			return
		}
		if k := translateKey(ev.Key(), ev.Rune()); k != input.KeyUnknown {
			t.hub.KeyPress(k)
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		t.hub.MouseMove(float64(x), float64(y))
		btns := ev.Buttons()
		for _, b := range mouseButtons {
			t.hub.MouseButton(b.button, btns&b.mask != 0)
		}
		if dy := wheelDelta(btns); dy != 0 {
			t.hub.Scroll(0, dy)
		}
	}
}

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button input.Button
}{
	{tcell.ButtonPrimary, input.ButtonLeft},
	{tcell.ButtonMiddle, input.ButtonMiddle},
	{tcell.ButtonSecondary, input.ButtonRight},
}

func wheelDelta(btns tcell.ButtonMask) float64 {
	switch {
	case btns&tcell.WheelUp != 0:
		return 1
	case btns&tcell.WheelDown != 0:
		return -1
	}
	return 0
}

// translateKey maps a tcell key to an engine key. Letters are case folded.
func translateKey(k tcell.Key, r rune) input.Key {
	switch k {
	case tcell.KeyUp:
		return input.KeyUp
	case tcell.KeyDown:
		return input.KeyDown
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyEnter:
		return input.KeyEnter
	case tcell.KeyEscape:
		return input.KeyEscape
	case tcell.KeyRune:
		switch r {
		case 'w', 'W':
			return input.KeyW
		case 'a', 'A':
			return input.KeyA
		case 's', 'S':
			return input.KeyS
		case 'd', 'D':
			return input.KeyD
		case 'q', 'Q':
			return input.KeyQ
		case ' ':
			return input.KeySpace
		}
	}
	return input.KeyUnknown
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *Terminal) Renderer() render.Renderer { return t }

// EndFrame completes the recorded frame and presents it.
func (t *Terminal) EndFrame() error {
	if err := t.Recorder.EndFrame(); err != nil {
		return err
	}
	w, h := t.Size()
	view, proj := t.Matrices()
	vp := proj.Mul4(view)

	t.screen.Clear()
	for _, dc := range t.LastFrame() {
		mvp := vp.Mul4(dc.Model)
		verts := t.VertexData(dc.Vertex)
		if dc.Index.Valid() {
			idx := t.IndexData(dc.Index)
			for i := 0; i+2 < len(idx); i += 3 {
				t.triangle(mvp, verts, idx[i:i+3], w, h)
			}
		}
		for _, v := range verts {
			if c, ok := project(mvp, v, w, h); ok {
				t.screen.SetContent(c.x, c.y, '•', nil, t.vertex)
			}
		}
	}
	for i, r := range []rune(" " + t.title + " ") {
		t.screen.SetContent(i, 0, r, nil, t.banner)
	}
	t.screen.Show()
	return nil
}

func (t *Terminal) triangle(mvp mgl32.Mat4, verts []mgl32.Vec3, tri []uint16, w, h int) {
	var pts [3]cell
	for i, ix := range tri {
		if int(ix) >= len(verts) {
			return
		}
		c, ok := project(mvp, verts[ix], w, h)
		if !ok {
			return
		}
		pts[i] = c
	}
	for i := range pts {
		for _, c := range line(pts[i], pts[(i+1)%3]) {
			t.screen.SetContent(c.x, c.y, '·', nil, t.edge)
		}
	}
}

// Close restores the terminal. Safe to call more than once.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.screen.Fini()
	})
	return nil
}

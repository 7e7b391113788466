package window

import (
	"sync"

	"github.com/sgengine/sge/internal/core/event"
	"github.com/sgengine/sge/internal/render"
)

// Headless is a window without a display. Frames go to an in-memory
// Recorder; resizes and close requests are queued by the caller and
// delivered on the next Pump.
type Headless struct {
	rec *render.Recorder
	bus *event.Bus

	mu      sync.Mutex
	width   int
	height  int
	pending []any
	closed  bool
}

func NewHeadless(width, height int, bus *event.Bus) *Headless {
	return &Headless{
		rec:    render.NewRecorder(),
		bus:    bus,
		width:  width,
		height: height,
	}
}

// Resize queues a resize. Safe from any goroutine.
func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.pending = append(h.pending, event.Resized{Width: width, Height: height})
}

// RequestClose queues a close request. Safe from any goroutine.
func (h *Headless) RequestClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, event.CloseRequested{})
}

func (h *Headless) Pump() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, ev := range pending {
		switch ev := ev.(type) {
		case event.Resized:
			event.Emit(h.bus, ev)
		case event.CloseRequested:
			event.Emit(h.bus, ev)
		}
	}
}

func (h *Headless) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Headless) Renderer() render.Renderer { return h.rec }

// Recorder exposes the recorded frames.
func (h *Headless) Recorder() *render.Recorder { return h.rec }

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

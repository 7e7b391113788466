// Package input turns raw device events into per-subscriber snapshots.
//
// The window goroutine writes into a Hub; systems read from Monitors on the
// scheduler's goroutines. Every access goes through the hub's mutex.
package input

import (
	"sync"
	"time"
)

// Snapshot is the read side systems depend on.
type Snapshot interface {
	IsKeyDown(k Key) bool
	IsMouseButtonDown(b Button) bool
	// MouseOffset returns the cursor movement since the last call.
	MouseOffset() (dx, dy float64)
	// ScrollDelta returns the scroll accumulated since the last call.
	ScrollDelta() (dx, dy float64)
	AnyKeyDown() bool
}

// Hub fans raw events out to every Monitor.
type Hub struct {
	mu       sync.Mutex
	hold     time.Duration
	now      func() time.Time
	monitors map[*Monitor]struct{}

	havePos      bool
	lastX, lastY float64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHold sets how long a KeyPress keeps a key down without a repeat.
func WithHold(d time.Duration) HubOption {
	return func(h *Hub) { h.hold = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		hold:     150 * time.Millisecond,
		now:      time.Now,
		monitors: make(map[*Monitor]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Monitor subscribes to the given keys and buttons. Events for anything else
// are ignored by this monitor.
func (h *Hub) Monitor(keys []Key, buttons []Button) *Monitor {
	m := &Monitor{
		hub:     h,
		enabled: true,
		keys:    make(map[Key]keyState, len(keys)),
		buttons: make(map[Button]bool, len(buttons)),
	}
	for _, k := range keys {
		m.keys[k] = keyState{}
	}
	for _, b := range buttons {
		m.buttons[b] = false
	}
	h.mu.Lock()
	h.monitors[m] = struct{}{}
	h.mu.Unlock()
	return m
}

// Monitors returns the number of live subscribers.
func (h *Hub) Monitors() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.monitors)
}

// KeyDown marks k held until KeyUp.
func (h *Hub) KeyDown(k Key) { h.setKey(k, keyState{down: true}) }

// KeyUp releases k.
func (h *Hub) KeyUp(k Key) { h.setKey(k, keyState{}) }

// KeyPress marks k held for the hold window. Repeated presses extend it.
// Terminals report presses and repeats but never releases.
func (h *Hub) KeyPress(k Key) {
	h.mu.Lock()
	until := h.now().Add(h.hold)
	h.mu.Unlock()
	h.setKey(k, keyState{down: true, until: until})
}

func (h *Hub) setKey(k Key, st keyState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for m := range h.monitors {
		if _, ok := m.keys[k]; ok {
			m.keys[k] = st
		}
	}
}

// MouseButton records a button transition.
func (h *Hub) MouseButton(b Button, down bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for m := range h.monitors {
		if _, ok := m.buttons[b]; ok {
			m.buttons[b] = down
		}
	}
}

// MouseMove records an absolute cursor position. The first position only
// primes the offset origin.
func (h *Hub) MouseMove(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.havePos {
		h.lastX, h.lastY, h.havePos = x, y, true
		for m := range h.monitors {
			m.posX, m.posY = x, y
		}
		return
	}
	dx, dy := x-h.lastX, y-h.lastY
	h.lastX, h.lastY = x, y
	for m := range h.monitors {
		m.offX += dx
		m.offY += dy
		m.posX, m.posY = x, y
	}
}

// Scroll accumulates a scroll step.
func (h *Hub) Scroll(dx, dy float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for m := range h.monitors {
		m.scrollX += dx
		m.scrollY += dy
	}
}

package input

import "time"

type keyState struct {
	down  bool
	until time.Time // zero: held until released
}

// Monitor is one subscriber's view of the input devices. A disabled monitor
// reports nothing held; offsets and scroll keep accumulating.
type Monitor struct {
	hub     *Hub
	enabled bool
	keys    map[Key]keyState
	buttons map[Button]bool

	posX, posY       float64
	offX, offY       float64
	scrollX, scrollY float64
}

var _ Snapshot = (*Monitor)(nil)

func (m *Monitor) isDown(st keyState, now time.Time) bool {
	return st.down && (st.until.IsZero() || now.Before(st.until))
}

func (m *Monitor) IsKeyDown(k Key) bool {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	st, ok := m.keys[k]
	return m.enabled && ok && m.isDown(st, m.hub.now())
}

func (m *Monitor) IsMouseButtonDown(b Button) bool {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	return m.enabled && m.buttons[b]
}

func (m *Monitor) AnyKeyDown() bool {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	if !m.enabled {
		return false
	}
	now := m.hub.now()
	for _, st := range m.keys {
		if m.isDown(st, now) {
			return true
		}
	}
	return false
}

func (m *Monitor) MouseOffset() (dx, dy float64) {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	dx, dy = m.offX, m.offY
	m.offX, m.offY = 0, 0
	return dx, dy
}

func (m *Monitor) ScrollDelta() (dx, dy float64) {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	dx, dy = m.scrollX, m.scrollY
	m.scrollX, m.scrollY = 0, 0
	return dx, dy
}

// MousePosition returns the last absolute cursor position.
func (m *Monitor) MousePosition() (x, y float64) {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	return m.posX, m.posY
}

func (m *Monitor) SetEnabled(on bool) {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	m.enabled = on
}

func (m *Monitor) Enabled() bool {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	return m.enabled
}

// Close unsubscribes the monitor from its hub.
func (m *Monitor) Close() {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	delete(m.hub.monitors, m)
}

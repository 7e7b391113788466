// Package window owns the presentation surface: it pumps platform events
// into the input hub and the event bus, and presents rendered frames.
package window

import (
	"fmt"

	"github.com/sgengine/sge/internal/render"
)

// Window is the surface the engine loop drives. Pump must be called from
// the engine goroutine; it never blocks.
type Window interface {
	Pump()
	Size() (width, height int)
	Renderer() render.Renderer
	Close() error
}

// DeviceInitError reports that the window or its graphics device could not
// be created.
type DeviceInitError struct {
	Backend string
	Err     error
}

func (e *DeviceInitError) Error() string {
	return fmt.Sprintf("init %s device: %v", e.Backend, e.Err)
}

func (e *DeviceInitError) Unwrap() error { return e.Err }

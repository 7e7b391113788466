package system

import (
	"context"
	"fmt"
)

// Phase selects which queue a system is filed under.
type Phase int

const (
	PhaseStart   Phase = iota // once, at boot
	PhaseRunning              // every tick
	PhaseStop                 // once, at shutdown
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseRunning:
		return "running"
	case PhaseStop:
		return "stop"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Mode selects how a Running system is dispatched inside its band.
type Mode int

const (
	// Parallel systems run on their own goroutine.
	Parallel Mode = iota
	// Serial systems run on the goroutine that joins the band.
	Serial
)

func (m Mode) String() string {
	if m == Serial {
		return "serial"
	}
	return "parallel"
}

// Priority orders bands inside a phase. 0 runs first.
type Priority uint16

const (
	HighestPriority Priority = 0
	LowestPriority  Priority = ^Priority(0)
)

// System is one unit of lifecycle or per-tick logic. Run reports failure by
// returning an error; a panic is treated the same way.
type System interface {
	Name() string
	Run(ctx context.Context) error
}

// Tagged systems carry their own phase and mode, fixed at construction.
type Tagged interface {
	Phase() Phase
	Mode() Mode
}

// WriteSetter systems declare which component kinds they mutate. Used only by
// the band conflict check.
type WriteSetter interface {
	WriteSet() []string
}

// Func adapts a plain function to the System interface.
type Func struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (f Func) Name() string                  { return f.Label }
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// Registration is the scheduler's record for one system.
type Registration struct {
	System   System
	Phase    Phase
	Priority Priority
	Mode     Mode
}

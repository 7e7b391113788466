package system

import (
	"fmt"
	"strings"
)

// StartupFailure is returned when a Start system fails. Remaining start
// systems are not run.
type StartupFailure struct {
	Band   Priority
	Index  int
	System string
	Err    error
}

func (e *StartupFailure) Error() string {
	return fmt.Sprintf("startup system %q failed (band %d, index %d): %v", e.System, e.Band, e.Index, e.Err)
}

func (e *StartupFailure) Unwrap() error { return e.Err }

// TickFailure is returned when a Running system fails. Later bands of the
// same tick are not run.
type TickFailure struct {
	Tick   uint64
	Band   Priority
	Index  int
	System string
	Err    error
}

func (e *TickFailure) Error() string {
	return fmt.Sprintf("tick %d: system %q failed (band %d, index %d): %v", e.Tick, e.System, e.Band, e.Index, e.Err)
}

func (e *TickFailure) Unwrap() error { return e.Err }

// FailedSystem identifies one failed Stop system.
type FailedSystem struct {
	Band   Priority
	Index  int
	System string
	Err    error
}

// ShutdownPartialFailure collects every Stop system that failed. It is a
// report, not a reason to stop tearing down.
type ShutdownPartialFailure struct {
	Failed []FailedSystem
}

func (e *ShutdownPartialFailure) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s (band %d, index %d): %v", f.System, f.Band, f.Index, f.Err))
	}
	return fmt.Sprintf("%d shutdown system(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

func (e *ShutdownPartialFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// PanicError wraps a value recovered from a panicking system.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

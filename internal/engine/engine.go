// Package engine drives one world through boot, the tick loop and shutdown.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/config"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/system"
	"github.com/sgengine/sge/internal/window"
	"github.com/sgengine/sge/internal/world"
)

// State is where an Engine is in its life cycle. States only move forward.
type State int

const (
	Uninitialized State = iota
	Booted
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Booted:
		return "booted"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrTerminated is returned by every call made after Shutdown.
var ErrTerminated = errors.New("engine terminated")

// DeviceInitError reports that the window or graphics device could not be
// created.
type DeviceInitError = window.DeviceInitError

// StateError reports a call made in the wrong life cycle state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("engine %s: not allowed while %s", e.Op, e.State)
}

// Deps is everything an Engine is built from.
type Deps struct {
	Config   config.EngineConfig
	Window   window.Window
	Scene    *scene.Snapshot
	Bindings *scene.Bindings
	Log      *zap.Logger
}

type Engine struct {
	cfg      config.EngineConfig
	win      window.Window
	scene    *scene.Snapshot
	bindings *scene.Bindings
	log      *zap.Logger

	store    *world.Store
	sched    *coresys.Scheduler
	systems  []system.Runnable
	entities map[string]ecs.EntityID

	state   State
	started bool // RunStartUp was attempted, so Stop systems owe a cleanup
}

func New(d Deps) *Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:      d.Config,
		win:      d.Window,
		scene:    d.Scene,
		bindings: d.Bindings,
		log:      log,
		store:    world.NewStore(),
		sched: coresys.NewScheduler(
			coresys.WithWorkers(d.Config.Workers),
			coresys.WithSystemTimeout(d.Config.SystemTimeout),
			coresys.WithLogger(log.Named("scheduler")),
		),
	}
}

// Store is the world the engine's systems share. It is empty until Boot.
func (e *Engine) Store() *world.Store { return e.store }

func (e *Engine) Scheduler() *coresys.Scheduler { return e.sched }

func (e *Engine) State() State { return e.state }

// Entities maps scene entity names to their handles. Nil before Boot.
func (e *Engine) Entities() map[string]ecs.EntityID { return e.entities }

// Ticks returns how many Running ticks completed.
func (e *Engine) Ticks() uint64 { return e.sched.Stats().Ticks }

// Register adds sys under its own phase and mode. Only allowed before Boot.
func (e *Engine) Register(sys system.Runnable, priority coresys.Priority) error {
	if e.state != Uninitialized {
		return e.stateErr("register")
	}
	e.sched.Add(sys, priority)
	e.systems = append(e.systems, sys)
	return nil
}

func (e *Engine) stateErr(op string) error {
	if e.state == Terminated {
		return ErrTerminated
	}
	return &StateError{Op: op, State: e.state}
}

// Boot populates the world from the scene, configures every system and runs
// the Start phase.
func (e *Engine) Boot(ctx context.Context) error {
	if e.state != Uninitialized {
		return e.stateErr("boot")
	}
	if e.scene != nil {
		ids, err := e.scene.Apply(e.store)
		if err != nil {
			return err
		}
		e.entities = ids
	}

	if e.win != nil {
		w, h := e.win.Size()
		e.store.Windows.Each(func(_ ecs.EntityID, ws *component.WindowState) {
			ws.Width, ws.Height = w, h
		})
	}

	for _, sys := range e.systems {
		c, ok := sys.(system.Configurable)
		if !ok {
			continue
		}
		if err := c.Configure(e.store, e.bindings); err != nil {
			return fmt.Errorf("configure %s: %w", sys.Name(), err)
		}
	}

	if e.cfg.CheckConflicts {
		for _, c := range e.sched.Conflicts() {
			e.log.Warn("systems in one band write the same components",
				zap.Uint16("band", uint16(c.Band)),
				zap.String("a", c.A),
				zap.String("b", c.B),
				zap.Strings("components", c.Components))
		}
	}

	e.log.Info("engine booting",
		zap.Int("entities", e.store.Pool().Count()),
		zap.Int("start", e.sched.Len(coresys.PhaseStart)),
		zap.Int("running", e.sched.Len(coresys.PhaseRunning)),
		zap.Int("stop", e.sched.Len(coresys.PhaseStop)))

	e.started = true
	if err := e.sched.RunStartUp(ctx); err != nil {
		return err
	}
	e.state = Booted
	return nil
}

// Run ticks until every window stops running, ctx is done, or max_frames
// ticks have completed. A failed tick ends the loop with its error.
func (e *Engine) Run(ctx context.Context) error {
	if e.state != Booted {
		return e.stateErr("run")
	}
	e.state = Running

	var tick <-chan time.Time
	if e.cfg.TickRate > 0 {
		t := time.NewTicker(e.cfg.TickRate)
		defer t.Stop()
		tick = t.C
	}

	start := time.Now()
	var frames uint64
	for e.store.AnyRunning() {
		if e.cfg.MaxFrames > 0 && frames >= e.cfg.MaxFrames {
			e.log.Info("frame limit reached", zap.Uint64("frames", frames))
			break
		}
		if ctx.Err() != nil {
			e.log.Info("engine loop cancelled")
			break
		}

		if e.win != nil {
			e.win.Pump()
		}
		if err := e.sched.RunSystems(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				e.log.Info("engine loop cancelled mid-tick")
				break
			}
			return err
		}
		frames++

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}

	stats := e.sched.Stats()
	e.log.Info("engine loop finished",
		zap.Uint64("ticks", stats.Ticks),
		zap.Duration("last_tick", stats.LastTick),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Shutdown runs the Stop phase once and closes the window. Stop-phase
// failures come back as a coresys ShutdownPartialFailure after every Stop
// system has had its turn. Calling Shutdown again returns ErrTerminated.
func (e *Engine) Shutdown(ctx context.Context) error {
	if e.state == Terminated {
		return ErrTerminated
	}
	e.state = Terminated

	var errs []error
	if e.started {
		if err := e.sched.RunShutDown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if e.win != nil {
		if err := e.win.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close window: %w", err))
		}
	}
	e.log.Info("engine terminated")
	return errors.Join(errs...)
}

package system

import (
	"context"
	"runtime/debug"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const phaseCount = 3

// Scheduler owns every registered system and runs them phase by phase.
//
// Systems sharing a priority form a band. Bands run in ascending priority
// order with a join barrier between them. Inside a Running band, Parallel
// systems run concurrently on their own goroutines and Serial systems run on
// the caller's goroutine before the join. Systems in one band share the world
// without locking; callers keep write sets in a band disjoint.
//
// Register must not be called concurrently with the Run methods.
type Scheduler struct {
	queues [phaseCount][]*Registration
	sorted [phaseCount]bool

	workers int
	timeout time.Duration
	log     *zap.Logger

	ticks    atomic.Uint64
	lastTick atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds how many Parallel systems of one band run at once.
// n <= 0 means no bound.
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithSystemTimeout gives every Run call a context deadline. Systems that
// ignore their context are not interrupted.
func WithSystemTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	for i := range s.queues {
		s.queues[i] = make([]*Registration, 0, 16)
	}
	return s
}

// Register files sys under phase at the given priority. Registering the same
// instance twice makes it run twice.
func (s *Scheduler) Register(sys System, phase Phase, priority Priority, mode Mode) {
	if phase < PhaseStart || phase > PhaseStop {
		s.log.Warn("system registered with unknown phase, ignored",
			zap.String("system", sys.Name()), zap.Stringer("phase", phase))
		return
	}
	s.queues[phase] = append(s.queues[phase], &Registration{
		System:   sys,
		Phase:    phase,
		Priority: priority,
		Mode:     mode,
	})
	s.sorted[phase] = false
}

// Add registers a system using its own phase and mode when it implements
// Tagged, otherwise as a Parallel Running system.
func (s *Scheduler) Add(sys System, priority Priority) {
	phase, mode := PhaseRunning, Parallel
	if t, ok := sys.(Tagged); ok {
		phase, mode = t.Phase(), t.Mode()
	}
	s.Register(sys, phase, priority, mode)
}

// Band is the set of systems sharing one priority within a phase.
type Band struct {
	Priority Priority
	Systems  []*Registration
}

// Bands returns the phase's bands in execution order.
func (s *Scheduler) Bands(phase Phase) []Band {
	if phase < PhaseStart || phase > PhaseStop {
		return nil
	}
	s.ensureSorted(phase)
	var bands []Band
	for _, r := range s.queues[phase] {
		if n := len(bands); n > 0 && bands[n-1].Priority == r.Priority {
			bands[n-1].Systems = append(bands[n-1].Systems, r)
			continue
		}
		bands = append(bands, Band{Priority: r.Priority, Systems: []*Registration{r}})
	}
	return bands
}

// Len returns how many systems are registered for phase.
func (s *Scheduler) Len(phase Phase) int {
	if phase < PhaseStart || phase > PhaseStop {
		return 0
	}
	return len(s.queues[phase])
}

func (s *Scheduler) ensureSorted(phase Phase) {
	if s.sorted[phase] {
		return
	}
	q := s.queues[phase]
	sort.SliceStable(q, func(i, j int) bool {
		return q[i].Priority < q[j].Priority
	})
	s.sorted[phase] = true
}

// RunStartUp runs every Start system once, one at a time, in priority order.
// The first failure stops the remaining systems.
func (s *Scheduler) RunStartUp(ctx context.Context) error {
	for _, band := range s.Bands(PhaseStart) {
		for i, r := range band.Systems {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.log.Debug("startup system", zap.String("system", r.System.Name()), zap.Uint16("band", uint16(band.Priority)))
			if err := s.invoke(ctx, r); err != nil {
				return &StartupFailure{Band: band.Priority, Index: i, System: r.System.Name(), Err: err}
			}
		}
	}
	return nil
}

// RunSystems runs one tick of every Running system. It returns nil only if
// every system succeeded; otherwise a *TickFailure for the failed system and
// later bands are skipped.
func (s *Scheduler) RunSystems(ctx context.Context) error {
	tick := s.ticks.Add(1)
	start := time.Now()
	defer func() { s.lastTick.Store(int64(time.Since(start))) }()

	for _, band := range s.Bands(PhaseRunning) {
		if err := s.runBand(ctx, tick, band); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) runBand(ctx context.Context, tick uint64, band Band) error {
	g, gctx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}

	fail := func(i int, r *Registration, err error) error {
		return &TickFailure{Tick: tick, Band: band.Priority, Index: i, System: r.System.Name(), Err: err}
	}

	var serial []int
	for i, r := range band.Systems {
		if r.Mode == Serial {
			serial = append(serial, i)
			continue
		}
		g.Go(func() error {
			if err := s.invoke(gctx, r); err != nil {
				return fail(i, r, err)
			}
			return nil
		})
	}

	// Serial systems are deferred until the join and run here, in order.
	var serialErr error
	for _, i := range serial {
		if gctx.Err() != nil {
			break
		}
		r := band.Systems[i]
		if err := s.invoke(gctx, r); err != nil {
			serialErr = fail(i, r, err)
			break
		}
	}

	err := g.Wait()
	if serialErr != nil {
		return serialErr
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

// RunShutDown runs every Stop system once, in priority order. A failing
// system does not stop the rest; failures are logged and returned together
// as a *ShutdownPartialFailure. Cancellation of ctx is ignored so teardown
// always runs to the end.
func (s *Scheduler) RunShutDown(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var failed []FailedSystem
	for _, band := range s.Bands(PhaseStop) {
		for i, r := range band.Systems {
			if err := s.invoke(ctx, r); err != nil {
				s.log.Error("shutdown system failed",
					zap.String("system", r.System.Name()),
					zap.Uint16("band", uint16(band.Priority)),
					zap.Int("index", i),
					zap.Error(err))
				failed = append(failed, FailedSystem{Band: band.Priority, Index: i, System: r.System.Name(), Err: err})
			}
		}
	}
	if len(failed) > 0 {
		return &ShutdownPartialFailure{Failed: failed}
	}
	return nil
}

func (s *Scheduler) invoke(ctx context.Context, r *Registration) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return r.System.Run(ctx)
}

// Stats reports tick counters.
type Stats struct {
	Ticks    uint64
	LastTick time.Duration
}

func (s *Scheduler) Stats() Stats {
	return Stats{Ticks: s.ticks.Load(), LastTick: time.Duration(s.lastTick.Load())}
}

package ingest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"refuel/internal/components/chrono"
	"sync/atomic"
	"time"
)

type State int32

const (
	Idle State = iota
	Fetching
	Extracting
	Persisting
	Sleeping
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Extracting:
		return "extracting"
	case Persisting:
		return "persisting"
	case Sleeping:
		return "sleeping"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Jitter returns base shifted by a random amount of whole seconds in [0, maxOffset].
// The shift is added or subtracted with equal probability, subtracting never goes
// below zero.
func Jitter(rng *rand.Rand, base, maxOffset time.Duration) time.Duration {
	maxSeconds := int64(maxOffset / time.Second)
	if maxSeconds < 0 {
		maxSeconds = 0
	}
	offset := time.Duration(rng.Int64N(maxSeconds+1)) * time.Second
	if rng.IntN(2) == 0 {
		return base + offset
	}
	if offset >= base {
		return 0
	}
	return base - offset
}

// Cycler runs a single ingestion cycle, it is implemented by Service.
type Cycler interface {
	Cycle(ctx context.Context, opts CycleOptions) (CycleResult, error)
}

type LoopOptions struct {
	Interval  time.Duration
	MaxJitter time.Duration
	// CycleTimeout bounds a single cycle, defaults to 5 minutes.
	CycleTimeout time.Duration
	// ShutdownGrace is how long the in-flight cycle keeps running once the loop
	// is cancelled, after that its context is cancelled too. 0 lets it run until
	// CycleTimeout.
	ShutdownGrace time.Duration
	DryRun        bool
	// Rand is the source of the jitter, a randomly seeded one is used if nil.
	Rand *rand.Rand
	// Clock is used for the times that are logged, defaults to the local clock.
	Clock chrono.API
}

// Loop runs cycles until its context is cancelled.
type Loop struct {
	cycler Cycler
	opts   LoopOptions
	rng    *rand.Rand
	state  atomic.Int32
}

func NewLoop(cycler Cycler, opts LoopOptions) *Loop {
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = time.Minute * 5
	}
	if opts.Clock == nil {
		opts.Clock, _ = chrono.NewStandardImpl("")
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Loop{
		cycler: cycler,
		opts:   opts,
		rng:    rng,
	}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(state State) {
	l.state.Store(int32(state))
}

func (l *Loop) runCycle(ctx context.Context) {
	// a cancellation only reaches the in-flight cycle after the shutdown grace
	// period so it can finish its transaction
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.CycleTimeout)
	defer cancel()
	if l.opts.ShutdownGrace > 0 {
		stop := context.AfterFunc(ctx, func() {
			slog.InfoContext(cycleCtx, "waiting for in-flight cycle", "grace", l.opts.ShutdownGrace)
			timer := time.NewTimer(l.opts.ShutdownGrace)
			defer timer.Stop()
			select {
			case <-timer.C:
				slog.WarnContext(cycleCtx, "cancelling in-flight cycle")
				cancel()
			case <-cycleCtx.Done():
			}
		})
		defer stop()
	}

	result, err := l.cycler.Cycle(cycleCtx, CycleOptions{
		DryRun:  l.opts.DryRun,
		OnState: l.setState,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ingestion cycle failed", "cycle", result.ID, "err", err)
	}
	l.setState(Idle)
}

// Run runs a cycle, then sleeps for the jittered interval, over and over. Failed
// cycles are logged and retried at the next interval. It returns once ctx is
// cancelled, which is checked before each cycle and while sleeping.
func (l *Loop) Run(ctx context.Context) error {
	defer l.setState(Cancelled)

	for {
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "graceful shutdown")
			return nil
		}

		l.runCycle(ctx)

		wait := Jitter(l.rng, l.opts.Interval, l.opts.MaxJitter)
		l.setState(Sleeping)
		slog.InfoContext(ctx, "waiting for next cycle", "duration", wait, "next", l.opts.Clock.Now().Add(wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.InfoContext(ctx, "graceful shutdown")
			return nil
		case <-timer.C:
		}
	}
}

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/seqbatch/pkg/log"
)

// ErrTooManyRestarts is returned once a task exhausts its restart budget.
var ErrTooManyRestarts = errors.New("seqbatch: too many restarts")

// Task is a long-running unit of work. It should return nil when ctx is
// cancelled and an error when it cannot continue.
type Task func(ctx context.Context) error

// Supervisor runs a Task and restarts it with backoff after failures.
type Supervisor struct {
	manager     *Manager
	logger      log.Logger
	emitter     EventEmitter
	initial     time.Duration
	max         time.Duration
	maxRestarts int
	healthy     time.Duration
	restarts    atomic.Int64
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithBackoff sets the restart delay range.
func WithBackoff(initial, max time.Duration) Option {
	return func(s *Supervisor) {
		if initial > 0 {
			s.initial = initial
		}
		if max >= s.initial {
			s.max = max
		}
	}
}

// WithMaxRestarts bounds consecutive restarts. Zero means unlimited.
func WithMaxRestarts(n int) Option {
	return func(s *Supervisor) { s.maxRestarts = n }
}

// WithHealthyAfter sets how long a run must last before the restart
// counter and backoff are reset.
func WithHealthyAfter(d time.Duration) Option {
	return func(s *Supervisor) { s.healthy = d }
}

// WithEventEmitter observes state changes.
func WithEventEmitter(e EventEmitter) Option {
	return func(s *Supervisor) { s.emitter = e }
}

// NewSupervisor creates a supervisor. A nil logger discards.
func NewSupervisor(logger log.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	s := &Supervisor{
		logger:  logger,
		initial: time.Second,
		max:     time.Minute,
		healthy: time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	s.manager = NewManager(logger, s.emitter)
	return s
}

// State returns the supervised task's state.
func (s *Supervisor) State() State { return s.manager.State() }

// Restarts returns how many times the task has been restarted.
func (s *Supervisor) Restarts() int { return int(s.restarts.Load()) }

// Run runs task until it returns nil, ctx is cancelled, or the restart
// budget is exhausted. Cancellation is not an error.
func (s *Supervisor) Run(ctx context.Context, name string, task Task) error {
	if !s.manager.CanStart() {
		return ErrAlreadyRunning
	}

	bo := NewBackoff(s.initial, s.max)
	consecutive := 0
	for {
		if err := s.manager.TransitionTo(StateStarting, name); err != nil {
			return err
		}
		_ = s.manager.TransitionTo(StateRunning, name)

		start := time.Now()
		err := task(ctx)

		if err == nil || ctx.Err() != nil {
			_ = s.manager.TransitionTo(StateStopping, name)
			_ = s.manager.TransitionTo(StateStopped, "finished")
			return nil
		}

		_ = s.manager.TransitionTo(StateCrashed, err.Error())
		if time.Since(start) >= s.healthy {
			consecutive = 0
			bo.Reset()
		}
		consecutive++
		if s.maxRestarts > 0 && consecutive > s.maxRestarts {
			_ = s.manager.TransitionTo(StateStopped, "restart budget exhausted")
			return fmt.Errorf("%s: %w: %w", name, ErrTooManyRestarts, err)
		}

		s.logger.Warn("task failed, restarting",
			log.String("task", name),
			log.Int("attempt", consecutive),
			log.Duration("backoff", bo.Current()),
			log.Err(err))

		if werr := bo.Wait(ctx); werr != nil {
			_ = s.manager.TransitionTo(StateStopped, "cancelled")
			return nil
		}
		s.restarts.Add(1)
	}
}

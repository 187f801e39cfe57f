package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastSupervisor(opts ...Option) *Supervisor {
	base := []Option{WithBackoff(time.Millisecond, 2*time.Millisecond)}
	return NewSupervisor(nil, append(base, opts...)...)
}

func TestSupervisor_RestartsUntilSuccess(t *testing.T) {
	s := fastSupervisor()
	calls := 0
	err := s.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, s.Restarts())
	assert.Equal(t, StateStopped, s.State())
}

func TestSupervisor_RestartBudget(t *testing.T) {
	s := fastSupervisor(WithMaxRestarts(2))
	boom := errors.New("boom")
	calls := 0
	err := s.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, ErrTooManyRestarts)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateStopped, s.State())
}

func TestSupervisor_CancelIsNotAnError(t *testing.T) {
	s := NewSupervisor(nil, WithBackoff(time.Hour, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "task", func(ctx context.Context) error {
			return errors.New("always")
		})
	}()

	// The task fails at once and the supervisor parks in a long backoff.
	require.Eventually(t, func() bool { return s.State() == StateCrashed }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, StateStopped, s.State())
}

func TestSupervisor_EmitsTransitions(t *testing.T) {
	var mu sync.Mutex
	var got []State
	s := fastSupervisor(WithEventEmitter(EmitterFunc(func(_, cur State, _ string) {
		mu.Lock()
		got = append(got, cur)
		mu.Unlock()
	})))

	require.NoError(t, s.Run(context.Background(), "task", func(ctx context.Context) error { return nil }))
	assert.Equal(t, []State{StateStarting, StateRunning, StateStopping, StateStopped}, got)
}

func TestManager_InvalidTransition(t *testing.T) {
	m := NewManager(nil, nil)
	err := m.TransitionTo(StateRunning, "skip starting")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateStopped, m.State())
}

func TestBackoff_WaitDoublesAndCaps(t *testing.T) {
	b := NewBackoff(time.Millisecond, 3*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 2*time.Millisecond, b.Current())
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 3*time.Millisecond, b.Current())
	b.Reset()
	assert.Equal(t, time.Millisecond, b.Current())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, NewBackoff(time.Hour, time.Hour).Wait(cctx), context.Canceled)
}

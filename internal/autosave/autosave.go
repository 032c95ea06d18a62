// Package autosave coalesces rapid edits into one save after a quiet period.
//
// Each Trigger replaces the pending snapshot and restarts the timer. When the
// timer fires the latest snapshot is saved exactly once. A save already in
// flight is never cancelled; saves run one at a time in trigger order.
package autosave

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a pending snapshot is saved.
const DefaultDelay = 1500 * time.Millisecond

// SaveFunc persists one snapshot.
type SaveFunc[T any] func(ctx context.Context, v T) error

// Scheduler debounces saves of snapshots of type T.
type Scheduler[T any] struct {
	delay    time.Duration
	save     SaveFunc[T]
	onResult func(error)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	latest  T
	pending bool
	closed  bool

	dispatchMu sync.Mutex
	wg         sync.WaitGroup
}

// New returns a Scheduler. onResult, when non-nil, receives the outcome of
// every timer-driven save and every Flush.
func New[T any](delay time.Duration, save SaveFunc[T], onResult func(error)) *Scheduler[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler[T]{delay: delay, save: save, onResult: onResult}
}

// Trigger records v as the snapshot to save and restarts the quiet period.
// It is a no-op after Close.
func (s *Scheduler[T]) Trigger(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = v
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	// A timer that already fired may still be waiting on mu; the generation
	// lets it see that it was superseded.
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Pending reports whether a snapshot is waiting for its timer.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Scheduler[T]) fire(gen uint64) {
	v, ok := s.takeGen(gen)
	if !ok {
		return
	}
	defer s.wg.Done()
	s.dispatch(context.Background(), v)
}

// take claims the pending snapshot. The caller must call wg.Done when ok.
func (s *Scheduler[T]) take() (T, bool) {
	return s.takeGen(0)
}

// takeGen is take for the timer of generation gen; zero matches any.
func (s *Scheduler[T]) takeGen(gen uint64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.pending || (gen != 0 && gen != s.gen) {
		return zero, false
	}
	v := s.latest
	s.latest = zero
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.wg.Add(1)
	return v, true
}

func (s *Scheduler[T]) dispatch(ctx context.Context, v T) error {
	s.dispatchMu.Lock()
	err := s.save(ctx, v)
	s.dispatchMu.Unlock()
	if s.onResult != nil {
		s.onResult(err)
	}
	return err
}

// Flush saves the pending snapshot now, if any, and returns the save error.
// It waits for a save already in flight to finish first.
func (s *Scheduler[T]) Flush(ctx context.Context) error {
	v, ok := s.take()
	if !ok {
		// Still wait out an in-flight save so callers see it complete.
		s.dispatchMu.Lock()
		s.dispatchMu.Unlock() //nolint:staticcheck // barrier
		return nil
	}
	defer s.wg.Done()
	return s.dispatch(ctx, v)
}

// Close flushes any pending snapshot, waits for in-flight saves, and stops
// accepting triggers.
func (s *Scheduler[T]) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

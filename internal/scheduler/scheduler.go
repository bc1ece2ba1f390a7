// Package scheduler drives repeated collection cycles: a fixed-interval
// timer, a manual trigger and an auto-refresh toggle all feed one serialized
// entry point guarded by a single in-flight flag.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"sysmon/internal/model"
)

// Collector runs one collection cycle. Satisfied by *manager.Manager.
type Collector interface {
	Collect(ctx context.Context) (*model.Snapshot, error)
}

// Result is what one cycle produced: a Snapshot, or the error that ended the
// cycle. Failed cycles never carry a Snapshot; consumers that want something
// to display fall back to Scheduler.LastSnapshot.
type Result struct {
	Snapshot *model.Snapshot
	Err      error
	At       time.Time
}

type Scheduler struct {
	collector Collector
	interval  time.Duration
	logger    logr.Logger

	// inFlight is the at-most-one-cycle guard. Timer and manual triggers
	// both test-and-set it; whoever loses drops the trigger.
	inFlight atomic.Bool
	auto     atomic.Bool

	mu          sync.RWMutex
	ctx         context.Context
	last        Result
	hasResult   bool
	lastGood    *model.Snapshot
	subscribers []func(Result)
}

func New(collector Collector, interval time.Duration, logger logr.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s := &Scheduler{
		collector: collector,
		interval:  interval,
		logger:    logger.WithName("scheduler"),
	}
	s.auto.Store(true)
	return s
}

// Subscribe registers a callback invoked after every completed cycle. The
// callback runs on the collection goroutine and must not block for long.
func (s *Scheduler) Subscribe(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Run collects once immediately, then on every timer fire while auto-refresh
// is enabled, until ctx is done. Timer fires that land while a cycle is in
// flight are dropped, not queued. An in-flight cycle is never cancelled;
// ctx ending only stops future cycles.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if s.auto.Load() {
		s.tryCollect()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.auto.Load() {
				continue
			}
			if !s.tryCollect() {
				s.logger.V(1).Info("timer fired while collecting, dropped")
			}
		}
	}
}

// TriggerRefresh starts a cycle right away, regardless of the auto-refresh
// state. It reports whether a cycle was started; false means one was already
// in flight and the request was a no-op.
func (s *Scheduler) TriggerRefresh() bool {
	return s.tryCollect()
}

// ToggleAutoRefresh flips the auto-refresh flag and returns the new state.
// It never triggers a collection by itself, and turning auto-refresh off
// does not abort a cycle already running.
func (s *Scheduler) ToggleAutoRefresh() bool {
	for {
		old := s.auto.Load()
		if s.auto.CompareAndSwap(old, !old) {
			s.logger.Info("auto-refresh toggled", "enabled", !old)
			return !old
		}
	}
}

func (s *Scheduler) AutoRefreshEnabled() bool { return s.auto.Load() }

// Collecting reports whether a cycle is currently in flight.
func (s *Scheduler) Collecting() bool { return s.inFlight.Load() }

// LastResult returns the most recent cycle outcome. ok is false before the
// first cycle completes.
func (s *Scheduler) LastResult() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasResult
}

// LastSnapshot returns the last successfully collected Snapshot, surviving
// any failed cycles since. Nil before the first successful cycle.
func (s *Scheduler) LastSnapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGood
}

func (s *Scheduler) tryCollect() bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.inFlight.Store(false)
		s.runCycle()
	}()
	return true
}

func (s *Scheduler) runCycle() {
	// A started cycle always runs to completion; stopping the scheduler only
	// prevents future cycles.
	snap, err := s.collector.Collect(context.WithoutCancel(s.baseContext()))
	res := Result{Snapshot: snap, Err: err, At: time.Now()}

	s.mu.Lock()
	s.last = res
	s.hasResult = true
	if err == nil {
		s.lastGood = snap
	}
	subscribers := make([]func(Result), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	if err != nil {
		// Non-fatal: the previous snapshot stays last-known-good and the
		// next trigger retries on its own.
		s.logger.Error(err, "collection cycle failed")
	}

	for _, fn := range subscribers {
		fn(res)
	}
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

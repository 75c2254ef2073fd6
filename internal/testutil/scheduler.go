// Package testutil provides deterministic stand-ins for time, randomness and
// audio, shared by package tests.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/roulette/internal/engine"
)

// ManualScheduler is an engine.Scheduler driven by Advance instead of wall time.
//
// Callbacks run synchronously inside Advance, on the caller's goroutine, in
// due-time order (ties in scheduling order). Callbacks may schedule further
// timers; those fire in the same Advance call if they fall due within it.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*manualTimer
}

var _ engine.Scheduler = (*ManualScheduler)(nil)

type manualTimer struct {
	s   *ManualScheduler
	id  int
	due time.Duration
	f   func()
}

// NewManualScheduler creates a scheduler at time zero with no timers.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{timers: make(map[int]*manualTimer)}
}

// AfterFunc implements engine.Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &manualTimer{s: s, id: s.nextID, due: s.now + d, f: f}
	s.timers[t.id] = t
	return t
}

// Stop implements engine.Timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}

// Advance moves time forward by d, firing every timer that falls due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.earliestLocked()
		if next == nil || next.due > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		delete(s.timers, next.id)
		s.now = next.due
		s.mu.Unlock()

		next.f()
	}
}

// Pending returns how many timers are scheduled and not yet fired or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Now returns the elapsed manual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) earliestLocked() *manualTimer {
	if len(s.timers) == 0 {
		return nil
	}
	all := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].due != all[j].due {
			return all[i].due < all[j].due
		}
		return all[i].id < all[j].id
	})
	return all[0]
}

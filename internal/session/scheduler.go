package session

import (
	"sync"
	"time"
)

// Scheduler owns the cancellable pacing timers of a single session. Tasks
// scheduled after Close, and tasks firing during or after Close, are no-ops,
// so teardown-before-fire is a well-defined transition.
type Scheduler struct {
	mu     sync.Mutex
	closed bool
	timers map[*time.Timer]struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[*time.Timer]struct{})}
}

// Schedule runs fn after d unless the task or the scheduler is cancelled
// first. The returned func cancels just this task and is safe to call more
// than once.
func (s *Scheduler) Schedule(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, pending := s.timers[timer]
		delete(s.timers, timer)
		closed := s.closed
		s.mu.Unlock()

		if pending && !closed {
			fn()
		}
	})
	s.timers[timer] = struct{}{}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.timers[timer]; ok {
			delete(s.timers, timer)
			timer.Stop()
		}
	}
}

// Pending returns the number of armed tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels every pending task and rejects future ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for timer := range s.timers {
		timer.Stop()
		delete(s.timers, timer)
	}
}

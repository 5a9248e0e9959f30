package service

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler manages one-shot deferred actions keyed by id. Timers are purely
// in-memory; after a restart the engine rebuilds them from the store.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
	}
}

// Schedule registers fn to run once when fireAt is reached. A zero or
// negative delay fires immediately. Re-scheduling the same id cancels and
// replaces the prior pending action.
func (s *Scheduler) Schedule(id int64, fireAt time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}

	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}

	log.WithFields(log.Fields{
		"id":    id,
		"delay": delay,
	}).Debug("Scheduling deferred action")

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops and removes the pending action for id, if any
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of registered actions
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending action. Nothing is persisted on shutdown;
// state is reconstructed from the store on the next startup.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

package runner

import (
	"strconv"
	"sync"
)

const (
	StatusIdle     = "idle"
	StatusStarting = "Starting Up."
)

// Status counts the runs in flight across all configurations and publishes every change.
type Status struct {
	mu      sync.Mutex
	active  int
	publish func(string)
}

// NewStatus creates a Status. publish may be nil.
func NewStatus(publish func(string)) *Status {
	return &Status{publish: publish}
}

// Begin records a new run.
func (s *Status) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active++
	s.publishLocked()
}

// End records a finished run. The counter never drops below zero.
func (s *Status) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active > 0 {
		s.active--
	}
	s.publishLocked()
}

// Active returns the number of runs in flight.
func (s *Status) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// String returns the status text: "idle" or "active:<N>".
func (s *Status) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return statusText(s.active)
}

func (s *Status) publishLocked() {
	if s.publish != nil {
		s.publish(statusText(s.active))
	}
}

func statusText(active int) string {
	if active == 0 {
		return StatusIdle
	}
	return "active:" + strconv.Itoa(active)
}

// Package finder drives the parameter-space search: it materializes jobs
// lazily, batches them adaptively by dataset size, routes batches through
// the offload executor, and keeps only the bounded top-K results.
package finder

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunActive rejects a run started while another is in flight.
// Overlapping runs are rejected, never queued.
var ErrRunActive = errors.New("finder: a run is already active")

// SessionState is the lifecycle of one finder run.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRunning
	StateCompleting
)

func (s SessionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleting:
		return "completing"
	default:
		return "idle"
	}
}

// SessionStats are the per-run counters surfaced through progress and
// metrics.
type SessionStats struct {
	JobsScheduled int64
	JobsCompleted int64
	JobsFailed    int64
	JobsFiltered  int64
	RemoteJobs    int64
}

// Session owns the run lifecycle. It replaces an ambient "isRunning" flag
// with an explicit state machine so overlap rejection and status reporting
// share one source of truth.
type Session struct {
	mu         sync.Mutex
	id         uuid.UUID
	state      SessionState
	startedAt  time.Time
	finishedAt time.Time
	stats      SessionStats
}

// NewSession returns an idle session.
func NewSession() *Session { return &Session{} }

// Begin transitions Idle -> Running. It fails with ErrRunActive when the
// session is not idle.
func (s *Session) Begin() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return uuid.Nil, ErrRunActive
	}
	s.id = uuid.New()
	s.state = StateRunning
	s.startedAt = time.Now()
	s.finishedAt = time.Time{}
	s.stats = SessionStats{}
	return s.id, nil
}

// Completing transitions Running -> Completing: all jobs are done and the
// final ranking is being assembled.
func (s *Session) Completing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StateCompleting
	}
}

// Finish returns the session to Idle.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.finishedAt = time.Now()
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the current (or last) run id.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Stats returns a snapshot of the run counters.
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) record(fn func(*SessionStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

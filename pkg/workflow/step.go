package workflow

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Step is a named, independently timed phase of a workflow. It only holds
// state; propagating a failure to the owning workflow is the caller's job.
type Step struct {
	Name        string
	Description string

	mu        sync.RWMutex
	status    Status
	startedAt time.Time
	endedAt   time.Time
	result    map[string]any
	err       error

	now    func() time.Time
	notify func(step *Step, from, to Status)
}

// NewStep creates a pending step that is not attached to any workflow.
func NewStep(name, description string) *Step {
	return &Step{
		Name:        name,
		Description: description,
		status:      StatusPending,
		now:         time.Now,
	}
}

// Start moves a pending step to running and records its start time.
func (s *Step) Start() error {
	return s.transition(StatusRunning, func(at time.Time) {
		s.startedAt = at
	})
}

// Complete marks a running step as completed and stores its result.
func (s *Step) Complete(result map[string]any) error {
	return s.transition(StatusCompleted, func(at time.Time) {
		s.endedAt = at
		s.result = result
	})
}

// Fail marks a running step as failed and stores the cause.
func (s *Step) Fail(err error) error {
	return s.transition(StatusFailed, func(at time.Time) {
		s.endedAt = at
		s.err = err
	}, StatusRunning)
}

// Cancel stops a pending or running step. Timing is only closed when the step had started.
func (s *Step) Cancel() error {
	return s.transition(StatusCancelled, func(at time.Time) {
		if !s.startedAt.IsZero() {
			s.endedAt = at
		}
	})
}

// transition applies a status change under the lock. When only is given, the
// current status must also be one of those values.
func (s *Step) transition(to Status, apply func(at time.Time), only ...Status) error {
	s.mu.Lock()

	from := s.status
	if !CanTransition(from, to) || (len(only) > 0 && !slices.Contains(only, from)) {
		s.mu.Unlock()

		return &TransitionError{Subject: "step", Name: s.Name, From: from, To: to}
	}

	s.status = to
	apply(s.now().UTC())
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(s, from, to)
	}

	return nil
}

// Status returns the current status.
func (s *Step) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// StartTime returns when the step started and whether it has.
func (s *Step) StartTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.startedAt, !s.startedAt.IsZero()
}

// EndTime returns when the step ended and whether it has.
func (s *Step) EndTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.endedAt, !s.endedAt.IsZero()
}

// Duration is end minus start; ok is false until both are set.
func (s *Step) Duration() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.startedAt.IsZero() || s.endedAt.IsZero() {
		return 0, false
	}

	return s.endedAt.Sub(s.startedAt), true
}

// Result returns a copy of the payload stored by Complete.
func (s *Step) Result() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.result)
}

// Err returns the failure cause stored by Fail.
func (s *Step) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

func (s *Step) report() StepReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := StepReport{
		Name:        s.Name,
		Description: s.Description,
		Status:      s.status,
		StartTime:   timePtr(s.startedAt),
		EndTime:     timePtr(s.endedAt),
		Result:      maps.Clone(s.result),
	}

	if !s.startedAt.IsZero() && !s.endedAt.IsZero() {
		r.Duration = seconds(s.endedAt.Sub(s.startedAt))
	}

	if s.err != nil {
		msg := s.err.Error()
		r.Error = &msg
	}

	return r
}

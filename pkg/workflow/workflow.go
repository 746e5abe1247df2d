package workflow

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Listener is notified after every accepted status change of a workflow or
// one of its steps. Implementations must not call lifecycle methods on the
// workflow they observe.
type Listener interface {
	OnWorkflowTransition(w *Workflow, from, to Status)
	OnStepTransition(w *Workflow, step *Step, from, to Status)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithListener attaches a transition listener.
func WithListener(listener Listener) Option {
	return func(w *Workflow) {
		w.listener = listener
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(runID string) Option {
	return func(w *Workflow) {
		w.runID = runID
	}
}

// Workflow is an ordered sequence of steps with aggregate status and timing.
// A Workflow is created for a single run and is not reused.
type Workflow struct {
	name     string
	runID    string
	listener Listener
	now      func() time.Time

	mu        sync.RWMutex
	steps     []*Step
	status    Status
	startedAt time.Time
	endedAt   time.Time
	err       error
}

// New creates a pending workflow.
func New(name string, opts ...Option) *Workflow {
	w := &Workflow{
		name:   name,
		runID:  uuid.New().String(),
		now:    time.Now,
		status: StatusPending,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Workflow) Name() string  { return w.name }
func (w *Workflow) RunID() string { return w.runID }

// AddStep appends a new pending step and returns it for the caller to drive.
// Name uniqueness is not enforced.
func (w *Workflow) AddStep(name, description string) *Step {
	step := NewStep(name, description)
	step.now = w.now
	step.notify = w.stepChanged

	w.mu.Lock()
	w.steps = append(w.steps, step)
	w.mu.Unlock()

	return step
}

// Steps returns the steps in insertion order.
func (w *Workflow) Steps() []*Step {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.steps)
}

// Start moves the workflow to running. It must be called before any step work begins.
func (w *Workflow) Start() error {
	return w.transition(StatusRunning, func(at time.Time) {
		w.startedAt = at
	})
}

// Complete marks a running workflow as completed. A workflow holding a failed
// step cannot complete; ErrStepFailed is returned and the state is unchanged.
func (w *Workflow) Complete() error {
	w.mu.RLock()
	failed := slices.ContainsFunc(w.steps, func(s *Step) bool { return s.Status() == StatusFailed })
	w.mu.RUnlock()

	if failed {
		return ErrStepFailed
	}

	return w.transition(StatusCompleted, func(at time.Time) {
		w.endedAt = at
	}, StatusRunning)
}

// Fail marks the workflow as failed and stores the cause. It is accepted
// whether or not the workflow was started; an unstarted workflow gets its
// start time stamped so the duration is defined.
func (w *Workflow) Fail(err error) error {
	return w.transition(StatusFailed, func(at time.Time) {
		if w.startedAt.IsZero() {
			w.startedAt = at
		}

		w.endedAt = at
		w.err = err
	})
}

// Cancel marks the workflow as cancelled and cancels every step that has not
// reached a terminal state.
func (w *Workflow) Cancel() error {
	err := w.transition(StatusCancelled, func(at time.Time) {
		if !w.startedAt.IsZero() {
			w.endedAt = at
		}
	})
	if err != nil {
		return err
	}

	for _, step := range w.Steps() {
		if !step.Status().IsTerminal() {
			_ = step.Cancel()
		}
	}

	return nil
}

func (w *Workflow) transition(to Status, apply func(at time.Time), only ...Status) error {
	w.mu.Lock()

	from := w.status
	if !CanTransition(from, to) || (len(only) > 0 && !slices.Contains(only, from)) {
		w.mu.Unlock()

		return &TransitionError{Subject: "workflow", Name: w.name, From: from, To: to}
	}

	w.status = to
	apply(w.now().UTC())
	w.mu.Unlock()

	if w.listener != nil {
		w.listener.OnWorkflowTransition(w, from, to)
	}

	return nil
}

func (w *Workflow) stepChanged(step *Step, from, to Status) {
	if w.listener != nil {
		w.listener.OnStepTransition(w, step, from, to)
	}
}

// Status returns the overall status.
func (w *Workflow) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.status
}

// Err returns the failure cause stored by Fail.
func (w *Workflow) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.err
}

// Duration is end minus start; ok is false until both are set.
func (w *Workflow) Duration() (time.Duration, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.startedAt.IsZero() || w.endedAt.IsZero() {
		return 0, false
	}

	return w.endedAt.Sub(w.startedAt), true
}

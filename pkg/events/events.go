// Package events defines the lifecycle notifications emitted while workflows run.
package events

import (
	"time"

	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/google/uuid"
)

type EventType string

// Topic is the default topic events are published on.
const Topic = "blogflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowStartedEvent   EventType = "workflow.started"
	WorkflowCompletedEvent EventType = "workflow.completed"
	WorkflowFailedEvent    EventType = "workflow.failed"
	WorkflowCancelledEvent EventType = "workflow.cancelled"

	// Step lifecycle events.
	StepStartedEvent   EventType = "step.started"
	StepCompletedEvent EventType = "step.completed"
	StepFailedEvent    EventType = "step.failed"
	StepCancelledEvent EventType = "step.cancelled"

	// RunRecordedEvent is emitted once a finished run has been persisted.
	RunRecordedEvent EventType = "run.recorded"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Workflow  string         `json:"workflow"`
	RunID     string         `json:"run_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (b BaseEvent) GetType() EventType {
	return b.Type
}

// WorkflowTransition reports a workflow status change.
type WorkflowTransition struct {
	BaseEvent

	From     workflow.Status `json:"from"`
	To       workflow.Status `json:"to"`
	Error    string          `json:"error,omitempty"`
	Duration *float64        `json:"duration,omitempty"`
}

// StepTransition reports a step status change.
type StepTransition struct {
	BaseEvent

	Step     string          `json:"step"`
	From     workflow.Status `json:"from"`
	To       workflow.Status `json:"to"`
	Error    string          `json:"error,omitempty"`
	Duration *float64        `json:"duration,omitempty"`
	Result   map[string]any  `json:"result,omitempty"`
}

// RunRecorded carries the stored run's summary.
type RunRecorded struct {
	BaseEvent

	Input  string          `json:"input"`
	Status workflow.Status `json:"status"`
}

var workflowEventTypes = map[workflow.Status]EventType{
	workflow.StatusRunning:   WorkflowStartedEvent,
	workflow.StatusCompleted: WorkflowCompletedEvent,
	workflow.StatusFailed:    WorkflowFailedEvent,
	workflow.StatusCancelled: WorkflowCancelledEvent,
}

var stepEventTypes = map[workflow.Status]EventType{
	workflow.StatusRunning:   StepStartedEvent,
	workflow.StatusCompleted: StepCompletedEvent,
	workflow.StatusFailed:    StepFailedEvent,
	workflow.StatusCancelled: StepCancelledEvent,
}

func NewBaseEvent(eventType EventType, workflowName, runID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Workflow:  workflowName,
		RunID:     runID,
		Metadata:  make(map[string]any),
	}
}

// NewWorkflowTransition builds the event for a workflow entering to. The
// second return is false for transitions that have no event.
func NewWorkflowTransition(w *workflow.Workflow, from, to workflow.Status) (*WorkflowTransition, bool) {
	eventType, ok := workflowEventTypes[to]
	if !ok {
		return nil, false
	}

	event := &WorkflowTransition{
		BaseEvent: NewBaseEvent(eventType, w.Name(), w.RunID()),
		From:      from,
		To:        to,
	}

	if err := w.Err(); err != nil {
		event.Error = err.Error()
	}

	if d, ok := w.Duration(); ok {
		seconds := d.Seconds()
		event.Duration = &seconds
	}

	return event, true
}

// NewStepTransition builds the event for a step entering to.
func NewStepTransition(w *workflow.Workflow, step *workflow.Step, from, to workflow.Status) (*StepTransition, bool) {
	eventType, ok := stepEventTypes[to]
	if !ok {
		return nil, false
	}

	event := &StepTransition{
		BaseEvent: NewBaseEvent(eventType, w.Name(), w.RunID()),
		Step:      step.Name,
		From:      from,
		To:        to,
		Result:    step.Result(),
	}

	if err := step.Err(); err != nil {
		event.Error = err.Error()
	}

	if d, ok := step.Duration(); ok {
		seconds := d.Seconds()
		event.Duration = &seconds
	}

	return event, true
}

// NewRunRecorded builds the event emitted after a run is saved.
func NewRunRecorded(report *workflow.StatusReport, input string) *RunRecorded {
	return &RunRecorded{
		BaseEvent: NewBaseEvent(RunRecordedEvent, report.Workflow, report.RunID),
		Input:     input,
		Status:    report.Status,
	}
}

// New returns an empty event value for decoding a payload of eventType.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case WorkflowStartedEvent, WorkflowCompletedEvent, WorkflowFailedEvent, WorkflowCancelledEvent:
		return &WorkflowTransition{}, true
	case StepStartedEvent, StepCompletedEvent, StepFailedEvent, StepCancelledEvent:
		return &StepTransition{}, true
	case RunRecordedEvent:
		return &RunRecorded{}, true
	default:
		return nil, false
	}
}

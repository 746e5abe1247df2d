package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowTransition(t *testing.T) {
	t.Parallel()

	w := workflow.New("video_processing", workflow.WithRunID("run-1"))

	_, ok := NewWorkflowTransition(w, workflow.StatusPending, workflow.StatusPending)
	assert.False(t, ok)

	require.NoError(t, w.Start())

	started, ok := NewWorkflowTransition(w, workflow.StatusPending, workflow.StatusRunning)
	require.True(t, ok)
	assert.Equal(t, WorkflowStartedEvent, started.GetType())
	assert.Equal(t, "video_processing", started.Workflow)
	assert.Equal(t, "run-1", started.RunID)
	assert.NotEmpty(t, started.ID)
	assert.Nil(t, started.Duration)

	require.NoError(t, w.Fail(errors.New("download failed")))

	failed, ok := NewWorkflowTransition(w, workflow.StatusRunning, workflow.StatusFailed)
	require.True(t, ok)
	assert.Equal(t, WorkflowFailedEvent, failed.GetType())
	assert.Equal(t, "download failed", failed.Error)
	require.NotNil(t, failed.Duration)
}

func TestNewStepTransition(t *testing.T) {
	t.Parallel()

	w := workflow.New("blog_generation", workflow.WithRunID("run-2"))
	require.NoError(t, w.Start())

	step := w.AddStep("generate_blog_post", "Generating")
	require.NoError(t, step.Start())
	require.NoError(t, step.Complete(map[string]any{"provider": "openai"}))

	event, ok := NewStepTransition(w, step, workflow.StatusRunning, workflow.StatusCompleted)
	require.True(t, ok)
	assert.Equal(t, StepCompletedEvent, event.GetType())
	assert.Equal(t, "generate_blog_post", event.Step)
	assert.Equal(t, "openai", event.Result["provider"])
	assert.Empty(t, event.Error)
	require.NotNil(t, event.Duration)
}

func TestNew_DecodesEveryType(t *testing.T) {
	t.Parallel()

	report := &workflow.StatusReport{Workflow: "blog_generation", RunID: "run-3", Status: workflow.StatusCompleted}
	recorded := NewRunRecorded(report, "output/talk.txt")

	payload, err := json.Marshal(recorded)
	require.NoError(t, err)

	target, ok := New(recorded.GetType())
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(payload, target))

	decoded, ok := target.(*RunRecorded)
	require.True(t, ok)
	assert.Equal(t, "output/talk.txt", decoded.Input)
	assert.Equal(t, workflow.StatusCompleted, decoded.Status)
	assert.Equal(t, "run-3", decoded.RunID)
	assert.Equal(t, RunRecordedEvent, decoded.GetType())

	for _, eventType := range []EventType{WorkflowStartedEvent, WorkflowCancelledEvent, StepFailedEvent} {
		_, ok := New(eventType)
		assert.True(t, ok, eventType)
	}

	_, ok = New("node.activation")
	assert.False(t, ok)
}

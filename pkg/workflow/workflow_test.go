package workflow

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transition struct {
	subject string
	from    Status
	to      Status
}

type recordingListener struct {
	mu     sync.Mutex
	events []transition
}

func (l *recordingListener) OnWorkflowTransition(w *Workflow, from, to Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, transition{subject: w.Name(), from: from, to: to})
}

func (l *recordingListener) OnStepTransition(_ *Workflow, step *Step, from, to Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, transition{subject: step.Name, from: from, to: to})
}

func TestWorkflow_StatusReportListsStepsInOrder(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	names := []string{"extract_video_info", "download_video", "extract_transcript", "download_video"}

	for _, name := range names {
		w.AddStep(name, "desc "+name)
	}

	report := w.StatusReport()
	require.Len(t, report.Steps, len(names))

	for i, name := range names {
		assert.Equal(t, name, report.Steps[i].Name)
		assert.Equal(t, "desc "+name, report.Steps[i].Description)
		assert.Equal(t, StatusPending, report.Steps[i].Status)
		assert.Nil(t, report.Steps[i].Duration)
		assert.Nil(t, report.Steps[i].Error)
	}
}

func TestWorkflow_CompleteRun(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	w := New("blog_generation", WithClock(clock.Now), WithRunID("run-1"))

	require.NoError(t, w.Start())

	step := w.AddStep("load_transcript", "Loading transcript")
	require.NoError(t, step.Start())
	require.NoError(t, step.Complete(map[string]any{"title": "Test"}))

	require.NoError(t, w.Complete())

	report := w.StatusReport()
	assert.Equal(t, "blog_generation", report.Workflow)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, StatusCompleted, report.Status)
	assert.True(t, report.Succeeded())
	require.NotNil(t, report.StartTime)
	require.NotNil(t, report.EndTime)
	require.NotNil(t, report.Duration)
	assert.InDelta(t, report.EndTime.Sub(*report.StartTime).Seconds(), *report.Duration, 1e-9)
	assert.Nil(t, report.Error)

	stepReport, ok := report.Step("load_transcript")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, stepReport.Status)
	require.NotNil(t, stepReport.Duration)
	assert.InDelta(t, 1.0, *stepReport.Duration, 1e-9)
	assert.Equal(t, "Test", stepReport.Result["title"])
}

func TestWorkflow_CannotCompleteWithFailedStep(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	require.NoError(t, w.Start())

	step := w.AddStep("download_video", "Downloading")
	require.NoError(t, step.Start())
	require.NoError(t, step.Fail(errors.New("network down")))

	err := w.Complete()
	require.ErrorIs(t, err, ErrStepFailed)
	assert.Equal(t, StatusRunning, w.Status())

	require.NoError(t, w.Fail(step.Err()))
	assert.Equal(t, StatusFailed, w.Status())
	assert.EqualError(t, w.Err(), "network down")
}

func TestWorkflow_CompleteRequiresStart(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	assert.True(t, IsInvalidTransition(w.Complete()))
	assert.Equal(t, StatusPending, w.Status())
}

func TestWorkflow_FailWithoutStart(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	require.NoError(t, w.Fail(errors.New("invalid url")))

	report := w.StatusReport()
	assert.Equal(t, StatusFailed, report.Status)
	require.NotNil(t, report.Duration)
	assert.Zero(t, *report.Duration)
	require.NotNil(t, report.Error)
	assert.Equal(t, "invalid url", *report.Error)
	assert.Empty(t, report.Steps)
}

func TestWorkflow_CancelCancelsOpenSteps(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	require.NoError(t, w.Start())

	done := w.AddStep("extract_video_info", "Info")
	require.NoError(t, done.Start())
	require.NoError(t, done.Complete(nil))

	running := w.AddStep("download_video", "Download")
	require.NoError(t, running.Start())

	require.NoError(t, w.Cancel())

	assert.Equal(t, StatusCancelled, w.Status())
	assert.Equal(t, StatusCompleted, done.Status())
	assert.Equal(t, StatusCancelled, running.Status())

	_, ok := w.Duration()
	assert.True(t, ok)
}

func TestWorkflow_CancelBeforeStart(t *testing.T) {
	t.Parallel()

	w := New("video_processing")
	require.NoError(t, w.Cancel())

	_, ok := w.Duration()
	assert.False(t, ok)
	assert.Nil(t, w.StatusReport().Duration)
}

func TestWorkflow_StatusReportIsIdempotent(t *testing.T) {
	t.Parallel()

	w := New("blog_generation")
	require.NoError(t, w.Start())

	step := w.AddStep("generate_blog_post", "Generating")
	require.NoError(t, step.Start())
	require.NoError(t, step.Complete(map[string]any{"blog_content": "Generated content"}))
	require.NoError(t, w.Complete())

	first := w.StatusReport()
	first.Steps[0].Result["blog_content"] = "mutated by caller"

	second := w.StatusReport()
	third := w.StatusReport()

	assert.Equal(t, second, third)
	assert.Equal(t, "Generated content", second.Steps[0].Result["blog_content"])

	a, err := json.Marshal(second)
	require.NoError(t, err)
	b, err := json.Marshal(third)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestWorkflow_StatusReportJSONShape(t *testing.T) {
	t.Parallel()

	w := New("video_processing", WithRunID("abc"))
	w.AddStep("extract_video_info", "Info")

	data, err := json.Marshal(w.StatusReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "pending", decoded["status"])
	assert.Nil(t, decoded["start_time"])
	assert.Nil(t, decoded["end_time"])
	assert.Nil(t, decoded["duration"])
	assert.Nil(t, decoded["error"])

	steps, ok := decoded["steps"].([]any)
	require.True(t, ok)
	require.Len(t, steps, 1)

	first, ok := steps[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "extract_video_info", first["name"])
	assert.Equal(t, "pending", first["status"])
}

func TestWorkflow_ListenerSeesTransitionsInOrder(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{}
	w := New("video_processing", WithListener(listener))

	require.NoError(t, w.Start())

	step := w.AddStep("download_video", "Download")
	require.NoError(t, step.Start())
	require.NoError(t, step.Fail(errors.New("boom")))
	require.NoError(t, w.Fail(errors.New("boom")))

	// rejected transitions are not reported
	assert.Error(t, step.Complete(nil))

	assert.Equal(t, []transition{
		{subject: "video_processing", from: StatusPending, to: StatusRunning},
		{subject: "download_video", from: StatusPending, to: StatusRunning},
		{subject: "download_video", from: StatusRunning, to: StatusFailed},
		{subject: "video_processing", from: StatusRunning, to: StatusFailed},
	}, listener.events)
}

func TestWorkflow_ConcurrentReportsDuringRun(t *testing.T) {
	t.Parallel()

	w := New("blog_generation")
	require.NoError(t, w.Start())

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for range 50 {
			_ = w.StatusReport()
		}
	}()

	for i := range 10 {
		step := w.AddStep("step", "iteration")
		require.NoError(t, step.Start())
		require.NoError(t, step.Complete(map[string]any{"i": i}))
	}

	wg.Wait()
	require.NoError(t, w.Complete())
	assert.Len(t, w.StatusReport().Steps, 10)
	assert.WithinDuration(t, time.Now(), *w.StatusReport().EndTime, time.Minute)
}

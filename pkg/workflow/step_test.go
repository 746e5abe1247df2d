package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by one second on every reading.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)

	return c.current
}

func TestStep_Lifecycle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	step := NewStep("download_video", "Downloading video")
	step.now = clock.Now

	assert.Equal(t, StatusPending, step.Status())

	_, ok := step.Duration()
	assert.False(t, ok)

	require.NoError(t, step.Start())
	assert.Equal(t, StatusRunning, step.Status())

	_, ok = step.Duration()
	assert.False(t, ok, "duration must stay unset until the step ends")

	require.NoError(t, step.Complete(map[string]any{"video_path": "/tmp/v.mp4"}))
	assert.Equal(t, StatusCompleted, step.Status())

	start, ok := step.StartTime()
	require.True(t, ok)
	end, ok := step.EndTime()
	require.True(t, ok)

	duration, ok := step.Duration()
	require.True(t, ok)
	assert.Equal(t, end.Sub(start), duration)
	assert.Equal(t, time.Second, duration)
	assert.Equal(t, "/tmp/v.mp4", step.Result()["video_path"])
}

func TestStep_RejectsCompleteOrFailBeforeStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(s *Step) error
		to   Status
	}{
		{name: "complete", call: func(s *Step) error { return s.Complete(nil) }, to: StatusCompleted},
		{name: "fail", call: func(s *Step) error { return s.Fail(errors.New("boom")) }, to: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			step := NewStep("extract_transcript", "Extracting transcript")

			err := tt.call(step)
			require.Error(t, err)
			assert.True(t, IsInvalidTransition(err))

			var transitionErr *TransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, StatusPending, transitionErr.From)
			assert.Equal(t, tt.to, transitionErr.To)

			assert.Equal(t, StatusPending, step.Status(), "rejected transition must not mutate state")
			assert.NoError(t, step.Err())
		})
	}
}

func TestStep_TransitionsAreMonotonic(t *testing.T) {
	t.Parallel()

	step := NewStep("cleanup", "Cleaning up")
	require.NoError(t, step.Start())
	require.NoError(t, step.Fail(errors.New("disk full")))

	assert.True(t, IsInvalidTransition(step.Start()))
	assert.True(t, IsInvalidTransition(step.Complete(nil)))
	assert.True(t, IsInvalidTransition(step.Cancel()))
	assert.Equal(t, StatusFailed, step.Status())
	assert.EqualError(t, step.Err(), "disk full")
}

func TestStep_StartTwice(t *testing.T) {
	t.Parallel()

	step := NewStep("load_transcript", "Loading transcript")
	require.NoError(t, step.Start())
	assert.True(t, IsInvalidTransition(step.Start()))
}

func TestStep_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("before start leaves timing unset", func(t *testing.T) {
		t.Parallel()

		step := NewStep("save_blog_post", "Saving blog post")
		require.NoError(t, step.Cancel())

		assert.Equal(t, StatusCancelled, step.Status())
		_, ok := step.Duration()
		assert.False(t, ok)
		_, ok = step.EndTime()
		assert.False(t, ok)
	})

	t.Run("while running closes timing", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		step := NewStep("save_blog_post", "Saving blog post")
		step.now = clock.Now

		require.NoError(t, step.Start())
		require.NoError(t, step.Cancel())

		duration, ok := step.Duration()
		require.True(t, ok)
		assert.Equal(t, time.Second, duration)
	})
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	assert.True(t, CanTransition(StatusPending, StatusRunning))
	assert.True(t, CanTransition(StatusRunning, StatusCompleted))
	assert.True(t, CanTransition(StatusRunning, StatusFailed))
	assert.True(t, CanTransition(StatusRunning, StatusCancelled))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusRunning, StatusPending))

	for _, terminal := range []Status{StatusCompleted, StatusFailed, StatusCancelled} {
		assert.True(t, terminal.IsTerminal())

		for _, to := range []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled} {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

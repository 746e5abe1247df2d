// Package testutil provides test data builders and shared store checks.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateTestRun creates a completed blog generation run that can be overridden.
func CreateTestRun(overrides ...func(*persistence.Run)) *persistence.Run {
	started := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	ended := started.Add(3 * time.Second)
	duration := ended.Sub(started).Seconds()
	stepDuration := 1.5

	report := &workflow.StatusReport{
		Workflow:  "blog_generation",
		RunID:     uuid.New().String(),
		Status:    workflow.StatusCompleted,
		StartTime: &started,
		EndTime:   &ended,
		Duration:  &duration,
		Steps: []workflow.StepReport{
			{
				Name:        "load_transcript",
				Description: "Loading transcript from file",
				Status:      workflow.StatusCompleted,
				Duration:    &stepDuration,
				Result:      map[string]any{"title": "Test Video"},
			},
		},
	}

	run := persistence.NewRun("output/test-video.txt", report)

	for _, override := range overrides {
		override(run)
	}

	run.Report.RunID = run.ID
	run.Report.Workflow = run.Workflow
	run.Report.Status = run.Status

	return run
}

// WithCreatedAt sets the run creation time.
func WithCreatedAt(createdAt time.Time) func(*persistence.Run) {
	return func(r *persistence.Run) {
		r.CreatedAt = createdAt
	}
}

// WithStatus sets the run status.
func WithStatus(status workflow.Status) func(*persistence.Run) {
	return func(r *persistence.Run) {
		r.Status = status
	}
}

// WithWorkflow sets the workflow name.
func WithWorkflow(name string) func(*persistence.Run) {
	return func(r *persistence.Run) {
		r.Workflow = name
	}
}

// WithInput sets the run input.
func WithInput(input string) func(*persistence.Run) {
	return func(r *persistence.Run) {
		r.Input = input
	}
}

// RunStoreContract exercises the behaviour every persistence.RunStore must share.
// The store must start empty.
func RunStoreContract(t *testing.T, store persistence.RunStore) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, store.HealthCheck(ctx))

	_, err := store.RunByID(ctx, uuid.New().String())
	require.Error(t, err)
	assert.True(t, persistence.IsRunNotFound(err))

	assert.ErrorIs(t, store.SaveRun(ctx, &persistence.Run{}), persistence.ErrInvalidRun)

	base := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	var saved []*persistence.Run

	for i := range 5 {
		status := workflow.StatusCompleted
		if i%2 == 1 {
			status = workflow.StatusFailed
		}

		run := CreateTestRun(
			WithCreatedAt(base.Add(time.Duration(i)*time.Minute)),
			WithStatus(status),
			WithInput(fmt.Sprintf("output/talk-%d.txt", i)),
		)
		require.NoError(t, store.SaveRun(ctx, run))

		saved = append(saved, run)
	}

	loaded, err := store.RunByID(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, loaded.ID)
	assert.Equal(t, saved[0].Workflow, loaded.Workflow)
	assert.Equal(t, saved[0].Input, loaded.Input)
	assert.Equal(t, saved[0].Status, loaded.Status)
	assert.True(t, saved[0].CreatedAt.Equal(loaded.CreatedAt))
	require.NotNil(t, loaded.Report)
	require.Len(t, loaded.Report.Steps, 1)
	assert.Equal(t, "Test Video", loaded.Report.Steps[0].Result["title"])
	assert.InDelta(t, 3.0, *loaded.Report.Duration, 1e-9)

	all, err := store.Runs(ctx, persistence.ListRunsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, saved[4].ID, all[0].ID, "newest first")
	assert.Equal(t, saved[0].ID, all[4].ID)

	failed, err := store.Runs(ctx, persistence.ListRunsOptions{Status: workflow.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, saved[3].ID, failed[0].ID)

	limited, err := store.Runs(ctx, persistence.ListRunsOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	byInput, err := store.Runs(ctx, persistence.ListRunsOptions{Input: "output/talk-2.txt", Status: workflow.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, byInput, 1)
	assert.Equal(t, saved[2].ID, byInput[0].ID)

	none, err := store.Runs(ctx, persistence.ListRunsOptions{Workflow: "video_processing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	// saving again replaces the stored run
	updated := *saved[1]
	updated.Status = workflow.StatusCompleted
	require.NoError(t, store.SaveRun(ctx, &updated))

	reloaded, err := store.RunByID(ctx, updated.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, reloaded.Status)

	all, err = store.Runs(ctx, persistence.ListRunsOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

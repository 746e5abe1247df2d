// Package persistence stores the status reports of finished workflow runs.
package persistence

import (
	"context"
	"time"

	"github.com/brykly/blogflow/pkg/workflow"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Run is a stored workflow run. Input is the video URL or transcript path
// the run was started with.
type Run struct {
	ID        string                 `json:"id"`
	Workflow  string                 `json:"workflow"`
	Input     string                 `json:"input"`
	Status    workflow.Status        `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	Report    *workflow.StatusReport `json:"report"`
}

// NewRun wraps a report for storage. CreatedAt is the run start, or now if
// the run never started.
func NewRun(input string, report *workflow.StatusReport) *Run {
	createdAt := time.Now().UTC()
	if report.StartTime != nil {
		createdAt = report.StartTime.UTC()
	}

	return &Run{
		ID:        report.RunID,
		Workflow:  report.Workflow,
		Input:     input,
		Status:    report.Status,
		CreatedAt: createdAt,
		Report:    report,
	}
}

// ListRunsOptions filters Runs. Zero values match everything.
type ListRunsOptions struct {
	Workflow string
	Status   workflow.Status
	Input    string
	Limit    int
}

// Normalize clamps Limit to (0, MaxListLimit].
func (o ListRunsOptions) Normalize() ListRunsOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}

	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}

	return o
}

// Matches reports whether run passes the filters.
func (o ListRunsOptions) Matches(run *Run) bool {
	if o.Workflow != "" && run.Workflow != o.Workflow {
		return false
	}

	if o.Status != "" && run.Status != o.Status {
		return false
	}

	return o.Input == "" || run.Input == o.Input
}

// RunStore persists runs. Runs lists newest first.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	RunByID(ctx context.Context, id string) (*Run, error)
	Runs(ctx context.Context, opts ListRunsOptions) ([]*Run, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

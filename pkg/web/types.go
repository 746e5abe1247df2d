package web

import (
	"time"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/workflow"
)

// VideoRunRequest starts a video processing run.
type VideoRunRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// BlogRunRequest starts a blog generation run. Empty tone or style use the
// configured defaults.
type BlogRunRequest struct {
	TranscriptPath string `json:"transcript_path" validate:"required"`
	Tone           string `json:"tone"            validate:"omitempty,max=64"`
	Style          string `json:"style"           validate:"omitempty,max=64"`
}

// ProcessRunRequest runs video processing and blog generation back to back.
type ProcessRunRequest struct {
	URL   string `json:"url"   validate:"required,url"`
	Tone  string `json:"tone"  validate:"omitempty,max=64"`
	Style string `json:"style" validate:"omitempty,max=64"`
}

// RunSummary is the list view of a stored run.
type RunSummary struct {
	ID        string          `json:"id"`
	Workflow  string          `json:"workflow"`
	Input     string          `json:"input"`
	Status    workflow.Status `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Duration  *float64        `json:"duration"`
	Error     *string         `json:"error"`
}

// TransformRunSummary drops the step details of a run.
func TransformRunSummary(run *persistence.Run) RunSummary {
	summary := RunSummary{
		ID:        run.ID,
		Workflow:  run.Workflow,
		Input:     run.Input,
		Status:    run.Status,
		CreatedAt: run.CreatedAt,
	}

	if run.Report != nil {
		summary.Duration = run.Report.Duration
		summary.Error = run.Report.Error
	}

	return summary
}

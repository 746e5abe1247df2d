package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/brykly/blogflow/pkg/eventbus"
	"github.com/brykly/blogflow/pkg/events"
	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/google/uuid"
)

var (
	workflowNames = []string{pipeline.VideoProcessingName, pipeline.BlogGenerationName}
	runStatuses   = []workflow.Status{
		workflow.StatusPending, workflow.StatusRunning, workflow.StatusCompleted,
		workflow.StatusFailed, workflow.StatusCancelled,
	}
)

// Runs executes workflows and records their reports. The event publisher is
// optional.
type Runs struct {
	logger    *slog.Logger
	video     *pipeline.VideoProcessing
	blog      *pipeline.BlogGeneration
	store     persistence.RunStore
	publisher eventbus.EventPublisher
}

// NewRuns creates a new run service. publisher may be nil.
func NewRuns(
	logger *slog.Logger,
	video *pipeline.VideoProcessing,
	blog *pipeline.BlogGeneration,
	store persistence.RunStore,
	publisher eventbus.EventPublisher,
) *Runs {
	return &Runs{
		logger:    logger.With("module", "runs"),
		video:     video,
		blog:      blog,
		store:     store,
		publisher: publisher,
	}
}

// HealthCheck checks the health of the run store.
func (r *Runs) HealthCheck(ctx context.Context) (string, bool) {
	if r.store == nil {
		return "Run store not initialized", false
	}

	err := r.store.HealthCheck(ctx)
	if err != nil {
		return "Run store is unhealthy: " + err.Error(), false
	}

	return "Run store is healthy", true
}

// ProcessVideo runs the video processing workflow and records the report.
// The report is returned whenever the workflow was created, including on failure.
func (r *Runs) ProcessVideo(ctx context.Context, videoURL string) (*workflow.StatusReport, error) {
	runID := uuid.New().String()

	report, err := r.video.Execute(ctx, videoURL, r.runOptions(ctx, runID)...)
	r.record(ctx, videoURL, report)

	return report, err
}

// GenerateBlog runs the blog generation workflow and records the report.
// Empty tone or style use the configured defaults.
func (r *Runs) GenerateBlog(ctx context.Context, transcriptPath, tone, style string) (*workflow.StatusReport, error) {
	runID := uuid.New().String()

	report, err := r.blog.Execute(ctx, transcriptPath, tone, style, r.runOptions(ctx, runID)...)
	r.record(ctx, transcriptPath, report)

	return report, err
}

// ProcessResult holds the reports of an end-to-end run. Blog is nil when
// video processing failed.
type ProcessResult struct {
	Video *workflow.StatusReport `json:"video"`
	Blog  *workflow.StatusReport `json:"blog,omitempty"`
}

// Process turns a video URL into a blog post: video processing, then blog
// generation from the saved transcript.
func (r *Runs) Process(ctx context.Context, videoURL, tone, style string) (*ProcessResult, error) {
	result := &ProcessResult{}

	report, err := r.ProcessVideo(ctx, videoURL)
	result.Video = report

	if err != nil {
		return result, err
	}

	transcriptPath, ok := pipeline.TranscriptPath(report)
	if !ok {
		return result, fmt.Errorf("video run %s finished without a transcript path", report.RunID)
	}

	result.Blog, err = r.GenerateBlog(ctx, transcriptPath, tone, style)

	return result, err
}

func (r *Runs) runOptions(ctx context.Context, runID string) []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithRunID(runID)}

	if r.publisher != nil {
		opts = append(opts, pipeline.WithListener(eventbus.NewListener(ctx, r.publisher, r.logger)))
	}

	return opts
}

// record saves the report. Store or publish failures are logged and do not
// change the run's outcome.
func (r *Runs) record(ctx context.Context, input string, report *workflow.StatusReport) {
	if report == nil || r.store == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	err := r.store.SaveRun(ctx, persistence.NewRun(input, report))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save run", "run_id", report.RunID, "workflow", report.Workflow, "error", err)

		return
	}

	if r.publisher == nil {
		return
	}

	err = r.publisher.Publish(ctx, report.RunID, events.NewRunRecorded(report, input))
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to publish run recorded event", "run_id", report.RunID, "error", err)
	}
}

// ListRunsRequest contains options for listing runs.
type ListRunsRequest struct {
	Workflow string
	Status   string
	Input    string
	Limit    int
}

// ListRuns retrieves stored runs, newest first.
func (r *Runs) ListRuns(ctx context.Context, req ListRunsRequest) ([]*persistence.Run, error) {
	err := validateListRunsRequest(req)
	if err != nil {
		return nil, err
	}

	runs, err := r.store.Runs(ctx, persistence.ListRunsOptions{
		Workflow: req.Workflow,
		Status:   workflow.Status(req.Status),
		Input:    req.Input,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

func validateListRunsRequest(req ListRunsRequest) error {
	if req.Workflow != "" && !slices.Contains(workflowNames, req.Workflow) {
		return NewValidationError(
			"ListRuns",
			"INVALID_WORKFLOW",
			fmt.Sprintf("invalid workflow '%s', allowed: %s", req.Workflow, strings.Join(workflowNames, ", ")),
			ErrInvalidWorkflow,
		)
	}

	if req.Status != "" && !slices.Contains(runStatuses, workflow.Status(req.Status)) {
		return NewValidationError("ListRuns", "INVALID_STATUS", fmt.Sprintf("invalid status '%s'", req.Status), ErrInvalidStatus)
	}

	if req.Limit < 0 || req.Limit > persistence.MaxListLimit {
		return NewValidationError(
			"ListRuns",
			"INVALID_LIMIT",
			fmt.Sprintf("limit must be between 0 and %d", persistence.MaxListLimit),
			ErrInvalidLimit,
		)
	}

	return nil
}

// FetchByID retrieves a run by its ID.
func (r *Runs) FetchByID(ctx context.Context, id string) (*persistence.Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("FetchByID", "INVALID_ID", "run ID is required", ErrInvalidRequest)
	}

	return r.store.RunByID(ctx, id)
}

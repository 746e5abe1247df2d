package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/otelhelper"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a pipeline workflow.
type Option func(*options)

type options struct {
	listener workflow.Listener
	tracer   trace.Tracer
	runID    string
}

// WithListener receives every status transition of the run.
func WithListener(listener workflow.Listener) Option {
	return func(o *options) {
		o.listener = listener
	}
}

// WithTracer sets the tracer used for workflow and step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithRunID sets the run identifier. It only applies as a per-run option of
// Execute; passed to a constructor it is ignored so runs never share an ID.
func WithRunID(runID string) Option {
	return func(o *options) {
		o.runID = runID
	}
}

func buildOptions(opts []Option) options {
	o := options{tracer: otelhelper.Tracer()}
	for _, opt := range opts {
		opt(&o)
	}

	o.runID = ""

	return o
}

func (o options) workflowOptions(runOpts []Option) []workflow.Option {
	merged := o
	for _, opt := range runOpts {
		opt(&merged)
	}

	var wopts []workflow.Option
	if merged.listener != nil {
		wopts = append(wopts, workflow.WithListener(merged.listener))
	}

	if merged.runID != "" {
		wopts = append(wopts, workflow.WithRunID(merged.runID))
	}

	return wopts
}

// stage is one delegated call. It returns the step result.
type stage struct {
	name        string
	description string
	run         func(ctx context.Context) (map[string]any, error)
}

// runner drives the stages of a single run.
type runner struct {
	workflow *workflow.Workflow
	logger   *slog.Logger
	tracer   trace.Tracer
}

func newRunner(w *workflow.Workflow, logger *slog.Logger, tracer trace.Tracer) *runner {
	return &runner{
		workflow: w,
		logger:   logger.With("workflow", w.Name(), "run_id", w.RunID()),
		tracer:   tracer,
	}
}

// execute starts the workflow, runs stages in order and stops at the first
// failure. The failing step is failed before the workflow is.
func (r *runner) execute(ctx context.Context, stages []stage, attrs ...attribute.KeyValue) (*workflow.StatusReport, error) {
	attrs = append(attrs,
		attribute.String(otelhelper.WorkflowNameKey, r.workflow.Name()),
		attribute.String(otelhelper.RunIDKey, r.workflow.RunID()),
	)

	ctx = protocol.ContextWithRunID(ctx, r.workflow.RunID())

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, r.workflow.Name(), attrs...)
	defer span.End()

	err := r.workflow.Start()
	if err != nil {
		return r.workflow.StatusReport(), err
	}

	r.logger.InfoContext(ctx, "workflow started")

	for _, st := range stages {
		err = r.runStage(ctx, st)
		if err != nil {
			otelhelper.SetError(span, err)

			return r.fail(ctx, &StepError{
				Workflow: r.workflow.Name(),
				RunID:    r.workflow.RunID(),
				Step:     st.name,
				Err:      err,
			})
		}
	}

	err = r.workflow.Complete()
	if err != nil {
		otelhelper.SetError(span, err)

		return r.workflow.StatusReport(), err
	}

	report := r.workflow.StatusReport()
	r.logger.InfoContext(ctx, "workflow completed", "duration", *report.Duration)

	return report, nil
}

func (r *runner) runStage(ctx context.Context, st stage) error {
	step := r.workflow.AddStep(st.name, st.description)
	logger := r.logger.With("step", st.name)

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, st.name, attribute.String(otelhelper.StepNameKey, st.name))
	defer span.End()

	err := step.Start()
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, st.description)

	result, err := st.run(ctx)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "step failed", "error", err)

		failErr := step.Fail(err)
		if failErr != nil {
			logger.WarnContext(ctx, "could not mark step failed", "error", failErr)
		}

		return err
	}

	err = step.Complete(result)
	if err != nil {
		return err
	}

	if duration, ok := step.Duration(); ok {
		logger.DebugContext(ctx, "step completed", "duration", duration)
	}

	return nil
}

// fail marks the workflow failed and returns its report with err.
func (r *runner) fail(ctx context.Context, err error) (*workflow.StatusReport, error) {
	r.logger.ErrorContext(ctx, "workflow failed", "error", err)

	failErr := r.workflow.Fail(err)
	if failErr != nil {
		r.logger.WarnContext(ctx, "could not mark workflow failed", "error", failErr)
	}

	return r.workflow.StatusReport(), err
}

// ValidateVideoURL accepts absolute http(s) URLs with a host.
func ValidateVideoURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errs.Validationf("video URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errs.Validationf("invalid video URL %q: %v", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errs.Validationf("invalid video URL %q: scheme must be http or https", raw)
	}

	if u.Host == "" {
		return errs.Validationf("invalid video URL %q: missing host", raw)
	}

	return nil
}

func validateTranscriptPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errs.Validationf("transcript path is empty")
	}

	if !strings.EqualFold(filepath.Ext(path), config.TranscriptExt) {
		return errs.Validationf("transcript path %q must end in %s", path, config.TranscriptExt)
	}

	return nil
}

func rejectInput(w *workflow.Workflow, logger *slog.Logger, err error) (*workflow.StatusReport, error) {
	logger.Warn("rejected workflow input", "workflow", w.Name(), "run_id", w.RunID(), "error", err)

	failErr := w.Fail(err)
	if failErr != nil {
		return w.StatusReport(), fmt.Errorf("%w (%v)", err, failErr)
	}

	return w.StatusReport(), err
}

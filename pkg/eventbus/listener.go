package eventbus

import (
	"context"
	"log/slog"

	"github.com/brykly/blogflow/pkg/events"
	"github.com/brykly/blogflow/pkg/workflow"
)

// Listener publishes every workflow and step transition, keyed by run ID.
// Publish failures are logged; they never affect the run.
type Listener struct {
	ctx       context.Context //nolint:containedctx // workflow.Listener callbacks carry no context
	publisher EventPublisher
	logger    *slog.Logger
}

var _ workflow.Listener = (*Listener)(nil)

// NewListener publishes with a context detached from ctx's cancellation so a
// cancelled run still reports its final transition.
func NewListener(ctx context.Context, publisher EventPublisher, logger *slog.Logger) *Listener {
	return &Listener{
		ctx:       context.WithoutCancel(ctx),
		publisher: publisher,
		logger:    logger,
	}
}

func (l *Listener) OnWorkflowTransition(w *workflow.Workflow, from, to workflow.Status) {
	if event, ok := events.NewWorkflowTransition(w, from, to); ok {
		l.publish(w.RunID(), event)
	}
}

func (l *Listener) OnStepTransition(w *workflow.Workflow, step *workflow.Step, from, to workflow.Status) {
	if event, ok := events.NewStepTransition(w, step, from, to); ok {
		l.publish(w.RunID(), event)
	}
}

func (l *Listener) publish(key string, event Event) {
	err := l.publisher.Publish(l.ctx, key, event)
	if err != nil {
		l.logger.WarnContext(l.ctx, "Failed to publish event", "event_type", event.GetType(), "run_id", key, "error", err)
	}
}


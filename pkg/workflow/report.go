package workflow

import "time"

// StatusReport is a point-in-time snapshot of a workflow run. Timestamps are
// UTC and serialise as RFC 3339; unset values are null.
type StatusReport struct {
	Workflow  string       `json:"workflow"`
	RunID     string       `json:"run_id"`
	Status    Status       `json:"status"`
	StartTime *time.Time   `json:"start_time"`
	EndTime   *time.Time   `json:"end_time"`
	Duration  *float64     `json:"duration"`
	Error     *string      `json:"error"`
	Steps     []StepReport `json:"steps"`
}

// StepReport is the per-step part of a StatusReport.
type StepReport struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Duration    *float64       `json:"duration"`
	Error       *string        `json:"error"`
	Result      map[string]any `json:"result,omitempty"`
}

// StatusReport builds a snapshot of the workflow and its steps. It does not
// mutate the workflow, so repeated calls on a finished run return equal data.
func (w *Workflow) StatusReport() *StatusReport {
	w.mu.RLock()
	defer w.mu.RUnlock()

	report := &StatusReport{
		Workflow:  w.name,
		RunID:     w.runID,
		Status:    w.status,
		StartTime: timePtr(w.startedAt),
		EndTime:   timePtr(w.endedAt),
		Steps:     make([]StepReport, 0, len(w.steps)),
	}

	if !w.startedAt.IsZero() && !w.endedAt.IsZero() {
		report.Duration = seconds(w.endedAt.Sub(w.startedAt))
	}

	if w.err != nil {
		msg := w.err.Error()
		report.Error = &msg
	}

	for _, step := range w.steps {
		report.Steps = append(report.Steps, step.report())
	}

	return report
}

// Step returns the first step report with the given name.
func (r *StatusReport) Step(name string) (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}

	return StepReport{}, false
}

// Succeeded reports whether the run completed.
func (r *StatusReport) Succeeded() bool {
	return r.Status == StatusCompleted
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func seconds(d time.Duration) *float64 {
	s := d.Seconds()

	return &s
}

// Package scheduler generates blog posts for transcripts dropped into an
// inbox directory on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/services"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/robfig/cron/v3"
)

// BlogRunner is the part of services.Runs the inbox needs.
type BlogRunner interface {
	GenerateBlog(ctx context.Context, transcriptPath, tone, style string) (*workflow.StatusReport, error)
	ListRuns(ctx context.Context, req services.ListRunsRequest) ([]*persistence.Run, error)
}

// Inbox scans Dir for .txt transcripts that have no completed blog run.
type Inbox struct {
	Dir      string
	CronExpr string

	runs   BlogRunner
	logger *slog.Logger
	cron   *cron.Cron
}

func NewInbox(cfg config.ScheduleConfig, runs BlogRunner, logger *slog.Logger) (*Inbox, error) {
	inbox := &Inbox{
		Dir:      cfg.InboxDir,
		CronExpr: cfg.Cron,
		runs:     runs,
		logger:   logger.With("module", "scheduler", "inbox", cfg.InboxDir, "cron", cfg.Cron),
	}

	err := inbox.Validate()
	if err != nil {
		return nil, err
	}

	return inbox, nil
}

func (i *Inbox) Validate() error {
	if i.Dir == "" {
		return errors.New("schedule inbox directory is required")
	}

	if i.CronExpr == "" {
		return errors.New("schedule cron expression is required")
	}

	_, err := cron.ParseStandard(i.CronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

// Start schedules Scan. Overlapping ticks are skipped.
func (i *Inbox) Start(ctx context.Context) error {
	logger := cronLogger{i.logger}

	i.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	_, err := i.cron.AddFunc(i.CronExpr, func() {
		generated, err := i.Scan(ctx)
		if err != nil {
			i.logger.ErrorContext(ctx, "Inbox scan failed", "error", err)

			return
		}

		i.logger.InfoContext(ctx, "Inbox scan finished", "generated", generated)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	i.logger.InfoContext(ctx, "Starting inbox scheduler")
	i.cron.Start()

	return nil
}

// Stop waits for a running scan to finish or ctx to be done.
func (i *Inbox) Stop(ctx context.Context) error {
	if i.cron == nil {
		return nil
	}

	select {
	case <-i.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scan runs blog generation for every pending transcript and returns how
// many posts were generated. A failed transcript is logged and retried on
// the next scan.
func (i *Inbox) Scan(ctx context.Context) (int, error) {
	pending, err := i.pending(ctx)
	if err != nil {
		return 0, err
	}

	generated := 0

	for _, path := range pending {
		if err := ctx.Err(); err != nil {
			return generated, err
		}

		report, err := i.runs.GenerateBlog(ctx, path, "", "")
		if err != nil {
			i.logger.WarnContext(ctx, "Blog generation failed", "transcript", path, "error", err)

			continue
		}

		i.logger.InfoContext(ctx, "Blog post generated", "transcript", path, "run_id", report.RunID)
		generated++
	}

	return generated, nil
}

func (i *Inbox) pending(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(i.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var pending []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), config.TranscriptExt) {
			continue
		}

		path := filepath.Join(i.Dir, entry.Name())

		done, err := i.runs.ListRuns(ctx, services.ListRunsRequest{
			Workflow: pipeline.BlogGenerationName,
			Status:   string(workflow.StatusCompleted),
			Input:    path,
			Limit:    1,
		})
		if err != nil {
			return nil, err
		}

		if len(done) == 0 {
			pending = append(pending, path)
		}
	}

	slices.Sort(pending)

	return pending, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

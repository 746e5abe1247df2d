// Package postgresql provides PostgreSQL persistence for workflow runs.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/persistence/sqlbase"
	"github.com/brykly/blogflow/pkg/workflow"
	_ "github.com/lib/pq"
)

// Persistence implements persistence.RunStore for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and migrates the database.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// SaveRun inserts the run or replaces the stored version.
func (p *Persistence) SaveRun(ctx context.Context, run *persistence.Run) error {
	err := persistence.ValidateRun(run)
	if err != nil {
		return err
	}

	report, err := json.Marshal(run.Report)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal report: %w", err))
	}

	query := `
		INSERT INTO runs (id, workflow, input, status, created_at, updated_at, report)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (id) DO UPDATE SET
			workflow = EXCLUDED.workflow,
			input = EXCLUDED.input,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			updated_at = NOW(),
			report = EXCLUDED.report
	`

	_, err = p.db.ExecContext(ctx, query,
		run.ID, run.Workflow, run.Input, string(run.Status), run.CreatedAt, report,
	)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to save run", "run_id", run.ID, "error", err)

		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

// RunByID returns the run or an error matching persistence.ErrRunNotFound.
func (p *Persistence) RunByID(ctx context.Context, id string) (*persistence.Run, error) {
	query := `SELECT id, workflow, input, status, created_at, report FROM runs WHERE id = $1`

	run, err := scanRun(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
	}

	if err != nil {
		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return run, nil
}

// Runs lists runs newest first.
func (p *Persistence) Runs(ctx context.Context, opts persistence.ListRunsOptions) ([]*persistence.Run, error) {
	opts = opts.Normalize()

	var (
		conditions []string
		args       []any
	)

	addCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if opts.Workflow != "" {
		addCondition("workflow", opts.Workflow)
	}

	if opts.Status != "" {
		addCondition("status", string(opts.Status))
	}

	if opts.Input != "" {
		addCondition("input", opts.Input)
	}

	query := `SELECT id, workflow, input, status, created_at, report FROM runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, opts.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d", len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewRunError("Runs", "", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	runs := make([]*persistence.Run, 0, opts.Limit)

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, persistence.NewRunError("Runs", "", err)
		}

		runs = append(runs, run)
	}

	err = rows.Err()
	if err != nil {
		return nil, persistence.NewRunError("Runs", "", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*persistence.Run, error) {
	var (
		run    persistence.Run
		status string
		report []byte
	)

	err := row.Scan(&run.ID, &run.Workflow, &run.Input, &status, &run.CreatedAt, &report)
	if err != nil {
		return nil, err
	}

	run.Status = workflow.Status(status)
	run.CreatedAt = run.CreatedAt.UTC()

	err = json.Unmarshal(report, &run.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &run, nil
}

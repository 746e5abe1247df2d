// Package file provides file-based persistence for workflow runs: one JSON
// document per run under <root>/runs.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/brykly/blogflow/pkg/persistence"
)

// Persistence implements the persistence.RunStore interface using the file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

func (fp *Persistence) runsDir() string {
	return filepath.Join(fp.root, "runs")
}

func (fp *Persistence) runPath(id string) string {
	return filepath.Join(fp.runsDir(), id+".json")
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks that the runs directory exists or can be created.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	return os.MkdirAll(fp.runsDir(), 0o750)
}

// SaveRun writes the run, replacing an earlier version with the same ID.
func (fp *Persistence) SaveRun(_ context.Context, run *persistence.Run) error {
	err := persistence.ValidateRun(run)
	if err != nil {
		return err
	}

	if strings.ContainsAny(run.ID, `/\`) || strings.Contains(run.ID, "..") {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("%w: unsafe id", persistence.ErrInvalidRun))
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err = os.MkdirAll(fp.runsDir(), 0o750)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	// write then rename so readers never see a partial document
	tmp := fp.runPath(run.ID) + ".tmp"

	err = os.WriteFile(tmp, data, 0o600)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	err = os.Rename(tmp, fp.runPath(run.ID))
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

// RunByID returns the run or an error matching persistence.ErrRunNotFound.
func (fp *Persistence) RunByID(_ context.Context, id string) (*persistence.Run, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	return fp.readRun(id)
}

func (fp *Persistence) readRun(id string) (*persistence.Run, error) {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
	}

	data, err := os.ReadFile(fp.runPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
	}

	if err != nil {
		return nil, persistence.NewRunError("RunByID", id, err)
	}

	var run persistence.Run

	err = json.Unmarshal(data, &run)
	if err != nil {
		return nil, persistence.NewRunError("RunByID", id, fmt.Errorf("failed to decode run: %w", err))
	}

	return &run, nil
}

// Runs loads every run, filters and sorts in memory.
func (fp *Persistence) Runs(_ context.Context, opts persistence.ListRunsOptions) ([]*persistence.Run, error) {
	opts = opts.Normalize()

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(fp.runsDir()), "*.json")
	if err != nil {
		return nil, persistence.NewRunError("Runs", "", err)
	}

	runs := make([]*persistence.Run, 0, len(jsonFiles))

	for _, name := range jsonFiles {
		run, err := fp.readRun(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}

		if opts.Matches(run) {
			runs = append(runs, run)
		}
	}

	slices.SortFunc(runs, func(a, b *persistence.Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	if len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}

	return runs, nil
}

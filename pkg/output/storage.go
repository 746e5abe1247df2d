package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
)

// Storage owns the temp directory used for downloads. Each run gets its own
// subdirectory, named after the run ID carried by the context, so concurrent
// runs never clean up each other's files. It implements protocol.TempStorage.
type Storage struct {
	tempDir string
	logger  *slog.Logger
}

func NewStorage(tempDir string, logger *slog.Logger) *Storage {
	return &Storage{tempDir: tempDir, logger: logger.With("module", "storage")}
}

// TempDir returns the scratch directory of the run in ctx, creating it if
// needed. Without a run ID it is the temp root.
func (s *Storage) TempDir(ctx context.Context) (string, error) {
	dir, err := s.runDir(ctx)
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", errs.ErrStorage, dir, err)
	}

	return dir, nil
}

func (s *Storage) runDir(ctx context.Context) (string, error) {
	runID := protocol.RunIDFromContext(ctx)
	if runID == "" {
		return s.tempDir, nil
	}

	if runID == "." || runID == ".." || runID != filepath.Base(runID) {
		return "", errs.Validationf("unsafe run id %q", runID)
	}

	return filepath.Join(s.tempDir, runID), nil
}

// CleanupTempFiles removes the scratch directory of the run in ctx. Without
// a run ID everything inside the temp root is removed and the root is kept.
func (s *Storage) CleanupTempFiles(ctx context.Context) error {
	dir, err := s.runDir(ctx)
	if err != nil {
		return err
	}

	if dir != s.tempDir {
		err = os.RemoveAll(dir)
		if err != nil {
			return fmt.Errorf("%w: removing %s: %w", errs.ErrStorage, dir, err)
		}

		s.logger.DebugContext(ctx, "run temp files cleaned", "dir", dir)

		return nil
	}

	entries, err := os.ReadDir(s.tempDir)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: listing %s: %w", errs.ErrStorage, s.tempDir, err)
	}

	removed := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		err = os.RemoveAll(filepath.Join(s.tempDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("%w: removing %s: %w", errs.ErrStorage, entry.Name(), err)
		}

		removed++
	}

	s.logger.DebugContext(ctx, "temp files cleaned", "dir", s.tempDir, "removed", removed)

	return nil
}

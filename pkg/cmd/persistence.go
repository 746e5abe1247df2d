package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/persistence/file"
	"github.com/brykly/blogflow/pkg/persistence/postgresql"
	"github.com/brykly/blogflow/pkg/persistence/redis"
)

// NewPersistence picks the run store from the URL scheme. Anything that is
// not postgres or redis is treated as a directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.RunStore, error) {
	logger = logger.With("module", "persistence")

	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	case "redis", "rediss":
		store, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}

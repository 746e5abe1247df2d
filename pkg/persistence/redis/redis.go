// Package redis provides Redis persistence for workflow runs. Each run is a
// JSON string under runKey(id); a sorted set scored by creation time keeps
// the listing order.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brykly/blogflow/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "blogflow:run:"
	indexKey  = "blogflow:runs"
)

func runKey(id string) string {
	return keyPrefix + id
}

// Persistence implements persistence.RunStore on Redis.
type Persistence struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPersistence parses a redis:// URL and pings the server.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &Persistence{client: client, logger: logger}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

// SaveRun stores the document and index entry in one transaction.
func (p *Persistence) SaveRun(ctx context.Context, run *persistence.Run) error {
	err := persistence.ValidateRun(run)
	if err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, runKey(run.ID), data, 0)
		pipe.ZAdd(ctx, indexKey, redis.Z{
			Score:  float64(run.CreatedAt.UnixMicro()),
			Member: run.ID,
		})

		return nil
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to save run", "run_id", run.ID, "error", err)

		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

func (p *Persistence) RunByID(ctx context.Context, id string) (*persistence.Run, error) {
	data, err := p.client.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
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

// Runs walks the index newest first and filters documents client side.
func (p *Persistence) Runs(ctx context.Context, opts persistence.ListRunsOptions) ([]*persistence.Run, error) {
	opts = opts.Normalize()

	ids, err := p.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, persistence.NewRunError("Runs", "", err)
	}

	if len(ids) == 0 {
		return []*persistence.Run{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = runKey(id)
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, persistence.NewRunError("Runs", "", err)
	}

	runs := make([]*persistence.Run, 0, opts.Limit)

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// index entry without a document
			p.logger.WarnContext(ctx, "Run missing from Redis", "run_id", strings.TrimPrefix(keys[i], keyPrefix))

			continue
		}

		var run persistence.Run

		err = json.Unmarshal([]byte(raw), &run)
		if err != nil {
			return nil, persistence.NewRunError("Runs", ids[i], fmt.Errorf("failed to decode run: %w", err))
		}

		if !opts.Matches(&run) {
			continue
		}

		runs = append(runs, &run)
		if len(runs) == opts.Limit {
			break
		}
	}

	return runs, nil
}

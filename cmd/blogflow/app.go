package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brykly/blogflow/pkg/cmd"
	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/eventbus"
	"github.com/brykly/blogflow/pkg/log"
	"github.com/brykly/blogflow/pkg/otelhelper"
	"github.com/brykly/blogflow/pkg/output"
	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/providers/youtube"
	"github.com/brykly/blogflow/pkg/services"
	"github.com/brykly/blogflow/pkg/transcript"
	cli "github.com/urfave/cli/v3"
)

// App holds the components shared by the subcommands.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    persistence.RunStore
	eventBus eventbus.EventBus
	runs     *services.Runs
	closers  []func(ctx context.Context) error
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig(command *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if command.IsSet("log-level") {
		cfg.Logging.Level = command.String("log-level")
	}

	if command.IsSet("database-url") {
		cfg.Storage.DatabaseURL = command.String("database-url")
	}

	if command.IsSet("event-bus") {
		cfg.Events.Bus = command.String("event-bus")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	log.Setup(cfg.Logging.Level, cfg.Logging.Format)

	return cfg, nil
}

// openStore sets up logging and the run store only. Used by read-only commands.
func openStore(ctx context.Context, command *cli.Command) (*App, error) {
	cfg, err := loadConfig(command)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, logger: log.WithModule("blogflow")}

	app.store, err = cmd.NewPersistence(ctx, app.logger, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, err
	}

	app.closers = append(app.closers, app.store.Close)

	return app, nil
}

// NewApp wires the full pipeline. With requireLLM false a missing LLM key is
// only logged, so video-only commands work without one.
func NewApp(ctx context.Context, command *cli.Command, requireLLM bool) (*App, error) {
	app, err := openStore(ctx, command)
	if err != nil {
		return nil, err
	}

	cfg := app.cfg

	app.eventBus, err = cmd.NewEventBus(cfg.Events, app.logger)
	if err != nil {
		app.Close(ctx)

		return nil, err
	}

	var publisher eventbus.EventPublisher
	if app.eventBus != nil {
		publisher = app.eventBus
		app.closers = append(app.closers, func(context.Context) error { return app.eventBus.Close() })
	}

	var opts []pipeline.Option

	if cfg.Tracing.Enabled {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, cfg.Tracing.ServiceName)
		if err != nil {
			app.Close(ctx)

			return nil, err
		}

		opts = append(opts, pipeline.WithTracer(tracer))
		app.closers = append(app.closers, shutdown)
	}

	generators, err := cmd.NewGenerators(cfg, app.logger)
	if err != nil {
		if requireLLM {
			app.Close(ctx)

			return nil, err
		}

		app.logger.WarnContext(ctx, "Blog generation unavailable", "error", err)
	}

	temp := output.NewStorage(cfg.Paths.TempDir, app.logger)
	transcripts := transcript.NewStore(cfg.Paths.OutputDir, app.logger, cfg.Schedule.InboxDir)
	source := youtube.New(cfg.YouTube, temp, app.logger)

	video := pipeline.NewVideoProcessing(app.logger, source, transcripts, temp, opts...)
	blog := pipeline.NewBlogGeneration(
		cfg.Blog, app.logger, transcripts, generators,
		output.NewBlogStore(cfg.Paths.OutputDir, app.logger), temp, opts...,
	)

	app.runs = services.NewRuns(app.logger, video, blog, app.store, publisher)

	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	var errList []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errList = append(errList, a.closers[i](ctx))
	}

	a.closers = nil

	if err := errors.Join(errList...); err != nil {
		a.logger.ErrorContext(ctx, "Failed to shut down cleanly", "error", err)
	}
}


package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/brykly/blogflow/pkg/services"
	"github.com/brykly/blogflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"
)

type API struct {
	logger   *slog.Logger
	runs     *services.Runs
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, runs *services.Runs) *API {
	return &API{
		logger:   logger,
		runs:     runs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runs, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("blogflow API")
	})

	handlers.Register(app)

	return app
}

// Start serves until ctx is done.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		err := app.Shutdown()
		if err != nil {
			a.logger.Error("Failed to shut down API", "error", err)
		}
	}()

	return app.Listen(":" + strconv.Itoa(port))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on, defaults to server.port",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			app, err := NewApp(ctx, command, false)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			port := app.cfg.Server.Port
			if command.IsSet("port") {
				port = command.Int("port")
			}

			app.logger.InfoContext(ctx, "Starting blogflow API", "port", port)

			return NewAPI(app.logger, app.runs).Start(ctx, port)
		},
	}
}

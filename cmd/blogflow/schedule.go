package main

import (
	"context"
	"time"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

const stopTimeout = 30 * time.Second

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Generate blog posts for new transcripts in the inbox on a cron schedule",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Scan the inbox once and exit",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			app, err := NewApp(ctx, command, true)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			schedule := app.cfg.Schedule
			if command.Bool("once") && schedule.Cron == "" {
				schedule.Cron = "@hourly"
			}

			if schedule.Cron == "" {
				return errs.Configurationf("schedule.cron is not set")
			}

			inbox, err := scheduler.NewInbox(schedule, app.runs, app.logger)
			if err != nil {
				return errs.Configurationf("%v", err)
			}

			if command.Bool("once") {
				generated, err := inbox.Scan(ctx)
				app.logger.InfoContext(ctx, "Inbox scanned", "generated", generated)

				return err
			}

			err = inbox.Start(ctx)
			if err != nil {
				return err
			}

			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
			defer cancel()

			return inbox.Stop(stopCtx)
		},
	}
}

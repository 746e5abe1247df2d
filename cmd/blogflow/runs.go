package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect recorded workflow runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "workflow", Usage: "Only runs of this workflow"},
					&cli.StringFlag{Name: "status", Usage: "Only runs with this status"},
					&cli.StringFlag{Name: "input", Usage: "Only runs for this video URL or transcript path"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs", Value: persistence.DefaultListLimit},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					runs, closeStore, err := readOnlyRuns(ctx, command)
					if err != nil {
						return err
					}
					defer closeStore()

					list, err := runs.ListRuns(ctx, services.ListRunsRequest{
						Workflow: command.String("workflow"),
						Status:   command.String("status"),
						Input:    command.String("input"),
						Limit:    command.Int("limit"),
					})
					if err != nil {
						return err
					}

					if command.Bool("json") {
						return printJSON(os.Stdout, list)
					}

					return printRunTable(os.Stdout, list)
				},
			},
			{
				Name:      "show",
				Usage:     "Print the status report of a run",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					id, err := requireArg(command, "id")
					if err != nil {
						return err
					}

					runs, closeStore, err := readOnlyRuns(ctx, command)
					if err != nil {
						return err
					}
					defer closeStore()

					run, err := runs.FetchByID(ctx, id)
					if err != nil {
						return err
					}

					return printJSON(os.Stdout, run)
				},
			},
		},
	}
}

// readOnlyRuns opens only the run store; no workflow can be started.
func readOnlyRuns(ctx context.Context, command *cli.Command) (*services.Runs, func(), error) {
	app, err := openStore(ctx, command)
	if err != nil {
		return nil, nil, err
	}

	return services.NewRuns(app.logger, nil, nil, app.store, nil), func() { app.Close(ctx) }, nil
}

func printRunTable(w io.Writer, runs []*persistence.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tWORKFLOW\tSTATUS\tCREATED\tINPUT")

	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Workflow, run.Status, run.CreatedAt.Local().Format(time.DateTime), run.Input)
	}

	return tw.Flush()
}

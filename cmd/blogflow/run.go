package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brykly/blogflow/pkg/pipeline"
	cli "github.com/urfave/cli/v3"
)

func videoCommand() *cli.Command {
	return &cli.Command{
		Name:      "video",
		Usage:     "Download a video and save its transcript",
		ArgsUsage: "<url>",
		Action: func(ctx context.Context, command *cli.Command) error {
			videoURL, err := requireArg(command, "url")
			if err != nil {
				return err
			}

			app, err := NewApp(ctx, command, false)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			report, runErr := app.runs.ProcessVideo(ctx, videoURL)

			return printResult(os.Stdout, report, runErr)
		},
	}
}

func blogCommand() *cli.Command {
	return &cli.Command{
		Name:      "blog",
		Usage:     "Generate a blog post from a saved transcript",
		ArgsUsage: "<transcript-path>",
		Flags:     styleFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			path, err := requireArg(command, "transcript-path")
			if err != nil {
				return err
			}

			app, err := NewApp(ctx, command, true)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			report, runErr := app.runs.GenerateBlog(ctx, path, command.String("tone"), command.String("style"))

			return printResult(os.Stdout, report, runErr)
		},
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Turn a video into a blog post",
		ArgsUsage: "<url>",
		Flags:     styleFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			videoURL, err := requireArg(command, "url")
			if err != nil {
				return err
			}

			app, err := NewApp(ctx, command, true)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			result, runErr := app.runs.Process(ctx, videoURL, command.String("tone"), command.String("style"))

			return printResult(os.Stdout, result, runErr)
		},
	}
}

// printResult writes v as indented JSON and passes runErr through, so a failed
// run still shows its report.
func printResult(w io.Writer, v any, runErr error) error {
	err := printJSON(w, v)
	if err != nil {
		return err
	}

	if runErr != nil {
		if step, ok := pipeline.FailedStep(runErr); ok {
			return fmt.Errorf("run failed at step %s: %w", step, runErr)
		}

		return fmt.Errorf("run failed: %w", runErr)
	}

	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// Command blogflow turns YouTube videos into blog posts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newCommand().Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "blogflow",
		Usage:                 "Turn YouTube videos into blog posts",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("BLOGFLOW_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Run store URL: a directory, postgres://... or redis://...",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for lifecycle events (none, gochannel, kafka)",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
		},
		Commands: []*cli.Command{
			videoCommand(),
			blogCommand(),
			processCommand(),
			serveCommand(),
			scheduleCommand(),
			validateCommand(),
			runsCommand(),
			eventsCommand(),
		},
	}
}

func styleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "tone", Usage: "Writing tone, defaults to blog.tone"},
		&cli.StringFlag{Name: "style", Usage: "Writing style, defaults to blog.style"},
	}
}

func requireArg(command *cli.Command, name string) (string, error) {
	value := command.Args().First()
	if value == "" {
		return "", fmt.Errorf("missing argument <%s>", name)
	}

	return value, nil
}

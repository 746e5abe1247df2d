package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/brykly/blogflow/pkg/cmd"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/events"
	"github.com/brykly/blogflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

var eventTypes = []events.EventType{
	events.WorkflowStartedEvent,
	events.WorkflowCompletedEvent,
	events.WorkflowFailedEvent,
	events.WorkflowCancelledEvent,
	events.StepStartedEvent,
	events.StepCompletedEvent,
	events.StepFailedEvent,
	events.StepCancelledEvent,
	events.RunRecordedEvent,
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Print lifecycle events from the event bus as JSON lines",
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			logger := log.WithModule("events")

			bus, err := cmd.NewEventBus(cfg.Events, logger)
			if err != nil {
				return err
			}

			if bus == nil {
				return errs.Configurationf("no event bus configured; set events.bus or --event-bus")
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var mu sync.Mutex

			for _, eventType := range eventTypes {
				err = bus.Handle(eventType, func(_ context.Context, event any) error {
					mu.Lock()
					defer mu.Unlock()

					return printCompactJSON(event)
				})
				if err != nil {
					return err
				}
			}

			err = bus.Subscribe(ctx)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Listening for events", "bus", cfg.Events.Bus, "topic", cfg.Events.Topic)
			<-ctx.Done()

			return nil
		},
	}
}

func printCompactJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/brykly/blogflow/pkg/channels/gochannel"
	"github.com/brykly/blogflow/pkg/channels/kafka"
	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/eventbus"
	"github.com/brykly/blogflow/pkg/errs"
)

// NewEventBus builds the configured bus. It returns nil when events are disabled.
func NewEventBus(cfg config.EventsConfig, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Bus {
	case "", "none":
		return nil, nil //nolint:nilnil // no bus configured
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, cfg.Topic, logger), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, cfg.Brokers, "blogflow")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, cfg.Topic, logger), nil
	default:
		return nil, errs.Configurationf("unsupported event bus provider: %s", cfg.Bus)
	}
}

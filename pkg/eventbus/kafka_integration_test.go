package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/brykly/blogflow/pkg/channels/kafka"
	"github.com/brykly/blogflow/pkg/eventbus"
	"github.com/brykly/blogflow/pkg/events"
	"github.com/brykly/blogflow/pkg/log"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestWatermillEventBus_Kafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "blogflow-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, "blogflow.test.events", log.Discard())

	defer func() { _ = bus.Close() }()

	received := make(chan *events.RunRecorded, 1)

	require.NoError(t, bus.Handle(events.RunRecordedEvent, func(_ context.Context, event any) error {
		if recorded, ok := event.(*events.RunRecorded); ok {
			received <- recorded
		}

		return nil
	}))

	report := &workflow.StatusReport{Workflow: "video_processing", RunID: "kafka-run", Status: workflow.StatusFailed}
	require.NoError(t, bus.Publish(ctx, "kafka-run", events.NewRunRecorded(report, "https://youtu.be/dQw4w9WgXcQ")))

	require.NoError(t, bus.Subscribe(ctx))

	select {
	case event := <-received:
		assert.Equal(t, "kafka-run", event.RunID)
		assert.Equal(t, workflow.StatusFailed, event.Status)
	case <-ctx.Done():
		t.Fatal("timed out waiting for Kafka event")
	}
}

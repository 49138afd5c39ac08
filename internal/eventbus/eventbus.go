// Package eventbus wraps the watermill NATS publisher behind a small
// topic/payload interface. Delivery is fire-and-forget from the caller's
// point of view; downstream processors consume the JetStream subjects.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	nc "github.com/nats-io/nats.go"
)

// EventBus publishes JSON-encoded payloads to named topics.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

type natsEventBus struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewNATSEventBus connects a watermill publisher to NATS JetStream.
func NewNATSEventBus(natsURL string, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:       natsURL,
			Marshaler: &nats.NATSMarshaler{},
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
				nc.Timeout(30 * time.Second),
				nc.ReconnectWait(1 * time.Second),
			},
			JetStream: nats.JetStreamConfig{
				AutoProvision: true,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return &natsEventBus{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (b *natsEventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (b *natsEventBus) Close() error {
	return b.publisher.Close()
}

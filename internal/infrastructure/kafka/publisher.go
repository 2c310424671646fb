package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/events"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

// MessageProducer is the part of pkgkafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements port.EventPublisher using Kafka. Messages are keyed
// by aggregate ID so all events of one assessment land on one partition.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a new Kafka event publisher.
func NewPublisher(producer MessageProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", env.EventType),
			slog.String("aggregate_id", env.AggregateID),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(env.Payload)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:     []byte(env.AggregateID),
			Value:   env.Payload,
			Headers: env.Headers(),
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}

	return nil
}

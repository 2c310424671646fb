package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes one consumed message. A returned error is logged and the
// message is not committed.
type Handler func(ctx context.Context, msg Message) error

// Consumer feeds the messages of one topic to a Handler.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger
	group   bool
}

// NewConsumer creates a Consumer for topic. Without cfg.ConsumerGroup the
// consumer is ephemeral and commits nothing.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka: consumer topic is required")
	}
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}

	rc := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafkago.LastOffset,
		Dialer: &kafkago.Dialer{
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mechanism,
			DualStack:     true,
		},
	}

	if cfg.StartFromOldest {
		rc.StartOffset = kafkago.FirstOffset
	}

	return &Consumer{
		reader:  kafkago.NewReader(rc),
		handler: handler,
		logger:  logger.With("topic", topic, "group", cfg.ConsumerGroup),
		group:   cfg.ConsumerGroup != "",
	}, nil
}

// Start blocks, handling messages until ctx ends. Cancellation is a clean
// stop and returns nil.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.logger.Info("consumer stopped")

	for {
		m, err := c.reader.FetchMessage(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return fmt.Errorf("kafka: fetch: %w", err)
		}
		c.handle(ctx, m)
	}
}

func (c *Consumer) handle(ctx context.Context, m kafkago.Message) {
	log := c.logger.With("partition", m.Partition, "offset", m.Offset)

	if err := c.handler(ctx, fromKafkaMessage(m)); err != nil {
		log.Error("message handler failed", "error", err)
		return
	}
	if !c.group {
		return
	}
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		log.Error("offset commit failed", "error", err)
	}
}

// Close releases the reader and, in group mode, leaves the group.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close consumer: %w", err)
	}
	return nil
}

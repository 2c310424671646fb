package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is a record exchanged with the broker. Topic, Partition and Offset
// are only set on consumed messages.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string

	Topic     string
	Partition int
	Offset    int64
}

// Producer publishes keyed messages. A single kafka-go writer serves every
// topic; messages sharing a key land on the same partition.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer creates a Producer for cfg.Brokers.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(cfg.Brokers...),
			Balancer:               &kafkago.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
			Transport: &kafkago.Transport{
				TLS:  cfg.tlsConfig(),
				SASL: mechanism,
			},
		},
	}, nil
}

// Publish writes messages to topic and waits for every in-sync replica to
// acknowledge them.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	if topic == "" {
		return errors.New("kafka: publish without topic")
	}

	out := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		out[i] = toKafkaMessage(topic, msg)
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka: publish %d message(s) to %s: %w", len(out), topic, err)
	}
	return nil
}

// Close flushes pending batches and releases the writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("kafka: close producer: %w", err)
	}
	return nil
}

func toKafkaMessage(topic string, msg Message) kafkago.Message {
	km := kafkago.Message{Topic: topic, Key: msg.Key, Value: msg.Value}
	if len(msg.Headers) > 0 {
		km.Headers = make([]kafkago.Header, 0, len(msg.Headers))
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
	}
	return km
}

func fromKafkaMessage(m kafkago.Message) Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
	}
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

// KafkaContainer is a single-node KRaft broker for integration tests.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts the broker; t.Cleanup terminates it.
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	container, err := kafka.Run(ctx, "confluentinc/confluent-local:7.6.1", kafka.WithClusterID("credit-test"))
	if err != nil {
		t.Fatalf("start kafka: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(stopCtx); err != nil {
			t.Logf("terminate kafka: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: container, Brokers: brokers}
}

// Config returns a plaintext client configuration for the broker. Consumers
// built from it replay the topic from the oldest offset.
func (kc *KafkaContainer) Config() pkgkafka.Config {
	return pkgkafka.Config{Brokers: kc.Brokers, StartFromOldest: true}
}

package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the broker-neutral wire form of a domain event.
type Envelope struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	TenantID      string
	Payload       []byte
	OccurredAt    time.Time
}

// NewEnvelope serializes event as JSON and copies its routing metadata.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	return Envelope{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		TenantID:      event.TenantID(),
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
	}, nil
}

// Headers returns the envelope metadata as message headers.
func (e Envelope) Headers() map[string]string {
	return map[string]string{
		"event_id":       e.ID,
		"event_type":     e.EventType,
		"aggregate_type": e.AggregateType,
		"tenant_id":      e.TenantID,
		"occurred_at":    e.OccurredAt.Format(time.RFC3339Nano),
		"content-type":   "application/json",
	}
}

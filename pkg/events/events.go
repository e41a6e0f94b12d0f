package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicProductEvents = "catalog.products"
	TopicOrderEvents   = "orders.lifecycle"
)

const (
	ProductCreated     = "ProductCreated"
	ProductUpdated     = "ProductUpdated"
	ProductDeleted     = "ProductDeleted"
	OrderCreated       = "OrderCreated"
	OrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Publisher delivers domain events. Implementations must not block the caller on
// broker I/O.
type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload any) error
}

func NewEnvelope(producer, key, eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: key,
		Payload:       raw,
	}, nil
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, string, any) error { return nil }

type Published struct {
	Topic    string
	Key      string
	Envelope Envelope
}

// Memory keeps published events in process. Used when no broker is configured
// and in tests.
type Memory struct {
	Producer string

	mu     sync.Mutex
	events []Published
}

func (m *Memory) Publish(_ context.Context, topic, key, eventType string, payload any) error {
	env, err := NewEnvelope(m.Producer, key, eventType, payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, Published{Topic: topic, Key: key, Envelope: env})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Events() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.events))
	copy(out, m.events)
	return out
}
